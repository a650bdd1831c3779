package output

import (
	"io"
	"strings"
)

// Buffer is a sink that keeps all streams in memory.
type Buffer struct {
	streams

	buffers map[string]*strings.Builder
}

// NewBuffer returns a new in-memory sink.
func NewBuffer(settings Settings) *Buffer {
	b := &Buffer{
		buffers: make(map[string]*strings.Builder),
	}
	b.streams = newStreams(b, settings)
	return b
}

func (b *Buffer) open(name string) (io.Writer, error) {
	sb := &strings.Builder{}
	b.buffers[name] = sb
	return sb, nil
}

// Finish returns the content of all streams. The error report is only
// included if errors were written.
func (b *Buffer) Finish() (Result, error) {
	result := Result{
		Streams: make(map[string]string, len(b.buffers)),
	}
	for name, sb := range b.buffers {
		if name == b.settings.ErrorFilename && b.errorCount == 0 {
			continue
		}
		result.Streams[name] = sb.String()
	}
	return result, nil
}
