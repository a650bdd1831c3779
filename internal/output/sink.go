// Package output implements the named output streams that the assembly
// generator writes into, backed by files or in-memory buffers.
package output

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"syscall"
)

// Main is the name of the main output stream.
const Main = "main"

// DefaultErrorFilename is the name of the error report stream.
const DefaultErrorFilename = "errors.txt"

// Sink is the output of a generation run.
type Sink interface {
	// WriteLine writes a line to the active stream, empty lines are skipped.
	WriteLine(line string) error
	// WriteError writes a numbered error line to the error report.
	WriteError(offset int, message string) error
	// SwitchStream activates the named stream, creating it on first use.
	SwitchStream(name string) error
	// SetBank activates the stream of the bank, in single file mode the
	// active stream is kept.
	SetBank(bank int) error
	// ActiveStream returns the name of the active stream.
	ActiveStream() string
	// ErrorCount returns the number of written errors.
	ErrorCount() int
	// Finish closes all streams and returns the produced output.
	Finish() (Result, error)
}

// Result is the produced output of a sink.
type Result struct {
	Files   []string          // written file paths, file mode only
	Streams map[string]string // stream contents by name, buffer mode only
}

// Settings configures a sink.
type Settings struct {
	SingleFile    bool   // write all banks into the main stream
	ErrorFilename string // name of the error report stream
}

// StreamName returns the normalized name of a stream. Names without file
// extension get the .asm extension, the main stream keeps its name.
func StreamName(name string) string {
	if name == Main || filepath.Ext(name) != "" {
		return name
	}
	return name + ".asm"
}

// BankStream returns the stream name of a bank.
func BankStream(bank int) string {
	return StreamName(fmt.Sprintf("bank_%02X", bank))
}

// IOError is a failure to open, write or close an output stream.
type IOError struct {
	Stream string
	Op     string
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s output stream '%s': %v", e.Op, e.Stream, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Retryable returns whether the failure is transient and the run can be
// repeated.
func (e *IOError) Retryable() bool {
	for _, errno := range []syscall.Errno{syscall.EAGAIN, syscall.EBUSY, syscall.EINTR, syscall.ETXTBSY} {
		if errors.Is(e.Err, errno) {
			return true
		}
	}
	return false
}

// opener creates the writer of a stream.
type opener interface {
	open(name string) (io.Writer, error)
}

// streams contains the stream switching logic shared by the sink
// implementations.
type streams struct {
	opener   opener
	settings Settings

	writers    map[string]io.Writer
	active     string
	errorCount int
}

func newStreams(o opener, settings Settings) streams {
	if settings.ErrorFilename == "" {
		settings.ErrorFilename = DefaultErrorFilename
	}
	return streams{
		opener:   o,
		settings: settings,
		writers:  make(map[string]io.Writer),
	}
}

func (s *streams) writer(name string) (io.Writer, error) {
	if w, ok := s.writers[name]; ok {
		return w, nil
	}
	w, err := s.opener.open(name)
	if err != nil {
		return nil, err
	}
	s.writers[name] = w
	return w, nil
}

func (s *streams) WriteLine(line string) error {
	if line == "" {
		return nil
	}
	if s.active == "" {
		if err := s.SwitchStream(Main); err != nil {
			return err
		}
	}
	return s.write(s.active, line)
}

func (s *streams) WriteError(offset int, message string) error {
	s.errorCount++
	line := fmt.Sprintf("(%d) Offset 0x%X: %s", s.errorCount, offset, message)
	return s.write(s.settings.ErrorFilename, line)
}

func (s *streams) write(name, line string) error {
	w, err := s.writer(name)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return &IOError{Stream: name, Op: "writing", Err: err}
	}
	return nil
}

func (s *streams) SwitchStream(name string) error {
	name = StreamName(name)
	if _, err := s.writer(name); err != nil {
		return err
	}
	s.active = name
	return nil
}

func (s *streams) SetBank(bank int) error {
	if s.settings.SingleFile {
		if s.active == "" {
			return s.SwitchStream(Main)
		}
		return nil
	}
	return s.SwitchStream(BankStream(bank))
}

func (s *streams) ActiveStream() string {
	return s.active
}

func (s *streams) ErrorCount() int {
	return s.errorCount
}
