package asmgen

import (
	"github.com/retroenv/snesdisasm/internal/output"
)

// failingSink is a buffer sink whose line writes fail or panic after a
// number of successful writes.
type failingSink struct {
	*output.Buffer

	remaining int
	err       error
	panicMsg  string
}

func newFailingSink(remaining int, err error) *failingSink {
	return &failingSink{
		Buffer:    output.NewBuffer(output.Settings{SingleFile: true}),
		remaining: remaining,
		err:       err,
	}
}

func (s *failingSink) WriteLine(line string) error {
	if s.remaining > 0 {
		s.remaining--
		return s.Buffer.WriteLine(line)
	}
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.err
}
