package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// Files is a sink that writes every stream into its own file. The main
// stream is written to the main file path, all other streams are created
// in the same directory.
type Files struct {
	streams

	mainPath string
	dir      string
	files    map[string]*bufferedFile
}

type bufferedFile struct {
	file   *os.File
	writer *bufio.Writer
}

// NewFiles returns a new file sink.
func NewFiles(mainPath string, settings Settings) *Files {
	f := &Files{
		mainPath: mainPath,
		dir:      filepath.Dir(mainPath),
		files:    make(map[string]*bufferedFile),
	}
	f.streams = newStreams(f, settings)
	return f
}

// Path returns the file path of a stream.
func (f *Files) Path(name string) string {
	if name == Main {
		return f.mainPath
	}
	return filepath.Join(f.dir, name)
}

func (f *Files) open(name string) (io.Writer, error) {
	path := f.Path(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &IOError{Stream: name, Op: "creating directory for", Err: err}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, &IOError{Stream: name, Op: "creating", Err: err}
	}
	bf := &bufferedFile{
		file:   file,
		writer: bufio.NewWriter(file),
	}
	f.files[name] = bf
	return bf.writer, nil
}

// Finish flushes and closes all files. The error report is removed if no
// errors were written. All files are closed even if one of them fails.
func (f *Files) Finish() (Result, error) {
	var errs []error
	names := make([]string, 0, len(f.files))

	for name, bf := range f.files {
		if err := bf.writer.Flush(); err != nil {
			errs = append(errs, &IOError{Stream: name, Op: "flushing", Err: err})
		}
		if err := bf.file.Close(); err != nil {
			errs = append(errs, &IOError{Stream: name, Op: "closing", Err: err})
		}
		names = append(names, name)
	}
	f.files = make(map[string]*bufferedFile)
	f.writers = make(map[string]io.Writer)
	f.active = ""

	errorFile := f.settings.ErrorFilename
	if f.errorCount == 0 {
		if err := os.Remove(f.Path(errorFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, &IOError{Stream: errorFile, Op: "removing", Err: err})
		}
	}

	slices.Sort(names)
	result := Result{}
	for _, name := range names {
		if name == errorFile && f.errorCount == 0 {
			continue
		}
		result.Files = append(result.Files, f.Path(name))
	}

	if len(errs) > 0 {
		return result, fmt.Errorf("finishing output: %w", errors.Join(errs...))
	}
	return result, nil
}
