// Package loader handles ROM and project file loading operations.
package loader

import (
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/project"
)

// copierHeaderSize is the size of the header that copier devices prepend.
const copierHeaderSize = 512

var errEmptyROM = errors.New("ROM file is empty")

// Loader handles loading ROM and project files from disk.
type Loader struct {
	logger *log.Logger
}

// New creates a new loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// LoadROM reads a ROM file and strips a copier header if present.
func (l *Loader) LoadROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file %s: %w", path, err)
	}
	return l.stripCopierHeader(data)
}

// stripCopierHeader removes the copier header of a ROM image, it is detected
// by the image size being 512 bytes above a multiple of 1 KiB.
func (l *Loader) stripCopierHeader(data []byte) ([]byte, error) {
	if len(data)%1024 == copierHeaderSize {
		l.logger.Debug("Removing copier header", log.Int("size", copierHeaderSize))
		data = data[copierHeaderSize:]
	}
	if len(data) == 0 {
		return nil, errEmptyROM
	}
	return data, nil
}

// LoadProject reads a project file. An empty path returns nil without
// error, the ROM is then processed without analysis data.
func (l *Loader) LoadProject(path string) (*project.File, error) {
	if path == "" {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening project file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	projectFile, err := project.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("loading project file %s: %w", path, err)
	}
	return projectFile, nil
}
