// Package fileprocessor handles file loading and processing operations
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/asmgen"
	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/pipeline"
	"golang.org/x/term"
)

// ProcessFile handles the complete file processing workflow
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, genOpts options.Generator) error {
	p := pipeline.New(logger)
	if !opts.Quiet && !opts.Debug && term.IsTerminal(int(os.Stderr.Fd())) {
		p.SetProgress(newProgressPrinter(os.Stderr))
	}

	result, err := p.Execute(ctx, opts, genOpts)
	if err != nil {
		if result.Retryable {
			return fmt.Errorf("processing file %s, output can be retried: %w", opts.Input, err)
		}
		return fmt.Errorf("processing file %s: %w", opts.Input, err)
	}

	if opts.Output == "" {
		if _, err := io.WriteString(os.Stdout, result.Output); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	logger.Info("Generated assembly",
		log.String("file", opts.Output),
		log.Int("files", len(result.Files)),
		log.Int("errors", result.ErrorCount))
	return nil
}

// newProgressPrinter returns a progress callback that keeps a single status
// line updated on the given terminal writer.
func newProgressPrinter(w io.Writer) asmgen.Progress {
	return func(milestone asmgen.Milestone, detail string) {
		status := milestone.String()
		if detail != "" {
			status += ": " + detail
		}

		if milestone == asmgen.Done {
			_, _ = fmt.Fprint(w, "\r\033[K")
			return
		}
		_, _ = fmt.Fprintf(w, "\r\033[K%s", status)
	}
}

// GetFilesToProcess returns list of files to process based on options
func GetFilesToProcess(opts *options.Program) ([]string, error) {
	if opts.Batch != "" {
		matches, err := filepath.Glob(opts.Batch)
		if err != nil {
			return nil, fmt.Errorf("globbing batch pattern: %w", err)
		}
		return matches, nil
	}
	return []string{opts.Input}, nil
}

// GenerateOutputFilename generates output filename for a given input file
func GenerateOutputFilename(inputFile string) string {
	ext := filepath.Ext(inputFile)
	return inputFile[:len(inputFile)-len(ext)] + ".asm"
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("snesdisasm", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}
