// Package pipeline orchestrates the generation workflow stages.
package pipeline

import (
	"context"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/asmgen"
	"github.com/retroenv/snesdisasm/internal/detector"
	"github.com/retroenv/snesdisasm/internal/loader"
	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/output"
	"github.com/retroenv/snesdisasm/internal/project"
	"github.com/retroenv/snesdisasm/internal/snes"
	"github.com/retroenv/snesdisasm/internal/verification"
)

// Pipeline orchestrates the complete generation workflow.
type Pipeline struct {
	logger   *log.Logger
	detector *detector.Detector
	loader   *loader.Loader
	progress asmgen.Progress
}

// New creates a new generation pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger:   logger,
		detector: detector.New(logger),
		loader:   loader.New(logger),
	}
}

// SetProgress sets the callback that receives the generation milestones.
func (p *Pipeline) SetProgress(progress asmgen.Progress) {
	p.progress = progress
}

// Execute runs the complete pipeline for the input file of the options.
func (p *Pipeline) Execute(ctx context.Context, opts options.Program, genOpts options.Generator) (asmgen.Result, error) {
	rom, err := p.loader.LoadROM(opts.Input)
	if err != nil {
		return asmgen.Result{}, fmt.Errorf("loading ROM: %w", err)
	}

	projectFile, err := p.loader.LoadProject(opts.Project)
	if err != nil {
		return asmgen.Result{}, fmt.Errorf("loading project: %w", err)
	}

	return p.ExecuteWithROM(ctx, rom, projectFile, opts, genOpts)
}

// ExecuteWithROM runs the pipeline with a ROM that is already in memory.
// projectFile is optional. This is useful for testing and programmatic usage.
func (p *Pipeline) ExecuteWithROM(ctx context.Context, rom []byte, projectFile *project.File,
	opts options.Program, genOpts options.Generator) (asmgen.Result, error) {

	if projectFile != nil && projectFile.MapMode != "" && opts.MapMode == "" {
		opts.MapMode = projectFile.MapMode
	}

	header, err := p.detector.Detect(opts, rom)
	if err != nil {
		return asmgen.Result{}, fmt.Errorf("detecting map mode: %w", err)
	}
	fastROM := header.FastROM || (projectFile != nil && projectFile.FastROM)

	proj := project.New(rom, snes.NewMapper(header.Mode, len(rom), fastROM))
	if projectFile != nil {
		if err := projectFile.Apply(proj); err != nil {
			return asmgen.Result{}, fmt.Errorf("applying project: %w", err)
		}
	}

	p.printInfo(opts, header, len(rom))

	if err := ctx.Err(); err != nil {
		return asmgen.Result{}, fmt.Errorf("generating assembly: %w", err)
	}

	if opts.Output == "" {
		genOpts.OutputToString = true
	}
	sink := createSink(opts, genOpts)

	gen := asmgen.New(p.logger, proj, sink, genOpts)
	gen.SetProgress(p.progress)
	result := gen.Execute()
	if !result.Success {
		return result, fmt.Errorf("generating assembly: %s", result.ErrorMsg)
	}
	if result.ErrorCount > 0 {
		p.logger.Warn("Generated output contains errors, check the error report",
			log.Int("errors", result.ErrorCount))
	}

	if opts.AssembleTest {
		mainFile := opts.Output
		if genOpts.OutputToString {
			mainFile = ""
		}
		if err := verification.VerifyOutput(ctx, p.logger, mainFile, rom); err != nil {
			return result, fmt.Errorf("verification failed: %w", err)
		}
		p.logger.Info("Verification successful")
	}

	return result, nil
}

// createSink creates the output sink for the options.
func createSink(opts options.Program, genOpts options.Generator) output.Sink {
	settings := output.Settings{
		SingleFile:    genOpts.SingleFile,
		ErrorFilename: genOpts.ErrorFilename,
	}
	if genOpts.OutputToString {
		return output.NewBuffer(settings)
	}
	return output.NewFiles(opts.Output, settings)
}

// printInfo prints information about the ROM being processed.
func (p *Pipeline) printInfo(opts options.Program, header detector.Header, size int) {
	if opts.Quiet {
		return
	}

	speed := "SlowROM"
	if header.FastROM {
		speed = "FastROM"
	}
	p.logger.Info("Processing SNES ROM",
		log.String("file", opts.Input),
		log.String("title", header.Title),
		log.Stringer("mapMode", header.Mode),
		log.String("speed", speed),
		log.Int("size", size),
	)
}
