// Package asmgen implements the assembly generator that writes the asar
// source of an analysed SNES ROM.
package asmgen

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/check"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/linegen"
	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/output"
	"github.com/retroenv/snesdisasm/internal/templabel"
)

// Progress receives the milestones of a generation run. detail contains the
// step name for StartNewMainOutputStep and is empty otherwise.
type Progress func(milestone Milestone, detail string)

// Result is the outcome of a generation run.
type Result struct {
	Success    bool
	ErrorCount int    // number of reported content errors
	ErrorMsg   string // failure message of an unsuccessful run
	Retryable  bool   // the run failed with a transient I/O error

	Files   []string          // written files, file mode only
	Output  string            // main stream content, buffer mode only
	Streams map[string]string // all stream contents, buffer mode only
}

// Generator writes the assembly output of a data source into a sink.
// A generator executes a single run.
type Generator struct {
	logger   *log.Logger
	src      datasource.Source
	sink     output.Sink
	opts     options.Generator
	progress Progress

	lines   *linegen.Engine
	checker *check.Checker
	tracker *labels.Tracker
	defines *defines
	regions []datasource.Region

	visitedBanks []int
	writeErr     error // first failed error report write
}

// New returns a new generator.
func New(logger *log.Logger, src datasource.Source, sink output.Sink, opts options.Generator) *Generator {
	if opts.DataPerLine <= 0 {
		opts.DataPerLine = 8
	}
	return &Generator{
		logger: logger,
		src:    src,
		sink:   sink,
		opts:   opts,
	}
}

// SetProgress sets the callback that receives the milestones of the run.
func (g *Generator) SetProgress(progress Progress) {
	g.progress = progress
}

// Execute runs the generation and closes the sink. Failures, including
// panics, are returned as unsuccessful result.
func (g *Generator) Execute() Result {
	err := g.runRecovered()

	g.report(FinishingCleanup, "")
	out, finishErr := g.sink.Finish()
	if err == nil && finishErr != nil {
		err = fmt.Errorf("finishing output: %w", finishErr)
	}

	result := Result{
		Success:    err == nil,
		ErrorCount: g.sink.ErrorCount(),
		Files:      out.Files,
		Streams:    out.Streams,
		Output:     out.Streams[output.Main],
	}
	if err != nil {
		result.ErrorMsg = err.Error()
		var ioErr *output.IOError
		result.Retryable = errors.As(err, &ioErr) && ioErr.Retryable()
		g.logger.Error("Generating assembly failed", log.Err(err))
	}

	g.report(Done, "")
	return result
}

func (g *Generator) runRecovered() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected failure: %v", r)
		}
	}()
	return g.run()
}

func (g *Generator) run() error {
	g.report(StartInit, "")
	if err := g.initialize(); err != nil {
		return err
	}
	g.report(DoneInit, "")

	store := g.src.Labels()
	rollback := store.BeginTemporary()
	defer func() {
		g.report(StartTemporaryLabelsRemoval, "")
		store.UnlockCache()
		rollback()
		g.report(EndTemporaryLabelsRemoval, "")
	}()

	if g.opts.GenerateTemporaryLabels {
		g.report(StartTemporaryLabelsGenerate, "")
		synthesizer := templabel.New(g.src, templabel.Settings{
			DataPerLine:     g.opts.DataPerLine,
			LabelEverything: g.opts.LabelEverything,
			PlusMinus:       g.opts.PlusMinusLabels,
		})
		synthesizer.Generate()
		g.report(DoneTemporaryLabelsGenerate, "")
	}

	store.LockCache()

	g.report(StartMainOutputSteps, "")
	for _, s := range steps {
		if s.enabled != nil && !s.enabled(g) {
			continue
		}
		g.report(StartNewMainOutputStep, s.name)
		if err := s.execute(g); err != nil {
			return fmt.Errorf("executing step %s: %w", s.name, err)
		}
	}
	g.report(DoneMainOutputSteps, "")
	return nil
}

func (g *Generator) initialize() error {
	store := g.src.Labels()
	g.tracker = labels.NewTracker(store)
	g.defines = newDefines()
	g.checker = check.New(g.src, g.opts.DataPerLine, g.reportError)

	lines, err := linegen.New(g.src, visitor{g: g}, linegen.Settings{
		Format:                     g.opts.Format,
		DataPerLine:                g.opts.DataPerLine,
		PrintLabelSpecificComments: g.opts.PrintLabelSpecificComments,
	})
	if err != nil {
		return fmt.Errorf("creating line engine: %w", err)
	}
	g.lines = lines

	if g.opts.Regions && g.opts.SingleFile {
		g.logger.Warn("Region splitting is not supported in single file mode, disabling it")
		g.opts.Regions = false
	}
	if g.opts.Regions {
		if g.regions, err = g.collectRegions(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) report(milestone Milestone, detail string) {
	if detail != "" {
		g.logger.Debug("Generation progress", log.Stringer("milestone", milestone), log.String("step", detail))
	} else {
		g.logger.Debug("Generation progress", log.Stringer("milestone", milestone))
	}
	if g.progress != nil {
		g.progress(milestone, detail)
	}
}

// reportError writes a content error to the error report. A failed write
// is kept and ends the run after the current step.
func (g *Generator) reportError(offset int, message string) {
	if err := g.sink.WriteError(offset, message); err != nil && g.writeErr == nil {
		g.writeErr = err
	}
}

func (g *Generator) writeLines(lines []string) error {
	for _, line := range lines {
		if err := g.sink.WriteLine(line); err != nil {
			return fmt.Errorf("writing line: %w", err)
		}
	}
	return nil
}

// blank is the line used for empty separator lines, lines are never empty.
const blank = " "

// writeBlank writes a separator line if extra whitespace is enabled.
func (g *Generator) writeBlank() error {
	if !g.opts.ExtraWhitespace {
		return nil
	}
	return g.writeLines([]string{blank})
}

func (g *Generator) writeSpecial(name, text string) error {
	lines, err := g.lines.Special(name, text)
	if err != nil {
		return fmt.Errorf("rendering %s line: %w", name, err)
	}
	return g.writeLines(lines)
}

// visitor forwards the rendering notifications of the line engine.
type visitor struct {
	g *Generator
}

func (v visitor) OnLabelVisited(address int) {
	v.g.tracker.Visit(address)
}

func (v visitor) OnInstructionVisited(offset int, ins datasource.Instruction) {
	v.g.harvestDefine(offset, ins)
}
