// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/snes"
)

var errInvalidDataPerLine = errors.New("data bytes per line must be positive")

// ParseFlags parses command line flags and returns program and generator options
func ParseFlags() (options.Program, options.Generator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "" && opts.Input == "") {
		return opts, options.Generator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Generator{}, err
	}

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Generator{}, err
	}

	if opts.Batch == "" && len(args) > 0 {
		opts.Input = args[0]
	}

	genOpts := options.NewGenerator()
	genOpts.Apply(opts.OutputFlags)
	return opts, genOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: snesdisasm [options] <rom file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.MapMode = strings.ToLower(strings.TrimSpace(opts.MapMode))
	if opts.MapMode != "" {
		if _, err := snes.ParseMapMode(opts.MapMode); err != nil {
			return fmt.Errorf("invalid map mode: %w", err)
		}
	}

	if opts.DataPerLine <= 0 {
		return errInvalidDataPerLine
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Input, "i", "", "name of the input ROM file")
	flags.StringVar(&opts.Output, "o", "", "name of the main output .asm file, defaults to the ROM name with .asm extension")
	flags.StringVar(&opts.Project, "p", "", "name of the project file (.json) with flags, labels, comments and regions")
	flags.StringVar(&opts.Batch, "batch", "", "process a batch of given path and file mask and automatically .asm file naming, for example *.sfc")
	flags.StringVar(&opts.MapMode, "m", "", "map mode (lorom, hirom, exlorom, exhirom, sa1, superfx) - auto-detected from the ROM header if not set")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.AssembleTest, "verify", false, "verify the generated output by assembling with asar and check if it matches the input")

	flags.BoolVar(&opts.SingleFile, "single", false, "write all banks into the main output file")
	flags.StringVar(&opts.Format, "format", "", "line format template, for example \"%label%%code%;%pc%\"")
	flags.IntVar(&opts.DataPerLine, "per-line", 8, "data bytes per line")
	flags.BoolVar(&opts.PlusMinus, "plusminus", false, "use + and - labels for short local branches")
	flags.BoolVar(&opts.Regions, "regions", false, "export separate-file regions into their own files")
	flags.BoolVar(&opts.LabelsText, "labels-txt", false, "export all labels with their usage state to all-labels.txt")
	flags.BoolVar(&opts.LabelsCSV, "labels-csv", false, "export all labels to labels.csv")
	flags.BoolVar(&opts.BsnesSymbols, "sym", false, "export labels and comments to bsnes.sym")
	flags.BoolVar(&opts.CallGraph, "callgraph", false, "export the subroutine call graph to callgraph.dot")
	flags.BoolVar(&opts.LabelEverything, "label-all", false, "label every line start that is not referenced")
	flags.BoolVar(&opts.NoTempLabels, "no-temp-labels", false, "do not generate temporary labels for referenced addresses")
	flags.BoolVar(&opts.NoWhitespace, "no-whitespace", false, "omit blank lines between paragraphs")
}
