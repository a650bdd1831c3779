// Package options contains the program options.
package options

import (
	"github.com/retroenv/snesdisasm/internal/linegen"
	"github.com/retroenv/snesdisasm/internal/output"
)

// Parameters contains file path options.
type Parameters struct {
	Input   string `flag:"i" usage:"input ROM file"`
	Output  string `flag:"o" usage:"output .asm file (default: <rom>.asm)"`
	Project string `flag:"p" usage:"project file (.json) with flags, labels, comments and regions"`
	Batch   string `flag:"batch" usage:"batch process files matching pattern (e.g. *.sfc)"`
}

// Flags contains behavior options.
type Flags struct {
	MapMode      string `flag:"m" usage:"map mode: lorom, hirom, exlorom, exhirom, sa1, superfx (default: auto-detect)"`
	AssembleTest bool   `flag:"verify" usage:"verify output by reassembling with asar and comparing to input"`
	Debug        bool   `flag:"debug" usage:"enable debug logging"`
	Quiet        bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains output formatting options.
type OutputFlags struct {
	SingleFile      bool   `flag:"single" usage:"write everything into a single file instead of one file per bank"`
	Format          string `flag:"format" usage:"line format template"`
	DataPerLine     int    `flag:"per-line" usage:"data bytes per line" default:"8"`
	PlusMinus       bool   `flag:"plusminus" usage:"use + and - labels for short branches"`
	Regions         bool   `flag:"regions" usage:"export separate-file regions into their own files"`
	LabelsText      bool   `flag:"labels-txt" usage:"export all labels with their usage state to all-labels.txt"`
	LabelsCSV       bool   `flag:"labels-csv" usage:"export all labels to labels.csv"`
	BsnesSymbols    bool   `flag:"sym" usage:"export labels and comments to bsnes.sym"`
	CallGraph       bool   `flag:"callgraph" usage:"export the call graph to callgraph.dot"`
	LabelEverything bool   `flag:"label-all" usage:"label every line that is not referenced"`
	NoTempLabels    bool   `flag:"no-temp-labels" usage:"do not generate temporary labels"`
	NoWhitespace    bool   `flag:"no-whitespace" usage:"omit blank lines between paragraphs"`
}

// Program options of the generator.
type Program struct {
	Parameters
	Flags
	OutputFlags
}

// Generator defines options to control the assembly generator.
type Generator struct {
	Format      string // line format template
	DataPerLine int    // data bytes per line

	SingleFile     bool   // write all banks into the main stream
	OutputToString bool   // keep the output in memory instead of files
	ErrorFilename  string // name of the error report stream

	GenerateTemporaryLabels bool // synthesize labels for referenced addresses
	PlusMinusLabels         bool // use + and - labels for short branches
	LabelEverything         bool // label every unreferenced line start
	Regions                 bool // export separate-file regions into their own streams

	AllLabelsText bool // all-labels.txt export
	AllLabelsCSV  bool // labels.csv export
	BsnesSymbols  bool // bsnes.sym export
	CallGraph     bool // callgraph.dot export

	ExtraWhitespace            bool // blank lines around paragraphs
	PrintLabelSpecificComments bool // label comments in label assignments
}

// NewGenerator returns a new options instance with default options.
func NewGenerator() Generator {
	return Generator{
		Format:        linegen.DefaultFormat,
		DataPerLine:   8,
		ErrorFilename: output.DefaultErrorFilename,

		GenerateTemporaryLabels:    true,
		ExtraWhitespace:            true,
		PrintLabelSpecificComments: true,
	}
}

// Apply transfers the output flags of the program options.
func (g *Generator) Apply(flags OutputFlags) {
	if flags.Format != "" {
		g.Format = flags.Format
	}
	if flags.DataPerLine > 0 {
		g.DataPerLine = flags.DataPerLine
	}
	g.SingleFile = flags.SingleFile
	g.GenerateTemporaryLabels = !flags.NoTempLabels
	g.PlusMinusLabels = flags.PlusMinus
	g.LabelEverything = flags.LabelEverything
	g.Regions = flags.Regions
	g.AllLabelsText = flags.LabelsText
	g.AllLabelsCSV = flags.LabelsCSV
	g.BsnesSymbols = flags.BsnesSymbols
	g.CallGraph = flags.CallGraph
	g.ExtraWhitespace = !flags.NoWhitespace
}
