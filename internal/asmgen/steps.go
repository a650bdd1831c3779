package asmgen

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/snesdisasm/internal/callgraph"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/output"
	"github.com/retroenv/snesdisasm/internal/snes"
)

// names of the additional output streams.
const (
	labelsStream       = "labels.asm"
	allLabelsStream    = "all-labels.txt"
	labelsCSVStream    = "labels.csv"
	bsnesSymbolsStream = "bsnes.sym"
	callGraphStream    = "callgraph.dot"
)

// step is one part of the output generation. Steps run in the order of
// the steps list, a step without enabled function always runs.
type step struct {
	name    string
	enabled func(g *Generator) bool
	execute func(g *Generator) error
}

var steps = []step{
	{name: "rom-map", execute: (*Generator).writeROMMap},
	{name: "instructions", execute: (*Generator).writeInstructions},
	{name: "main-bank-includes", enabled: multiFile, execute: (*Generator).writeMainBankIncludes},
	{name: "unvisited-labels", execute: (*Generator).writeUnvisitedLabels},
	{
		name:    "all-labels-text",
		enabled: func(g *Generator) bool { return g.opts.AllLabelsText },
		execute: (*Generator).writeAllLabelsText,
	},
	{
		name:    "all-labels-csv",
		enabled: func(g *Generator) bool { return g.opts.AllLabelsCSV },
		execute: (*Generator).writeAllLabelsCSV,
	},
	{
		name:    "bsnes-symbols",
		enabled: func(g *Generator) bool { return g.opts.BsnesSymbols },
		execute: (*Generator).writeBsnesSymbols,
	},
	{
		name:    "call-graph",
		enabled: func(g *Generator) bool { return g.opts.CallGraph },
		execute: (*Generator).writeCallGraph,
	},
	{name: "defines", execute: (*Generator).writeDefines},
}

func multiFile(g *Generator) bool {
	return !g.opts.SingleFile
}

func (g *Generator) switchStream(name string) error {
	if err := g.sink.SwitchStream(name); err != nil {
		return fmt.Errorf("switching to stream %s: %w", name, err)
	}
	return nil
}

func (g *Generator) writeROMMap() error {
	if err := g.switchStream(output.Main); err != nil {
		return err
	}
	if err := g.writeSpecial("map", ""); err != nil {
		return err
	}
	if err := g.writeSpecial("bankcross", ""); err != nil {
		return err
	}
	if err := g.writeBlank(); err != nil {
		return err
	}
	if g.opts.SingleFile {
		return g.writeSpecial("incsrc", definesStream)
	}
	return nil
}

func (g *Generator) writeInstructions() error {
	return newEmitter(g).run()
}

func (g *Generator) writeMainBankIncludes() error {
	if err := g.switchStream(output.Main); err != nil {
		return err
	}
	includes := []string{definesStream}
	for _, bank := range g.visitedBanks {
		includes = append(includes, output.BankStream(bank))
	}
	includes = append(includes, labelsStream)

	for _, name := range includes {
		if err := g.writeSpecial("incsrc", name); err != nil {
			return err
		}
	}
	return nil
}

// writeUnvisitedLabels assigns the labels that were never rendered in
// front of a line, for example labels inside of instruction operands.
func (g *Generator) writeUnvisitedLabels() error {
	stream := labelsStream
	if g.opts.SingleFile {
		stream = output.Main
	}
	if err := g.switchStream(stream); err != nil {
		return err
	}
	if g.opts.SingleFile {
		if err := g.writeBlank(); err != nil {
			return err
		}
	}

	store := g.src.Labels()
	for _, address := range g.tracker.Unvisited() {
		if datasource.IsPlusMinusLabel(store.Name(address)) {
			continue
		}
		if err := g.writeLabelAssign(address); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) writeLabelAssign(address int) error {
	lines, err := g.lines.SpecialAt("labelassign", address)
	if err != nil {
		return fmt.Errorf("rendering label assignment: %w", err)
	}
	return g.writeLines(lines)
}

func (g *Generator) writeAllLabelsText() error {
	if err := g.switchStream(allLabelsStream); err != nil {
		return err
	}

	store := g.src.Labels()
	for _, address := range store.Addresses() {
		if datasource.IsPlusMinusLabel(store.Name(address)) {
			continue
		}
		prefix := ";!^!-UNUSED-! "
		if g.tracker.Visited(address) {
			prefix = ";!^!-USED-! "
		}

		lines, err := g.lines.SpecialAt("labelassign", address)
		if err != nil {
			return fmt.Errorf("rendering label assignment: %w", err)
		}
		for i, line := range lines {
			lines[i] = prefix + strings.TrimLeft(line, " ")
		}
		if err := g.writeLines(lines); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) writeAllLabelsCSV() error {
	if err := g.switchStream(labelsCSVStream); err != nil {
		return err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Name", "Comment", "UsedStatus", "SnesAddress", "SnesAddressHex"}); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	store := g.src.Labels()
	for _, address := range store.Addresses() {
		label, _ := store.Effective(address)
		if datasource.IsPlusMinusLabel(label.Name) {
			continue
		}
		status := "UNUSED"
		if g.tracker.Visited(address) {
			status = "USED"
		}
		for _, name := range label.Names() {
			record := []string{
				name,
				label.Comment,
				status,
				strconv.Itoa(address),
				fmt.Sprintf("$%06X", address),
			}
			if err := w.Write(record); err != nil {
				return fmt.Errorf("writing csv record: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return g.writeLines(strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n"))
}

// symbolExcluded returns whether a label is left out of the symbol file.
func symbolExcluded(name string) bool {
	return datasource.IsPlusMinusLabel(name) ||
		strings.HasPrefix(name, datasource.Unreached.LabelPrefix()+"_") ||
		strings.HasPrefix(name, datasource.Empty.LabelPrefix()+"_")
}

func (g *Generator) writeBsnesSymbols() error {
	if err := g.switchStream(bsnesSymbolsStream); err != nil {
		return err
	}

	store := g.src.Labels()
	var symbols, comments []string
	for _, address := range store.Addresses() {
		label, _ := store.Effective(address)
		if symbolExcluded(label.Name) {
			continue
		}
		location := fmt.Sprintf("%02X:%04X", snes.Bank(address), address&0xFFFF)
		for _, name := range label.Names() {
			symbols = append(symbols, location+" "+name)
		}
		if label.Comment != "" {
			comments = append(comments, fmt.Sprintf("%s %q", location, label.Comment))
		}
	}

	lines := append([]string{"[labels]"}, symbols...)
	lines = append(lines, blank, "[comments]")
	lines = append(lines, comments...)
	return g.writeLines(lines)
}

func (g *Generator) writeCallGraph() error {
	if err := g.switchStream(callGraphStream); err != nil {
		return err
	}
	graph := callgraph.Build(g.src, g.opts.DataPerLine)
	dot := callgraph.DOT(graph, "call graph")
	return g.writeLines(strings.Split(strings.TrimSuffix(dot, "\n"), "\n"))
}
