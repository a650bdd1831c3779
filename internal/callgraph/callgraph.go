// Package callgraph builds the subroutine call graph of a ROM.
package callgraph

import (
	"fmt"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/m65816"
	"github.com/zboralski/lattice"
	"github.com/zboralski/lattice/render"
)

// Build constructs the call graph of all JSR, JSL and JML instructions.
// The caller of an instruction is the nearest preceding label in the same
// bank, callers and callees without label are named by their address.
func Build(src datasource.Source, dataPerLine int) *lattice.Graph {
	g := &lattice.Graph{}
	nodes := set.New[string]()
	edges := set.New[string]()
	addNode := func(name string) {
		if !nodes.Contains(name) {
			nodes.Add(name)
			g.Nodes = append(g.Nodes, name)
		}
	}

	store := src.Labels()
	bank := -1
	caller := ""

	for offset := 0; offset < src.RomSize(); offset += datasource.LineByteLength(src, offset, dataPerLine) {
		address := src.ToNative(offset)
		if b := datasource.Bank(src, offset); b != bank {
			bank = b
			caller = ""
		}
		if name := store.Name(address); name != "" && !datasource.IsPlusMinusLabel(name) {
			caller = name
		}

		if src.Flag(offset) != datasource.Opcode {
			continue
		}
		opcode, _ := src.RomByte(offset)
		if opcode != m65816.JSR && opcode != m65816.JSL && opcode != m65816.JML {
			continue
		}
		target, ok := datasource.IntermediateAddress(src, offset)
		if !ok {
			continue
		}

		from := caller
		if from == "" {
			from = fmt.Sprintf("$%06X", address)
		}
		to := datasource.LabelAt(src, target, false)
		if to == "" {
			to = fmt.Sprintf("$%06X", src.Canonical(target))
		}

		addNode(from)
		addNode(to)
		key := from + "->" + to
		if edges.Contains(key) {
			continue
		}
		edges.Add(key)
		g.Edges = append(g.Edges, lattice.Edge{
			Caller: from,
			Callee: to,
		})
	}

	return g
}

// DOT renders the call graph in Graphviz DOT format.
func DOT(g *lattice.Graph, title string) string {
	return render.DOT(g, title)
}
