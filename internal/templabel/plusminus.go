package templabel

import (
	"slices"
	"strings"

	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/m65816"
)

// branch is a short branch from the source offset to the destination offset.
type branch struct {
	source      int
	destination int
}

// scope is an open plus/minus label that later branches can reuse.
type scope struct {
	destination int
	depth       int
}

// generatePlusMinusLabels replaces the labels of short branch destinations
// by relative + and - labels. Every bank is processed on its own, the labels
// never span a bank boundary.
func (s *Synthesizer) generatePlusMinusLabels() {
	romSize := s.src.RomSize()
	bank := -1
	var branches []branch

	for offset := 0; offset < romSize; offset += datasource.LineByteLength(s.src, offset, s.settings.DataPerLine) {
		if b := datasource.Bank(s.src, offset); b != bank {
			s.assignPlusMinusLabels(branches)
			branches = branches[:0]
			bank = b
		}

		if br, ok := s.shortBranch(offset, bank); ok {
			branches = append(branches, br)
		}
	}
	s.assignPlusMinusLabels(branches)
}

// shortBranch returns the branch of a conditional branch or BRA instruction
// at the offset if its destination can receive a plus/minus label.
func (s *Synthesizer) shortBranch(offset, bank int) (branch, bool) {
	if s.src.Flag(offset) != datasource.Opcode {
		return branch{}, false
	}
	opcode, _ := s.src.RomByte(offset)
	if !m65816.IsBranch(opcode) {
		return branch{}, false
	}
	if datasource.SourceDirectives(s.src, offset)&(datasource.RawHex|datasource.NoLabel) != 0 {
		return branch{}, false
	}

	address, ok := datasource.IntermediateAddress(s.src, offset)
	if !ok {
		return branch{}, false
	}
	destination := s.src.ToOffset(address)
	if destination < 0 || destination == offset || datasource.Bank(s.src, destination) != bank ||
		s.src.Flag(destination) != datasource.Opcode {
		return branch{}, false
	}
	if !s.demotable(s.src.ToNative(destination)) {
		return branch{}, false
	}
	return branch{source: offset, destination: destination}, true
}

// demotable returns whether the label at the address may be replaced by a
// plus/minus label.
func (s *Synthesizer) demotable(address int) bool {
	if _, ok := s.store.Get(address); ok {
		return false
	}
	label, ok := s.store.Temporary(address)
	if !ok {
		return true
	}
	return (label.Kind == labels.Generic && !label.NoDemote) || label.Kind == labels.PlusMinus
}

// assignPlusMinusLabels assigns the labels for the branches of one bank.
// Destinations that are reached by forward and backward branches are
// skipped as a single label can not serve both directions.
func (s *Synthesizer) assignPlusMinusLabels(branches []branch) {
	if len(branches) == 0 {
		return
	}

	var forward, backward []branch
	forwardDestinations := set.New[int]()
	backwardDestinations := set.New[int]()
	for _, br := range branches {
		if br.destination > br.source {
			forward = append(forward, br)
			forwardDestinations.Add(br.destination)
		} else {
			backward = append(backward, br)
			backwardDestinations.Add(br.destination)
		}
	}

	ambiguous := func(br branch) bool {
		return forwardDestinations.Contains(br.destination) && backwardDestinations.Contains(br.destination)
	}
	forward = slices.DeleteFunc(forward, ambiguous)
	backward = slices.DeleteFunc(backward, ambiguous)

	slices.SortStableFunc(forward, func(a, b branch) int { return a.source - b.source })
	slices.SortStableFunc(backward, func(a, b branch) int { return b.source - a.source })

	s.assignDirection(forward, "+", func(sc scope, source int) bool { return sc.destination <= source })
	s.assignDirection(backward, "-", func(sc scope, source int) bool { return sc.destination >= source })
}

// assignDirection assigns labels for branches of one direction, ordered in
// processing order. passed reports whether the source cursor has passed the
// destination of an open scope.
func (s *Synthesizer) assignDirection(branches []branch, sign string, passed func(sc scope, source int) bool) {
	var open []scope

	for _, br := range branches {
		open = slices.DeleteFunc(open, func(sc scope) bool { return passed(sc, br.source) })

		depth := 0
		for _, sc := range open {
			if sc.destination == br.destination {
				depth = sc.depth
				break
			}
		}
		if depth == 0 {
			depth = smallestUnusedDepth(open)
			open = append(open, scope{destination: br.destination, depth: depth})
		}

		s.store.SetTemporary(s.src.ToNative(br.destination), labels.TempLabel{
			Name: strings.Repeat(sign, depth),
			Kind: labels.PlusMinus,
		})
	}
}

func smallestUnusedDepth(open []scope) int {
	used := set.New[int]()
	for _, sc := range open {
		used.Add(sc.depth)
	}
	depth := 1
	for used.Contains(depth) {
		depth++
	}
	return depth
}
