// Package templabel generates the temporary labels of a generation run.
package templabel

import (
	"fmt"

	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/m65816"
)

// label prefixes of call and jump targets.
const (
	prefixCall     = "CODE_FN"
	prefixCallLong = "CODE_FL"
	prefixJump     = "CODE_JP"
	prefixJumpLong = "CODE_JL"
)

// Settings controls the label generation.
type Settings struct {
	DataPerLine     int
	LabelEverything bool // label every line start that references nothing
	PlusMinus       bool // generate + and - labels for short branches
}

// Synthesizer adds temporary labels to the label store of a data source.
// It never modifies persistent labels.
type Synthesizer struct {
	src      datasource.Source
	store    *labels.Store
	settings Settings
}

// New returns a new synthesizer.
func New(src datasource.Source, settings Settings) *Synthesizer {
	if settings.DataPerLine <= 0 {
		settings.DataPerLine = 8
	}
	return &Synthesizer{
		src:      src,
		store:    src.Labels(),
		settings: settings,
	}
}

// Generate runs all label passes. The caller is responsible for removing
// the temporary labels again.
func (s *Synthesizer) Generate() {
	s.generateReferenceLabels()
	if s.settings.PlusMinus {
		s.generatePlusMinusLabels()
	}
}

// generateReferenceLabels labels every address that an instruction or a
// pointer references, stepping through the ROM line by line.
func (s *Synthesizer) generateReferenceLabels() {
	romSize := s.src.RomSize()
	for offset := 0; offset < romSize; offset += datasource.LineByteLength(s.src, offset, s.settings.DataPerLine) {
		if !s.labelReference(offset) && s.settings.LabelEverything {
			s.labelOwnAddress(offset)
		}
	}
}

// labelReference labels the target of the instruction or pointer at the
// offset. It returns whether a reference was resolved.
func (s *Synthesizer) labelReference(offset int) bool {
	flag := s.src.Flag(offset)
	if flag != datasource.Opcode && !flag.IsPointer() {
		return false
	}
	address, ok := datasource.ReferencedAddress(s.src, offset)
	if !ok {
		return false
	}
	target := s.src.ToOffset(address)
	if target < 0 {
		return false
	}
	if datasource.SourceDirectives(s.src, offset)&(datasource.RawHex|datasource.NoLabel) != 0 {
		return true
	}

	targetFlag := s.src.Flag(target)
	kind, prefix := labels.Generic, targetFlag.LabelPrefix()
	if flag == datasource.Opcode && targetFlag == datasource.Opcode {
		opcode, _ := s.src.RomByte(offset)
		if k, p, ok := flowPrefix(opcode); ok {
			kind, prefix = k, p
		}
	}

	s.insert(address, labels.TempLabel{
		Name:     fmt.Sprintf("%s_%06X", prefix, s.src.Canonical(address)),
		Kind:     kind,
		NoDemote: flag.IsPointer(),
	})
	return true
}

// flowPrefix returns the label kind and prefix for targets of calls and
// unconditional jumps with a direct operand.
func flowPrefix(opcode byte) (labels.Kind, string, bool) {
	switch opcode {
	case m65816.JSR:
		return labels.Call, prefixCall, true
	case m65816.JSL:
		return labels.Call, prefixCallLong, true
	case m65816.JMP:
		return labels.Jump, prefixJump, true
	case m65816.JML, m65816.BRL:
		return labels.Jump, prefixJumpLong, true
	default:
		return labels.Generic, "", false
	}
}

func (s *Synthesizer) labelOwnAddress(offset int) {
	address := s.src.ToNative(offset)
	s.insert(address, labels.TempLabel{
		Name: fmt.Sprintf("%s_%06X", s.src.Flag(offset).LabelPrefix(), address),
		Kind: labels.Generic,
	})
}

// outranks returns whether a new label of the kind replaces an existing one.
func outranks(kind, existing labels.Kind) bool {
	switch existing {
	case labels.Generic:
		return kind == labels.Jump || kind == labels.Call
	case labels.Jump:
		return kind == labels.Call
	default:
		return false
	}
}

// insert adds a temporary label following the label priority: call labels
// are never replaced, jump labels only by call labels and generic labels
// never replace an existing label. The never demote mark is kept when a
// label gets replaced.
func (s *Synthesizer) insert(address int, label labels.TempLabel) {
	if _, ok := s.store.Get(address); ok {
		return
	}

	existing, ok := s.store.Temporary(address)
	if ok {
		if !outranks(label.Kind, existing.Kind) {
			if label.NoDemote && !existing.NoDemote {
				existing.NoDemote = true
				s.store.SetTemporary(address, existing)
			}
			return
		}
		label.NoDemote = label.NoDemote || existing.NoDemote
	}

	s.store.SetTemporary(address, label)
}
