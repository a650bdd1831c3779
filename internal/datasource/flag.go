// Package datasource defines the read only view of the analysis model that
// the assembly generator consumes.
package datasource

import (
	"fmt"
	"strings"
)

// Flag is the content classification of a single ROM byte.
type Flag uint8

const (
	Unreached Flag = iota
	Opcode
	Operand
	Data8
	Graphics
	Music
	Empty
	Data16
	Pointer16
	Data24
	Pointer24
	Data32
	Pointer32
	Text
)

type flagInfo struct {
	name        string // project file name
	description string
	labelPrefix string
}

var flagInfos = map[Flag]flagInfo{
	Unreached: {"unreached", "Unreached", "UNREACH"},
	Opcode:    {"opcode", "Opcode", "CODE"},
	Operand:   {"operand", "Operand", "LOOSE_OP"},
	Data8:     {"data8", "Data (8-bit)", "DATA8"},
	Graphics:  {"graphics", "Graphics", "GFX"},
	Music:     {"music", "Music", "MUSIC"},
	Empty:     {"empty", "Empty", "EMPTY"},
	Data16:    {"data16", "Data (16-bit)", "DATA16"},
	Pointer16: {"pointer16", "Pointer (16-bit)", "PTR16"},
	Data24:    {"data24", "Data (24-bit)", "DATA24"},
	Pointer24: {"pointer24", "Pointer (24-bit)", "PTR24"},
	Data32:    {"data32", "Data (32-bit)", "DATA32"},
	Pointer32: {"pointer32", "Pointer (32-bit)", "PTR32"},
	Text:      {"text", "Text", "TEXT"},
}

// String returns the human readable description of the flag.
func (f Flag) String() string {
	info, ok := flagInfos[f]
	if !ok {
		return fmt.Sprintf("flag(%d)", uint8(f))
	}
	return info.description
}

// LabelPrefix returns the prefix of generated labels for bytes of this flag.
func (f Flag) LabelPrefix() string {
	return flagInfos[f].labelPrefix
}

// IsPointer returns whether the flag marks a pointer table entry.
func (f Flag) IsPointer() bool {
	return f == Pointer16 || f == Pointer24 || f == Pointer32
}

// ParseFlag parses a flag name as used in project files.
func ParseFlag(name string) (Flag, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for flag, info := range flagInfos {
		if info.name == name {
			return flag, nil
		}
	}
	if name == "code" {
		return Opcode, nil
	}
	return 0, fmt.Errorf("unsupported flag '%s'", name)
}

// Step returns the element size in bytes and the maximum number of bytes
// that a single output line of this flag holds. perLine is the configured
// number of data bytes per line. Opcodes are sized by the instruction and
// return 0, 0.
func (f Flag) Step(perLine int) (step, maxLength int) {
	switch f {
	case Opcode:
		return 0, 0
	case Text:
		return 1, 21
	case Data16:
		return 2, perLine
	case Data24:
		return 3, perLine
	case Data32:
		return 4, perLine
	case Pointer16:
		return 2, 2
	case Pointer24:
		return 3, 3
	case Pointer32:
		return 4, 4
	default:
		return 1, perLine
	}
}

// InOutPoint marks the role of an offset in the program flow.
type InOutPoint uint8

const (
	InPoint   InOutPoint = 1 << iota // target of a branch, jump or call
	OutPoint                         // branches, jumps or calls somewhere else
	EndPoint                         // execution does not continue after it
	ReadPoint                        // target of a data read
)

// Has returns whether all bits of p are set.
func (i InOutPoint) Has(p InOutPoint) bool {
	return i&p == p
}

// Region is a named native address range, optionally exported to its own file.
type Region struct {
	Name         string
	Start        int // first native address
	End          int // last native address, inclusive
	Priority     int
	SeparateFile bool
}

// Contains returns whether the native address is inside the region.
func (r Region) Contains(address int) bool {
	return address >= r.Start && address <= r.End
}
