package datasource

import (
	"strings"

	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/snes"
)

// Source is the read only analysis model of one ROM.
type Source interface {
	RomSize() int
	BankSize() int
	MapMode() snes.MapMode

	// RomByte returns the byte at the offset, ok is false outside of the ROM.
	RomByte(offset int) (value byte, ok bool)
	Flag(offset int) Flag
	MFlag(offset int) bool // true if the accumulator is 8 bit
	XFlag(offset int) bool // true if the index registers are 8 bit
	DataBank(offset int) int
	DirectPage(offset int) int
	InOutPoint(offset int) InOutPoint

	// ToNative returns the canonical native address of the offset or -1.
	ToNative(offset int) int
	// ToOffset resolves a native address including mirrors to an offset or -1.
	ToOffset(address int) int
	// Canonical normalizes a mirrored native address.
	Canonical(address int) int

	Comment(address int) string
	// OperandOverride returns the user supplied operand text of the
	// instruction at the offset, an empty string if none is set.
	OperandOverride(offset int) string
	Labels() *labels.Store
	Regions() []Region
}

// ReadValue reads a little endian value of size bytes.
func ReadValue(src Source, offset, size int) (int, bool) {
	value := 0
	for i := range size {
		b, ok := src.RomByte(offset + i)
		if !ok {
			return 0, false
		}
		value |= int(b) << (8 * i)
	}
	return value, true
}

// Bank returns the bank number of the offset, derived from its native address.
func Bank(src Source, offset int) int {
	return snes.Bank(src.ToNative(offset))
}

// Directive is a special instruction embedded in a comment.
type Directive uint8

const (
	RawHex      Directive = 1 << iota // never substitute labels or generate labels from this source
	NoLabel                           // do not generate a temporary label at the destination
	RegionStart                       // start of a separate-file region
	RegionEnd                         // end of a separate-file region
)

const directivePrefix = "!!"

// ParseDirectives extracts the directives of a comment. For region
// directives the region name is returned as well.
func ParseDirectives(comment string) (Directive, string) {
	var directives Directive
	var name string

	fields := strings.Fields(comment)
	for i, field := range fields {
		if !strings.HasPrefix(field, directivePrefix) {
			continue
		}
		switch strings.ToLower(strings.TrimPrefix(field, directivePrefix)) {
		case "raw-hex":
			directives |= RawHex
		case "no-label":
			directives |= NoLabel
		case "region-start":
			directives |= RegionStart
			if i+1 < len(fields) {
				name = fields[i+1]
			}
		case "region-end":
			directives |= RegionEnd
			if i+1 < len(fields) && !strings.HasPrefix(fields[i+1], directivePrefix) {
				name = fields[i+1]
			}
		}
	}
	return directives, name
}

// SourceDirectives returns the directives of the comment at the offset.
func SourceDirectives(src Source, offset int) Directive {
	directives, _ := ParseDirectives(src.Comment(src.ToNative(offset)))
	return directives
}
