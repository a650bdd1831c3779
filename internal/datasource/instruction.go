package datasource

import (
	"slices"
	"strings"

	"github.com/retroenv/snesdisasm/internal/m65816"
	"github.com/retroenv/snesdisasm/internal/snes"
)

// Instruction is a formatted CPU instruction.
type Instruction struct {
	Opcode            byte
	Length            int
	Text              string // final assembler text
	OriginalOperand   string // numeric operand text before any override
	OverriddenOperand string // user supplied operand text, empty if none
}

// InstructionLength returns the byte length of the instruction at the offset.
func InstructionLength(src Source, offset int) int {
	opcode, ok := src.RomByte(offset)
	if !ok {
		return 1
	}
	return m65816.Length(opcode, src.MFlag(offset), src.XFlag(offset))
}

// IntermediateAddress returns the effective native address that the
// instruction at the offset references, before mirror normalization.
func IntermediateAddress(src Source, offset int) (int, bool) {
	opcode, ok := src.RomByte(offset)
	if !ok {
		return 0, false
	}
	mode := m65816.Opcodes[opcode].Mode
	size := mode.OperandSize(src.MFlag(offset), src.XFlag(offset))
	operand, ok := ReadValue(src, offset+1, size)
	if !ok {
		return 0, false
	}
	pc := src.ToNative(offset)
	programBank := pc & 0xFF0000

	switch {
	case mode.IsDirect():
		return (src.DirectPage(offset) + operand) & 0xFFFF, true

	case mode.IsAbsolute():
		switch {
		case m65816.UsesProgramBank(opcode):
			return programBank | operand, true
		case opcode == m65816.JMPIndirect, opcode == m65816.JMLIndirect:
			return operand, true
		default:
			return src.DataBank(offset)<<16 | operand, true
		}

	case mode.IsLong():
		return operand, true

	case mode == m65816.Relative:
		return programBank | (pc+2+int(int8(operand)))&0xFFFF, true

	case mode == m65816.RelativeLong:
		return programBank | (pc+3+int(int16(operand)))&0xFFFF, true

	default:
		return 0, false
	}
}

// PointerAddress returns the native address stored in the pointer table
// entry at the offset.
func PointerAddress(src Source, offset int) (int, bool) {
	switch src.Flag(offset) {
	case Pointer16:
		value, ok := ReadValue(src, offset, 2)
		return src.DataBank(offset)<<16 | value, ok
	case Pointer24:
		return ReadValue(src, offset, 3)
	case Pointer32:
		value, ok := ReadValue(src, offset, 4)
		return value & 0xFFFFFF, ok
	default:
		return 0, false
	}
}

// ReferencedAddress returns the address referenced by the instruction or
// pointer at the offset.
func ReferencedAddress(src Source, offset int) (int, bool) {
	flag := src.Flag(offset)
	switch {
	case flag == Opcode:
		return IntermediateAddress(src, offset)
	case flag.IsPointer():
		return PointerAddress(src, offset)
	default:
		return 0, false
	}
}

// IsPlusMinusLabel returns whether the name is a relative label like + or --.
func IsPlusMinusLabel(name string) bool {
	if name == "" {
		return false
	}
	return strings.Trim(name, "+") == "" || strings.Trim(name, "-") == ""
}

// LabelAt returns the label name that can replace a reference to the native
// address. With exact set, the label is only used if the address is already
// in canonical form, so that a long operand assembles to the same bytes.
// Relative labels are never returned, they are only valid for branches.
func LabelAt(src Source, address int, exact bool) string {
	if exact && src.Canonical(address) != address {
		return ""
	}
	name := src.Labels().Name(address)
	if IsPlusMinusLabel(name) {
		return ""
	}
	return name
}

// FormatInstruction formats the instruction at the offset, substituting
// labels for referenced addresses and applying operand overrides.
func FormatInstruction(src Source, offset int) Instruction {
	opcode, _ := src.RomByte(offset)
	mode := m65816.Opcodes[opcode].Mode
	size := mode.OperandSize(src.MFlag(offset), src.XFlag(offset))
	value, _ := ReadValue(src, offset+1, size)

	ins := Instruction{
		Opcode: opcode,
		Length: 1 + size,
	}

	ia, hasIA := IntermediateAddress(src, offset)
	switch {
	case mode == m65816.BlockMove:
		ins.OriginalOperand = m65816.BlockMoveOperand(byte(value), byte(value>>8))
	case mode.IsRelative():
		ins.OriginalOperand = m65816.HexOperand(ia, 3)
	default:
		ins.OriginalOperand = m65816.HexOperand(value, size)
	}

	operand := ins.OriginalOperand
	if hasIA && SourceDirectives(src, offset)&RawHex == 0 {
		if name := operandLabel(src, offset, mode, ia); name != "" {
			operand = name
		}
	}

	if override := src.OperandOverride(offset); override != "" {
		ins.OverriddenOperand = override
		operand = override
	}

	ins.Text = m65816.Text(opcode, size, operand)
	return ins
}

func operandLabel(src Source, offset int, mode m65816.Mode, ia int) string {
	switch {
	case mode == m65816.Relative:
		name := src.Labels().Name(ia)
		if IsPlusMinusLabel(name) && !plusMinusResolves(src, src.ToNative(offset), ia, name) {
			return ""
		}
		return name
	case mode == m65816.RelativeLong:
		return LabelAt(src, ia, false)
	case mode.IsLong():
		return LabelAt(src, ia, true)
	case mode.IsDirect():
		if src.DirectPage(offset) != 0 {
			return ""
		}
		return LabelAt(src, ia, false)
	case mode.IsAbsolute():
		return LabelAt(src, ia, false)
	default:
		return ""
	}
}

// plusMinusResolves returns whether the relative label name used by the
// branch at the native address pc resolves to the destination. A + label
// resolves to the next label of the same name that follows the instruction,
// a - label to the last one at or before it.
func plusMinusResolves(src Source, pc, destination int, name string) bool {
	pc = src.Canonical(pc)
	destination = src.Canonical(destination)

	forward := name[0] == '+'
	if forward != (destination > pc) {
		return false
	}

	low, high := pc+1, destination-1 // forward: (pc, destination)
	if !forward {
		low, high = destination+1, pc // backward: (destination, pc]
	}

	store := src.Labels()
	addresses := store.Addresses()
	start, _ := slices.BinarySearch(addresses, low)
	for _, address := range addresses[start:] {
		if address > high {
			break
		}
		if store.Name(address) == name {
			return false
		}
	}
	return true
}

// LineByteLength returns the number of bytes that one output line starting
// at the offset covers. perLine is the configured number of data bytes per
// line. The result is at least 1 and never extends past the ROM end.
func LineByteLength(src Source, offset, perLine int) int {
	romSize := src.RomSize()
	remaining := romSize - offset
	if remaining <= 0 {
		return 1
	}

	flag := src.Flag(offset)
	if flag == Opcode {
		return min(max(InstructionLength(src, offset), 1), remaining)
	}

	step, maxLength := flag.Step(perLine)
	bank := snes.Bank(src.ToNative(offset))
	store := src.Labels()

	length := step
	for length+step <= maxLength {
		next := offset + length
		if next >= romSize || src.Flag(next) != flag {
			break
		}
		address := src.ToNative(next)
		if store.Has(address) || snes.Bank(address) != bank {
			break
		}
		length += step
	}

	return min(max(length, 1), remaining)
}
