// Package m65816 contains the 65C816 instruction set description used to
// size and format instructions.
package m65816

// Mode is an addressing mode of the 65C816.
type Mode uint8

const (
	Implied Mode = iota
	Accumulator
	ImmediateM // size depends on the M flag
	ImmediateX // size depends on the X flag
	Immediate8
	Direct
	DirectX
	DirectY
	DirectIndirect
	DirectXIndirect
	DirectIndirectY
	DirectIndirectLong
	DirectIndirectLongY
	StackRelative
	StackRelativeIndirectY
	Absolute
	AbsoluteX
	AbsoluteY
	AbsoluteIndirect
	AbsoluteXIndirect
	AbsoluteIndirectLong
	Long
	LongX
	Relative
	RelativeLong
	BlockMove
	PushEffective
)

// operandSize returns the operand size in bytes for modes that do not depend
// on the processor width flags.
var operandSize = [...]int{
	Implied:                0,
	Accumulator:            0,
	Immediate8:             1,
	Direct:                 1,
	DirectX:                1,
	DirectY:                1,
	DirectIndirect:         1,
	DirectXIndirect:        1,
	DirectIndirectY:        1,
	DirectIndirectLong:     1,
	DirectIndirectLongY:    1,
	StackRelative:          1,
	StackRelativeIndirectY: 1,
	Absolute:               2,
	AbsoluteX:              2,
	AbsoluteY:              2,
	AbsoluteIndirect:       2,
	AbsoluteXIndirect:      2,
	AbsoluteIndirectLong:   2,
	Long:                   3,
	LongX:                  3,
	Relative:               1,
	RelativeLong:           2,
	BlockMove:              2,
	PushEffective:          2,
}

// OperandSize returns the number of operand bytes following the opcode.
// m8 and x8 are true when the accumulator or index registers are 8 bit wide.
func (m Mode) OperandSize(m8, x8 bool) int {
	switch m {
	case ImmediateM:
		if m8 {
			return 1
		}
		return 2
	case ImmediateX:
		if x8 {
			return 1
		}
		return 2
	}
	if int(m) >= len(operandSize) {
		return 0
	}
	return operandSize[m]
}

// IsDirect returns whether the operand is a direct page offset.
func (m Mode) IsDirect() bool {
	switch m {
	case Direct, DirectX, DirectY, DirectIndirect, DirectXIndirect, DirectIndirectY,
		DirectIndirectLong, DirectIndirectLongY:
		return true
	default:
		return false
	}
}

// IsAbsolute returns whether the operand is a 16 bit address.
func (m Mode) IsAbsolute() bool {
	switch m {
	case Absolute, AbsoluteX, AbsoluteY, AbsoluteIndirect, AbsoluteXIndirect, AbsoluteIndirectLong:
		return true
	default:
		return false
	}
}

// IsLong returns whether the operand is a full 24 bit address.
func (m Mode) IsLong() bool {
	return m == Long || m == LongX
}

// IsRelative returns whether the operand is a program counter relative displacement.
func (m Mode) IsRelative() bool {
	return m == Relative || m == RelativeLong
}
