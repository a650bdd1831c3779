package m65816

import "fmt"

// size suffixes that force the operand width for the assembler.
var sizeSuffix = map[int]string{
	1: ".B",
	2: ".W",
	3: ".L",
}

// HexOperand formats a numeric operand of the given byte size.
func HexOperand(value, size int) string {
	return fmt.Sprintf("$%0*X", size*2, value)
}

// Text returns the assembler text of an instruction. operand is the already
// formatted operand, either a number or a label name, and size is the number
// of operand bytes.
func Text(opcode byte, size int, operand string) string {
	op := Opcodes[opcode]
	name := op.Name

	switch op.Mode {
	case Implied:
		return name
	case Accumulator:
		return name + " A"
	case Immediate8:
		return fmt.Sprintf("%s #%s", name, operand)
	case Relative, RelativeLong, BlockMove:
		return fmt.Sprintf("%s %s", name, operand)
	}

	sized := name + sizeSuffix[size]
	switch op.Mode {
	case ImmediateM, ImmediateX:
		return fmt.Sprintf("%s #%s", sized, operand)
	case DirectX, AbsoluteX, LongX:
		return fmt.Sprintf("%s %s,X", sized, operand)
	case DirectY, AbsoluteY:
		return fmt.Sprintf("%s %s,Y", sized, operand)
	case DirectIndirect, AbsoluteIndirect:
		return fmt.Sprintf("%s (%s)", sized, operand)
	case DirectXIndirect, AbsoluteXIndirect:
		return fmt.Sprintf("%s (%s,X)", sized, operand)
	case DirectIndirectY:
		return fmt.Sprintf("%s (%s),Y", sized, operand)
	case DirectIndirectLong, AbsoluteIndirectLong:
		return fmt.Sprintf("%s [%s]", sized, operand)
	case DirectIndirectLongY:
		return fmt.Sprintf("%s [%s],Y", sized, operand)
	case StackRelative:
		return fmt.Sprintf("%s %s,S", sized, operand)
	case StackRelativeIndirectY:
		return fmt.Sprintf("%s (%s,S),Y", sized, operand)
	default:
		return fmt.Sprintf("%s %s", sized, operand)
	}
}

// BlockMoveOperand formats the operand of MVN and MVP. The instruction encodes
// the destination bank first, the assembler syntax lists the source first.
func BlockMoveOperand(dst, src byte) string {
	return HexOperand(int(src), 1) + "," + HexOperand(int(dst), 1)
}
