package linegen

import (
	"fmt"
	"strings"

	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/m65816"
)

type fragmentKind uint8

const (
	textFragment fragmentKind = iota
	commentFragment
	labelAssignFragment
)

type fragment struct {
	kind fragmentKind
	text string
}

// position is the location a field is rendered for. offset is -1 for
// addresses outside of the ROM.
type position struct {
	offset  int
	address int
	width   int    // width of the rendered column
	text    string // argument of directive fields
}

// field is a generator of one column.
type field struct {
	defaultWidth int
	needsAddress bool
	render       func(e *Engine, pos position) []fragment
}

var fields = map[string]field{
	"empty":       {defaultWidth: 1, render: renderEmpty},
	"label":       {defaultWidth: -22, needsAddress: true, render: renderLabel},
	"code":        {defaultWidth: 37, needsAddress: true, render: renderCode},
	"org":         {defaultWidth: 37, needsAddress: true, render: renderOrg},
	"map":         {defaultWidth: 37, render: renderMap},
	"incsrc":      {defaultWidth: 1, render: renderIncsrc},
	"bankcross":   {defaultWidth: 1, render: renderBankCross},
	"ia":          {defaultWidth: 6, needsAddress: true, render: renderIntermediateAddress},
	"pc":          {defaultWidth: 6, needsAddress: true, render: renderProgramCounter},
	"offset":      {defaultWidth: -6, needsAddress: true, render: renderOffset},
	"bytes":       {defaultWidth: 8, needsAddress: true, render: renderBytes},
	"comment":     {defaultWidth: 1, needsAddress: true, render: renderComment},
	"b":           {defaultWidth: 2, needsAddress: true, render: renderDataBank},
	"d":           {defaultWidth: 4, needsAddress: true, render: renderDirectPage},
	"m":           {defaultWidth: 1, needsAddress: true, render: renderMFlag},
	"x":           {defaultWidth: 1, needsAddress: true, render: renderXFlag},
	"labelassign": {defaultWidth: 1, needsAddress: true, render: renderLabelAssign},
}

func text(s string) []fragment {
	if s == "" {
		return nil
	}
	return []fragment{{kind: textFragment, text: s}}
}

func renderEmpty(*Engine, position) []fragment {
	return nil
}

func renderLabel(e *Engine, pos position) []fragment {
	name := e.src.Labels().Name(pos.address)
	if name == "" {
		return nil
	}
	e.visitor.OnLabelVisited(pos.address)
	if datasource.IsPlusMinusLabel(name) {
		return text(name)
	}
	return text(name + ":")
}

func renderCode(e *Engine, pos position) []fragment {
	flag := e.src.Flag(pos.offset)
	if flag == datasource.Opcode {
		ins := datasource.FormatInstruction(e.src, pos.offset)
		e.visitor.OnInstructionVisited(pos.offset, ins)
		return text(ins.Text)
	}

	length := datasource.LineByteLength(e.src, pos.offset, e.settings.DataPerLine)
	switch flag {
	case datasource.Data16:
		return text(e.dataDirective("dw", pos.offset, length, 2))
	case datasource.Data24:
		return text(e.dataDirective("dl", pos.offset, length, 3))
	case datasource.Data32:
		return text(e.dataDirective("dd", pos.offset, length, 4))
	case datasource.Pointer16, datasource.Pointer24, datasource.Pointer32:
		return text(e.pointerDirective(flag, pos.offset))
	case datasource.Text:
		return text(e.textDirective(pos.offset, length))
	default:
		return text(e.dataDirective("db", pos.offset, length, 1))
	}
}

func renderOrg(_ *Engine, pos position) []fragment {
	return text(fmt.Sprintf("ORG $%06X", pos.address))
}

func renderMap(e *Engine, _ position) []fragment {
	return text(e.src.MapMode().String())
}

func renderIncsrc(_ *Engine, pos position) []fragment {
	return text(fmt.Sprintf("incsrc \"%s\"", pos.text))
}

func renderBankCross(*Engine, position) []fragment {
	return text("check bankcross off")
}

func renderIntermediateAddress(e *Engine, pos position) []fragment {
	address, ok := datasource.ReferencedAddress(e.src, pos.offset)
	if !ok {
		return nil
	}
	return text(fmt.Sprintf("%06X", address))
}

func renderProgramCounter(_ *Engine, pos position) []fragment {
	return text(fmt.Sprintf("%06X", pos.address))
}

func renderOffset(_ *Engine, pos position) []fragment {
	if pos.offset < 0 {
		return nil
	}
	return text(fmt.Sprintf("%06X", pos.offset))
}

func renderBytes(e *Engine, pos position) []fragment {
	if e.src.Flag(pos.offset) != datasource.Opcode {
		return nil
	}
	length := datasource.InstructionLength(e.src, pos.offset)
	var sb strings.Builder
	for i := range length {
		b, ok := e.src.RomByte(pos.offset + i)
		if !ok {
			break
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return text(sb.String())
}

func renderComment(e *Engine, pos position) []fragment {
	comment := e.src.Comment(pos.address)
	if comment == "" {
		return nil
	}
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	fragments := make([]fragment, 0, len(lines))
	for _, line := range lines {
		fragments = append(fragments, fragment{kind: commentFragment, text: line})
	}
	return fragments
}

func renderDataBank(e *Engine, pos position) []fragment {
	return text(fmt.Sprintf("%02X", e.src.DataBank(pos.offset)))
}

func renderDirectPage(e *Engine, pos position) []fragment {
	return text(fmt.Sprintf("%04X", e.src.DirectPage(pos.offset)))
}

func renderMFlag(e *Engine, pos position) []fragment {
	return text(widthFlag(e.src.MFlag(pos.offset), pos.width, "M", "m"))
}

func renderXFlag(e *Engine, pos position) []fragment {
	return text(widthFlag(e.src.XFlag(pos.offset), pos.width, "X", "x"))
}

// widthFlag renders a register width flag as letter for single character
// columns and as bit count otherwise.
func widthFlag(is8Bit bool, width int, set, unset string) string {
	if width == 1 || width == -1 {
		if is8Bit {
			return set
		}
		return unset
	}
	if is8Bit {
		return "08"
	}
	return "16"
}

func renderLabelAssign(e *Engine, pos position) []fragment {
	label, ok := e.src.Labels().Effective(pos.address)
	if !ok {
		return nil
	}

	var comment string
	if e.settings.PrintLabelSpecificComments && label.Comment != "" {
		comment = " ; !^ " + strings.Join(strings.Fields(label.Comment), " ") + " ^!"
	}

	names := label.Names()
	fragments := make([]fragment, 0, len(names))
	for _, name := range names {
		fragments = append(fragments, fragment{
			kind: labelAssignFragment,
			text: fmt.Sprintf("%s = $%06X%s", name, pos.address, comment),
		})
	}
	return fragments
}

func (e *Engine) dataDirective(directive string, offset, length, size int) string {
	if length%size != 0 {
		directive, size = "db", 1
	}
	values := make([]string, 0, length/size)
	for i := 0; i < length; i += size {
		value, ok := datasource.ReadValue(e.src, offset+i, size)
		if !ok {
			break
		}
		values = append(values, m65816.HexOperand(value, size))
	}
	return directive + " " + strings.Join(values, ",")
}

func (e *Engine) pointerDirective(flag datasource.Flag, offset int) string {
	address, ok := datasource.PointerAddress(e.src, offset)
	if !ok {
		step, _ := flag.Step(1)
		return e.dataDirective("db", offset, min(step, e.src.RomSize()-offset), 1)
	}

	switch flag {
	case datasource.Pointer16:
		if name := datasource.LabelAt(e.src, address, false); name != "" {
			return "dw " + name
		}
		return "dw " + m65816.HexOperand(address&0xFFFF, 2)

	case datasource.Pointer24:
		if name := datasource.LabelAt(e.src, address, true); name != "" {
			return "dl " + name
		}
		return "dl " + m65816.HexOperand(address, 3)

	default:
		high, _ := e.src.RomByte(offset + 3)
		if name := datasource.LabelAt(e.src, address, true); name != "" {
			return fmt.Sprintf("dl %s : db %s", name, m65816.HexOperand(int(high), 1))
		}
		value, _ := datasource.ReadValue(e.src, offset, 4)
		return "dd " + m65816.HexOperand(value, 4)
	}
}

// textDirective renders text as db directive, printable characters are
// quoted and everything else is written as hex value.
func (e *Engine) textDirective(offset, length int) string {
	var values []string
	var quoted strings.Builder

	flush := func() {
		if quoted.Len() > 0 {
			values = append(values, `"`+quoted.String()+`"`)
			quoted.Reset()
		}
	}

	for i := range length {
		b, ok := e.src.RomByte(offset + i)
		if !ok {
			break
		}
		if b >= 0x20 && b <= 0x7E && b != '"' && b != '!' {
			quoted.WriteByte(b)
			continue
		}
		flush()
		values = append(values, m65816.HexOperand(int(b), 1))
	}
	flush()
	return "db " + strings.Join(values, ",")
}
