// Package linegen implements the line template engine that renders the
// output lines of the assembly generator.
package linegen

import (
	"fmt"
	"strings"

	"github.com/retroenv/snesdisasm/internal/datasource"
)

// Visitor gets notified about content that was rendered.
type Visitor interface {
	// OnLabelVisited is called when the label field rendered the label of the address.
	OnLabelVisited(address int)
	// OnInstructionVisited is called for every instruction that the code field rendered.
	OnInstructionVisited(offset int, ins datasource.Instruction)
}

// Settings controls the line rendering.
type Settings struct {
	Format                     string
	DataPerLine                int
	PrintLabelSpecificComments bool
}

type column struct {
	literal string
	name    string
	field   field
	width   int
}

// Engine renders lines for offsets of a data source.
type Engine struct {
	src      datasource.Source
	visitor  Visitor
	settings Settings
	columns  []column
}

// New returns a line engine for the format of the settings. Unknown field
// names are reported as error.
func New(src datasource.Source, visitor Visitor, settings Settings) (*Engine, error) {
	if settings.Format == "" {
		settings.Format = DefaultFormat
	}
	if settings.DataPerLine <= 0 {
		settings.DataPerLine = 8
	}

	segments, err := Parse(settings.Format)
	if err != nil {
		return nil, fmt.Errorf("parsing line format: %w", err)
	}

	e := &Engine{
		src:      src,
		visitor:  visitor,
		settings: settings,
	}

	for _, segment := range segments {
		if !segment.IsField() {
			e.columns = append(e.columns, column{literal: segment.Literal})
			continue
		}

		f, ok := fields[segment.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported line format field '%s'", segment.Field)
		}
		width := f.defaultWidth
		if segment.HasWidth {
			width = segment.Width
		}
		e.columns = append(e.columns, column{
			name:  segment.Field,
			field: f,
			width: width,
		})
	}
	return e, nil
}

// Line renders the output lines of the offset. The first line contains all
// columns, additional comment lines are aligned below the comment column.
func (e *Engine) Line(offset int) []string {
	pos := position{
		offset:  offset,
		address: e.src.ToNative(offset),
	}

	var sb strings.Builder
	var continuation []string

	for i, col := range e.columns {
		if col.name == "" {
			sb.WriteString(col.literal)
			continue
		}

		pos.width = col.width
		fragments := col.field.render(e, pos)
		var first string
		if len(fragments) > 0 {
			first = fragments[0].text
		}

		start := sb.Len()
		sb.WriteString(pad(first, col.width))

		for _, frag := range fragments[min(1, len(fragments)):] {
			if frag.kind == labelAssignFragment {
				continuation = append(continuation, frag.text)
				continue
			}
			continuation = append(continuation, e.continuationLine(i, start, frag.text))
		}
	}

	lines := make([]string, 0, 1+len(continuation))
	lines = append(lines, finishLine(sb.String()))
	for _, line := range continuation {
		lines = append(lines, finishLine(line))
	}
	return lines
}

// Special renders a synthetic line for a directive field that does not need
// an address, like map or incsrc. text is the argument of the directive.
func (e *Engine) Special(name, text string) ([]string, error) {
	f, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("unsupported special field '%s'", name)
	}
	if f.needsAddress {
		return nil, fmt.Errorf("special field '%s' requires an address", name)
	}
	return e.special(f, position{offset: -1, text: text}), nil
}

// SpecialAt renders a synthetic line for a directive field at a native
// address, like org or labelassign.
func (e *Engine) SpecialAt(name string, address int) ([]string, error) {
	f, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("unsupported special field '%s'", name)
	}
	pos := position{
		offset:  e.src.ToOffset(address),
		address: address,
	}
	return e.special(f, pos), nil
}

// special renders the directive field into the code column. All other
// columns are blank and only whitespace literals are kept, every fragment
// of the directive becomes its own line.
func (e *Engine) special(f field, pos position) []string {
	fragments := f.render(e, pos)
	if len(fragments) == 0 {
		return []string{" "}
	}

	lines := make([]string, 0, len(fragments))
	for _, frag := range fragments {
		lines = append(lines, finishLine(e.specialLine(frag.text)))
	}
	return lines
}

func (e *Engine) specialLine(directive string) string {
	var sb strings.Builder
	hasCode := false

	for _, col := range e.columns {
		switch {
		case col.name == "":
			if strings.TrimSpace(col.literal) == "" {
				sb.WriteString(col.literal)
			}
		case col.name == "code":
			sb.WriteString(pad(directive, col.width))
			hasCode = true
		default:
			sb.WriteString(strings.Repeat(" ", abs(col.width)))
		}
	}

	if !hasCode {
		return directive
	}
	return sb.String()
}

// continuationLine builds an additional comment line. It repeats the
// literal that precedes the comment column, a comment marker is added if
// that literal does not start a comment.
func (e *Engine) continuationLine(index, start int, content string) string {
	prefix := "; "
	if index > 0 && e.columns[index-1].name == "" {
		literal := e.columns[index-1].literal
		if strings.Contains(literal, ";") {
			prefix = literal
		}
	}
	indent := max(start-len(prefix), 0)
	return strings.Repeat(" ", indent) + prefix + content
}

// finishLine trims trailing blanks, an empty line is returned as a single
// blank as the output never contains zero length lines.
func finishLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if line == "" {
		return " "
	}
	return line
}

func abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
