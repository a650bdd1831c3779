package linegen

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultFormat is the default line format.
const DefaultFormat = "%label:-22% %code:37%;%pc%|%bytes%|%ia%; %comment%"

// Segment is one part of a parsed line format, either literal text or a
// named field.
type Segment struct {
	Literal  string
	Field    string
	Width    int
	HasWidth bool
}

// IsField returns whether the segment references a field.
func (s Segment) IsField() bool {
	return s.Field != ""
}

// Parse splits a line format into segments. Fields are written as %name%
// or %name:width%, %% is a literal percent sign. Field names are not
// validated here.
func Parse(format string) ([]Segment, error) {
	var segments []Segment
	var literal strings.Builder

	flushLiteral := func() {
		if literal.Len() > 0 {
			segments = append(segments, Segment{Literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			literal.WriteByte(c)
			continue
		}

		end := strings.IndexByte(format[i+1:], '%')
		if end < 0 {
			return nil, fmt.Errorf("unterminated field at position %d", i)
		}
		token := format[i+1 : i+1+end]
		i += end + 1

		if token == "" {
			literal.WriteByte('%')
			continue
		}

		segment, err := parseField(token)
		if err != nil {
			return nil, err
		}
		flushLiteral()
		segments = append(segments, segment)
	}
	flushLiteral()

	if len(segments) == 0 {
		return nil, errors.New("empty line format")
	}
	return segments, nil
}

func parseField(token string) (Segment, error) {
	name, widthText, hasWidth := strings.Cut(token, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Segment{}, fmt.Errorf("missing field name in '%%%s%%'", token)
	}

	segment := Segment{Field: name}
	if hasWidth {
		width, err := strconv.Atoi(strings.TrimSpace(widthText))
		if err != nil {
			return Segment{}, fmt.Errorf("invalid width of field '%s': %w", name, err)
		}
		if width == 0 {
			return Segment{}, fmt.Errorf("invalid width 0 of field '%s'", name)
		}
		segment.Width = width
		segment.HasWidth = true
	}
	return segment, nil
}

// pad applies a field width. A positive width pads the value with blanks on
// the right, a negative width removes leading blanks first. Values are never
// truncated.
func pad(value string, width int) string {
	if width < 0 {
		value = strings.TrimLeft(value, " ")
		width = -width
	}
	if missing := width - len(value); missing > 0 {
		return value + strings.Repeat(" ", missing)
	}
	return value
}
