package asmgen

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/datasource"
)

// definesStream is the stream that contains the harvested defines.
const definesStream = "defines.asm"

// defines contains the asar defines that operand overrides refer to.
type defines struct {
	values     map[string]string
	conflicted set.Set[string]
}

func newDefines() *defines {
	return &defines{
		values:     make(map[string]string),
		conflicted: set.New[string](),
	}
}

// harvestDefine records the define that the operand override of an
// instruction uses, the value is the numeric operand that it replaces.
// A define that is used with different values is reported once.
func (g *Generator) harvestDefine(offset int, ins datasource.Instruction) {
	name := ins.OverriddenOperand
	if name == "" || name == ins.OriginalOperand {
		return
	}
	if !strings.HasPrefix(name, "!") || !strings.HasPrefix(ins.OriginalOperand, "$") {
		return
	}
	if strings.ContainsAny(name, " ,;+-|[]()") {
		return
	}

	value := normalizeValue(ins.OriginalOperand)
	existing, ok := g.defines.values[name]
	if !ok {
		g.defines.values[name] = value
		return
	}
	if existing == value || g.defines.conflicted.Contains(name) {
		return
	}

	g.defines.conflicted.Add(name)
	g.logger.Warn("Conflicting define values",
		log.String("define", name),
		log.String("value", existing),
		log.String("other", value))
	g.reportError(offset, fmt.Sprintf("Define '%s' redefined with different value, must fix or generated asm will be wrong.", name))
}

// normalizeValue removes superfluous leading zeros of a hex operand while
// keeping an even number of digits.
func normalizeValue(operand string) string {
	digits := strings.TrimLeft(strings.TrimPrefix(operand, "$"), "0")
	if len(digits)%2 != 0 {
		digits = "0" + digits
	}
	if digits == "" {
		digits = "00"
	}
	return "$" + digits
}

// writeDefines writes the defines stream, sorted by name.
func (g *Generator) writeDefines() error {
	if err := g.sink.SwitchStream(definesStream); err != nil {
		return fmt.Errorf("switching to defines stream: %w", err)
	}

	lines := []string{
		"; contains the defines used by operand overrides",
		"; auto-generated, changes will be overwritten",
	}
	for _, name := range slices.Sorted(maps.Keys(g.defines.values)) {
		lines = append(lines, fmt.Sprintf("%s = %s", name, g.defines.values[name]))
	}
	return g.writeLines(lines)
}
