// Package check implements the consistency checks of the classification of
// emitted offsets.
package check

import (
	"fmt"

	"github.com/retroenv/snesdisasm/internal/datasource"
)

// Reporter receives the findings of the checker.
type Reporter func(offset int, message string)

// Checker validates the classification of emitted offsets. Findings are
// reported and never stop the generation.
type Checker struct {
	src         datasource.Source
	dataPerLine int
	report      Reporter
}

// New returns a new checker.
func New(src datasource.Source, dataPerLine int, report Reporter) *Checker {
	return &Checker{
		src:         src,
		dataPerLine: dataPerLine,
		report:      report,
	}
}

// Check runs all checks for the offset that starts an output line.
func (c *Checker) Check(offset int) {
	flag := c.src.Flag(offset)
	if flag == datasource.Operand {
		c.report(offset, "Bytes marked as operands formatted as Data.")
		return
	}

	c.checkRun(offset, flag)

	if flag == datasource.Opcode {
		c.checkBranchTarget(offset)
	}
}

// checkRun validates that all bytes covered by a multi byte element carry
// the expected flag. The first mismatch ends the check.
func (c *Checker) checkRun(offset int, flag datasource.Flag) {
	expected := flag
	var length int

	switch {
	case flag == datasource.Opcode:
		expected = datasource.Operand
		length = datasource.InstructionLength(c.src, offset)
	case flag == datasource.Data16, flag == datasource.Data24, flag == datasource.Data32, flag.IsPointer():
		length = datasource.LineByteLength(c.src, offset, c.dataPerLine)
		step, _ := flag.Step(c.dataPerLine)
		length = max(length, step) // a partial element is reported as well
	default:
		return
	}

	romSize := c.src.RomSize()
	for i := 1; i < length; i++ {
		next := offset + i
		if next >= romSize {
			c.report(offset, fmt.Sprintf("%s extends past the end of the ROM.", flag))
			return
		}
		if actual := c.src.Flag(next); actual != expected {
			c.report(next, fmt.Sprintf("Expected %s, but got %s instead.", expected, actual))
			return
		}
	}
}

// checkBranchTarget validates that a branch, jump or call points to an
// instruction.
func (c *Checker) checkBranchTarget(offset int) {
	if !c.src.InOutPoint(offset).Has(datasource.OutPoint) {
		return
	}
	address, ok := datasource.IntermediateAddress(c.src, offset)
	if !ok {
		return
	}
	target := c.src.ToOffset(address)
	if target < 0 || c.src.Flag(target) != datasource.Opcode {
		c.report(offset, "Branch or jump instruction to a non-instruction.")
	}
}
