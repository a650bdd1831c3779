package asmgen

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/output"
)

// TraversalState is the output position of the instruction emitter.
type TraversalState struct {
	Bank   int    // active bank, -1 before the first bank
	Region string // active separate-file region, empty if none
}

// StructuralError is an inconsistency of the project that makes the output
// unusable, it aborts the run.
type StructuralError struct {
	Offset int
	Msg    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("offset 0x%X: %s", e.Offset, e.Msg)
}

// emitter walks the ROM once and writes one line group per line start.
type emitter struct {
	g *Generator

	visited      set.Set[int]
	visitedBanks []int
	consumed     set.Set[string]
}

func newEmitter(g *Generator) *emitter {
	return &emitter{
		g:        g,
		visited:  set.New[int](),
		consumed: set.New[string](),
	}
}

// run traverses all offsets of the ROM. Every offset is covered by exactly
// one line start.
func (e *emitter) run() error {
	state := TraversalState{Bank: -1}
	romSize := e.g.src.RomSize()

	for offset := 0; offset < romSize; {
		next, length, err := e.step(state, offset)
		if err != nil {
			return err
		}
		state = next
		offset += length
	}

	e.g.visitedBanks = e.visitedBanks
	return nil
}

// step emits the lines of the line start at the offset and returns the new
// state and the number of covered bytes.
func (e *emitter) step(state TraversalState, offset int) (TraversalState, int, error) {
	var err error
	if state.Bank >= 0 {
		if state, err = e.updateRegion(state, offset); err != nil {
			return state, 0, err
		}
	}
	if state, err = e.switchBank(state, offset); err != nil {
		return state, 0, err
	}
	if state, err = e.updateRegion(state, offset); err != nil {
		return state, 0, err
	}

	if err := e.writeLineGroup(offset); err != nil {
		return state, 0, err
	}
	if e.g.writeErr != nil {
		return state, 0, e.g.writeErr
	}

	return state, datasource.LineByteLength(e.g.src, offset, e.g.opts.DataPerLine), nil
}

func (e *emitter) writeLineGroup(offset int) error {
	g := e.g
	if e.startsParagraph(offset) {
		if err := g.writeBlank(); err != nil {
			return err
		}
	}

	if err := g.writeLines(g.lines.Line(offset)); err != nil {
		return err
	}
	g.checker.Check(offset)

	if g.src.InOutPoint(offset).Has(datasource.EndPoint) {
		return g.writeBlank()
	}
	return nil
}

// startsParagraph returns whether the offset is a label or reference target
// that does not continue a pointer table.
func (e *emitter) startsParagraph(offset int) bool {
	src := e.g.src
	flag := src.Flag(offset)
	if flag.IsPointer() && offset > 0 && src.Flag(offset-1) == flag {
		return false
	}
	points := src.InOutPoint(offset)
	if points.Has(datasource.InPoint) || points.Has(datasource.ReadPoint) {
		return true
	}
	return src.Labels().Has(src.ToNative(offset))
}

// switchBank activates the stream of the bank of the offset. The first
// visit of a bank starts with an org directive.
func (e *emitter) switchBank(state TraversalState, offset int) (TraversalState, error) {
	g := e.g
	bank := datasource.Bank(g.src, offset)
	if bank == state.Bank {
		return state, nil
	}
	if state.Region != "" {
		return state, &StructuralError{
			Offset: offset,
			Msg:    fmt.Sprintf("region %q crosses the bank boundary to bank $%02X", state.Region, bank),
		}
	}

	if err := g.sink.SetBank(bank); err != nil {
		return state, fmt.Errorf("switching to bank $%02X: %w", bank, err)
	}

	address := g.src.ToNative(offset)
	if !e.visited.Contains(bank) {
		e.visited.Add(bank)
		e.visitedBanks = append(e.visitedBanks, bank)
		g.logger.Debug("Starting bank", log.Hex("bank", bank), log.Hex("offset", offset))

		if err := g.writeBlank(); err != nil {
			return state, err
		}
		lines, err := g.lines.SpecialAt("org", address)
		if err != nil {
			return state, fmt.Errorf("rendering org line: %w", err)
		}
		if err := g.writeLines(lines); err != nil {
			return state, err
		}
		if err := g.writeBlank(); err != nil {
			return state, err
		}
	}

	if address&0xFFFF != e.bankStart() {
		g.reportError(offset, "An instruction crossed a bank boundary.")
	}

	state.Bank = bank
	return state, nil
}

// bankStart returns the address of the first byte of a bank inside the
// bank, the lower half of a bank is not mapped for 32 KiB banks.
func (e *emitter) bankStart() int {
	if e.g.src.BankSize() == 0x8000 {
		return 0x8000
	}
	return 0
}

// updateRegion leaves and enters separate-file regions for the offset.
func (e *emitter) updateRegion(state TraversalState, offset int) (TraversalState, error) {
	g := e.g
	if len(g.regions) == 0 {
		return state, nil
	}

	address := g.src.ToNative(offset)
	region, err := e.regionAt(offset, address)
	if err != nil {
		return state, err
	}
	if region == state.Region {
		return state, nil
	}

	if state.Region != "" {
		if err := g.sink.SetBank(state.Bank); err != nil {
			return state, fmt.Errorf("leaving region %s: %w", state.Region, err)
		}
		state.Region = ""
	}
	if region == "" || datasource.Bank(g.src, offset) != state.Bank {
		return state, nil
	}

	if e.consumed.Contains(region) {
		return state, &StructuralError{
			Offset: offset,
			Msg:    fmt.Sprintf("region %q was already exported", region),
		}
	}
	e.consumed.Add(region)
	g.logger.Debug("Exporting region", log.String("region", region), log.Hex("address", address))

	stream := output.StreamName(region)
	if err := g.writeSpecial("incsrc", stream); err != nil {
		return state, err
	}
	if err := g.sink.SwitchStream(stream); err != nil {
		return state, fmt.Errorf("entering region %s: %w", region, err)
	}
	if err := g.writeLines([]string{"; region " + region}); err != nil {
		return state, err
	}
	if err := g.writeBlank(); err != nil {
		return state, err
	}

	state.Region = region
	return state, nil
}

// regionAt returns the name of the separate-file region that covers the
// address, an empty string if none does.
func (e *emitter) regionAt(offset, address int) (string, error) {
	var names []string
	for _, region := range e.g.regions {
		if region.SeparateFile && region.Contains(address) {
			names = append(names, region.Name)
		}
	}

	switch len(names) {
	case 0:
		return "", nil
	case 1:
		return names[0], nil
	default:
		return "", &StructuralError{
			Offset: offset,
			Msg:    fmt.Sprintf("multiple separate-file regions apply at $%06X: %s", address, strings.Join(names, ", ")),
		}
	}
}
