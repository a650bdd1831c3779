// Package project contains the in-memory analysis model of a ROM.
package project

import (
	"fmt"
	"slices"

	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/m65816"
	"github.com/retroenv/snesdisasm/internal/snes"
)

// offsetInfo contains the analysis data of a single ROM byte.
type offsetInfo struct {
	flag       datasource.Flag
	m16        bool // accumulator is 16 bit
	x16        bool // index registers are 16 bit
	dataBank   uint8
	directPage uint16
	point      datasource.InOutPoint
}

// Project is the analysis model of one ROM. It implements datasource.Source.
type Project struct {
	rom     []byte
	mapper  *snes.Mapper
	offsets []offsetInfo

	comments  map[int]string // keyed by canonical native address
	overrides map[int]string // keyed by offset
	labels    *labels.Store
	regions   []datasource.Region
}

// New returns a project for the ROM with every byte marked as unreached.
func New(rom []byte, mapper *snes.Mapper) *Project {
	return &Project{
		rom:       rom,
		mapper:    mapper,
		offsets:   make([]offsetInfo, len(rom)),
		comments:  make(map[int]string),
		overrides: make(map[int]string),
		labels:    labels.New(mapper.Canonical),
	}
}

func (p *Project) RomSize() int              { return len(p.rom) }
func (p *Project) BankSize() int             { return p.mapper.BankSize() }
func (p *Project) MapMode() snes.MapMode     { return p.mapper.Mode() }
func (p *Project) Mapper() *snes.Mapper      { return p.mapper }
func (p *Project) ToNative(offset int) int   { return p.mapper.ToNative(offset) }
func (p *Project) ToOffset(address int) int  { return p.mapper.ToOffset(address) }
func (p *Project) Canonical(address int) int { return p.mapper.Canonical(address) }
func (p *Project) Labels() *labels.Store     { return p.labels }

// RomByte returns the byte at the offset.
func (p *Project) RomByte(offset int) (byte, bool) {
	if offset < 0 || offset >= len(p.rom) {
		return 0, false
	}
	return p.rom[offset], true
}

// Flag returns the classification of the byte at the offset.
func (p *Project) Flag(offset int) datasource.Flag {
	if !p.valid(offset) {
		return datasource.Unreached
	}
	return p.offsets[offset].flag
}

// MFlag returns true if the accumulator is 8 bit wide at the offset.
func (p *Project) MFlag(offset int) bool {
	return !p.valid(offset) || !p.offsets[offset].m16
}

// XFlag returns true if the index registers are 8 bit wide at the offset.
func (p *Project) XFlag(offset int) bool {
	return !p.valid(offset) || !p.offsets[offset].x16
}

// DataBank returns the data bank register value at the offset.
func (p *Project) DataBank(offset int) int {
	if !p.valid(offset) {
		return 0
	}
	return int(p.offsets[offset].dataBank)
}

// DirectPage returns the direct page register value at the offset.
func (p *Project) DirectPage(offset int) int {
	if !p.valid(offset) {
		return 0
	}
	return int(p.offsets[offset].directPage)
}

// InOutPoint returns the program flow marks of the offset.
func (p *Project) InOutPoint(offset int) datasource.InOutPoint {
	if !p.valid(offset) {
		return 0
	}
	return p.offsets[offset].point
}

// Comment returns the comment at the native address.
func (p *Project) Comment(address int) string {
	return p.comments[p.mapper.Canonical(address)]
}

// OperandOverride returns the operand override of the instruction at the offset.
func (p *Project) OperandOverride(offset int) string {
	return p.overrides[offset]
}

// Regions returns the regions of the project.
func (p *Project) Regions() []datasource.Region {
	return p.regions
}

// SetFlag sets the classification of the inclusive offset range.
func (p *Project) SetFlag(start, end int, flag datasource.Flag) error {
	if err := p.checkRange(start, end); err != nil {
		return err
	}
	for offset := start; offset <= end; offset++ {
		p.offsets[offset].flag = flag
	}
	return nil
}

// SetWidths sets the register widths of the inclusive offset range.
func (p *Project) SetWidths(start, end int, m8, x8 bool) error {
	if err := p.checkRange(start, end); err != nil {
		return err
	}
	for offset := start; offset <= end; offset++ {
		p.offsets[offset].m16 = !m8
		p.offsets[offset].x16 = !x8
	}
	return nil
}

// SetRegisters sets the data bank and direct page of the inclusive offset range.
func (p *Project) SetRegisters(start, end, dataBank, directPage int) error {
	if err := p.checkRange(start, end); err != nil {
		return err
	}
	for offset := start; offset <= end; offset++ {
		p.offsets[offset].dataBank = uint8(dataBank)
		p.offsets[offset].directPage = uint16(directPage)
	}
	return nil
}

// SetInOutPoint sets the program flow marks of the offset.
func (p *Project) SetInOutPoint(offset int, point datasource.InOutPoint) {
	if p.valid(offset) {
		p.offsets[offset].point = point
	}
}

// SetComment sets the comment of the native address.
func (p *Project) SetComment(address int, comment string) {
	p.comments[p.mapper.Canonical(address)] = comment
}

// SetOperandOverride sets the operand text of the instruction at the offset.
func (p *Project) SetOperandOverride(offset int, operand string) {
	p.overrides[offset] = operand
}

// AddRegion adds a region.
func (p *Project) AddRegion(region datasource.Region) {
	p.regions = append(p.regions, region)
	slices.SortStableFunc(p.regions, func(a, b datasource.Region) int {
		return b.Priority - a.Priority
	})
}

// MarkCode marks the inclusive offset range as code. Instructions are walked
// linearly, the first byte of every instruction becomes an opcode and the
// following bytes operands. The width flags must be set before.
func (p *Project) MarkCode(start, end int) error {
	if err := p.checkRange(start, end); err != nil {
		return err
	}
	for offset := start; offset <= end; {
		length := datasource.InstructionLength(p, offset)
		p.offsets[offset].flag = datasource.Opcode
		for i := 1; i < length && offset+i < len(p.rom); i++ {
			p.offsets[offset+i].flag = datasource.Operand
		}
		offset += length
	}
	return nil
}

// MarkInOutPoints derives the program flow marks of all offsets from the
// instructions and pointers of the project.
func (p *Project) MarkInOutPoints() {
	for offset := range p.offsets {
		p.offsets[offset].point = 0
	}

	for offset := 0; offset < len(p.rom); {
		flag := p.offsets[offset].flag
		switch {
		case flag == datasource.Opcode:
			p.markInstruction(offset)
			offset += datasource.InstructionLength(p, offset)
		case flag.IsPointer():
			p.markPointer(offset)
			step, _ := flag.Step(1)
			offset += step
		default:
			offset++
		}
	}
}

func (p *Project) markInstruction(offset int) {
	opcode := p.rom[offset]
	if m65816.IsFlowEnd(opcode) {
		p.offsets[offset].point |= datasource.EndPoint
	}

	ia, ok := datasource.IntermediateAddress(p, offset)
	if !ok {
		return
	}
	target := p.mapper.ToOffset(ia)

	mode := m65816.Opcodes[opcode].Mode
	directFlow := m65816.IsBranch(opcode) || opcode == m65816.BRL ||
		(mode == m65816.Absolute || mode == m65816.Long) && (m65816.IsCall(opcode) || m65816.IsJump(opcode))
	if directFlow {
		p.offsets[offset].point |= datasource.OutPoint
		if target >= 0 {
			p.offsets[target].point |= datasource.InPoint
		}
		return
	}

	if target >= 0 && opcode != m65816.PER {
		p.offsets[target].point |= datasource.ReadPoint
	}
}

func (p *Project) markPointer(offset int) {
	address, ok := datasource.PointerAddress(p, offset)
	if !ok {
		return
	}
	target := p.mapper.ToOffset(address)
	if target < 0 {
		return
	}
	if p.offsets[target].flag == datasource.Opcode {
		p.offsets[target].point |= datasource.InPoint
	} else {
		p.offsets[target].point |= datasource.ReadPoint
	}
}

func (p *Project) valid(offset int) bool {
	return offset >= 0 && offset < len(p.offsets)
}

func (p *Project) checkRange(start, end int) error {
	if start < 0 || end >= len(p.rom) || start > end {
		return fmt.Errorf("invalid offset range $%06X-$%06X for ROM size $%X", start, end, len(p.rom))
	}
	return nil
}
