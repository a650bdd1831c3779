package datasource

import (
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/snes"
)

// mockSource is a minimal LoROM data source for testing.
type mockSource struct {
	rom        []byte
	flags      map[int]Flag
	m16        bool
	directPage int
	dataBank   int
	comments   map[int]string
	overrides  map[int]string
	mapper     *snes.Mapper
	labels     *labels.Store
}

func newMockSource(size int) *mockSource {
	mapper := snes.NewMapper(snes.LoROM, size, false)
	return &mockSource{
		rom:       make([]byte, size),
		flags:     make(map[int]Flag),
		comments:  make(map[int]string),
		overrides: make(map[int]string),
		mapper:    mapper,
		labels:    labels.New(mapper.Canonical),
	}
}

func (m *mockSource) RomSize() int          { return len(m.rom) }
func (m *mockSource) BankSize() int         { return m.mapper.BankSize() }
func (m *mockSource) MapMode() snes.MapMode { return snes.LoROM }

func (m *mockSource) RomByte(offset int) (byte, bool) {
	if offset < 0 || offset >= len(m.rom) {
		return 0, false
	}
	return m.rom[offset], true
}

func (m *mockSource) Flag(offset int) Flag              { return m.flags[offset] }
func (m *mockSource) MFlag(int) bool                    { return !m.m16 }
func (m *mockSource) XFlag(int) bool                    { return true }
func (m *mockSource) DataBank(int) int                  { return m.dataBank }
func (m *mockSource) DirectPage(int) int                { return m.directPage }
func (m *mockSource) InOutPoint(int) InOutPoint         { return 0 }
func (m *mockSource) ToNative(offset int) int           { return m.mapper.ToNative(offset) }
func (m *mockSource) ToOffset(address int) int          { return m.mapper.ToOffset(address) }
func (m *mockSource) Canonical(address int) int         { return m.mapper.Canonical(address) }
func (m *mockSource) Comment(address int) string        { return m.comments[m.mapper.Canonical(address)] }
func (m *mockSource) OperandOverride(offset int) string { return m.overrides[offset] }
func (m *mockSource) Labels() *labels.Store             { return m.labels }
func (m *mockSource) Regions() []Region                 { return nil }

func (m *mockSource) setFlags(start, length int, flag Flag) {
	for i := range length {
		m.flags[start+i] = flag
	}
}
