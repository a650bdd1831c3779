package snes

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestMapperToNative(t *testing.T) {
	tests := []struct {
		name    string
		mode    MapMode
		romSize int
		fastROM bool
		offset  int
		want    int
	}{
		{"lorom first byte", LoROM, 0x100000, false, 0x0000, 0x008000},
		{"lorom second bank", LoROM, 0x100000, false, 0x8000, 0x018000},
		{"lorom fast", LoROM, 0x100000, true, 0x8123, 0x818123},
		{"hirom", HiROM, 0x100000, false, 0x12345, 0xC12345},
		{"exlorom lower half", ExLoROM, 0x600000, false, 0x0000, 0x808000},
		{"exlorom upper half", ExLoROM, 0x600000, false, 0x400000, 0x008000},
		{"exhirom lower", ExHiROM, 0x600000, false, 0x1234, 0xC01234},
		{"exhirom upper", ExHiROM, 0x600000, false, 0x401234, 0x401234},
		{"sa1 lorom area", SA1ROM, 0x400000, false, 0x8000, 0x018000},
		{"sa1 hirom area", SA1ROM, 0x400000, false, 0x200000, 0xE00000},
		{"out of range", LoROM, 0x8000, false, 0x8000, -1},
		{"negative", LoROM, 0x8000, false, -1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(tt.mode, tt.romSize, tt.fastROM)
			assert.Equal(t, tt.want, m.ToNative(tt.offset))
		})
	}
}

func TestMapperToOffset(t *testing.T) {
	tests := []struct {
		name    string
		mode    MapMode
		address int
		want    int
	}{
		{"lorom bank 0", LoROM, 0x008000, 0x0000},
		{"lorom fast mirror", LoROM, 0x808000, 0x0000},
		{"lorom low half is not rom", LoROM, 0x001234, -1},
		{"lorom bank 1", LoROM, 0x01FFFF, 0xFFFF},
		{"wram", LoROM, 0x7E8000, -1},
		{"hirom c0", HiROM, 0xC01234, 0x1234},
		{"hirom 40 mirror", HiROM, 0x401234, 0x1234},
		{"hirom system bank upper half", HiROM, 0x008000, 0x8000},
		{"hirom system bank lower half", HiROM, 0x001234, -1},
		{"exhirom bank 40", ExHiROM, 0x408000, 0x408000},
		{"exlorom bank 00", ExLoROM, 0x008000, 0x400000},
		{"beyond rom size", LoROM, 0x7D8000, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMapper(tt.mode, 0x600000, false)
			if tt.mode == LoROM || tt.mode == HiROM {
				m = NewMapper(tt.mode, 0x100000, false)
			}
			assert.Equal(t, tt.want, m.ToOffset(tt.address))
		})
	}
}

func TestMapperCanonical(t *testing.T) {
	m := NewMapper(LoROM, 0x100000, false)

	t.Run("rom mirrors normalize to the same address", func(t *testing.T) {
		assert.Equal(t, 0x008000, m.Canonical(0x808000))
		assert.Equal(t, 0x008000, m.Canonical(0x008000))
		assert.Equal(t, 0x058000, m.Canonical(0x858000))
	})

	t.Run("low wram mirror", func(t *testing.T) {
		assert.Equal(t, 0x7E0010, m.Canonical(0x000010))
		assert.Equal(t, 0x7E1FFF, m.Canonical(0x801FFF))
		assert.Equal(t, 0x7E0010, m.Canonical(0x7E0010))
	})

	t.Run("io registers map to bank 0", func(t *testing.T) {
		assert.Equal(t, 0x002100, m.Canonical(0x802100))
		assert.Equal(t, 0x004200, m.Canonical(0x3F4200))
	})

	t.Run("fast rom canonical form", func(t *testing.T) {
		fast := NewMapper(LoROM, 0x100000, true)
		assert.Equal(t, 0x808000, fast.Canonical(0x008000))
	})

	t.Run("every offset round trips", func(t *testing.T) {
		for _, mode := range []MapMode{LoROM, HiROM, ExLoROM, ExHiROM, SA1ROM} {
			mapper := NewMapper(mode, 0x80000, false)
			for offset := 0; offset < 0x80000; offset += 0x1111 {
				address := mapper.ToNative(offset)
				assert.Equal(t, offset, mapper.ToOffset(address))
				assert.Equal(t, address, mapper.Canonical(address))
			}
		}
	})
}

func TestParseMapMode(t *testing.T) {
	mode, err := ParseMapMode("HiROM")
	assert.NoError(t, err)
	assert.Equal(t, HiROM, mode)

	mode, err = ParseMapMode("sfxrom")
	assert.NoError(t, err)
	assert.Equal(t, SuperFX, mode)

	_, err = ParseMapMode("unknown")
	assert.Error(t, err)

	assert.Equal(t, "exhirom", ExHiROM.String())
	assert.Equal(t, 0x10000, HiROM.BankSize())
	assert.Equal(t, 0x8000, LoROM.BankSize())
}
