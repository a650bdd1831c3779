// Package snes provides SNES cartridge address space helpers.
package snes

import (
	"fmt"
	"strings"
)

// MapMode defines how ROM offsets are mapped into the CPU address space.
type MapMode uint8

const (
	LoROM MapMode = iota
	HiROM
	ExLoROM
	ExHiROM
	SA1ROM
	ExSA1ROM
	SuperFX
)

var mapModeNames = map[MapMode]string{
	LoROM:    "lorom",
	HiROM:    "hirom",
	ExLoROM:  "exlorom",
	ExHiROM:  "exhirom",
	SA1ROM:   "sa1rom",
	ExSA1ROM: "exsa1rom",
	SuperFX:  "sfxrom",
}

// String returns the name of the map mode as used by the asar assembler.
func (m MapMode) String() string {
	name, ok := mapModeNames[m]
	if !ok {
		return fmt.Sprintf("mapmode(%d)", uint8(m))
	}
	return name
}

// ParseMapMode parses a map mode name, accepting the asar names.
func ParseMapMode(s string) (MapMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range mapModeNames {
		if name == s {
			return mode, nil
		}
	}
	switch s {
	case "superfx", "sfx":
		return SuperFX, nil
	case "sa1":
		return SA1ROM, nil
	}
	return 0, fmt.Errorf("unsupported map mode '%s'", s)
}

// BankSize returns the number of ROM bytes that one bank of the map mode holds.
func (m MapMode) BankSize() int {
	switch m {
	case HiROM, ExHiROM:
		return 0x10000
	default:
		return 0x8000
	}
}
