// Package detector handles the map mode detection of SNES ROMs.
package detector

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/snes"
)

// internal ROM header field offsets, relative to the header start.
const (
	headerTitle              = 0x00
	headerTitleLength        = 21
	headerMapMode            = 0x15
	headerROMType            = 0x16
	headerChecksumComplement = 0x1C
	headerChecksum           = 0x1E
	headerResetVector        = 0x3C
	headerLength             = 0x40

	fastROMBit = 0x10
)

// candidate is a possible location of the internal ROM header.
type candidate struct {
	offset int
	modes  []snes.MapMode // map modes that use this header location
}

var candidates = []candidate{
	{offset: 0x7FC0, modes: []snes.MapMode{snes.LoROM, snes.ExLoROM, snes.SA1ROM, snes.SuperFX}},
	{offset: 0xFFC0, modes: []snes.MapMode{snes.HiROM}},
	{offset: 0x40FFC0, modes: []snes.MapMode{snes.ExHiROM}},
}

// Header contains the decoded fields of the internal ROM header.
type Header struct {
	Offset  int // ROM offset of the header
	Title   string
	Mode    snes.MapMode
	FastROM bool
	Score   int
}

// Detector handles map mode detection from the internal ROM header.
type Detector struct {
	logger *log.Logger
}

// New creates a new map mode detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the map mode of the ROM. An explicitly set map mode
// option takes precedence over the header, the FastROM bit is always
// taken from the header if one is found.
func (d *Detector) Detect(opts options.Program, rom []byte) (Header, error) {
	header, found := d.detectFromHeader(rom)

	if opts.MapMode != "" {
		mode, err := snes.ParseMapMode(opts.MapMode)
		if err != nil {
			return Header{}, fmt.Errorf("parsing map mode option: %w", err)
		}
		header.Mode = mode
		return header, nil
	}

	if !found {
		d.logger.Warn("No valid internal ROM header found, assuming LoROM")
		return Header{Mode: snes.LoROM}, nil
	}

	d.logger.Debug("Auto-detected map mode",
		log.Stringer("mode", header.Mode),
		log.Hex("header", header.Offset),
		log.String("title", header.Title),
		log.Int("score", header.Score))
	return header, nil
}

// detectFromHeader scores all header locations and returns the best one.
// Equal scores prefer the earlier candidate.
func (d *Detector) detectFromHeader(rom []byte) (Header, bool) {
	var best Header
	found := false

	for _, c := range candidates {
		header, ok := readHeader(rom, c)
		if !ok || header.Score <= 0 {
			continue
		}
		if !found || header.Score > best.Score {
			best = header
			found = true
		}
	}
	return best, found
}

// readHeader decodes and scores the header at the candidate location.
func readHeader(rom []byte, c candidate) (Header, bool) {
	if c.offset+headerLength > len(rom) {
		return Header{}, false
	}
	data := rom[c.offset : c.offset+headerLength]

	mapByte := data[headerMapMode]
	header := Header{
		Offset:  c.offset,
		Title:   strings.TrimRight(string(data[headerTitle:headerTitle+headerTitleLength]), " \x00"),
		FastROM: mapByte&fastROMBit != 0,
	}

	mode, ok := decodeMapMode(mapByte, data[headerROMType])
	if ok {
		for _, expected := range c.modes {
			if mode == expected {
				header.Mode = mode
				header.Score += 2
				break
			}
		}
	}
	if header.Score == 0 {
		header.Mode = c.modes[0]
	}

	complement := int(data[headerChecksumComplement]) | int(data[headerChecksumComplement+1])<<8
	checksum := int(data[headerChecksum]) | int(data[headerChecksum+1])<<8
	if checksum^complement == 0xFFFF {
		header.Score += 4
	}

	if printableTitle(data[headerTitle : headerTitle+headerTitleLength]) {
		header.Score++
	}

	reset := int(data[headerResetVector]) | int(data[headerResetVector+1])<<8
	if reset >= 0x8000 {
		header.Score++
	}
	return header, true
}

// decodeMapMode decodes the map mode byte of the header. The ROM type byte
// distinguishes Super FX cartridges that use the LoROM map byte.
func decodeMapMode(mapByte, romType byte) (snes.MapMode, bool) {
	switch mapByte &^ fastROMBit {
	case 0x20:
		if romType >= 0x13 && romType <= 0x1A {
			return snes.SuperFX, true
		}
		return snes.LoROM, true
	case 0x21:
		return snes.HiROM, true
	case 0x22:
		return snes.ExLoROM, true
	case 0x23:
		return snes.SA1ROM, true
	case 0x25:
		return snes.ExHiROM, true
	default:
		return 0, false
	}
}

// printableTitle returns whether the title contains only ASCII characters
// and padding and is not entirely empty.
func printableTitle(title []byte) bool {
	empty := true
	for _, b := range title {
		switch {
		case b == 0 || b == ' ':
		case b < 0x20 || b > 0x7E:
			return false
		default:
			empty = false
		}
	}
	return !empty
}
