package snes

const (
	fastROMBank = 0x800000
	hiROMBase   = 0xC00000
	wramBase    = 0x7E0000

	loROMBankSize = 0x8000
	extendedStart = 0x400000
	sa1LoROMLimit = 0x200000
)

// Mapper converts between ROM offsets and native 24-bit CPU addresses.
type Mapper struct {
	mode    MapMode
	romSize int
	fastROM bool
}

// NewMapper returns a mapper for a ROM of the given size. The fastROM flag
// selects the upper bank mirror (banks $80-$FF) as canonical form for
// LoROM style mappings.
func NewMapper(mode MapMode, romSize int, fastROM bool) *Mapper {
	return &Mapper{
		mode:    mode,
		romSize: romSize,
		fastROM: fastROM,
	}
}

// Mode returns the map mode.
func (m *Mapper) Mode() MapMode {
	return m.mode
}

// RomSize returns the ROM size in bytes.
func (m *Mapper) RomSize() int {
	return m.romSize
}

// BankSize returns the number of ROM bytes per bank.
func (m *Mapper) BankSize() int {
	return m.mode.BankSize()
}

// FastROM returns whether the canonical form uses the fast bank mirror.
func (m *Mapper) FastROM() bool {
	return m.fastROM
}

// Bank returns the bank number of a native address.
func Bank(address int) int {
	return (address >> 16) & 0xFF
}

// ToNative converts a ROM offset to its canonical native address.
// It returns -1 for offsets outside of the ROM.
func (m *Mapper) ToNative(offset int) int {
	if offset < 0 || offset >= m.romSize {
		return -1
	}

	switch m.mode {
	case HiROM:
		return hiROMBase | offset

	case ExHiROM:
		if offset < extendedStart {
			return hiROMBase | offset
		}
		rest := offset - extendedStart
		if rest < 0x3E0000 {
			return extendedStart | rest
		}
		return rest // banks $3E-$3F, the upper halves hold the last ROM pages

	case ExLoROM:
		if offset < extendedStart {
			return loROMAddress(offset) | fastROMBank
		}
		return loROMAddress(offset - extendedStart)

	case SA1ROM, ExSA1ROM, SuperFX:
		if offset < sa1LoROMLimit {
			return m.loROMCanonical(offset)
		}
		return hiROMBase | offset

	default:
		return m.loROMCanonical(offset)
	}
}

// ToOffset converts a native address to a ROM offset, resolving all mirrors.
// It returns -1 if the address does not map to a byte of the ROM.
func (m *Mapper) ToOffset(address int) int {
	if address < 0 {
		return -1
	}
	bank := Bank(address)
	page := address & 0xFFFF
	if bank&0xFE == 0x7E {
		return -1 // work RAM
	}

	var offset int
	switch m.mode {
	case HiROM:
		offset = hiROMOffset(bank&0x7F, page)

	case ExHiROM:
		offset = hiROMOffset(bank&0x7F, page)
		if offset >= 0 && bank < 0x80 {
			offset += extendedStart
		}

	case ExLoROM:
		offset = loROMOffset(bank&0x7F, page)
		if offset >= 0 && bank < 0x80 {
			offset += extendedStart
		}

	case SA1ROM, ExSA1ROM, SuperFX:
		switch {
		case bank >= 0xC0:
			offset = (bank-0xC0)<<16 | page
		case bank&0x7F >= 0x40:
			offset = (bank&0x3F)<<16 | page
		default:
			offset = loROMOffset(bank&0x3F, page)
		}

	default:
		offset = loROMOffset(bank&0x7F, page)
	}

	if offset < 0 || offset >= m.romSize {
		return -1
	}
	return offset
}

// Canonical normalizes a native address to the single form that is used as
// lookup key. ROM mirrors map to the address returned by ToNative, low work
// RAM and I/O mirrors of the system banks map to banks $7E and $00.
func (m *Mapper) Canonical(address int) int {
	if offset := m.ToOffset(address); offset >= 0 {
		return m.ToNative(offset)
	}

	bank := Bank(address)
	page := address & 0xFFFF
	if bank&0x7F >= 0x40 {
		return address
	}
	switch {
	case page < 0x2000:
		return wramBase | page
	case page < 0x8000:
		return page
	default:
		return address
	}
}

func (m *Mapper) loROMCanonical(offset int) int {
	address := loROMAddress(offset)
	if m.fastROM || Bank(address) >= 0x7E {
		address |= fastROMBank
	}
	return address
}

func loROMAddress(offset int) int {
	bank := offset / loROMBankSize
	return bank<<16 | 0x8000 | offset&0x7FFF
}

func loROMOffset(bank, page int) int {
	if page < 0x8000 {
		return -1
	}
	return bank*loROMBankSize + page&0x7FFF
}

func hiROMOffset(bank, page int) int {
	if bank < 0x40 && page < 0x8000 {
		return -1
	}
	return (bank&0x3F)<<16 | page
}
