package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/labels"
)

// File is the JSON representation of a project file. Addresses and offsets
// are strings that accept $, 0x or decimal notation.
type File struct {
	MapMode   string          `json:"mapMode,omitempty"`
	FastROM   bool            `json:"fastRom,omitempty"`
	Flags     []FlagRange     `json:"flags,omitempty"`
	Labels    []LabelEntry    `json:"labels,omitempty"`
	Comments  []CommentEntry  `json:"comments,omitempty"`
	Regions   []RegionEntry   `json:"regions,omitempty"`
	Overrides []OverrideEntry `json:"overrides,omitempty"`
}

// FlagRange classifies an inclusive offset range.
type FlagRange struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	Flag       string `json:"flag"`
	M          int    `json:"m,omitempty"` // accumulator width 8 or 16, default 8
	X          int    `json:"x,omitempty"` // index register width 8 or 16, default 8
	DataBank   string `json:"dataBank,omitempty"`
	DirectPage string `json:"directPage,omitempty"`
}

// LabelEntry is a persistent label at a native address.
type LabelEntry struct {
	Address string   `json:"address"`
	Name    string   `json:"name"`
	Comment string   `json:"comment,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
}

// CommentEntry is a comment at a native address.
type CommentEntry struct {
	Address string `json:"address"`
	Text    string `json:"text"`
}

// RegionEntry is a named native address range.
type RegionEntry struct {
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Priority     int    `json:"priority,omitempty"`
	SeparateFile bool   `json:"separateFile,omitempty"`
}

// OverrideEntry replaces the operand text of the instruction at an offset.
type OverrideEntry struct {
	Offset  string `json:"offset"`
	Operand string `json:"operand"`
}

// ReadFile decodes a project file.
func ReadFile(reader io.Reader) (*File, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var file File
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding project file: %w", err)
	}
	return &file, nil
}

// Apply transfers the content of the project file to the project and
// derives the program flow marks afterwards.
func (f *File) Apply(p *Project) error {
	for i, fr := range f.Flags {
		if err := applyFlagRange(p, fr); err != nil {
			return fmt.Errorf("applying flag range %d: %w", i, err)
		}
	}

	for _, entry := range f.Labels {
		address, err := ParseNumber(entry.Address)
		if err != nil {
			return fmt.Errorf("parsing label '%s' address: %w", entry.Name, err)
		}
		if strings.TrimSpace(entry.Name) == "" {
			return fmt.Errorf("label at $%06X has no name", address)
		}
		p.Labels().Set(address, labels.Label{
			Name:    entry.Name,
			Comment: entry.Comment,
			Aliases: entry.Aliases,
		})
	}

	for _, entry := range f.Comments {
		address, err := ParseNumber(entry.Address)
		if err != nil {
			return fmt.Errorf("parsing comment address: %w", err)
		}
		p.SetComment(address, entry.Text)
	}

	for _, entry := range f.Regions {
		region, err := entry.region()
		if err != nil {
			return fmt.Errorf("parsing region '%s': %w", entry.Name, err)
		}
		p.AddRegion(region)
	}

	for _, entry := range f.Overrides {
		offset, err := ParseNumber(entry.Offset)
		if err != nil {
			return fmt.Errorf("parsing override offset: %w", err)
		}
		p.SetOperandOverride(offset, entry.Operand)
	}

	p.MarkInOutPoints()
	return nil
}

func applyFlagRange(p *Project, fr FlagRange) error {
	start, err := ParseNumber(fr.Start)
	if err != nil {
		return fmt.Errorf("parsing start: %w", err)
	}
	end, err := ParseNumber(fr.End)
	if err != nil {
		return fmt.Errorf("parsing end: %w", err)
	}
	flag, err := datasource.ParseFlag(fr.Flag)
	if err != nil {
		return err
	}

	m8, err := registerWidth(fr.M)
	if err != nil {
		return fmt.Errorf("parsing m: %w", err)
	}
	x8, err := registerWidth(fr.X)
	if err != nil {
		return fmt.Errorf("parsing x: %w", err)
	}
	if err := p.SetWidths(start, end, m8, x8); err != nil {
		return err
	}

	dataBank, directPage := 0, 0
	if fr.DataBank != "" {
		if dataBank, err = ParseNumber(fr.DataBank); err != nil {
			return fmt.Errorf("parsing data bank: %w", err)
		}
	}
	if fr.DirectPage != "" {
		if directPage, err = ParseNumber(fr.DirectPage); err != nil {
			return fmt.Errorf("parsing direct page: %w", err)
		}
	}
	if err := p.SetRegisters(start, end, dataBank, directPage); err != nil {
		return err
	}

	if flag == datasource.Opcode {
		return p.MarkCode(start, end)
	}
	return p.SetFlag(start, end, flag)
}

// registerWidth returns true for 8 bit registers.
func registerWidth(width int) (bool, error) {
	switch width {
	case 0, 8:
		return true, nil
	case 16:
		return false, nil
	default:
		return false, fmt.Errorf("unsupported register width %d", width)
	}
}

func (r RegionEntry) region() (datasource.Region, error) {
	if r.Name == "" {
		return datasource.Region{}, errors.New("missing name")
	}
	start, err := ParseNumber(r.Start)
	if err != nil {
		return datasource.Region{}, fmt.Errorf("parsing start: %w", err)
	}
	end, err := ParseNumber(r.End)
	if err != nil {
		return datasource.Region{}, fmt.Errorf("parsing end: %w", err)
	}
	if end < start {
		return datasource.Region{}, fmt.Errorf("end $%06X is before start $%06X", end, start)
	}
	return datasource.Region{
		Name:         r.Name,
		Start:        start,
		End:          end,
		Priority:     r.Priority,
		SeparateFile: r.SeparateFile,
	}, nil
}

// ParseNumber parses a number in $hex, 0xhex or decimal notation.
func ParseNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s = s[1:]
		base = 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s = s[2:]
		base = 16
	}

	value, err := strconv.ParseInt(s, base, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid number '%s': %w", s, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("negative number '%s'", s)
	}
	return int(value), nil
}
