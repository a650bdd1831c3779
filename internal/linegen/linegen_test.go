package linegen

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/project"
	"github.com/retroenv/snesdisasm/internal/snes"
)

type recordingVisitor struct {
	labels       []int
	instructions []string
}

func (v *recordingVisitor) OnLabelVisited(address int) {
	v.labels = append(v.labels, address)
}

func (v *recordingVisitor) OnInstructionVisited(_ int, ins datasource.Instruction) {
	v.instructions = append(v.instructions, ins.Text)
}

func newProject(t *testing.T, rom []byte) *project.Project {
	t.Helper()
	data := make([]byte, 0x10000)
	copy(data, rom)
	return project.New(data, snes.NewMapper(snes.LoROM, len(data), false))
}

func newEngine(t *testing.T, p *project.Project, format string) (*Engine, *recordingVisitor) {
	t.Helper()
	visitor := &recordingVisitor{}
	e, err := New(p, visitor, Settings{Format: format, DataPerLine: 8})
	assert.NoError(t, err)
	return e, visitor
}

func TestParse(t *testing.T) {
	segments, err := Parse("%label:-22% %code%;100%%")
	assert.NoError(t, err)
	assert.Equal(t, []Segment{
		{Field: "label", Width: -22, HasWidth: true},
		{Literal: " "},
		{Field: "code"},
		{Literal: ";100%"},
	}, segments)

	_, err = Parse("%label")
	assert.ErrorContains(t, err, "unterminated")
	_, err = Parse("%label:abc%")
	assert.ErrorContains(t, err, "invalid width")
	_, err = Parse("%:5%")
	assert.ErrorContains(t, err, "missing field name")
	_, err = Parse("")
	assert.Error(t, err)
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab  ", pad("ab", 4))
	assert.Equal(t, "ab  ", pad("  ab", -4))
	assert.Equal(t, "abcdef", pad("abcdef", 3))
	assert.Equal(t, "  ab", pad("  ab", 3))
}

func TestNewUnknownField(t *testing.T) {
	_, err := New(newProject(t, nil), &recordingVisitor{}, Settings{Format: "%unknown%"})
	assert.ErrorContains(t, err, "unsupported line format field 'unknown'")
}

func TestLineInstructionWithLabel(t *testing.T) {
	p := newProject(t, []byte{0x20, 0x20, 0x80}) // JSR $8020
	assert.NoError(t, p.SetFlag(0, 0, datasource.Opcode))
	assert.NoError(t, p.SetFlag(1, 2, datasource.Operand))
	assert.NoError(t, p.SetFlag(0x20, 0x20, datasource.Opcode))
	p.Labels().SetTemporary(0x008020, labels.TempLabel{Name: "CODE_FN_008020", Kind: labels.Call})

	e, visitor := newEngine(t, p, DefaultFormat)

	lines := e.Line(0)
	want := strings.Repeat(" ", 23) + pad("JSR.W CODE_FN_008020", 37) + ";008000|202080  |008020;"
	assert.Equal(t, []string{want}, lines)
	assert.Equal(t, []string{"JSR.W CODE_FN_008020"}, visitor.instructions)

	lines = e.Line(0x20)
	assert.True(t, strings.HasPrefix(lines[0], "CODE_FN_008020:        BRK #$00"))
	assert.Equal(t, []int{0x008020}, visitor.labels)
}

func TestLinePlusMinusLabelHasNoColon(t *testing.T) {
	p := newProject(t, nil)
	p.Labels().SetTemporary(0x008000, labels.TempLabel{Name: "--", Kind: labels.PlusMinus})

	e, _ := newEngine(t, p, "%label:-4%|")
	assert.Equal(t, []string{"--  |"}, e.Line(0))
}

func TestLineMultiLineComment(t *testing.T) {
	p := newProject(t, []byte{0xEA})
	assert.NoError(t, p.SetFlag(0, 0, datasource.Opcode))
	p.SetComment(0x008000, "first\nsecond")

	e, _ := newEngine(t, p, "%code:-8%; %comment%")
	assert.Equal(t, []string{
		"NOP     ; first",
		"        ; second",
	}, e.Line(0))
}

//nolint:funlen // test functions can be long
func TestLineData(t *testing.T) {
	tests := []struct {
		name  string
		rom   []byte
		flag  datasource.Flag
		setup func(p *project.Project)
		want  string
	}{
		{
			name: "bytes",
			rom:  []byte{1, 2, 3, 4, 5, 6, 7, 8, 9},
			flag: datasource.Data8,
			want: "db $01,$02,$03,$04,$05,$06,$07,$08",
		},
		{
			name: "words",
			rom:  []byte{0x34, 0x12, 0x78, 0x56},
			flag: datasource.Data16,
			want: "dw $1234,$5678",
		},
		{
			name: "long values",
			rom:  []byte{0x56, 0x34, 0x12},
			flag: datasource.Data24,
			want: "dl $123456",
		},
		{
			name: "double words",
			rom:  []byte{0x78, 0x56, 0x34, 0x12},
			flag: datasource.Data32,
			want: "dd $12345678",
		},
		{
			name:  "pointer with label",
			rom:   []byte{0x00, 0x90},
			flag:  datasource.Pointer16,
			setup: func(p *project.Project) { p.Labels().Set(0x009000, labels.Label{Name: "Table"}) },
			want:  "dw Table",
		},
		{
			name: "pointer without label",
			rom:  []byte{0x00, 0x90},
			flag: datasource.Pointer16,
			want: "dw $9000",
		},
		{
			name:  "long pointer with label",
			rom:   []byte{0x00, 0x90, 0x00},
			flag:  datasource.Pointer24,
			setup: func(p *project.Project) { p.Labels().Set(0x009000, labels.Label{Name: "Table"}) },
			want:  "dl Table",
		},
		{
			name:  "long pointer in mirror form",
			rom:   []byte{0x00, 0x90, 0x80},
			flag:  datasource.Pointer24,
			setup: func(p *project.Project) { p.Labels().Set(0x009000, labels.Label{Name: "Table"}) },
			want:  "dl $809000",
		},
		{
			name:  "double word pointer with label",
			rom:   []byte{0x00, 0x90, 0x00, 0x05},
			flag:  datasource.Pointer32,
			setup: func(p *project.Project) { p.Labels().Set(0x009000, labels.Label{Name: "Table"}) },
			want:  "dl Table : db $05",
		},
		{
			name: "text",
			rom:  []byte("Hi \"!\"\x00"),
			flag: datasource.Text,
			want: `db "Hi ",$22,$21,$22,$00`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProject(t, tt.rom)
			assert.NoError(t, p.SetFlag(0, len(tt.rom)-1, tt.flag))
			if tt.setup != nil {
				tt.setup(p)
			}
			e, _ := newEngine(t, p, "%code%")
			assert.Equal(t, []string{tt.want}, e.Line(0))
		})
	}
}

func TestLineRegisterFields(t *testing.T) {
	p := newProject(t, []byte{0xEA})
	assert.NoError(t, p.SetFlag(0, 0, datasource.Opcode))
	assert.NoError(t, p.SetWidths(0, 0, false, true))
	assert.NoError(t, p.SetRegisters(0, 0, 0x7E, 0x0100))

	e, _ := newEngine(t, p, "%m%%x%|%m:2%|%b%|%d%|%offset%")
	assert.Equal(t, []string{"mX|16|7E|0100|000000"}, e.Line(0))
}

func TestLineNeverEmpty(t *testing.T) {
	e, _ := newEngine(t, newProject(t, nil), "%empty%  ")
	assert.Equal(t, []string{" "}, e.Line(0))
}

func TestSpecial(t *testing.T) {
	p := newProject(t, nil)
	e, _ := newEngine(t, p, "%label:-10% %code:37%;%pc%")

	lines, err := e.Special("map", "")
	assert.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat(" ", 11) + "lorom"}, lines)

	lines, err = e.Special("incsrc", "bank_00.asm")
	assert.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat(" ", 11) + `incsrc "bank_00.asm"`}, lines)

	lines, err = e.SpecialAt("org", 0x018000)
	assert.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat(" ", 11) + "ORG $018000"}, lines)

	_, err = e.Special("org", "")
	assert.ErrorContains(t, err, "requires an address")
	_, err = e.Special("bogus", "")
	assert.ErrorContains(t, err, "unsupported special field")
}

func TestSpecialLabelAssign(t *testing.T) {
	p := newProject(t, nil)
	p.Labels().Set(0x7E0010, labels.Label{
		Name:    "PlayerX",
		Comment: "player\nposition",
		Aliases: []string{"PosX"},
	})

	visitor := &recordingVisitor{}
	e, err := New(p, visitor, Settings{Format: "%code%", PrintLabelSpecificComments: true})
	assert.NoError(t, err)

	lines, err := e.SpecialAt("labelassign", 0x7E0010)
	assert.NoError(t, err)
	assert.Equal(t, []string{
		"PlayerX = $7E0010 ; !^ player position ^!",
		"PosX = $7E0010 ; !^ player position ^!",
	}, lines)
	assert.Empty(t, visitor.labels)
}
