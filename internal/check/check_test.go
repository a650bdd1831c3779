package check

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snesdisasm/internal/datasource"
	"github.com/retroenv/snesdisasm/internal/project"
	"github.com/retroenv/snesdisasm/internal/snes"
)

type finding struct {
	offset  int
	message string
}

//nolint:funlen // test functions can be long
func TestChecker(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		offset   int
		setup    func(t *testing.T, p *project.Project)
		expected []finding
	}{
		{
			name: "operand as line start",
			size: 0x100,
			setup: func(t *testing.T, p *project.Project) {
				t.Helper()
				assert.NoError(t, p.SetFlag(0, 0, datasource.Operand))
			},
			expected: []finding{{0, "Bytes marked as operands formatted as Data."}},
		},
		{
			name: "valid instruction",
			size: 0x100,
			setup: func(t *testing.T, p *project.Project) {
				t.Helper()
				assert.NoError(t, p.MarkCode(0, 0)) // BRK #$00
			},
		},
		{
			name: "instruction operand with wrong flag",
			size: 0x100,
			setup: func(t *testing.T, p *project.Project) {
				t.Helper()
				assert.NoError(t, p.SetFlag(0, 0, datasource.Opcode))
				assert.NoError(t, p.SetFlag(1, 1, datasource.Data8))
			},
			expected: []finding{{1, "Expected Operand, but got Data (8-bit) instead."}},
		},
		{
			name:   "instruction past the end of the rom",
			size:   0x100,
			offset: 0xFF,
			setup: func(t *testing.T, p *project.Project) {
				t.Helper()
				assert.NoError(t, p.SetFlag(0xFF, 0xFF, datasource.Opcode))
			},
			expected: []finding{{0xFF, "Opcode extends past the end of the ROM."}},
		},
		{
			name: "partial word",
			size: 0x100,
			setup: func(t *testing.T, p *project.Project) {
				t.Helper()
				assert.NoError(t, p.SetFlag(0, 2, datasource.Data16))
			},
			expected: []finding{{3, "Expected Data (16-bit), but got Unreached instead."}},
		},
		{
			name:   "pointer past the end of the rom",
			size:   0x100,
			offset: 0xFE,
			setup: func(t *testing.T, p *project.Project) {
				t.Helper()
				assert.NoError(t, p.SetFlag(0xFE, 0xFF, datasource.Pointer24))
			},
			expected: []finding{{0xFE, "Pointer (24-bit) extends past the end of the ROM."}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := project.New(make([]byte, tt.size), snes.NewMapper(snes.LoROM, tt.size, false))
			tt.setup(t, p)

			var findings []finding
			c := New(p, 8, func(offset int, message string) {
				findings = append(findings, finding{offset, message})
			})
			c.Check(tt.offset)
			assert.Equal(t, tt.expected, findings)
		})
	}
}

func TestCheckerBranchTarget(t *testing.T) {
	rom := make([]byte, 0x10000)
	copy(rom, []byte{0x80, 0x02, 0xEA, 0xEA, 0xEA}) // BRA to offset 4
	p := project.New(rom, snes.NewMapper(snes.LoROM, len(rom), false))
	assert.NoError(t, p.MarkCode(0, 1))
	assert.NoError(t, p.SetFlag(2, 4, datasource.Data8))
	p.MarkInOutPoints()

	var findings []finding
	c := New(p, 8, func(offset int, message string) {
		findings = append(findings, finding{offset, message})
	})
	c.Check(0)
	assert.Equal(t, []finding{{0, "Branch or jump instruction to a non-instruction."}}, findings)

	findings = nil
	assert.NoError(t, p.MarkCode(2, 4))
	c.Check(0)
	assert.Empty(t, findings)
}
