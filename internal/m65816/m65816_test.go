package m65816

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestLength(t *testing.T) {
	tests := []struct {
		name   string
		opcode byte
		m8     bool
		x8     bool
		want   int
	}{
		{"implied", 0xEA, true, true, 1},
		{"accumulator", 0x0A, true, true, 1},
		{"lda immediate 8 bit", 0xA9, true, true, 2},
		{"lda immediate 16 bit", 0xA9, false, true, 3},
		{"ldx immediate follows x", 0xA2, true, false, 3},
		{"rep is always 8 bit", 0xC2, false, false, 2},
		{"direct", 0xA5, false, false, 2},
		{"absolute", 0xAD, true, true, 3},
		{"long", 0xAF, true, true, 4},
		{"jsl", 0x22, true, true, 4},
		{"branch", 0xD0, true, true, 2},
		{"brl", 0x82, true, true, 3},
		{"block move", 0x54, true, true, 3},
		{"pea", 0xF4, true, true, 3},
		{"pei", 0xD4, true, true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Length(tt.opcode, tt.m8, tt.x8))
		})
	}
}

func TestOpcodeClasses(t *testing.T) {
	branches := []byte{0x10, 0x30, 0x50, 0x70, 0x80, 0x90, 0xB0, 0xD0, 0xF0}
	for _, op := range branches {
		assert.True(t, IsBranch(op))
	}
	assert.False(t, IsBranch(0x82))
	assert.False(t, IsBranch(0x20))

	assert.True(t, IsCall(0x20))
	assert.True(t, IsCall(0x22))
	assert.False(t, IsCall(0x4C))

	assert.True(t, IsJump(0x4C))
	assert.True(t, IsJump(0x5C))
	assert.True(t, IsJump(0x82))
	assert.False(t, IsJump(0x80))

	assert.True(t, IsFlowEnd(0x60))
	assert.True(t, IsFlowEnd(0x6B))
	assert.True(t, IsFlowEnd(0x80))
	assert.False(t, IsFlowEnd(0xD0))

	assert.True(t, UsesProgramBank(0x4C))
	assert.False(t, UsesProgramBank(0xAD))
}

func TestText(t *testing.T) {
	tests := []struct {
		name    string
		opcode  byte
		size    int
		operand string
		want    string
	}{
		{"implied", 0x60, 0, "", "RTS"},
		{"accumulator", 0x0A, 0, "", "ASL A"},
		{"immediate 8", 0xA9, 1, "$12", "LDA.B #$12"},
		{"immediate 16", 0xA9, 2, "$1234", "LDA.W #$1234"},
		{"rep", 0xC2, 1, "$30", "REP #$30"},
		{"direct", 0x85, 1, "$10", "STA.B $10"},
		{"direct x", 0xB5, 1, "$10", "LDA.B $10,X"},
		{"direct indirect y", 0xB1, 1, "$10", "LDA.B ($10),Y"},
		{"direct indirect long", 0xA7, 1, "$10", "LDA.B [$10]"},
		{"stack relative indirect", 0xB3, 1, "$03", "LDA.B ($03,S),Y"},
		{"absolute label", 0x20, 2, "CODE_FN_008020", "JSR.W CODE_FN_008020"},
		{"absolute y", 0xB9, 2, "$1234", "LDA.W $1234,Y"},
		{"jump indexed indirect", 0x7C, 2, "$1234", "JMP.W ($1234,X)"},
		{"jml indirect", 0xDC, 2, "$0000", "JML.W [$0000]"},
		{"long", 0x22, 3, "$808000", "JSL.L $808000"},
		{"long x", 0xBF, 3, "$7E0000", "LDA.L $7E0000,X"},
		{"branch", 0xD0, 1, "-", "BNE -"},
		{"block move", 0x54, 2, BlockMoveOperand(0x7F, 0x7E), "MVN $7E,$7F"},
		{"pea", 0xF4, 2, "$1234", "PEA.W $1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.opcode, tt.size, tt.operand))
		})
	}
}

func TestHexOperand(t *testing.T) {
	assert.Equal(t, "$0A", HexOperand(0x0A, 1))
	assert.Equal(t, "$00FF", HexOperand(0xFF, 2))
	assert.Equal(t, "$7E0000", HexOperand(0x7E0000, 3))
}
