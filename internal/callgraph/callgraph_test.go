package callgraph

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snesdisasm/internal/labels"
	"github.com/retroenv/snesdisasm/internal/project"
	"github.com/retroenv/snesdisasm/internal/snes"
	"github.com/zboralski/lattice"
)

func TestBuild(t *testing.T) {
	rom := make([]byte, 0x10000)
	copy(rom, []byte{
		0x20, 0x20, 0x80, // JSR Sub
		0x22, 0x00, 0x90, 0x00, // JSL $009000
		0x20, 0x20, 0x80, // JSR Sub
		0x60, // RTS
	})
	rom[0x20] = 0x60 // RTS

	p := project.New(rom, snes.NewMapper(snes.LoROM, len(rom), false))
	assert.NoError(t, p.MarkCode(0, 10))
	assert.NoError(t, p.MarkCode(0x20, 0x20))
	p.Labels().Set(0x008000, labels.Label{Name: "Main"})
	p.Labels().Set(0x008020, labels.Label{Name: "Sub"})

	g := Build(p, 8)

	assert.Equal(t, []string{"Main", "Sub", "$009000"}, g.Nodes)
	assert.Len(t, g.Edges, 2)
	assert.Equal(t, lattice.Edge{Caller: "Main", Callee: "Sub"}, g.Edges[0])
	assert.Equal(t, lattice.Edge{Caller: "Main", Callee: "$009000"}, g.Edges[1])

	dot := DOT(g, "calls")
	assert.Contains(t, dot, "Main")
	assert.Contains(t, dot, "Sub")
}

func TestBuildWithoutLabels(t *testing.T) {
	rom := make([]byte, 0x10000)
	copy(rom, []byte{0x20, 0x20, 0x80}) // JSR $8020

	p := project.New(rom, snes.NewMapper(snes.LoROM, len(rom), false))
	assert.NoError(t, p.MarkCode(0, 2))

	g := Build(p, 8)
	assert.Equal(t, []string{"$008000", "$008020"}, g.Nodes)
}
