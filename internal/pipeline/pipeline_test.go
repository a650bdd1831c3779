package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/asmgen"
	"github.com/retroenv/snesdisasm/internal/options"
	"github.com/retroenv/snesdisasm/internal/output"
	"github.com/retroenv/snesdisasm/internal/project"
)

func TestNew(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	assert.NotNil(t, p)
	assert.NotNil(t, p.logger)
	assert.NotNil(t, p.detector)
	assert.NotNil(t, p.loader)
}

// buildROM creates a LoROM image with a JSR $8020 at the reset vector and
// a valid internal header.
func buildROM() []byte {
	rom := make([]byte, 0x8000)
	copy(rom, []byte{0x20, 0x20, 0x80}) // JSR $8020
	rom[0x20] = 0x60                    // RTS

	header := rom[0x7FC0:]
	copy(header, "PIPELINE TEST        ")
	header[0x15] = 0x20
	header[0x1C], header[0x1D] = 0xFF, 0xFF
	header[0x3C], header[0x3D] = 0x00, 0x80
	return rom
}

const projectJSON = `{
	"flags": [
		{"start": "$0000", "end": "$0002", "flag": "code"},
		{"start": "$0020", "end": "$0020", "flag": "code"}
	],
	"labels": [
		{"address": "$008000", "name": "Reset", "comment": "entry point"}
	]
}`

//nolint:funlen // test functions can be long
func TestExecuteWithROM(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	t.Run("execute pipeline to string", func(t *testing.T) {
		projectFile, err := project.ReadFile(strings.NewReader(projectJSON))
		assert.NoError(t, err)

		opts := options.Program{}
		opts.Quiet = true
		genOpts := options.NewGenerator()
		genOpts.SingleFile = true

		var milestones []asmgen.Milestone
		p.SetProgress(func(milestone asmgen.Milestone, _ string) {
			milestones = append(milestones, milestone)
		})
		t.Cleanup(func() { p.SetProgress(nil) })

		result, err := p.ExecuteWithROM(context.Background(), buildROM(), projectFile, opts, genOpts)
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.Contains(t, result.Output, "lorom")
		assert.Contains(t, result.Output, "Reset:")
		assert.Contains(t, result.Output, "JSR.W CODE_FN_008020")
		assert.NotEmpty(t, milestones)
		assert.Equal(t, asmgen.Done, milestones[len(milestones)-1])
	})

	t.Run("execute pipeline to files", func(t *testing.T) {
		dir := t.TempDir()
		opts := options.Program{}
		opts.Output = filepath.Join(dir, "game.asm")
		opts.Quiet = true
		genOpts := options.NewGenerator()

		result, err := p.ExecuteWithROM(context.Background(), buildROM(), nil, opts, genOpts)
		assert.NoError(t, err)
		assert.True(t, result.Success)
		assert.True(t, slices.Contains(result.Files, opts.Output))

		main, err := os.ReadFile(opts.Output)
		assert.NoError(t, err)
		assert.Contains(t, string(main), `incsrc "bank_00.asm"`)

		_, err = os.Stat(filepath.Join(dir, "bank_00.asm"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, output.DefaultErrorFilename))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("map mode from project file", func(t *testing.T) {
		projectFile, err := project.ReadFile(strings.NewReader(`{"mapMode": "hirom"}`))
		assert.NoError(t, err)

		opts := options.Program{}
		opts.Quiet = true
		genOpts := options.NewGenerator()
		genOpts.SingleFile = true

		result, err := p.ExecuteWithROM(context.Background(), make([]byte, 0x10000), projectFile, opts, genOpts)
		assert.NoError(t, err)
		assert.Contains(t, result.Output, "hirom")
	})

	t.Run("invalid map mode", func(t *testing.T) {
		opts := options.Program{}
		opts.MapMode = "bogus"

		_, err := p.ExecuteWithROM(context.Background(), buildROM(), nil, opts, options.NewGenerator())
		assert.ErrorContains(t, err, "detecting map mode")
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		opts := options.Program{}
		opts.Quiet = true
		_, err := p.ExecuteWithROM(ctx, buildROM(), nil, opts, options.NewGenerator())
		assert.ErrorContains(t, err, "context canceled")
	})

	t.Run("verify console output", func(t *testing.T) {
		opts := options.Program{}
		opts.Quiet = true
		opts.AssembleTest = true

		_, err := p.ExecuteWithROM(context.Background(), buildROM(), nil, opts, options.NewGenerator())
		assert.ErrorContains(t, err, "can not verify console output")
	})

	t.Run("invalid line format", func(t *testing.T) {
		opts := options.Program{}
		opts.Quiet = true
		genOpts := options.NewGenerator()
		genOpts.Format = "%nope%"

		result, err := p.ExecuteWithROM(context.Background(), buildROM(), nil, opts, genOpts)
		assert.ErrorContains(t, err, "generating assembly")
		assert.False(t, result.Success)
	})
}

func TestExecute(t *testing.T) {
	logger := log.NewTestLogger(t)
	p := New(logger)

	dir := t.TempDir()
	romFile := filepath.Join(dir, "game.sfc")
	assert.NoError(t, os.WriteFile(romFile, buildROM(), 0600))
	projectFile := filepath.Join(dir, "game.json")
	assert.NoError(t, os.WriteFile(projectFile, []byte(projectJSON), 0600))

	t.Run("execute from files", func(t *testing.T) {
		opts := options.Program{}
		opts.Input = romFile
		opts.Project = projectFile
		opts.Quiet = true
		genOpts := options.NewGenerator()
		genOpts.SingleFile = true
		genOpts.OutputToString = true

		result, err := p.Execute(context.Background(), opts, genOpts)
		assert.NoError(t, err)
		assert.Contains(t, result.Output, "Reset:")
	})

	t.Run("error on missing ROM", func(t *testing.T) {
		opts := options.Program{}
		opts.Input = filepath.Join(dir, "missing.sfc")

		_, err := p.Execute(context.Background(), opts, options.NewGenerator())
		assert.ErrorContains(t, err, "loading ROM")
	})

	t.Run("error on missing project", func(t *testing.T) {
		opts := options.Program{}
		opts.Input = romFile
		opts.Project = filepath.Join(dir, "missing.json")

		_, err := p.Execute(context.Background(), opts, options.NewGenerator())
		assert.ErrorContains(t, err, "loading project")
	})
}
