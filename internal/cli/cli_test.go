package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/snesdisasm/internal/linegen"
	"github.com/retroenv/snesdisasm/internal/options"
)

//nolint:funlen // test functions can be long
func TestParseFlags_GeneratorOptions(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, opts options.Program, got options.Generator)
	}{
		{
			name: "default flags",
			args: []string{"prog", "game.sfc"},
			check: func(t *testing.T, opts options.Program, got options.Generator) {
				t.Helper()
				assert.Equal(t, "game.sfc", opts.Input)
				assert.Equal(t, linegen.DefaultFormat, got.Format)
				assert.Equal(t, 8, got.DataPerLine)
				assert.True(t, got.GenerateTemporaryLabels)
				assert.True(t, got.ExtraWhitespace)
				assert.False(t, got.SingleFile)
				assert.False(t, got.PlusMinusLabels)
			},
		},
		{
			name: "single file with plus minus labels",
			args: []string{"prog", "-single", "-plusminus", "game.sfc"},
			check: func(t *testing.T, _ options.Program, got options.Generator) {
				t.Helper()
				assert.True(t, got.SingleFile)
				assert.True(t, got.PlusMinusLabels)
			},
		},
		{
			name: "exports",
			args: []string{"prog", "-labels-txt", "-labels-csv", "-sym", "-callgraph", "game.sfc"},
			check: func(t *testing.T, _ options.Program, got options.Generator) {
				t.Helper()
				assert.True(t, got.AllLabelsText)
				assert.True(t, got.AllLabelsCSV)
				assert.True(t, got.BsnesSymbols)
				assert.True(t, got.CallGraph)
			},
		},
		{
			name: "format and data per line",
			args: []string{"prog", "-format", "%label%%code%", "-per-line", "16", "game.sfc"},
			check: func(t *testing.T, _ options.Program, got options.Generator) {
				t.Helper()
				assert.Equal(t, "%label%%code%", got.Format)
				assert.Equal(t, 16, got.DataPerLine)
			},
		},
		{
			name: "disable temporary labels and whitespace",
			args: []string{"prog", "-no-temp-labels", "-no-whitespace", "-label-all", "game.sfc"},
			check: func(t *testing.T, _ options.Program, got options.Generator) {
				t.Helper()
				assert.False(t, got.GenerateTemporaryLabels)
				assert.False(t, got.ExtraWhitespace)
				assert.True(t, got.LabelEverything)
			},
		},
		{
			name: "map mode is normalized",
			args: []string{"prog", "-m", "HiROM", "-p", "game.json", "game.sfc"},
			check: func(t *testing.T, opts options.Program, _ options.Generator) {
				t.Helper()
				assert.Equal(t, "hirom", opts.MapMode)
				assert.Equal(t, "game.json", opts.Project)
			},
		},
		{
			name: "input flag without positional argument",
			args: []string{"prog", "-i", "game.sfc", "-regions"},
			check: func(t *testing.T, opts options.Program, got options.Generator) {
				t.Helper()
				assert.Equal(t, "game.sfc", opts.Input)
				assert.True(t, got.Regions)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			opts, got, err := ParseFlags()
			assert.NoError(t, err)
			tt.check(t, opts, got)
		})
	}
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		usageError bool
		errMsg     string
	}{
		{
			name:       "missing ROM file",
			args:       []string{"prog"},
			usageError: true,
		},
		{
			name:       "flag after ROM file",
			args:       []string{"prog", "game.sfc", "-single"},
			usageError: true,
			errMsg:     "after the ROM file",
		},
		{
			name:   "invalid map mode",
			args:   []string{"prog", "-m", "bogus", "game.sfc"},
			errMsg: "invalid map mode",
		},
		{
			name:   "invalid data per line",
			args:   []string{"prog", "-per-line", "0", "game.sfc"},
			errMsg: "must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			t.Cleanup(func() { os.Args = oldArgs })

			os.Args = tt.args

			_, _, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usageError, errors.As(err, &usageErr))
			if tt.errMsg != "" {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}

func TestValidateArgs(t *testing.T) {
	assert.NoError(t, validateArgs([]string{"game.sfc"}))
	assert.NoError(t, validateArgs([]string{"-game.sfc"}))
	assert.Error(t, validateArgs([]string{"game.sfc", "-q"}))
}
