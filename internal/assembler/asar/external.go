// Package asar provides helpers to assemble the generated output with the
// asar assembler.
package asar

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

const assemblerName = "asar"

// executable returns the name of the assembler binary for the platform.
func executable() string {
	if runtime.GOOS == "windows" {
		return assemblerName + ".exe"
	}
	return assemblerName
}

// Arguments returns the command line arguments to assemble the main asm
// file into the output ROM. The title and checksum of the generated ROM
// are taken unchanged from the source.
func Arguments(asmFile, outputFile string) []string {
	return []string{"--no-title-check", "--fix-checksum=off", asmFile, outputFile}
}

// AssembleUsingExternalApp calls the external assembler to generate a ROM
// from the given main asm file.
func AssembleUsingExternalApp(ctx context.Context, asmFile, outputFile string) error {
	assembler := executable()
	if _, err := exec.LookPath(assembler); err != nil {
		return fmt.Errorf("%s is not installed", assembler)
	}

	cmd := exec.CommandContext(ctx, assembler, Arguments(asmFile, outputFile)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("assembling file: %s: %w", strings.TrimSpace(string(out)), err)
	}

	return nil
}
