// Package verification verifies that the generated output recreates the input ROM.
package verification

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/snesdisasm/internal/assembler/asar"
)

// maxReportedMismatches limits the number of logged mismatching offsets.
const maxReportedMismatches = 10

// assembleFile assembles the main asm file into the output ROM.
var assembleFile = asar.AssembleUsingExternalApp

// VerifyOutput reassembles the main output file and compares the result
// byte by byte with the input ROM.
func VerifyOutput(ctx context.Context, logger *log.Logger, mainFile string, rom []byte) error {
	if mainFile == "" {
		return errors.New("can not verify console output")
	}

	dir, err := os.MkdirTemp("", "snesdisasm-verify-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(dir)
	}()

	outputFile := filepath.Join(dir, "verify.sfc")
	if err := assembleFile(ctx, mainFile, outputFile); err != nil {
		return fmt.Errorf("reassembling ROM using asar failed: %w", err)
	}

	destination, err := os.ReadFile(outputFile)
	if err != nil {
		return fmt.Errorf("reading destination file for comparison: %w", err)
	}

	if err := checkBufferEqual(logger, rom, destination); err != nil {
		return fmt.Errorf("comparing ROM content: %w", err)
	}
	return nil
}

func checkBufferEqual(logger *log.Logger, input, output []byte) error {
	if len(input) != len(output) {
		return fmt.Errorf("mismatched lengths, %d != %d", len(input), len(output))
	}

	var diffs uint64
	for i := range input {
		if input[i] == output[i] {
			continue
		}

		diffs++
		if diffs <= maxReportedMismatches {
			logger.Error("Offset mismatch",
				log.Hex("offset", i),
				log.Hex("expected", input[i]),
				log.Hex("got", output[i]))
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%d offset mismatches", diffs)
}
