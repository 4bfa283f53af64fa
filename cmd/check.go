// =============================================================================
// Smart Invoice Validator - Check Command
// =============================================================================
//
// This file defines the 'check' command: validate a single invoice file and
// print the findings to stdout without writing any output files. Useful for
// spot-checking a file before dropping it into the input directory, and for
// CI gates (the command exits non-zero when the file needs manual review).
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zedtax/invoice-validator/internal/decoder"
	"github.com/zedtax/invoice-validator/internal/engine"
	"github.com/zedtax/invoice-validator/internal/report"
	"github.com/zedtax/invoice-validator/pkg/utils"
)

// checkCmd represents the 'check' command.
var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a single invoice file and print the findings",
	Long: `The check command decodes one invoice file, runs the full validation rule
set and prints the findings report to stdout. Nothing is written to disk.

The exit status is non-zero when the file has issues that could not be
auto-corrected and therefore needs manual review.`,

	Args: cobra.ExactArgs(1),

	// Errors from RunE are validation outcomes, not usage mistakes.
	SilenceUsage: true,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runCheck(args[0])
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// runCheck validates one file and prints its findings.
func runCheck(path string) error {
	if _, err := setup(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}

	kind := decoder.DetectKind(path, data)
	decoded, err := decoder.Decode(data, kind)
	if err != nil {
		return err
	}

	result := engine.Validate(decoded)
	fmt.Print(report.Render(result, filepath.Base(path), string(kind), utils.NewRunID()))

	if !result.IsValid {
		return fmt.Errorf("%s needs manual review (%d unresolved error(s))",
			filepath.Base(path), result.ErrorCount())
	}
	return nil
}
