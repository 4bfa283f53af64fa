// =============================================================================
// Smart Invoice Validator - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Smart Invoice Validator CLI. It
// initializes the Cobra CLI framework and delegates command execution to the
// cmd package.
//
// USAGE:
//   invoice-validator process       - Validate every invoice file in the input directory
//   invoice-validator check <file>  - Validate a single file and print findings
//   invoice-validator version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/        : CLI command definitions (Cobra)
//   - internal/   : Core business logic (not for external import)
//   - pkg/        : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/zedtax/invoice-validator/cmd"
)

// main simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
