// =============================================================================
// Smart Invoice Validator - File Manager
// =============================================================================
//
// Output naming, findings bundles and input archival for the process
// pipeline:
//
//   input/invoice.csv  ->  output/invoice_corrected.csv
//                          output/invoice_findings.txt
//                          archive/invoice.csv          (optional)
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// CorrectedName derives the corrected-output file name from the input path
// and the output extension: "<original-basename>_corrected.<ext>".
func CorrectedName(inputPath, ext string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return fmt.Sprintf("%s_corrected.%s", base, ext)
}

// FindingsName derives the findings-report file name from the input path.
func FindingsName(inputPath string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	return base + "_findings.txt"
}

// NewRunID returns a fresh identifier stamped into findings reports so
// archived bundles can be traced back to one processing run.
func NewRunID() string {
	return uuid.New().String()
}

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// WriteOutput writes one output file under dir, creating dir on demand.
func WriteOutput(dir, name string, data []byte) (string, error) {
	if err := EnsureDir(dir); err != nil {
		return "", err
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("cannot write %s: %w", path, err)
	}
	return path, nil
}

// MoveToArchive moves a processed input file into the archive directory.
// A cross-device rename falls back to copy-and-delete.
func MoveToArchive(inputPath, archiveDir string) error {
	if err := EnsureDir(archiveDir); err != nil {
		return err
	}
	target := filepath.Join(archiveDir, filepath.Base(inputPath))

	if err := os.Rename(inputPath, target); err == nil {
		return nil
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("cannot archive %s: %w", inputPath, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("cannot archive %s: %w", inputPath, err)
	}
	return os.Remove(inputPath)
}
