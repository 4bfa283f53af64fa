// =============================================================================
// Smart Invoice Validator - Process Command
// =============================================================================
//
// This file defines the 'process' command, which is the main command for
// validating and correcting invoice files in bulk.
//
// COMMAND USAGE:
//   invoice-validator process [flags]
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Discover invoice files in the input directory
//   3. For each file (concurrently, bounded by max_concurrency):
//      a. Detect the file kind and decode to canonical records
//      b. Run the validation rules and collect the corrected copy
//      c. Encode the corrected copy in the input format
//      d. Write the corrected file and the findings report
//   4. Archive processed files (optional)
//   5. Print a run summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/zedtax/invoice-validator/internal/decoder"
	"github.com/zedtax/invoice-validator/internal/encoder"
	"github.com/zedtax/invoice-validator/internal/engine"
	"github.com/zedtax/invoice-validator/internal/report"
	"github.com/zedtax/invoice-validator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun simulates processing without writing output files.
var dryRun bool

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Validate and correct every invoice file in the input directory",
	Long: `The process command scans the input directory for XML, CSV, JSON and XLSX
invoice files and validates each one against the revenue-authority rules.

Files are processed concurrently. A file that cannot be decoded is reported
and skipped; it never aborts the run. For every decodable file the command
writes a corrected copy and a findings report to the output directory, and
optionally moves the original into the archive directory.

Corrected files keep the input format, except XLSX inputs which are written
back as CSV.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess()
	},
}

// init registers the process command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Validate and report without writing corrected files",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// fileResult carries the outcome of one processed file across the worker
// channel.
type fileResult struct {
	Path      string
	Kind      decoder.Kind
	Corrected string
	Summary   *report.Summary
	Valid     bool
	Err       error
}

// runProcess orchestrates the validation pipeline over the input directory.
func runProcess() error {
	startTime := time.Now()

	cfg, err := setup()
	if err != nil {
		return err
	}

	runID := utils.NewRunID()
	log.WithField("run_id", runID).Info("starting processing run")

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	inputFiles, err := discoverInputFiles(cfg.InputDir)
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(inputFiles) == 0 {
		log.WithField("dir", cfg.InputDir).Info("no invoice files found")
		fmt.Println("No invoice files found in the input directory.")
		return nil
	}
	log.WithField("count", len(inputFiles)).Info("discovered input files")

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================
	// Each file runs in its own goroutine; a semaphore channel bounds the
	// number of files in flight to cfg.MaxConcurrency.

	var wg sync.WaitGroup
	results := make(chan fileResult, len(inputFiles))
	sem := make(chan struct{}, cfg.MaxConcurrency)

	for _, file := range inputFiles {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results <- processFile(path, cfg.OutputDir, runID)
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// =========================================================================
	// STEP 3: COLLECT RESULTS
	// =========================================================================

	var processed, decodeErrors, invalid int
	var totalIssues, totalFixed int

	for result := range results {
		if result.Err != nil {
			decodeErrors++
			log.WithField("file", filepath.Base(result.Path)).
				WithError(result.Err).Error("file failed")
			fmt.Printf("  ✗ %s: %v\n", filepath.Base(result.Path), result.Err)
			if !cfg.ContinueOnError {
				return fmt.Errorf("aborting: %s: %w", filepath.Base(result.Path), result.Err)
			}
			continue
		}

		processed++
		totalIssues += result.Summary.Total
		totalFixed += result.Summary.AutoFixed
		if !result.Valid {
			invalid++
		}

		fmt.Printf("  ✓ %s -> %s (%d issue(s), %d auto-fixed)\n",
			filepath.Base(result.Path), filepath.Base(result.Corrected),
			result.Summary.Total, result.Summary.AutoFixed)

		if cfg.ArchiveProcessed && !dryRun {
			if err := utils.MoveToArchive(result.Path, cfg.ArchiveDir); err != nil {
				log.WithField("file", result.Path).WithError(err).Warn("archive failed")
			}
		}
	}

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Processing Complete ===")
	fmt.Printf("Total files:     %d\n", len(inputFiles))
	fmt.Printf("Processed:       %d\n", processed)
	fmt.Printf("Decode errors:   %d\n", decodeErrors)
	fmt.Printf("Needing review:  %d\n", invalid)
	fmt.Printf("Issues found:    %d (%d auto-fixed)\n", totalIssues, totalFixed)
	fmt.Printf("Time elapsed:    %s\n", elapsed)

	log.WithField("run_id", runID).WithField("processed", processed).
		WithField("errors", decodeErrors).Info("processing run complete")

	return nil
}

// processFile runs the full pipeline for a single input file.
func processFile(path, outputDir, runID string) fileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileResult{Path: path, Err: err}
	}

	kind := decoder.DetectKind(path, data)
	decoded, err := decoder.Decode(data, kind)
	if err != nil {
		return fileResult{Path: path, Kind: kind, Err: err}
	}

	result := engine.Validate(decoded)

	outKind := encoder.OutputKind(kind)
	encoded, err := encoder.Encode(result.FixedData, outKind)
	if err != nil {
		return fileResult{Path: path, Kind: kind, Err: err}
	}

	correctedName := utils.CorrectedName(path, string(outKind))
	findings := report.Render(result, filepath.Base(path), string(kind), runID)

	if !dryRun {
		if _, err := utils.WriteOutput(outputDir, correctedName, encoded); err != nil {
			return fileResult{Path: path, Kind: kind, Err: err}
		}
		if _, err := utils.WriteOutput(outputDir, utils.FindingsName(path), []byte(findings)); err != nil {
			return fileResult{Path: path, Kind: kind, Err: err}
		}
	}

	return fileResult{
		Path:      path,
		Kind:      kind,
		Corrected: correctedName,
		Summary:   report.Summarize(result.Issues),
		Valid:     result.IsValid,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// invoiceExtensions lists the file extensions picked up from the input
// directory.
var invoiceExtensions = map[string]bool{
	".xml":  true,
	".csv":  true,
	".json": true,
	".xlsx": true,
}

// discoverInputFiles scans the input directory for invoice files, sorted by
// name so runs are deterministic.
func discoverInputFiles(inputDir string) ([]string, error) {
	var files []string

	err := filepath.Walk(inputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if invoiceExtensions[filepath.Ext(path)] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
