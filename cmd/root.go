// =============================================================================
// Smart Invoice Validator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (invoice-validator)
//   ├── processCmd (invoice-validator process)
//   ├── checkCmd   (invoice-validator check)
//   └── versionCmd (invoice-validator version)
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zedtax/invoice-validator/internal/config"
	"github.com/zedtax/invoice-validator/pkg/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// log is the shared logger for all commands. It is replaced by setup()
// once the configuration has been loaded.
var log = logrus.StandardLogger()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "invoice-validator",
	Short: "Smart Invoice Validator - Validate and auto-correct tax invoice files",

	Long: `Smart Invoice Validator checks tax invoice files against revenue-authority
rules and produces corrected copies alongside detailed findings reports.

It accepts XML, CSV, JSON and XLSX inputs, tolerates the messy variants real
upstream systems emit (inconsistent field names, broken JSON, repeated XML
elements), and never rejects a file outright: every problem it can repair is
repaired and reported with a confidence level, and every problem it cannot
repair is flagged for manual review.

Example Usage:
  invoice-validator process                    # Validate every file in the input directory
  invoice-validator process --config my.yaml   # Use a custom configuration file
  invoice-validator check invoice.xml          # Validate a single file and print findings`,

	// With no subcommand, print the help message.
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// setup loads the configuration and initializes the shared logger.
// The --verbose flag takes precedence over the configured log level.
func setup() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	logger, err := logging.Setup(level, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	log = logger

	return cfg, nil
}
