// =============================================================================
// Smart Invoice Validator - Configuration Module
// =============================================================================
//
// Loads the application configuration from a YAML file and overlays
// environment variables via Viper, so deployments can tune the tool without
// editing the file:
//
//   INVOICE_INPUT_DIR, INVOICE_OUTPUT_DIR, INVOICE_ARCHIVE_DIR,
//   INVOICE_LOG_LEVEL, INVOICE_LOG_FILE, INVOICE_MAX_CONCURRENCY
//
// A missing config file is not an error: every setting has a default so the
// tool runs out of the box.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envPrefix is the prefix for environment overrides.
const envPrefix = "INVOICE"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the application configuration.
type Config struct {
	// InputDir is the directory scanned for invoice files to process.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives corrected files and findings reports.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// ArchiveDir receives successfully processed input files when
	// ArchiveProcessed is enabled.
	// Default: "./archive"
	ArchiveDir string `yaml:"archive_dir"`

	// ArchiveProcessed moves inputs to ArchiveDir after processing.
	// Default: false
	ArchiveProcessed bool `yaml:"archive_processed"`

	// LogLevel controls verbosity: "debug", "info", "warn" or "error".
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFile is an optional log file; logs always go to stderr as well.
	// Default: "" (stderr only)
	LogFile string `yaml:"log_file"`

	// MaxConcurrency caps the number of files processed at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps a batch running when a single file fails to
	// decode.
	// Default: true
	ContinueOnError bool `yaml:"continue_on_error"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		InputDir:        "./input",
		OutputDir:       "./output",
		ArchiveDir:      "./archive",
		LogLevel:        "info",
		MaxConcurrency:  4,
		ContinueOnError: true,
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the YAML config file (if it exists), overlays environment
// variables, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Defaults apply.
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays INVOICE_* environment variables on the loaded
// configuration.
func applyEnvOverrides(cfg *Config) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if s := v.GetString("input_dir"); s != "" {
		cfg.InputDir = s
	}
	if s := v.GetString("output_dir"); s != "" {
		cfg.OutputDir = s
	}
	if s := v.GetString("archive_dir"); s != "" {
		cfg.ArchiveDir = s
	}
	if s := v.GetString("log_level"); s != "" {
		cfg.LogLevel = s
	}
	if s := v.GetString("log_file"); s != "" {
		cfg.LogFile = s
	}
	if n := v.GetInt("max_concurrency"); n > 0 {
		cfg.MaxConcurrency = n
	}
}

// validate rejects settings the pipeline cannot run with.
func (c *Config) validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("input_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1 (got %d)", c.MaxConcurrency)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}
	return nil
}
