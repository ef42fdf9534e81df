// =============================================================================
// Revenue Guard - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. All settings live in a single YAML file (revguard.yaml).
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. The YAML configuration file
//   3. Environment variables and command line flags (bound in cmd/root.go)
//
// A missing configuration file is not an error: the defaults describe a
// working single-user setup in the current directory.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Ledger backends.
const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// LEDGER SETTINGS
	// =========================================================================

	// LedgerBackend selects the ledger store implementation.
	// Valid values: "csv", "sqlite"
	// Default: "csv"
	LedgerBackend string `yaml:"ledger_backend"`

	// LedgerFile is the CSV file holding the billed items of the current
	// submission. Every submission overwrites the whole file.
	// Default: "final_invoice.csv"
	LedgerFile string `yaml:"ledger_file"`

	// NotesFile is the CSV file holding the technician's work note.
	// Default: "mechanic_notes.csv"
	NotesFile string `yaml:"notes_file"`

	// SQLitePath is the database file used when LedgerBackend is "sqlite".
	// Default: "revguard.db"
	SQLitePath string `yaml:"sqlite_path"`

	// CSVSettings contains settings for reading and writing ledger CSV files.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// =========================================================================
	// INVENTORY SETTINGS
	// =========================================================================

	// InventoryFile is an optional parts catalog (.xlsx or .yaml).
	// When empty, the built-in catalog is used.
	InventoryFile string `yaml:"inventory_file"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputDir is where audit reports and exported invoices are written.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// SessionFile holds the dashboard state between command invocations.
	// Default: ".revguard_session.yaml"
	SessionFile string `yaml:"session_file"`

	// UUIDFormat defines the format for output file names.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {ro}        - Repair order id
	// Default: "{ro}_{timestamp}_{uuid}"
	UUIDFormat string `yaml:"uuid_format"`

	// ShopName is printed on the customer invoice.
	// Default: "Revenue Guard Garage"
	ShopName string `yaml:"shop_name"`

	// DefaultRepairOrder is used when no --ro flag is given.
	// Default: "RO-500"
	DefaultRepairOrder string `yaml:"default_repair_order"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the log output format.
	// Valid values: "auto", "console", "json"
	// Default: "auto"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// ANALYZER SETTINGS
	// =========================================================================

	// Analyzer configures the hosted evidence analyzer.
	Analyzer AnalyzerSettings `yaml:"analyzer"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab)
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the CSV file.
	// Supported values: "UTF-8", "Windows-1252", "ISO-8859-1", "Shift_JIS"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// ANALYZER SETTINGS STRUCTURE
// =============================================================================

// AnalyzerSettings configures the generative-language evidence analyzer.
type AnalyzerSettings struct {
	// Model is the hosted model name.
	// Default: "gemini-2.5-flash"
	Model string `yaml:"model"`

	// APIKeyEnv names the environment variable holding the API key.
	// Default: "GEMINI_API_KEY"
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds a single analyzer call.
	// Default: 60s
	Timeout time.Duration `yaml:"timeout"`
}

// APIKey returns the analyzer API key from the environment.
// GOOGLE_API_KEY is consulted when the configured variable is empty.
func (a AnalyzerSettings) APIKey() string {
	if key := os.Getenv(a.APIKeyEnv); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct. If the file does not exist the
//     defaults are returned.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// Fall through with an empty config; defaults fill it in.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.LedgerBackend == "" {
		config.LedgerBackend = BackendCSV
	}
	if config.LedgerFile == "" {
		config.LedgerFile = "final_invoice.csv"
	}
	if config.NotesFile == "" {
		config.NotesFile = "mechanic_notes.csv"
	}
	if config.SQLitePath == "" {
		config.SQLitePath = "revguard.db"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.SessionFile == "" {
		config.SessionFile = ".revguard_session.yaml"
	}
	if config.UUIDFormat == "" {
		config.UUIDFormat = "{ro}_{timestamp}_{uuid}"
	}
	if config.ShopName == "" {
		config.ShopName = "Revenue Guard Garage"
	}
	if config.DefaultRepairOrder == "" {
		config.DefaultRepairOrder = "RO-500"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "auto"
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}

	// Analyzer defaults.
	if config.Analyzer.Model == "" {
		config.Analyzer.Model = "gemini-2.5-flash"
	}
	if config.Analyzer.APIKeyEnv == "" {
		config.Analyzer.APIKeyEnv = "GEMINI_API_KEY"
	}
	if config.Analyzer.Timeout == 0 {
		config.Analyzer.Timeout = 60 * time.Second
	}
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	config.LedgerBackend = strings.ToLower(strings.TrimSpace(config.LedgerBackend))
	switch config.LedgerBackend {
	case BackendCSV, BackendSQLite:
	default:
		return fmt.Errorf("unknown ledger_backend %q (expected %q or %q)", config.LedgerBackend, BackendCSV, BackendSQLite)
	}

	if config.Analyzer.Timeout < 0 {
		return fmt.Errorf("analyzer.timeout must not be negative")
	}

	switch ext := strings.ToLower(filepath.Ext(config.InventoryFile)); ext {
	case "", ".xlsx", ".yaml", ".yml":
	default:
		return fmt.Errorf("unsupported inventory_file extension %q", ext)
	}

	// Create the output directory if it doesn't exist.
	if _, err := os.Stat(config.OutputDir); os.IsNotExist(err) {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", config.OutputDir, err)
		}
	}

	return nil
}
