// =============================================================================
// Revenue Guard - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (revguard)
//   ├── billCmd       (revguard bill)        technician portal
//   ├── auditCmd      (revguard audit ...)   service manager steps 1-3
//   ├── reconcileCmd  (revguard reconcile)   direct engine call
//   ├── reportCmd     (revguard report)      final audit report
//   ├── submitCmd     (revguard submit)
//   ├── resetCmd      (revguard reset)
//   ├── invoiceCmd    (revguard invoice)     customer invoice
//   ├── inventoryCmd  (revguard inventory)   parts catalog
//   └── versionCmd    (revguard version)
//
// CONFIGURATION (lowest to highest precedence):
//   1. Built-in defaults
//   2. revguard.yaml (--config)
//   3. .env / .env.local, then REVGUARD_* environment variables
//   4. Command line flags
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ginjaninja78/revenue-guard/internal/config"
	"github.com/ginjaninja78/revenue-guard/pkg/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appConfig is the loaded configuration, set before any subcommand runs.
var appConfig *config.MainConfig

// repairOrderID is the repair order every subcommand works on.
var repairOrderID string

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "revguard",
	Short: "Revenue Guard - Reconcile repair evidence against the billed invoice",
	Long: `Revenue Guard checks that every part found on a repaired vehicle was
actually billed on the repair order's invoice.

Technicians record billed parts and a work note. The service manager then runs
the digital, visual and acoustic audits. Each finding is reconciled against the
ledger and unbilled parts are flagged.

Example Usage:
  revguard bill --part "Oil Filter" --note "Changed oil"
  revguard audit visual --before before.jpg --after after.jpg
  revguard reconcile --finding "PART:Front Bumper|CONF:0.8"
  revguard report`,

	SilenceUsage: true,

	PersistentPreRunE: setupCommand,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	cobra.OnInitialize(initConfig)

	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================

	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"revguard.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	rootCmd.PersistentFlags().String(
		"ro",
		"",
		"Repair order id (default from config, RO-500)",
	)

	rootCmd.PersistentFlags().String(
		"backend",
		"",
		"Ledger backend: csv or sqlite (default from config)",
	)

	for key, flag := range map[string]string{
		"verbose":        "verbose",
		"ro":             "ro",
		"ledger_backend": "backend",
	} {
		if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(fmt.Sprintf("Failed to bind %s flag: %v", flag, err))
		}
	}
}

// initConfig loads .env files and sets up REVGUARD_* environment binding.
func initConfig() {
	loadEnvFiles()

	viper.SetEnvPrefix("REVGUARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()
}

// loadEnvFiles loads environment variables from .env files.
// godotenv never overrides a variable that is already set, so .env.local is
// loaded first to take precedence over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}

// setupCommand is called before any subcommand runs. It loads the
// configuration, applies flag and environment overrides and configures
// logging.
func setupCommand(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		return err
	}

	if backend := viper.GetString("ledger_backend"); backend != "" {
		cfg.LedgerBackend = strings.ToLower(backend)
	}
	if dir := viper.GetString("output_dir"); dir != "" {
		cfg.OutputDir = dir
	}

	repairOrderID = strings.TrimSpace(viper.GetString("ro"))
	if repairOrderID == "" {
		repairOrderID = cfg.DefaultRepairOrder
	}

	configureLogging(cfg)
	appConfig = cfg

	logging.Debug().
		Str("config", cfgFile).
		Str("backend", cfg.LedgerBackend).
		Str("ro_id", repairOrderID).
		Msg("Configuration loaded")

	return nil
}

// configureLogging sets up the logging system from the configuration.
// --verbose forces debug; LOG_LEVEL and LOG_FORMAT override the file.
func configureLogging(cfg *config.MainConfig) {
	level := cfg.LogLevel
	if verbose || viper.GetBool("verbose") {
		level = zerolog.DebugLevel.String()
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = envLevel
	}

	format := cfg.LogFormat
	if envFormat := os.Getenv("LOG_FORMAT"); envFormat != "" {
		format = envFormat
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Format = format
	if out := os.Getenv("LOG_OUTPUT"); out != "" {
		logCfg.Output = out
	}

	logging.Configure(logCfg)
}
