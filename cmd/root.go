// Package cmd provides the assetforge command-line interface.
//
// Configuration System:
//
//	The CLI supports flexible configuration through multiple sources with clear precedence:
//	1. Command-line flags (--config, --static-dir, etc.) - highest priority
//	2. ASSETFORGE_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (ASSETFORGE_STATIC_DIR, etc.)
//	4. Configuration files (.assetforge.yml) - lowest priority
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/assetforge/assetforge/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assetforge",
	Short: "Incremental compiler for web asset blocks",
	Long: `Assetforge compiles named blocks of JS, CSS, LESS, and SASS sources into
versioned, minified artifacts, recompiling only the blocks whose contents
changed since the last build.

Key Features:
  • Content-hash based staleness detection against a build manifest
  • External compiler integration (closure compiler, YUI, lessc, sass)
  • CSS image inlining with data URIs for small assets
  • Parallel compilation of independent blocks
  • Watch mode for automatic rebuilds

Quick Start:
  assetforge compile              Compile all stale blocks
  assetforge list                 List blocks and their staleness
  assetforge watch                Watch the static tree and rebuild on change
  assetforge doctor               Check external tool availability`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .assetforge.yml, can also use ASSETFORGE_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. ASSETFORGE_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .assetforge.yml in current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("ASSETFORGE_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".assetforge")
	}

	// Enable automatic environment variable binding with ASSETFORGE_ prefix
	// Examples: ASSETFORGE_STATIC_DIR, ASSETFORGE_TOOLS_CLOSURE_COMPILER
	viper.SetEnvPrefix("ASSETFORGE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the CLI logger honoring the --log-level flag.
func newLogger() logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(viper.GetString("log-level"))
	return logging.NewLogger(cfg)
}
