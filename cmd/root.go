// Package cmd provides CLI commands for ernie.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func setupLogger() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}

	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	handler := slog.NewTextHandler(os.Stderr, opts)
	logger := slog.New(handler)

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "ernie",
	Short: "Normalize and export bibliographic sample metadata",
	Long: `Ernie normalizes bibliographic metadata for scientific datasets and
physical samples (IGSN) and exports DataCite documents.

It parses pipe-delimited batch files and DataCite XML/JSON into a shared
resource graph, deduplicates people across their appearances, resolves
granular dates, and serializes schema-validated DataCite output.

Examples:
  ernie convert igsncsv datacite -i batch.csv -o export.xml
  cat batch.csv | ernie convert igsncsv datacite-json --pretty
  ernie validate igsncsv -i batch.csv
  ernie profiles show igsn-batch`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads the config file and ERNIE_* environment variables.
func initConfig() {
	viper.SetDefault("profile", "igsn-batch")
	viper.SetDefault("strict", false)
	viper.SetDefault("dates.fallback_offset", "+00:00")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home + "/.ernie")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("ERNIE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		slog.Debug("using config file", "path", viper.ConfigFileUsed())
	}
}

func init() {
	setupLogger()
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: $HOME/.ernie/config.yaml)")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(formatsCmd)
}
