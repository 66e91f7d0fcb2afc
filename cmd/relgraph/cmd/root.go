package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/relgraph/internal/config"
	"github.com/dbsmedya/relgraph/internal/logger"
	"github.com/dbsmedya/relgraph/internal/roles"
)

// Version information (set via ldflags at build time)
var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// defaultConfigFile is read when present; a missing default file means
// built-in defaults.
const defaultConfigFile = "relgraph.yaml"

// CLI flags that override config file values
var (
	cfgFile   string
	logLevel  string
	logFormat string
	workers   int
	batchSize int
)

var rootCmd = &cobra.Command{
	Use:   "relgraph",
	Short: "Relation graph engine for music credits",
	Long: `relgraph turns release credits into a graph of artists and labels and
answers neighborhood queries over it.

Features:
  - Canonicalization of free-text credit roles against a fixed taxonomy
  - Concurrent bulk loading of JSON-lines release and entity feeds
  - MySQL relation store with an optional Redis edge cache
  - Breadth-first neighborhood traversal with link-preserving pagination`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", defaultConfigFile,
		"Path to configuration file")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "",
		"Override log format (json, text)")

	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0,
		"Override number of ingest workers")
	rootCmd.PersistentFlags().IntVar(&batchSize, "batch-size", 0,
		"Override ingest batch size (edges per store write)")
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}

// GetCLIOverrides returns the CLI flag override values
func GetCLIOverrides() config.Overrides {
	return config.Overrides{
		LogLevel:  logLevel,
		LogFormat: logFormat,
		Workers:   workers,
		BatchSize: batchSize,
	}
}

// loadConfig reads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	configFile := GetConfigFile()

	var cfg *config.Config
	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) && configFile == defaultConfigFile {
		cfg = config.DefaultConfig()
	} else {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	cfg.ApplyOverrides(GetCLIOverrides())
	return cfg, nil
}

// setup loads the configuration and builds the logger. Commands that open
// the store validate the whole configuration first.
func setup(validate bool) (*config.Config, *logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, log, nil
}

// newCanonicalizer builds a canonicalizer over the configured taxonomy.
func newCanonicalizer(cfg *config.Config, log *logger.Logger) (*roles.Canonicalizer, error) {
	taxonomy := roles.DefaultTaxonomy()
	if cfg.Taxonomy.Path != "" {
		t, err := roles.LoadTaxonomyFile(cfg.Taxonomy.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load taxonomy: %w", err)
		}
		taxonomy = t
	}
	return roles.NewCanonicalizer(taxonomy, roles.WithLogger(log)), nil
}
