//-------------------------------------------------------------------------
//
// pgEdge Business Finder
//
// Portions copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package config handles configuration management for pgedge-bizfinder.
// Values come from defaults, an optional YAML config file, an optional .env
// file and BIZFINDER_* environment variables, in increasing precedence.
// CLI flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// BIZFINDER_CONNECTION or BIZFINDER_CENSUS_API_KEY.
const EnvPrefix = "BIZFINDER"

// Census endpoints used when none are configured. Both return a JSON
// array-of-arrays keyed by ZIP code tabulation area.
const (
	DefaultPopulationURL = "https://api.census.gov/data/2020/acs/acs5?get=NAME,B01003_001E&for=zip%20code%20tabulation%20area:*"
	DefaultIncomeURL     = "https://api.census.gov/data/2020/acs/acs5/subject?get=NAME,S1903_C03_001E&for=zip%20code%20tabulation%20area:*"
)

// Config holds all configuration for pgedge-bizfinder.
type Config struct {
	// Connection is the PostgreSQL connection string.
	Connection string `mapstructure:"connection"`

	// LogLevel controls logging verbosity (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`

	// LogFormat is "pretty" for console output or "json".
	LogFormat string `mapstructure:"log_format"`

	// DB holds connection handle settings.
	DB DBConfig `mapstructure:"db"`

	// Init holds configuration for the init subcommand.
	Init InitConfig `mapstructure:"init"`

	// Load holds configuration for the load subcommand.
	Load LoadConfig `mapstructure:"load"`

	// Census holds the demographic API endpoints.
	Census CensusConfig `mapstructure:"census"`

	// Query holds configuration for the query subcommands.
	Query QueryConfig `mapstructure:"query"`
}

// DBConfig holds connection handle settings.
type DBConfig struct {
	// MaxConns caps the pool. The loader is a single writer, so 1 is enough.
	MaxConns int32 `mapstructure:"max_conns"`
}

// InitConfig holds configuration for schema initialization.
type InitConfig struct {
	// DropExisting drops existing tables before creating them.
	DropExisting bool `mapstructure:"drop_existing"`
}

// LoadConfig holds configuration for the import pipeline.
type LoadConfig struct {
	BusinessFile string `mapstructure:"business_file"`
	CheckinFile  string `mapstructure:"checkin_file"`
	UserFile     string `mapstructure:"user_file"`
	ReviewFile   string `mapstructure:"review_file"`

	// SkipCensus disables the demographic fetch step.
	SkipCensus bool `mapstructure:"skip_census"`

	// Strict makes the first malformed line fatal for its file.
	Strict bool `mapstructure:"strict"`

	// MaxErrorRatio rolls back a file when (skipped+failed)/read exceeds it.
	// Zero disables the check.
	MaxErrorRatio float64 `mapstructure:"max_error_ratio"`

	// ProgressInterval is how often to log progress (in records).
	ProgressInterval int64 `mapstructure:"progress_interval"`
}

// CensusConfig holds configuration for the demographic fetcher.
type CensusConfig struct {
	PopulationURL string `mapstructure:"population_url"`
	IncomeURL     string `mapstructure:"income_url"`

	// APIKey is optional; the Census API allows keyless access at low volume.
	APIKey string `mapstructure:"api_key"`

	// Timeout is the per-request timeout in seconds.
	Timeout int `mapstructure:"timeout"`
}

// QueryConfig holds configuration for query output.
type QueryConfig struct {
	// Format is table, csv or json.
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "pretty",
		DB: DBConfig{
			MaxConns: 1,
		},
		Load: LoadConfig{
			ProgressInterval: 10000,
		},
		Census: CensusConfig{
			PopulationURL: DefaultPopulationURL,
			IncomeURL:     DefaultIncomeURL,
			Timeout:       30,
		},
		Query: QueryConfig{
			Format: "table",
		},
	}
}

// Load reads configuration from config files and the environment.
// Config file locations (in order of precedence):
// 1. Path specified by configFile parameter
// 2. ./pgedge-bizfinder.yaml
// 3. ~/.config/pgedge-bizfinder/config.yaml
//
// envFile names a dotenv file; when empty, ./.env is read if present.
func Load(configFile, envFile string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()

	v.SetConfigName("pgedge-bizfinder")
	v.SetConfigType("yaml")

	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "pgedge-bizfinder"))
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Env overrides only bind to keys viper already knows about.
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	return cfg, nil
}

func loadDotEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("error reading env file %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error reading .env: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("connection", d.Connection)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)
	v.SetDefault("db.max_conns", d.DB.MaxConns)
	v.SetDefault("init.drop_existing", d.Init.DropExisting)
	v.SetDefault("load.business_file", d.Load.BusinessFile)
	v.SetDefault("load.checkin_file", d.Load.CheckinFile)
	v.SetDefault("load.user_file", d.Load.UserFile)
	v.SetDefault("load.review_file", d.Load.ReviewFile)
	v.SetDefault("load.skip_census", d.Load.SkipCensus)
	v.SetDefault("load.strict", d.Load.Strict)
	v.SetDefault("load.max_error_ratio", d.Load.MaxErrorRatio)
	v.SetDefault("load.progress_interval", d.Load.ProgressInterval)
	v.SetDefault("census.population_url", d.Census.PopulationURL)
	v.SetDefault("census.income_url", d.Census.IncomeURL)
	v.SetDefault("census.api_key", d.Census.APIKey)
	v.SetDefault("census.timeout", d.Census.Timeout)
	v.SetDefault("query.format", d.Query.Format)
}

// CensusTimeout returns the per-request census timeout.
func (c *Config) CensusTimeout() time.Duration {
	return time.Duration(c.Census.Timeout) * time.Second
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Connection == "" {
		return fmt.Errorf("connection string is required")
	}
	if c.DB.MaxConns < 1 {
		return fmt.Errorf("db.max_conns must be at least 1")
	}
	if c.LogFormat != "pretty" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be 'pretty' or 'json'")
	}
	return nil
}

// ValidateLoad checks configuration required for the load command.
func (c *Config) ValidateLoad() error {
	if err := c.Validate(); err != nil {
		return err
	}
	l := c.Load
	if l.SkipCensus && l.BusinessFile == "" && l.CheckinFile == "" &&
		l.UserFile == "" && l.ReviewFile == "" {
		return fmt.Errorf("nothing to load: no input files given and census is skipped")
	}
	if l.MaxErrorRatio < 0 || l.MaxErrorRatio > 1 {
		return fmt.Errorf("max_error_ratio must be between 0 and 1")
	}
	if l.ProgressInterval < 1 {
		return fmt.Errorf("progress_interval must be at least 1")
	}
	if !l.SkipCensus {
		if c.Census.PopulationURL == "" || c.Census.IncomeURL == "" {
			return fmt.Errorf("census population_url and income_url are required unless skip_census is set")
		}
		if c.Census.Timeout < 1 {
			return fmt.Errorf("census timeout must be at least 1 second")
		}
	}
	return nil
}

// ValidateQuery checks configuration required for the query commands.
func (c *Config) ValidateQuery() error {
	if err := c.Validate(); err != nil {
		return err
	}
	switch c.Query.Format {
	case "table", "csv", "json":
		return nil
	default:
		return fmt.Errorf("query format must be 'table', 'csv' or 'json'")
	}
}
