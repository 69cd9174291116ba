// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/strin/HeteroSampler/internal/corpus"
	"github.com/strin/HeteroSampler/internal/metrics"
	"github.com/strin/HeteroSampler/internal/schema"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/hetero.yaml"
	// defaultLogFile is used when the config names no log file.
	defaultLogFile = "hetero.log"
	// defaultStorePath is the run index used when store.path is unset.
	defaultStorePath = "hetero.db"
	// defaultFormat is the comparison output format.
	defaultFormat = "terminal"
)

// Formats lists the comparison output formats.
var Formats = []string{"terminal", "html", "json"}

// Config represents the top-level application configuration.
type Config struct {
	LogFile    string        `json:"logFile,omitempty" yaml:"logFile,omitempty" mapstructure:"logFile"`
	Debug      bool          `json:"debug" yaml:"debug" mapstructure:"debug"`
	Workers    int           `json:"workers,omitempty" yaml:"workers,omitempty" mapstructure:"workers"`
	Parse      ParseConfig   `json:"parse" yaml:"parse" mapstructure:"parse"`
	Metrics    MetricsConfig `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Compare    CompareConfig `json:"compare" yaml:"compare" mapstructure:"compare"`
	Store      StoreConfig   `json:"store" yaml:"store" mapstructure:"store"`
	ConfigPath string        `json:"-" yaml:"-" mapstructure:"-"`
}

// ParseConfig controls how logs are read.
type ParseConfig struct {
	SkipBlankLines bool   `json:"skip_blank_lines" yaml:"skip_blank_lines" mapstructure:"skip_blank_lines"`
	FeatureMode    string `json:"feature_mode,omitempty" yaml:"feature_mode,omitempty" mapstructure:"feature_mode"`
}

// MetricsConfig holds aggregation settings. TimeWeighting has no default.
type MetricsConfig struct {
	TimeWeighting string `json:"time_weighting,omitempty" yaml:"time_weighting,omitempty" mapstructure:"time_weighting"`
}

// CompareConfig holds comparison report settings.
type CompareConfig struct {
	Format     string `json:"format,omitempty" yaml:"format,omitempty" mapstructure:"format"`
	Corpus     string `json:"corpus,omitempty" yaml:"corpus,omitempty" mapstructure:"corpus"`
	CorpusMode string `json:"corpus_mode,omitempty" yaml:"corpus_mode,omitempty" mapstructure:"corpus_mode"`
	OnlyDiff   bool   `json:"only_diff" yaml:"only_diff" mapstructure:"only_diff"`
}

// StoreConfig locates the run index.
type StoreConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty" mapstructure:"path"`
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// WorkerCount returns the batch parse concurrency.
func (c Config) WorkerCount() int {
	if c.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return c.Workers
}

// StorePath returns the run index path.
func (c Config) StorePath() string {
	if p := strings.TrimSpace(c.Store.Path); p != "" {
		return p
	}
	return defaultStorePath
}

// CompareFormat returns the configured comparison format, lower-cased.
func (c Config) CompareFormat() string {
	if f := strings.ToLower(strings.TrimSpace(c.Compare.Format)); f != "" {
		return f
	}
	return defaultFormat
}

// ParseOptions converts the parse section into schema options.
func (c Config) ParseOptions() (schema.Options, error) {
	mode, err := schema.ParseFeatureMode(c.Parse.FeatureMode)
	if err != nil {
		return schema.Options{}, err
	}
	return schema.Options{FeatureMode: mode, SkipBlankLines: c.Parse.SkipBlankLines}, nil
}

// TimeWeighting returns the configured weighting. An empty value is
// metrics.ErrWeightingRequired.
func (c Config) TimeWeighting() (metrics.TimeWeighting, error) {
	return metrics.ParseTimeWeighting(c.Metrics.TimeWeighting)
}

// CorpusMode returns the column selection for the corpus oracle.
func (c Config) CorpusMode() (corpus.Mode, error) {
	return corpus.ParseMode(c.Compare.CorpusMode)
}

// Validate rejects values no command could use.
func (c Config) Validate() error {
	if _, err := c.ParseOptions(); err != nil {
		return fmt.Errorf("parse.feature_mode: %w", err)
	}
	if c.Metrics.TimeWeighting != "" {
		if _, err := c.TimeWeighting(); err != nil {
			return fmt.Errorf("metrics.time_weighting: %w", err)
		}
	}
	if _, err := c.CorpusMode(); err != nil {
		return fmt.Errorf("compare.corpus_mode: %w", err)
	}
	format := c.CompareFormat()
	for _, f := range Formats {
		if f == format {
			return nil
		}
	}
	return fmt.Errorf("compare.format: unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// Load reads the application configuration from the specified path. Files
// ending in .json are decoded as JSON, everything else as YAML.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	config.ConfigPath = path
	return config, nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var config Config
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &config)
	} else {
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return Config{}, err
	}
	return config, nil
}
