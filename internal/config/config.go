package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete application configuration.
type Config struct {
	Run        RunConfig     `yaml:"run" envconfig:"RUN"`
	Logging    LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Parameters Parameters    `yaml:"parameters" envconfig:"PARAMETERS"`
}

// RunConfig configures one pipeline run.
type RunConfig struct {
	// DataDir holds the on-disk source snapshots (WDI CSV, PWT workbook).
	DataDir string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data" validate:"required"`
	// OutputDir receives the exported reports.
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"output" validate:"required"`
	// MergePolicy resolves conflicting duplicate observations across
	// sources: strict, prefer-first or prefer-last.
	MergePolicy string `yaml:"merge_policy" envconfig:"MERGE_POLICY" default:"strict" validate:"oneof=strict prefer-first prefer-last"`
	// Workers bounds the parallel per-variable extrapolation fan-out.
	Workers int `yaml:"workers" envconfig:"WORKERS" default:"4" validate:"min=1,max=64"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/chinadata.log"`
}

// Load builds the configuration from environment variables (prefix
// CHINADATA) and an optional YAML file. The environment establishes the
// baseline, defaults included; any key present in the file overrides it.
func Load(configFile string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("CHINADATA", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := applyFile(configFile, &cfg); err != nil {
				return nil, fmt.Errorf("load config file %s: %w", configFile, err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks structural constraints and the economic parameter
// invariants. Any failure here is fatal; the run must not start.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return c.Parameters.Validate()
}
