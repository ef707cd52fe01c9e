package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete pipeline configuration. Values come from an optional
// YAML file overlaid with CENSUS_* environment variables; unset fields fall
// back to the documented defaults.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
}

// LoggingConfig controls the slog logger.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"` // console, file, both
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig holds the filesystem layout. Relative paths are resolved
// against BaseDir by Load; components receive absolute paths only.
type PathsConfig struct {
	BaseDir             string `yaml:"base_dir" envconfig:"BASE_DIR"`
	RawDir              string `yaml:"raw_dir" envconfig:"RAW_DIR"`
	CleanDir            string `yaml:"clean_dir" envconfig:"CLEAN_DIR"`
	AggregatesDir       string `yaml:"aggregates_dir" envconfig:"AGGREGATES_DIR"`
	IndicatorsDir       string `yaml:"indicators_dir" envconfig:"INDICATORS_DIR"`
	ReportsDir          string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir             string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	BoundaryFile        string `yaml:"boundary_file" envconfig:"BOUNDARY_FILE"`
	IndicatorConfigFile string `yaml:"indicator_config_file" envconfig:"INDICATOR_CONFIG_FILE"`
}

// PipelineConfig holds the census-extract parameters.
type PipelineConfig struct {
	Year               int         `yaml:"year" envconfig:"YEAR" validate:"required,gt=0"`
	AreaPrefix         string      `yaml:"area_prefix" envconfig:"AREA_PREFIX" validate:"required"`
	KeyColumn          string      `yaml:"key_column" envconfig:"KEY_COLUMN" validate:"required"`
	BoundaryUnitColumn string      `yaml:"boundary_unit_column" envconfig:"BOUNDARY_UNIT_COLUMN" validate:"required"`
	BoundaryAreaColumn string      `yaml:"boundary_area_column" envconfig:"BOUNDARY_AREA_COLUMN" validate:"required"`
	Tables             []TableSpec `yaml:"tables" validate:"required,min=1,dive"`
}

// TableSpec describes one source table: its name, the expected number of
// part files, and the optional aggregate baseline used for reconciliation.
type TableSpec struct {
	Name          string `yaml:"name" validate:"required"`
	Parts         int    `yaml:"parts" validate:"required,gt=0"`
	Description   string `yaml:"description"`
	AggregateFile string `yaml:"aggregate_file"`
}

// DefaultTables returns the standard 1981 Small Area Statistics tables.
func DefaultTables() []TableSpec {
	return []TableSpec{
		{Name: "sas02", Parts: 5, Description: "Demographics (Total Population)", AggregateFile: "1981_sas02_totalpop_combined.csv"},
		{Name: "sas04", Parts: 5, Description: "Country of Birth", AggregateFile: "1981_sas04_birth_combined.csv"},
		{Name: "sas07", Parts: 5, Description: "Employment", AggregateFile: "1981_sas07_employment_combined.csv"},
		{Name: "sas10", Parts: 5, Description: "Housing & Tenure", AggregateFile: "1981_sas10_housing_combined.csv"},
	}
}

// Load builds the configuration: YAML file (if configFile is non-empty and
// exists), then environment variables, then defaults for whatever is still
// unset. Paths are resolved to absolute before validation.
func Load(configFile string) (*Config, error) {
	var cfg Config

	if configFile != "" {
		data, err := os.ReadFile(configFile)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	}

	// Environment overrides file values.
	if err := envconfig.Process("CENSUS", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Paths.resolve(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills every still-zero field with its documented default.
func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/pipeline.log"
	}

	if c.Paths.BaseDir == "" {
		c.Paths.BaseDir = "."
	}
	if c.Paths.RawDir == "" {
		c.Paths.RawDir = "data/raw/sas"
	}
	if c.Paths.CleanDir == "" {
		c.Paths.CleanDir = "data/processed/raw_ed_level"
	}
	if c.Paths.AggregatesDir == "" {
		c.Paths.AggregatesDir = "data/processed/aggregates"
	}
	if c.Paths.IndicatorsDir == "" {
		c.Paths.IndicatorsDir = "data/processed/indicators"
	}
	if c.Paths.ReportsDir == "" {
		c.Paths.ReportsDir = "docs/reports"
	}
	if c.Paths.LogsDir == "" {
		c.Paths.LogsDir = "logs"
	}
	if c.Paths.BoundaryFile == "" {
		c.Paths.BoundaryFile = "gis_boundaries/boundary_reference.csv"
	}
	if c.Paths.IndicatorConfigFile == "" {
		c.Paths.IndicatorConfigFile = "configs/indicators.yml"
	}

	if c.Pipeline.Year == 0 {
		c.Pipeline.Year = DefaultCensusYear
	}
	if c.Pipeline.AreaPrefix == "" {
		c.Pipeline.AreaPrefix = DefaultAreaPrefix
	}
	if c.Pipeline.KeyColumn == "" {
		c.Pipeline.KeyColumn = DefaultKeyColumn
	}
	if c.Pipeline.BoundaryUnitColumn == "" {
		c.Pipeline.BoundaryUnitColumn = DefaultBoundaryUnitColumn
	}
	if c.Pipeline.BoundaryAreaColumn == "" {
		c.Pipeline.BoundaryAreaColumn = DefaultBoundaryAreaColumn
	}
	if len(c.Pipeline.Tables) == 0 {
		c.Pipeline.Tables = DefaultTables()
	}
}

// resolve makes every path absolute against BaseDir.
func (p *PathsConfig) resolve() error {
	base, err := filepath.Abs(p.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base dir %s: %w", p.BaseDir, err)
	}
	p.BaseDir = base

	for _, path := range []*string{
		&p.RawDir, &p.CleanDir, &p.AggregatesDir, &p.IndicatorsDir,
		&p.ReportsDir, &p.LogsDir, &p.BoundaryFile, &p.IndicatorConfigFile,
	} {
		if !filepath.IsAbs(*path) {
			*path = filepath.Join(base, *path)
		}
	}
	return nil
}

// TableByName returns the spec for a named table.
func (p *PipelineConfig) TableByName(name string) (TableSpec, bool) {
	for _, t := range p.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableSpec{}, false
}
