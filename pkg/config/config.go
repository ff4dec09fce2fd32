// Package config holds the YAML-driven configuration for the seed-mining
// core, mirroring the nested-struct-with-yaml-tags layout used throughout
// the wider ProcIsoCity tooling.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a minecity run.
type Config struct {
	Mine      MineConfig      `yaml:"mine"`
	ProcGen   ProcGenConfig   `yaml:"procgen"`
	Sim       SimConfig       `yaml:"sim"`
	Reporting ReportingConfig `yaml:"reporting"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// MineConfig mirrors isocity::MineConfig (spec.md §3).
type MineConfig struct {
	SeedStart                uint64  `yaml:"seed_start"`
	SeedStep                 uint64  `yaml:"seed_step"`
	Samples                  int     `yaml:"samples"`
	SeedSampler              string  `yaml:"seed_sampler"`
	SeedXor                  uint64  `yaml:"seed_xor"`
	W                        int     `yaml:"w"`
	H                        int     `yaml:"h"`
	Days                     int     `yaml:"days"`
	Threads                  int     `yaml:"threads"`
	Objective                string  `yaml:"objective"`
	ScoreExpr                string  `yaml:"score_expr"`
	HydrologyEnabled         bool    `yaml:"hydrology_enabled"`
	SeaLevelOverride         float64 `yaml:"sea_level_override"` // NaN = unset
	SeaRequireEdgeConnection bool    `yaml:"sea_require_edge_connection"`
	SeaEightConnected        bool    `yaml:"sea_eight_connected"`
	DepressionEpsilon        float64 `yaml:"depression_epsilon"`
}

// ProcGenConfig is the (out-of-scope, §6) procedural generator configuration;
// only the fields the mining core reads are carried here.
type ProcGenConfig struct {
	WaterLevel float64 `yaml:"water_level"`
}

// SimConfig is the (out-of-scope, §6) simulator configuration.
type SimConfig struct {
	DayLengthSeconds float64 `yaml:"day_length_seconds"`
}

// ReportingConfig controls logging and output formats.
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
	Formats   []string `yaml:"formats"`
}

// TelemetryConfig controls the optional Prometheus exporter.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Default returns a default configuration matching isocity::MineConfig's
// field defaults exactly (spec.md §3, original_source/SeedMiner.hpp).
func Default() *Config {
	return &Config{
		Mine: MineConfig{
			SeedStart:                1,
			SeedStep:                 1,
			Samples:                  100,
			SeedSampler:              "linear",
			SeedXor:                  0,
			W:                        96,
			H:                        96,
			Days:                     120,
			Threads:                  1,
			Objective:                "balanced",
			ScoreExpr:                "",
			HydrologyEnabled:         true,
			SeaLevelOverride:         nanSentinel(),
			SeaRequireEdgeConnection: true,
			SeaEightConnected:        false,
			DepressionEpsilon:        0.0,
		},
		ProcGen: ProcGenConfig{
			WaterLevel: 0.35,
		},
		Sim: SimConfig{
			DayLengthSeconds: 1.0,
		},
		Reporting: ReportingConfig{
			OutputDir: "./mine-out",
			LogLevel:  "info",
			LogFormat: "text",
			Formats:   []string{"csv", "jsonl"},
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

func nanSentinel() float64 {
	var zero float64
	return zero / zero
}

// Load reads configuration from a YAML file, falling back to defaults if the
// path does not exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = "minecity.yaml"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks invariants spec.md §7 requires the driver to reject before
// mining starts.
func (c *Config) Validate() error {
	if c.Mine.W <= 0 || c.Mine.H <= 0 {
		return fmt.Errorf("mine.w and mine.h must be positive")
	}
	if c.Mine.Samples < 0 {
		return fmt.Errorf("mine.samples must be non-negative")
	}
	if c.Mine.Days < 0 {
		return fmt.Errorf("mine.days must be non-negative")
	}
	if c.Mine.DepressionEpsilon < 0 {
		return fmt.Errorf("mine.depression_epsilon must be non-negative")
	}
	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}
	return nil
}

// WaitForFileRemoval is a small helper retained for CLI resume polling; not
// part of the original chaos-utils surface, kept minimal.
func WaitForFileRemoval(path string, pollEvery time.Duration) error {
	for {
		_, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil
		}
		if err != nil {
			return err
		}
		time.Sleep(pollEvery)
	}
}
