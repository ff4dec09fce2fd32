package main

import (
	"fmt"

	cfgpkg "github.com/procisocity/seedminer/pkg/config"
	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func loadConfig() (*cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *cfgpkg.Config) *reporting.Logger {
	level := reporting.LogLevel(cfg.Reporting.LogLevel)
	if verbose {
		level = reporting.LogLevelDebug
	}
	return reporting.NewLogger(reporting.LoggerConfig{
		Level:  level,
		Format: reporting.LogFormat(cfg.Reporting.LogFormat),
	})
}

// toMiningConfig resolves the YAML-friendly config.MineConfig into the
// mining package's canonical Config (spec.md §3), parsing the sampler and
// objective name strings.
func toMiningConfig(mc cfgpkg.MineConfig) (mining.Config, error) {
	sampler, err := mining.ParseSeedSampler(mc.SeedSampler)
	if err != nil {
		return mining.Config{}, err
	}
	objective, err := mining.ParseObjective(mc.Objective)
	if err != nil {
		return mining.Config{}, err
	}
	return mining.Config{
		SeedStart:                mc.SeedStart,
		SeedStep:                 mc.SeedStep,
		SeedXor:                  mc.SeedXor,
		SeedSampler:              sampler,
		Samples:                  mc.Samples,
		W:                        mc.W,
		H:                        mc.H,
		Days:                     mc.Days,
		Threads:                  mc.Threads,
		Objective:                objective,
		ScoreExpr:                mc.ScoreExpr,
		HydrologyEnabled:         mc.HydrologyEnabled,
		SeaLevelOverride:         mc.SeaLevelOverride,
		SeaRequireEdgeConnection: mc.SeaRequireEdgeConnection,
		SeaEightConnected:        mc.SeaEightConnected,
		DepressionEpsilon:        mc.DepressionEpsilon,
	}, nil
}

func toProcGenConfig(pc cfgpkg.ProcGenConfig) worldgen.ProcGenConfig {
	return worldgen.ProcGenConfig{WaterLevel: pc.WaterLevel}
}

func toSimConfig(sc cfgpkg.SimConfig) worldgen.SimConfig {
	return worldgen.SimConfig{DayLengthSeconds: sc.DayLengthSeconds}
}

func parseMetric(name string, fallback mining.Metric) mining.Metric {
	m, err := mining.ParseMetric(name)
	if err != nil {
		return fallback
	}
	return m
}

func parseDiversityMode(name string) mining.DiversityMode {
	switch name {
	case "layout":
		return mining.DiversityLayout
	case "scalar":
		return mining.DiversityScalar
	default:
		return mining.DiversityHybrid
	}
}
