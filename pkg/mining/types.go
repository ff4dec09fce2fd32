// Package mining implements the ProcIsoCity seed-mining core: the seed
// sampler, perceptual hash, VP-tree, per-seed pipeline, parallel driver, and
// the Pareto/MAP-Elites/LOF/MMR/clustering/embedding/neighbor analyses.
package mining

import (
	"fmt"
	"math"
	"strings"

	"github.com/procisocity/seedminer/pkg/worldgen"
)

// SeedSampler selects the deterministic index->seed mapping (spec.md §4.1).
type SeedSampler int

const (
	SamplerLinear SeedSampler = iota
	SamplerSplitMix64
	SamplerVanDerCorput2
	SamplerHalton23
)

// ParseSeedSampler accepts common case/punctuation-insensitive aliases.
func ParseSeedSampler(s string) (SeedSampler, error) {
	switch normalizeKey(s) {
	case "linear":
		return SamplerLinear, nil
	case "splitmix64", "splitmix":
		return SamplerSplitMix64, nil
	case "vandercorput2", "vandercorput", "vdc2", "vdc":
		return SamplerVanDerCorput2, nil
	case "halton23", "halton":
		return SamplerHalton23, nil
	default:
		return 0, fmt.Errorf("unknown seed sampler %q", s)
	}
}

// Name returns the canonical name of a sampler.
func (s SeedSampler) Name() string {
	switch s {
	case SamplerLinear:
		return "Linear"
	case SamplerSplitMix64:
		return "SplitMix64"
	case SamplerVanDerCorput2:
		return "VanDerCorput2"
	case SamplerHalton23:
		return "Halton23"
	default:
		return "Unknown"
	}
}

// Objective is an enumerated preset weight vector (spec.md §4.4).
type Objective int

const (
	ObjectiveBalanced Objective = iota
	ObjectiveGrowth
	ObjectiveResilient
	ObjectiveChaos
)

// ParseObjective accepts common case/punctuation-insensitive aliases.
func ParseObjective(s string) (Objective, error) {
	switch normalizeKey(s) {
	case "balanced":
		return ObjectiveBalanced, nil
	case "growth":
		return ObjectiveGrowth, nil
	case "resilient", "resilience":
		return ObjectiveResilient, nil
	case "chaos":
		return ObjectiveChaos, nil
	default:
		return 0, fmt.Errorf("unknown objective %q", s)
	}
}

// Name returns the canonical name of an objective.
func (o Objective) Name() string {
	switch o {
	case ObjectiveBalanced:
		return "Balanced"
	case ObjectiveGrowth:
		return "Growth"
	case ObjectiveResilient:
		return "Resilient"
	case ObjectiveChaos:
		return "Chaos"
	default:
		return "Unknown"
	}
}

// normalizeKey folds case and treats '_', '-', ' ', '.' as equivalent
// separators, matching the expression VM's variable-name normalization
// (spec.md §4.13) and the sampler/objective parsers (spec.md §4.1).
func normalizeKey(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Config is the immutable input to a mining run (spec.md §3 MineConfig).
type Config struct {
	SeedStart   uint64
	SeedStep    uint64
	SeedXor     uint64
	SeedSampler SeedSampler
	Samples     int

	W, H int
	Days int

	Threads int

	Objective Objective
	ScoreExpr string

	HydrologyEnabled         bool
	SeaLevelOverride         float64 // NaN = use proc config default
	SeaRequireEdgeConnection bool
	SeaEightConnected        bool
	DepressionEpsilon        float64

	// TraceMetrics, when non-empty, enables per-day KPI capture during
	// MineOneSeed's step loop (original_source MineTraces.hpp). Empty
	// disables capture entirely so ordinary batch runs pay no extra memory.
	TraceMetrics []TraceMetric
}

// DefaultConfig mirrors isocity::MineConfig's field defaults exactly
// (original_source/src/isocity/SeedMiner.hpp).
func DefaultConfig() Config {
	return Config{
		SeedStart:                1,
		SeedStep:                 1,
		Samples:                  100,
		SeedSampler:              SamplerLinear,
		W:                        96,
		H:                        96,
		Days:                     120,
		Threads:                  1,
		Objective:                ObjectiveBalanced,
		ScoreExpr:                "",
		HydrologyEnabled:         true,
		SeaLevelOverride:         math.NaN(),
		SeaRequireEdgeConnection: true,
		SeaEightConnected:        false,
		DepressionEpsilon:        0.0,
	}
}

// ScoreWeights is the internal weight vector derived from an Objective
// (spec.md §4.4 step 5).
type ScoreWeights struct {
	Population              float64
	Happiness                float64
	Money                    float64
	LandValue                float64
	GoodsSatisfaction        float64
	ServicesSatisfaction     float64
	Congestion               float64
	SeaFloodFrac             float64
	SeaMaxDepth              float64
	PondFrac                 float64
	PondMaxDepth             float64
}

// MineRecord is one mined seed's complete result (spec.md §3).
type MineRecord struct {
	Index int
	Seed  uint64
	W, H  int

	Stats worldgen.Stats

	WaterTiles, RoadTiles, ResTiles, ComTiles, IndTiles int
	ParkTiles, SchoolTiles, HospitalTiles               int
	PoliceTiles, FireTiles                              int
	WaterFrac, RoadFrac, ZoneFrac, ParkFrac              float64

	SeaFloodCells int
	SeaFloodFrac  float64
	SeaMaxDepth   float64
	PondCells     int
	PondFrac      float64
	PondMaxDepth  float64
	PondVolume    float64

	ObjectiveScore float64
	Score          float64

	OverlayPHash uint64

	// Analysis-set fields, written only by the Analyses stage.
	ParetoRank     int
	ParetoCrowding float64
	OutlierLof     float64
	Novelty        float64

	// Traces holds the per-day KPI series captured during MineOneSeed when
	// cfg.TraceMetrics is non-empty; nil otherwise.
	Traces *MineTrace
}

// Area returns w*h, clamped to at least 1 as the expression VM's `area`
// variable requires (spec.md §4.13).
func (r MineRecord) Area() float64 {
	a := float64(r.W) * float64(r.H)
	if a < 1 {
		return 1
	}
	return a
}

// FloodRisk is the derived metric from spec.md §4.13's expression VM
// variable table: seaFloodFrac + pondFrac + 0.25*(seaMaxDepth+pondMaxDepth).
func (r MineRecord) FloodRisk() float64 {
	return r.SeaFloodFrac + r.PondFrac + 0.25*(r.SeaMaxDepth+r.PondMaxDepth)
}

// ParetoObjective names one objective axis for Pareto ranking (spec.md §4.7).
type ParetoObjective struct {
	Metric   Metric
	Maximize bool
}

// ParetoResult is the per-record rank/crowding plus front membership
// (spec.md §3 ParetoResult).
type ParetoResult struct {
	Rank     []int
	Crowding []float64
	Fronts   [][]int
}

// kParetoCrowdingInf is the large finite constant used in place of +Inf for
// Pareto boundary crowding, deliberate for JSON/CSV portability (spec.md §9
// Open Question, original_source ComputeCrowding).
const kParetoCrowdingInf = 1e30

// MapElitesAxis describes one axis of the MAP-Elites grid (spec.md §4.8).
type MapElitesAxis struct {
	Metric Metric
	Bins   int
	Min    float64
	Max    float64
	Auto   bool // infer [Min,Max] from the record set
}

// MapElitesConfig configures a MAP-Elites quality-diversity run.
type MapElitesConfig struct {
	X, Y            MapElitesAxis
	Quality         Metric
	QualityMaximize bool
	ClampToBounds   bool
}

// MapElitesResult is the resolved grid plus aggregates (spec.md §3).
type MapElitesResult struct {
	Cfg          MapElitesConfig
	ResolvedX    MapElitesAxis
	ResolvedY    MapElitesAxis
	Grid         []int // size XBins*YBins; record index or -1
	FilledCells  int
	Coverage     float64
	QDScore      float64
}

// DiversityMode selects the distance space for MMR/LOF/clustering/neighbors
// (spec.md §4.6/§4.9/§4.10/§4.12).
type DiversityMode int

const (
	DiversityScalar DiversityMode = iota
	DiversityLayout
	DiversityHybrid
)

// OutlierConfig configures the LOF analysis (spec.md §4.9).
type OutlierConfig struct {
	K             int
	Space         DiversityMode
	LayoutWeight  float64
	Metrics       []Metric
	RobustScaling bool
}

// OutlierResult is the per-record lof/novelty plus the config used
// (spec.md §3).
type OutlierResult struct {
	Cfg     OutlierConfig
	Lof     []float64
	Novelty []float64
}

// MineClusteringConfig configures k-medoids clustering (spec.md §4.10,
// original_source/src/isocity/MineClustering.hpp).
type MineClusteringConfig struct {
	K             int
	Space         DiversityMode
	LayoutWeight  float64
	RobustScaling bool
	Metrics       []Metric
	MaxIters      int
}

// DefaultMineClusteringConfig mirrors MineClusteringConfig's C++ defaults.
func DefaultMineClusteringConfig() MineClusteringConfig {
	return MineClusteringConfig{K: 8, Space: DiversityHybrid, LayoutWeight: 0.50, RobustScaling: true, MaxIters: 30}
}

// MineClusteringResult is the resolved k-medoids clustering output.
type MineClusteringResult struct {
	Cfg            MineClusteringConfig
	SelectedIndices []int
	Assignment      []int
	ClusterSizes    []int
	MedoidEntry     []int
	MedoidRecIndex  []int
	TotalCost       float64
	AvgSilhouette   float64
	OK              bool
	Warning         string
}

// MineEmbeddingResult is the classical-MDS 2-D embedding output
// (spec.md §4.11).
type MineEmbeddingResult struct {
	X, Y          []float64
	Lambda1       float64
	Lambda2       float64
	OK            bool
	Warning       string
}

// MineNeighborsResult is the per-selected-point kNN graph (spec.md §4.12).
type MineNeighborsResult struct {
	Neighbors [][]int
	Distances [][]float64
}
