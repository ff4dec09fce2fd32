package mining

import "fmt"

// Metric names one scalar field of a MineRecord, used by Pareto axes,
// MAP-Elites axes, MMR/LOF/clustering feature lists (spec.md §3 "MineMetric
// enum (19 values)", original_source/src/isocity/SeedMiner.hpp).
type Metric int

const (
	MetricPopulation Metric = iota
	MetricHappiness
	MetricMoney
	MetricAvgLandValue
	MetricTrafficCongestion
	MetricGoodsSatisfaction
	MetricServicesOverallSatisfaction
	MetricWaterFrac
	MetricRoadFrac
	MetricZoneFrac
	MetricParkFrac
	MetricSeaFloodFrac
	MetricSeaMaxDepth
	MetricPondFrac
	MetricPondMaxDepth
	MetricPondVolume
	MetricFloodRisk
	MetricScore
	MetricObjectiveScore
)

var metricNames = map[Metric]string{
	MetricPopulation:                  "Population",
	MetricHappiness:                   "Happiness",
	MetricMoney:                       "Money",
	MetricAvgLandValue:                "AvgLandValue",
	MetricTrafficCongestion:           "TrafficCongestion",
	MetricGoodsSatisfaction:           "GoodsSatisfaction",
	MetricServicesOverallSatisfaction: "ServicesOverallSatisfaction",
	MetricWaterFrac:                   "WaterFrac",
	MetricRoadFrac:                    "RoadFrac",
	MetricZoneFrac:                    "ZoneFrac",
	MetricParkFrac:                    "ParkFrac",
	MetricSeaFloodFrac:                "SeaFloodFrac",
	MetricSeaMaxDepth:                 "SeaMaxDepth",
	MetricPondFrac:                    "PondFrac",
	MetricPondMaxDepth:                "PondMaxDepth",
	MetricPondVolume:                  "PondVolume",
	MetricFloodRisk:                   "FloodRisk",
	MetricScore:                       "Score",
	MetricObjectiveScore:              "ObjectiveScore",
}

// Name returns the canonical name of a metric.
func (m Metric) Name() string {
	if n, ok := metricNames[m]; ok {
		return n
	}
	return "Unknown"
}

// ParseMetric accepts common case/punctuation-insensitive aliases.
func ParseMetric(s string) (Metric, error) {
	key := normalizeKey(s)
	for m, name := range metricNames {
		if normalizeKey(name) == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mine metric %q", s)
}

// Value extracts the metric's scalar value from a record
// (original_source MineMetricValue).
func (m Metric) Value(r MineRecord) float64 {
	switch m {
	case MetricPopulation:
		return r.Stats.Population
	case MetricHappiness:
		return r.Stats.Happiness
	case MetricMoney:
		return r.Stats.Money
	case MetricAvgLandValue:
		return r.Stats.AvgLandValue
	case MetricTrafficCongestion:
		return r.Stats.TrafficCongestion
	case MetricGoodsSatisfaction:
		return r.Stats.GoodsSatisfaction
	case MetricServicesOverallSatisfaction:
		return r.Stats.ServicesOverallSatisfaction
	case MetricWaterFrac:
		return r.WaterFrac
	case MetricRoadFrac:
		return r.RoadFrac
	case MetricZoneFrac:
		return r.ZoneFrac
	case MetricParkFrac:
		return r.ParkFrac
	case MetricSeaFloodFrac:
		return r.SeaFloodFrac
	case MetricSeaMaxDepth:
		return r.SeaMaxDepth
	case MetricPondFrac:
		return r.PondFrac
	case MetricPondMaxDepth:
		return r.PondMaxDepth
	case MetricPondVolume:
		return r.PondVolume
	case MetricFloodRisk:
		return r.FloodRisk()
	case MetricScore:
		return r.Score
	case MetricObjectiveScore:
		return r.ObjectiveScore
	default:
		return 0
	}
}
