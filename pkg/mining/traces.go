package mining

import (
	"fmt"
	"math"
	"strings"

	"github.com/procisocity/seedminer/pkg/worldgen"
)

// TraceMetric names one scalar field of a worldgen.Stats snapshot, sampled
// once per simulated day to build a MineTrace (original_source/src/isocity/
// MineTraces.hpp's MineTraceMetric). Primarily used to back gallery
// sparklines and a traces.json export.
//
// The original enum also carries TransitModeShare, AvgCommuteTime,
// EconomyIndex, and TradeMarketIndex; this port keeps only the metrics
// worldgen.Stats actually models (TransitRidership and TradeVolume stand in
// for the first and last), and drops AvgCommuteTime/EconomyIndex entirely
// since the stand-in simulator has no field backing them (SPEC_FULL.md §C.5).
type TraceMetric int

const (
	TracePopulation TraceMetric = iota
	TraceHappiness
	TraceMoney
	TraceAvgLandValue
	TraceTrafficCongestion
	TraceGoodsSatisfaction
	TraceServicesOverallSatisfaction
	TraceTransitRidership
	TraceTradeVolume
)

var traceMetricNames = map[TraceMetric]string{
	TracePopulation:                  "population",
	TraceHappiness:                   "happiness",
	TraceMoney:                       "money",
	TraceAvgLandValue:                "avg_land_value",
	TraceTrafficCongestion:           "traffic_congestion",
	TraceGoodsSatisfaction:           "goods_satisfaction",
	TraceServicesOverallSatisfaction: "services_overall_satisfaction",
	TraceTransitRidership:            "transit_ridership",
	TraceTradeVolume:                 "trade_volume",
}

var traceMetricAliases = map[string]TraceMetric{
	"population": TracePopulation, "pop": TracePopulation,
	"happiness": TraceHappiness, "happy": TraceHappiness,
	"money": TraceMoney, "cash": TraceMoney,
	"avg_land_value": TraceAvgLandValue, "land_value": TraceAvgLandValue, "landvalue": TraceAvgLandValue, "lv": TraceAvgLandValue,
	"traffic_congestion": TraceTrafficCongestion, "congestion": TraceTrafficCongestion, "cong": TraceTrafficCongestion, "traffic": TraceTrafficCongestion,
	"goods_satisfaction": TraceGoodsSatisfaction, "goods": TraceGoodsSatisfaction, "goods_sat": TraceGoodsSatisfaction,
	"services_overall_satisfaction": TraceServicesOverallSatisfaction, "services": TraceServicesOverallSatisfaction, "service": TraceServicesOverallSatisfaction, "services_sat": TraceServicesOverallSatisfaction,
	"transit_ridership": TraceTransitRidership, "transit": TraceTransitRidership, "ridership": TraceTransitRidership,
	"trade_volume": TraceTradeVolume, "trade": TraceTradeVolume, "market": TraceTradeVolume,
}

// Name returns the canonical, snake_case name of a trace metric.
func (m TraceMetric) Name() string {
	if n, ok := traceMetricNames[m]; ok {
		return n
	}
	return "unknown"
}

// ParseTraceMetric accepts common case/punctuation-insensitive aliases
// (original_source ParseMineTraceMetric).
func ParseTraceMetric(s string) (TraceMetric, error) {
	key := normalizeKey(s)
	for alias, m := range traceMetricAliases {
		if normalizeKey(alias) == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown trace metric %q", s)
}

// ParseTraceMetricList parses a comma-separated metric list, deduplicating
// while preserving first-seen order (original_source ParseMineTraceMetricList).
// An empty string returns a nil, non-error slice.
func ParseTraceMetricList(csv string) ([]TraceMetric, error) {
	if strings.TrimSpace(csv) == "" {
		return nil, nil
	}

	var out []TraceMetric
	seen := make(map[TraceMetric]bool)
	for _, tok := range strings.Split(csv, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		m, err := ParseTraceMetric(tok)
		if err != nil {
			return nil, fmt.Errorf("unknown trace metric: %q", tok)
		}
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// DefaultTraceMetrics returns the default metric set for trace captures
// when none is configured explicitly (original_source DefaultMineTraceMetrics).
func DefaultTraceMetrics() []TraceMetric {
	return []TraceMetric{TracePopulation, TraceHappiness, TraceTrafficCongestion, TraceMoney}
}

// TraceMetricValue extracts a metric's scalar value from a Stats snapshot,
// substituting 0 for any non-finite input (original_source MineTraceMetricValue).
func TraceMetricValue(s worldgen.Stats, m TraceMetric) float64 {
	var v float64
	switch m {
	case TracePopulation:
		v = s.Population
	case TraceHappiness:
		v = s.Happiness
	case TraceMoney:
		v = s.Money
	case TraceAvgLandValue:
		v = s.AvgLandValue
	case TraceTrafficCongestion:
		v = s.TrafficCongestion
	case TraceGoodsSatisfaction:
		v = s.GoodsSatisfaction
	case TraceServicesOverallSatisfaction:
		v = s.ServicesOverallSatisfaction
	case TraceTransitRidership:
		v = s.TransitRidership
	case TraceTradeVolume:
		v = s.TradeVolume
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// MineTrace is a per-day time series of one seed's requested metrics,
// captured over the MineOneSeed step loop.
type MineTrace struct {
	Metrics []TraceMetric
	Series  map[TraceMetric][]float64
}

// newMineTrace allocates an empty series for each requested metric.
func newMineTrace(metrics []TraceMetric) *MineTrace {
	t := &MineTrace{Metrics: append([]TraceMetric(nil), metrics...), Series: make(map[TraceMetric][]float64, len(metrics))}
	for _, m := range metrics {
		t.Series[m] = nil
	}
	return t
}

// sample appends one day's snapshot to every tracked metric's series.
func (t *MineTrace) sample(s worldgen.Stats) {
	for _, m := range t.Metrics {
		t.Series[m] = append(t.Series[m], TraceMetricValue(s, m))
	}
}
