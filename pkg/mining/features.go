package mining

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// DefaultOutlierMetrics is the standard 11-metric feature list used by LOF,
// clustering, and neighbors when the caller doesn't supply its own
// (original_source/src/isocity/SeedMiner.cpp DefaultOutlierMetrics).
func DefaultOutlierMetrics() []Metric {
	return []Metric{
		MetricPopulation, MetricHappiness, MetricMoney, MetricAvgLandValue,
		MetricTrafficCongestion, MetricGoodsSatisfaction, MetricServicesOverallSatisfaction,
		MetricWaterFrac, MetricRoadFrac, MetricSeaFloodFrac, MetricPondMaxDepth,
	}
}

// medianOfSorted returns the median of an already-sorted slice.
func medianOfSorted(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	return medianOfSorted(sorted)
}

// Standardizer holds per-column (center, scale) pairs for feature
// standardization (spec.md §4.9 Preparation).
type Standardizer struct {
	Center []float64
	Scale  []float64
}

// FitStandardizer computes center/scale per metric column: robust scaling
// uses median/MAD*1.4826 (with a 1.0 fallback on a degenerate scale),
// non-robust uses mean/stddev (spec.md §4.9, original_source SeedMiner.cpp).
func FitStandardizer(records []MineRecord, indices []int, metrics []Metric, robust bool) Standardizer {
	s := Standardizer{Center: make([]float64, len(metrics)), Scale: make([]float64, len(metrics))}

	for j, m := range metrics {
		col := make([]float64, len(indices))
		for k, idx := range indices {
			v := m.Value(records[idx])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				v = 0
			}
			col[k] = v
		}

		if robust {
			med := median(col)
			devs := make([]float64, len(col))
			for i, v := range col {
				devs[i] = math.Abs(v - med)
			}
			mad := median(devs)
			scale := mad * 1.4826
			if scale < 1e-12 || math.IsNaN(scale) || math.IsInf(scale, 0) {
				scale = 1.0
			}
			s.Center[j] = med
			s.Scale[j] = scale
		} else {
			mean := 0.0
			if len(col) > 0 {
				mean = floats.Sum(col) / float64(len(col))
			}
			var variance float64
			for _, v := range col {
				d := v - mean
				variance += d * d
			}
			if len(col) > 0 {
				variance /= float64(len(col))
			}
			scale := math.Sqrt(variance)
			if scale < 1e-12 || math.IsNaN(scale) || math.IsInf(scale, 0) {
				scale = 1.0
			}
			s.Center[j] = mean
			s.Scale[j] = scale
		}
	}
	return s
}

// featureRow standardizes one record's metric column values.
func (s Standardizer) featureRow(r MineRecord, metrics []Metric) []float64 {
	row := make([]float64, len(metrics))
	for j, m := range metrics {
		v := m.Value(r)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		row[j] = (v - s.Center[j]) / s.Scale[j]
	}
	return row
}

// scalarDistance is normalized Euclidean distance over standardized feature
// rows, divided by sqrt(dim) (spec.md §4.9).
func scalarDistance(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum) / math.Sqrt(float64(len(a)))
}

// layoutDistance is the normalized Hamming distance between two pHashes
// (spec.md §4.9/§4.6).
func layoutDistance(a, b uint64) float64 {
	return float64(HammingDistance64(a, b)) / 64.0
}

// DistanceSpace builds a DistanceFunc over a record subset's standardized
// features and pHashes for the requested DiversityMode (spec.md §4.9/§4.10/
// §4.12).
type DistanceSpace struct {
	records      []MineRecord
	indices      []int // entry id -> record index
	features     [][]float64
	mode         DiversityMode
	layoutWeight float64
}

// NewDistanceSpace fits a standardizer (when needed) and precomputes
// standardized feature rows for every entry in indices.
func NewDistanceSpace(records []MineRecord, indices []int, metrics []Metric, robust bool, mode DiversityMode, layoutWeight float64) *DistanceSpace {
	ds := &DistanceSpace{records: records, indices: indices, mode: mode, layoutWeight: clamp01v(layoutWeight)}
	if mode != DiversityLayout {
		std := FitStandardizer(records, indices, metrics, robust)
		ds.features = make([][]float64, len(indices))
		for i, idx := range indices {
			ds.features[i] = std.featureRow(records[idx], metrics)
		}
	}
	return ds
}

func clamp01v(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Distance computes the distance between entry ids a and b (indices into
// the DistanceSpace's id list, i.e. VP-tree ids).
func (ds *DistanceSpace) Distance(a, b int) float64 {
	switch ds.mode {
	case DiversityScalar:
		return scalarDistance(ds.features[a], ds.features[b])
	case DiversityLayout:
		return layoutDistance(ds.records[ds.indices[a]].OverlayPHash, ds.records[ds.indices[b]].OverlayPHash)
	default: // Hybrid
		scalar := scalarDistance(ds.features[a], ds.features[b])
		layout := layoutDistance(ds.records[ds.indices[a]].OverlayPHash, ds.records[ds.indices[b]].OverlayPHash)
		return (1-ds.layoutWeight)*scalar + ds.layoutWeight*layout
	}
}
