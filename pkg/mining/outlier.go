package mining

import (
	"math"
	"sort"
)

// ComputeLocalOutlierFactor computes per-record LOF and novelty over a
// VP-tree built in the configured distance space (spec.md §4.9).
func ComputeLocalOutlierFactor(records []MineRecord, cfg OutlierConfig) OutlierResult {
	n := len(records)
	result := OutlierResult{Cfg: cfg, Lof: make([]float64, n), Novelty: make([]float64, n)}
	if n == 0 {
		return result
	}

	k := cfg.K
	if k < 1 {
		k = 1
	}
	if k > n-1 {
		k = n - 1
	}
	if k < 1 {
		// single-record set: degenerate default (spec.md §8 Testable
		// Property 8, §4.9 step 4).
		result.Lof[0] = 1.0
		result.Novelty[0] = 0.0
		return result
	}

	metrics := cfg.Metrics
	if len(metrics) == 0 {
		metrics = DefaultOutlierMetrics()
	}

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	ds := NewDistanceSpace(records, ids, metrics, cfg.RobustScaling, cfg.Space, cfg.LayoutWeight)

	tree := BuildVPTree(append([]int(nil), ids...), ds.Distance)

	neighbors := make([][]Neighbor, n)
	kdist := make([]float64, n)
	for i := 0; i < n; i++ {
		nb := tree.KNearest(i, k)
		neighbors[i] = nb
		if len(nb) > 0 {
			kdist[i] = nb[len(nb)-1].Distance
			sum := 0.0
			for _, e := range nb {
				sum += e.Distance
			}
			result.Novelty[i] = sum / float64(len(nb))
		}
	}

	lrd := make([]float64, n)
	for i := 0; i < n; i++ {
		nb := neighbors[i]
		if len(nb) == 0 {
			lrd[i] = 0
			continue
		}
		var sum float64
		for _, e := range nb {
			reach := kdist[e.ID]
			if ds.Distance(i, e.ID) > reach {
				reach = ds.Distance(i, e.ID)
			}
			sum += reach
		}
		if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
			lrd[i] = 0
		} else {
			lrd[i] = float64(len(nb)) / sum
		}
	}

	for i := 0; i < n; i++ {
		nb := neighbors[i]
		if len(nb) == 0 || lrd[i] <= 0 || math.IsNaN(lrd[i]) || math.IsInf(lrd[i], 0) {
			result.Lof[i] = 1.0
			continue
		}
		var sum float64
		degenerate := false
		for _, e := range nb {
			if lrd[e.ID] <= 0 || math.IsNaN(lrd[e.ID]) || math.IsInf(lrd[e.ID], 0) {
				degenerate = true
				break
			}
			sum += lrd[e.ID] / lrd[i]
		}
		if degenerate {
			result.Lof[i] = 1.0
			continue
		}
		result.Lof[i] = sum / float64(len(nb))
	}

	return result
}

// SelectTopOutlierIndices sorts by (outlierLof descending, seed ascending,
// index ascending) and returns the first topK (spec.md §4.9).
func SelectTopOutlierIndices(records []MineRecord, topK int) []int {
	idxs := make([]int, len(records))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		a, b := records[idxs[i]], records[idxs[j]]
		if a.OutlierLof != b.OutlierLof {
			return a.OutlierLof > b.OutlierLof
		}
		if a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.Index < b.Index
	})
	if topK >= 0 && topK < len(idxs) {
		idxs = idxs[:topK]
	}
	return idxs
}
