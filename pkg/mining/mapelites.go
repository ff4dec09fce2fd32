package mining

import "math"

// ResolveAxisRange resolves an axis's [min,max] bounds, inferring them from
// records when Auto is set, and widening a degenerate range by 1e-9
// (spec.md §4.8).
func ResolveAxisRange(axis MapElitesAxis, records []MineRecord) MapElitesAxis {
	if !axis.Auto {
		if axis.Max == axis.Min {
			axis.Max += 1e-9
		}
		return axis
	}

	if len(records) == 0 {
		axis.Min, axis.Max = 0, 1e-9
		return axis
	}

	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, r := range records {
		v := axis.Metric.Value(r)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		hi = lo + 1e-9
	}
	axis.Min, axis.Max = lo, hi
	return axis
}

// BinForValue bins v into [0, bins-1], clamping when clampToBounds is set
// or returning (-1, false) for out-of-range values otherwise (spec.md §4.8).
func BinForValue(v, min, max float64, bins int, clampToBounds bool) (int, bool) {
	if bins <= 0 {
		return -1, false
	}
	if v < min || v > max {
		if !clampToBounds {
			return -1, false
		}
	}
	t := (v - min) / (max - min)
	bin := int(math.Floor(t * float64(bins)))
	if bin < 0 {
		bin = 0
	}
	if bin > bins-1 {
		bin = bins - 1
	}
	return bin, true
}

// QualityScore extracts the quality metric's comparable value, negated
// when the config minimizes, so "greater is better" can be used uniformly
// for cell-winner comparisons (spec.md §4.8).
func QualityScore(r MineRecord, cfg MapElitesConfig) float64 {
	v := cfg.Quality.Value(r)
	if !cfg.QualityMaximize {
		return -v
	}
	return v
}

// better reports whether candidate (quality, seed, index) beats current
// under the MAP-Elites tie-break: quality descending, then seed ascending,
// then index ascending (spec.md §4.8, §8 Testable Property 7).
func better(qa float64, seedA uint64, idxA int, qb float64, seedB uint64, idxB int) bool {
	if qa != qb {
		return qa > qb
	}
	if seedA != seedB {
		return seedA < seedB
	}
	return idxA < idxB
}

// ComputeMapElites bins records onto a 2-axis quality-diversity grid,
// keeping the winning record per cell under the tie-break defined by
// better() (spec.md §4.8).
func ComputeMapElites(records []MineRecord, cfg MapElitesConfig) MapElitesResult {
	resolvedX := ResolveAxisRange(cfg.X, records)
	resolvedY := ResolveAxisRange(cfg.Y, records)

	xBins, yBins := resolvedX.Bins, resolvedY.Bins
	if xBins <= 0 {
		xBins = 1
	}
	if yBins <= 0 {
		yBins = 1
	}

	grid := make([]int, xBins*yBins)
	for i := range grid {
		grid[i] = -1
	}

	for idx, r := range records {
		bx, okX := BinForValue(resolvedX.Metric.Value(r), resolvedX.Min, resolvedX.Max, xBins, cfg.ClampToBounds)
		if !okX {
			continue
		}
		by, okY := BinForValue(resolvedY.Metric.Value(r), resolvedY.Min, resolvedY.Max, yBins, cfg.ClampToBounds)
		if !okY {
			continue
		}
		cell := by*xBins + bx
		q := QualityScore(r, cfg)

		current := grid[cell]
		if current == -1 {
			grid[cell] = idx
			continue
		}
		cur := records[current]
		if better(q, r.Seed, idx, QualityScore(cur, cfg), cur.Seed, current) {
			grid[cell] = idx
		}
	}

	var filled int
	var qd float64
	for _, cell := range grid {
		if cell != -1 {
			filled++
			qd += QualityScore(records[cell], cfg)
		}
	}

	return MapElitesResult{
		Cfg:         cfg,
		ResolvedX:   resolvedX,
		ResolvedY:   resolvedY,
		Grid:        grid,
		FilledCells: filled,
		Coverage:    float64(filled) / float64(xBins*yBins),
		QDScore:     qd,
	}
}

// SelectTopMapElitesIndices returns filled elites sorted by quality
// descending under the same tie-break as ComputeMapElites (spec.md §4.8).
func SelectTopMapElitesIndices(result MapElitesResult, records []MineRecord, topK int) []int {
	var filled []int
	for _, cell := range result.Grid {
		if cell != -1 {
			filled = append(filled, cell)
		}
	}

	quicksortByQuality(filled, records, result.Cfg)

	if topK >= 0 && topK < len(filled) {
		filled = filled[:topK]
	}
	return filled
}

func quicksortByQuality(idxs []int, records []MineRecord, cfg MapElitesConfig) {
	// Insertion sort: the elite set is bounded by grid size, which is small
	// relative to the total record count; stability matches the defined
	// tie-break exactly.
	for i := 1; i < len(idxs); i++ {
		j := i
		for j > 0 && qualityLess(records[idxs[j]], records[idxs[j-1]], cfg) {
			idxs[j], idxs[j-1] = idxs[j-1], idxs[j]
			j--
		}
	}
}

func qualityLess(a, b MineRecord, cfg MapElitesConfig) bool {
	// "a belongs before b" iff a beats b under the tie-break.
	return better(QualityScore(a, cfg), a.Seed, a.Index, QualityScore(b, cfg), b.Seed, b.Index)
}
