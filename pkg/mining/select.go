package mining

import (
	"math"
	"sort"
)

// mmrLayoutScale is the sqrt(7) layout-distance scaling constant applied so
// the [0,1]-ranged Hamming layout distance sits on a comparable footing with
// the 7-D raw feature vector's Euclidean scalar distance (spec.md §4.6,
// original_source/src/isocity/SeedMiner.cpp SelectTopIndices).
var mmrLayoutScale = math.Sqrt(7)

// mmrFeatureDistance is Euclidean distance over the 7-D raw (unstandardized)
// feature vector (spec.md §4.6).
func mmrFeatureDistance(a, b [7]float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// mmrDistance combines scalar and layout distance per mode, scaling the
// [0,1] layout distance by sqrt(7) so it is commensurate with the raw
// 7-D scalar distance (spec.md §4.6).
func mmrDistance(records []MineRecord, raw [][7]float64, mode DiversityMode, layoutWeight float64, a, b int) float64 {
	switch mode {
	case DiversityLayout:
		return layoutDistance(records[a].OverlayPHash, records[b].OverlayPHash) * mmrLayoutScale
	case DiversityHybrid:
		scalar := mmrFeatureDistance(raw[a], raw[b])
		layout := layoutDistance(records[a].OverlayPHash, records[b].OverlayPHash) * mmrLayoutScale
		w := clamp01v(layoutWeight)
		return (1-w)*scalar + w*layout
	default: // DiversityScalar
		return mmrFeatureDistance(raw[a], raw[b])
	}
}

// SelectTopIndices performs MMR (maximal marginal relevance) diverse top-K
// selection over a candidate pool of the highest-scoring records: starting
// from the best-scoring candidate, it repeatedly picks the candidate
// maximizing mmrScoreWeight*score + (1-mmrScoreWeight)*minDistanceToSelected,
// ties broken by (score descending, seed ascending, index ascending)
// (spec.md §4.6).
//
// When diverse is false, it simply returns the top `keep` records by score
// (same tie-break), ignoring the candidate pool and diversity machinery.
func SelectTopIndices(records []MineRecord, keep int, diverse bool, candidatePool int, mmrScoreWeight float64, mode DiversityMode, layoutWeight float64) []int {
	n := len(records)
	if n == 0 || keep <= 0 {
		return nil
	}

	scored := make([]int, n)
	for i := range scored {
		scored[i] = i
	}
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := records[scored[i]], records[scored[j]]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Seed != b.Seed {
			return a.Seed < b.Seed
		}
		return a.Index < b.Index
	})

	if keep > n {
		keep = n
	}

	if !diverse {
		return append([]int(nil), scored[:keep]...)
	}

	pool := candidatePool
	if pool <= 0 || pool > n {
		pool = n
	}
	if pool < keep {
		pool = keep
	}
	candidates := scored[:pool]

	raw := make([][7]float64, n)
	for _, idx := range candidates {
		raw[idx] = FeatureVectorRaw(records[idx])
	}

	w := clamp01v(mmrScoreWeight)

	minScore, maxScore := math.Inf(1), math.Inf(-1)
	for _, idx := range candidates {
		s := records[idx].Score
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}
	scoreRange := maxScore - minScore
	if scoreRange <= 0 {
		scoreRange = 1
	}
	normScore := func(idx int) float64 { return (records[idx].Score - minScore) / scoreRange }

	selected := []int{candidates[0]}
	remaining := append([]int(nil), candidates[1:]...)

	for len(selected) < keep && len(remaining) > 0 {
		bestPos := -1
		var bestMMR float64
		for pos, idx := range remaining {
			minDist := math.Inf(1)
			for _, s := range selected {
				d := mmrDistance(records, raw, mode, layoutWeight, idx, s)
				if d < minDist {
					minDist = d
				}
			}
			mmr := w*normScore(idx) + (1-w)*minDist

			if bestPos == -1 {
				bestPos, bestMMR = pos, mmr
				continue
			}
			// remaining keeps the (score, seed, index) candidate order, so
			// on an equal mmr the earlier candidate stays the pick.
			if mmr > bestMMR {
				bestPos, bestMMR = pos, mmr
			}
		}
		selected = append(selected, remaining[bestPos])
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	return selected
}
