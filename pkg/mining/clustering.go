package mining

import "math"

// ComputeClustering runs k-medoids clustering (farthest-first init plus
// alternating assign/update refinement) over the selected record indices,
// in the configured distance space (spec.md §4.10,
// original_source/src/isocity/MineClustering.hpp).
func ComputeClustering(records []MineRecord, indices []int, cfg MineClusteringConfig) MineClusteringResult {
	result := MineClusteringResult{Cfg: cfg, SelectedIndices: indices}

	n := len(indices)
	if n == 0 {
		result.Warning = "no records selected for clustering"
		return result
	}

	k := cfg.K
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}

	metrics := cfg.Metrics
	if len(metrics) == 0 {
		metrics = DefaultOutlierMetrics()
	}
	ds := NewDistanceSpace(records, indices, metrics, cfg.RobustScaling, cfg.Space, cfg.LayoutWeight)

	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				dist[i][j] = ds.Distance(i, j)
			}
		}
	}

	if n == 1 {
		result.Assignment = []int{0}
		result.ClusterSizes = []int{1}
		result.MedoidEntry = []int{0}
		result.MedoidRecIndex = []int{indices[0]}
		result.OK = true
		result.AvgSilhouette = 0
		return result
	}

	medoids := farthestFirstInit(dist, k, records, indices)

	maxIters := cfg.MaxIters
	if maxIters <= 0 {
		maxIters = 30
	}

	assignment := make([]int, n)
	for iter := 0; iter < maxIters; iter++ {
		changed := assignToNearest(dist, medoids, assignment)
		newMedoids := updateMedoids(dist, assignment, k)
		sameMedoids := true
		for i := range medoids {
			if medoids[i] != newMedoids[i] {
				sameMedoids = false
				break
			}
		}
		medoids = newMedoids
		if !changed && sameMedoids {
			break
		}
	}
	assignToNearest(dist, medoids, assignment)

	sizes := make([]int, k)
	for _, c := range assignment {
		sizes[c]++
	}

	var totalCost float64
	for i, c := range assignment {
		totalCost += dist[i][medoids[c]]
	}

	result.Assignment = assignment
	result.ClusterSizes = sizes
	result.MedoidEntry = medoids
	result.MedoidRecIndex = make([]int, k)
	for c, m := range medoids {
		result.MedoidRecIndex[c] = indices[m]
	}
	result.TotalCost = totalCost
	result.AvgSilhouette = averageSilhouette(dist, assignment, k)
	result.OK = true
	return result
}

// farthestFirstInit deterministically seeds medoids: entry 0 first, then
// repeatedly the entry maximizing distance to its nearest chosen medoid
// (ties broken by lowest seed, then index, matching the tie-break scheme
// used throughout the analyses package).
func farthestFirstInit(dist [][]float64, k int, records []MineRecord, indices []int) []int {
	n := len(dist)
	chosen := []int{0}
	chosenSet := map[int]bool{0: true}

	for len(chosen) < k {
		best := -1
		var bestD float64
		for i := 0; i < n; i++ {
			if chosenSet[i] {
				continue
			}
			minD := math.Inf(1)
			for _, c := range chosen {
				if dist[i][c] < minD {
					minD = dist[i][c]
				}
			}
			if best == -1 {
				best, bestD = i, minD
				continue
			}
			if minD > bestD ||
				(minD == bestD && tieBreakEntry(records, indices, i, best)) {
				best, bestD = i, minD
			}
		}
		chosen = append(chosen, best)
		chosenSet[best] = true
	}
	return chosen
}

func tieBreakEntry(records []MineRecord, indices []int, a, b int) bool {
	ra, rb := records[indices[a]], records[indices[b]]
	if ra.Seed != rb.Seed {
		return ra.Seed < rb.Seed
	}
	return ra.Index < rb.Index
}

func assignToNearest(dist [][]float64, medoids []int, assignment []int) bool {
	changed := false
	for i := range assignment {
		best := 0
		bestD := dist[i][medoids[0]]
		for c := 1; c < len(medoids); c++ {
			d := dist[i][medoids[c]]
			if d < bestD {
				bestD, best = d, c
			}
		}
		if assignment[i] != best {
			changed = true
		}
		assignment[i] = best
	}
	return changed
}

// updateMedoids picks, per cluster, the member minimizing total distance to
// all other members of that cluster (ties broken by lowest entry id).
func updateMedoids(dist [][]float64, assignment []int, k int) []int {
	members := make([][]int, k)
	for i, c := range assignment {
		members[c] = append(members[c], i)
	}

	medoids := make([]int, k)
	for c, ms := range members {
		if len(ms) == 0 {
			medoids[c] = 0
			continue
		}
		best := ms[0]
		bestCost := math.Inf(1)
		for _, cand := range ms {
			var cost float64
			for _, m := range ms {
				cost += dist[cand][m]
			}
			if cost < bestCost {
				bestCost, best = cost, cand
			}
		}
		medoids[c] = best
	}
	return medoids
}

func averageSilhouette(dist [][]float64, assignment []int, k int) float64 {
	n := len(assignment)
	if n < 2 {
		return 0
	}

	members := make([][]int, k)
	for i, c := range assignment {
		members[c] = append(members[c], i)
	}

	var sum float64
	var count int
	for i := 0; i < n; i++ {
		c := assignment[i]
		if len(members[c]) < 2 {
			continue
		}
		var a float64
		for _, j := range members[c] {
			if j != i {
				a += dist[i][j]
			}
		}
		a /= float64(len(members[c]) - 1)

		b := math.Inf(1)
		for other := 0; other < k; other++ {
			if other == c || len(members[other]) == 0 {
				continue
			}
			var sumOther float64
			for _, j := range members[other] {
				sumOther += dist[i][j]
			}
			avgOther := sumOther / float64(len(members[other]))
			if avgOther < b {
				b = avgOther
			}
		}
		if math.IsInf(b, 1) {
			continue
		}

		denom := math.Max(a, b)
		if denom == 0 {
			count++
			continue
		}
		sum += (b - a) / denom
		count++
	}

	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
