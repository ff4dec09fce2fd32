package mining

// ComputeNeighbors builds the per-selected-point kNN graph over a VP-tree in
// the configured distance space, reusing the same standardized features as
// LOF/clustering (spec.md §4.12).
func ComputeNeighbors(records []MineRecord, indices []int, k int, space DiversityMode, layoutWeight float64, robustScaling bool, metrics []Metric) MineNeighborsResult {
	n := len(indices)
	if n == 0 {
		return MineNeighborsResult{}
	}
	if k < 0 {
		k = 0
	}
	if k > n-1 {
		k = n - 1
	}

	if len(metrics) == 0 {
		metrics = DefaultOutlierMetrics()
	}
	ds := NewDistanceSpace(records, indices, metrics, robustScaling, space, layoutWeight)

	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	tree := BuildVPTree(ids, ds.Distance)

	neighbors := make([][]int, n)
	distances := make([][]float64, n)
	for i := 0; i < n; i++ {
		nb := tree.KNearest(i, k)
		neighbors[i] = make([]int, len(nb))
		distances[i] = make([]float64, len(nb))
		for j, e := range nb {
			neighbors[i][j] = indices[e.ID]
			distances[i][j] = e.Distance
		}
	}

	return MineNeighborsResult{Neighbors: neighbors, Distances: distances}
}
