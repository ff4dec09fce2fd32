package mining

import "sort"

// Dominates reports whether a dominates b under the "larger is better"
// convention: no coordinate of a is worse, and at least one is strictly
// better (spec.md §4.7 step 2).
func Dominates(a, b []float64) bool {
	strictlyBetter := false
	for i := range a {
		if a[i] < b[i] {
			return false
		}
		if a[i] > b[i] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// computeCrowdingAxis computes per-front crowding distance for one
// objective axis from the front's values (in front order; it sorts a
// position index by value itself), adding into out indexed by front
// position. Boundary points get
// kParetoCrowdingInf (spec.md §4.7 step 4).
func computeCrowdingAxis(front []int, values []float64, out []float64) {
	n := len(front)
	if n == 0 {
		return
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return values[order[i]] < values[order[j]] })

	out[order[0]] += kParetoCrowdingInf
	out[order[n-1]] += kParetoCrowdingInf
	if n < 3 {
		return
	}

	vmin := values[order[0]]
	vmax := values[order[n-1]]
	span := vmax - vmin
	if span == 0 {
		return
	}
	for k := 1; k < n-1; k++ {
		prev := values[order[k-1]]
		next := values[order[k+1]]
		out[order[k]] += (next - prev) / span
	}
}

// ComputePareto computes NSGA-II fronts, rank, and crowding distance over
// records for the given objective list (spec.md §4.7).
func ComputePareto(records []MineRecord, objectives []ParetoObjective) ParetoResult {
	n := len(records)
	result := ParetoResult{Rank: make([]int, n), Crowding: make([]float64, n)}
	if n == 0 {
		return result
	}

	values := make([][]float64, n)
	for i, r := range records {
		row := make([]float64, len(objectives))
		for j, obj := range objectives {
			v := obj.Metric.Value(r)
			if !obj.Maximize {
				v = -v
			}
			row[j] = v
		}
		values[i] = row
	}

	dominatedBy := make([][]int, n) // records i dominates
	dominationCount := make([]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			if Dominates(values[i], values[j]) {
				dominatedBy[i] = append(dominatedBy[i], j)
			} else if Dominates(values[j], values[i]) {
				dominationCount[i]++
			}
		}
	}

	remaining := append([]int(nil), dominationCount...)
	assigned := make([]bool, n)
	var fronts [][]int
	for {
		var front []int
		for i := 0; i < n; i++ {
			if !assigned[i] && remaining[i] == 0 {
				front = append(front, i)
			}
		}
		if len(front) == 0 {
			break
		}
		for _, i := range front {
			assigned[i] = true
		}
		fronts = append(fronts, front)
		for _, i := range front {
			for _, j := range dominatedBy[i] {
				remaining[j]--
			}
		}
	}

	result.Fronts = fronts
	for rank, front := range fronts {
		for _, i := range front {
			result.Rank[i] = rank
		}
		for j := range objectives {
			axisValues := make([]float64, len(front))
			for k, i := range front {
				axisValues[k] = values[i][j]
			}
			axisOut := make([]float64, len(front))
			computeCrowdingAxis(front, axisValues, axisOut)
			for k, i := range front {
				result.Crowding[i] += axisOut[k]
			}
		}
	}

	return result
}

// SelectTopParetoIndices iterates fronts in order, sorting within each
// front by crowding descending when useCrowding is set, appending indices
// until topK is reached (spec.md §4.7).
func SelectTopParetoIndices(pr ParetoResult, topK int, useCrowding bool) []int {
	var out []int
	for _, front := range pr.Fronts {
		if len(out) >= topK {
			break
		}
		ordered := append([]int(nil), front...)
		if useCrowding {
			sort.SliceStable(ordered, func(i, j int) bool {
				return pr.Crowding[ordered[i]] > pr.Crowding[ordered[j]]
			})
		}
		for _, idx := range ordered {
			if len(out) >= topK {
				break
			}
			out = append(out, idx)
		}
	}
	return out
}
