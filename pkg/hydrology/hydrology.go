// Package hydrology implements the two out-of-scope external routines
// MineOne consumes (spec.md §6): sea-level flood fill and depression
// (priority-flood) filling over a heightfield. These are grid flood-fill
// algorithms, not part of the mining core proper, but a working
// implementation is needed to exercise the hydrology fields MineOne
// populates (spec.md §4.4 step 4).
package hydrology

import "container/heap"

// SeaFloodConfig controls sea-level flood extraction.
type SeaFloodConfig struct {
	RequireEdgeConnection bool
	EightConnected        bool
}

// SeaFloodResult is the per-call output of ComputeSeaLevelFlood.
type SeaFloodResult struct {
	Flooded      []bool
	Depth        []float64
	FloodedCells int
	MaxDepth     float64
}

// ComputeSeaLevelFlood floods every cell at or below seaLevel that is
// connected (4- or 8-connected) to the grid edge when RequireEdgeConnection
// is set, otherwise any cell at or below sea level floods regardless of
// connectivity.
func ComputeSeaLevelFlood(heights []float64, w, h int, seaLevel float64, cfg SeaFloodConfig) SeaFloodResult {
	n := w * h
	res := SeaFloodResult{Flooded: make([]bool, n), Depth: make([]float64, n)}
	if n == 0 || len(heights) != n {
		return res
	}

	below := make([]bool, n)
	for i, ht := range heights {
		below[i] = ht <= seaLevel
	}

	var reachable []bool
	if cfg.RequireEdgeConnection {
		reachable = floodFromEdges(below, w, h, cfg.EightConnected)
	} else {
		reachable = below
	}

	for i := 0; i < n; i++ {
		if reachable[i] {
			res.Flooded[i] = true
			d := seaLevel - heights[i]
			if d < 0 {
				d = 0
			}
			res.Depth[i] = d
			res.FloodedCells++
			if d > res.MaxDepth {
				res.MaxDepth = d
			}
		}
	}
	return res
}

func floodFromEdges(below []bool, w, h int, eight bool) []bool {
	visited := make([]bool, w*h)
	var stack []int

	push := func(x, y int) {
		if x < 0 || x >= w || y < 0 || y >= h {
			return
		}
		idx := y*w + x
		if visited[idx] || !below[idx] {
			return
		}
		visited[idx] = true
		stack = append(stack, idx)
	}

	for x := 0; x < w; x++ {
		push(x, 0)
		push(x, h-1)
	}
	for y := 0; y < h; y++ {
		push(0, y)
		push(w-1, y)
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := idx%w, idx/w
		push(x-1, y)
		push(x+1, y)
		push(x, y-1)
		push(x, y+1)
		if eight {
			push(x-1, y-1)
			push(x+1, y-1)
			push(x-1, y+1)
			push(x+1, y+1)
		}
	}
	return visited
}

// DepressionFillConfig controls priority-flood depression filling.
type DepressionFillConfig struct {
	Epsilon float64
}

// DepressionFillResult is the per-call output of FillDepressionsPriorityFlood.
type DepressionFillResult struct {
	Depth        []float64
	FilledCells  int
	MaxDepth     float64
	Volume       float64
}

type pqItem struct {
	idx    int
	height float64
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].height < pq[j].height }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// FillDepressionsPriorityFlood fills depressions not reachable by the
// drain mask using the standard priority-flood algorithm (Barnes et al.):
// seed a min-heap with every drain cell, repeatedly pop the lowest pending
// boundary cell, and raise each unvisited neighbor to at least
// max(neighborHeight, poppedHeight+epsilon).
func FillDepressionsPriorityFlood(heights []float64, w, h int, drainMask []bool, cfg DepressionFillConfig) DepressionFillResult {
	n := w * h
	res := DepressionFillResult{Depth: make([]float64, n)}
	if n == 0 || len(heights) != n || len(drainMask) != n {
		return res
	}

	filled := make([]float64, n)
	copy(filled, heights)
	visited := make([]bool, n)

	pq := &priorityQueue{}
	heap.Init(pq)
	for i, isDrain := range drainMask {
		if isDrain {
			visited[i] = true
			heap.Push(pq, pqItem{idx: i, height: heights[i]})
		}
	}

	neighborOffsets := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		x, y := cur.idx%w, cur.idx/w
		for _, off := range neighborOffsets {
			nx, ny := x+off[0], y+off[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			nidx := ny*w + nx
			if visited[nidx] {
				continue
			}
			visited[nidx] = true
			raised := filled[nidx]
			if raised < cur.height+cfg.Epsilon {
				raised = cur.height + cfg.Epsilon
			}
			filled[nidx] = raised
			heap.Push(pq, pqItem{idx: nidx, height: raised})
		}
	}

	for i := range filled {
		d := filled[i] - heights[i]
		if d < 0 {
			d = 0
		}
		res.Depth[i] = d
		if d > 0 {
			res.FilledCells++
			res.Volume += d
		}
		if d > res.MaxDepth {
			res.MaxDepth = d
		}
	}
	return res
}
