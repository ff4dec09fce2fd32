package mining

import (
	"container/heap"
	"math"
)

// DistanceFunc computes the distance between two ids (spec.md §4.3).
type DistanceFunc func(a, b int) float64

// VPTree is a vantage-point metric tree over a set of integer ids,
// supporting deterministic best-first kNN queries for an arbitrary
// DistanceFunc (spec.md §4.3, original_source/src/isocity/VPTree.hpp).
type VPTree struct {
	dist  DistanceFunc
	nodes []vpNode
	root  int // index into nodes, or -1 if empty
}

type vpNode struct {
	vp          int
	threshold   float64
	left, right int // indices into nodes, or -1
}

// BuildVPTree constructs a tree deterministically: pop the last id as the
// vantage point, sort remaining ids by distance to it (ascending, id as
// tie-breaker), split at the median distance, and recurse (spec.md §4.3).
func BuildVPTree(ids []int, dist DistanceFunc) *VPTree {
	t := &VPTree{dist: dist}
	work := append([]int(nil), ids...)
	t.root = t.build(work)
	return t
}

func (t *VPTree) build(ids []int) int {
	if len(ids) == 0 {
		return -1
	}
	vp := ids[len(ids)-1]
	rest := ids[:len(ids)-1]

	type distID struct {
		d  float64
		id int
	}
	pairs := make([]distID, len(rest))
	for i, id := range rest {
		pairs[i] = distID{d: t.dist(id, vp), id: id}
	}
	sortDistID(pairs)

	threshold := 0.0
	if len(pairs) > 0 {
		threshold = pairs[len(pairs)/2].d
	}

	var leftIDs, rightIDs []int
	for _, p := range pairs {
		if p.d < threshold {
			leftIDs = append(leftIDs, p.id)
		} else {
			rightIDs = append(rightIDs, p.id)
		}
	}

	node := vpNode{vp: vp, threshold: threshold}
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node)
	left := t.build(leftIDs)
	right := t.build(rightIDs)
	t.nodes[idx].left = left
	t.nodes[idx].right = right
	return idx
}

type distID struct {
	d  float64
	id int
}

func sortDistID(pairs []distID) {
	// insertion sort is sufficient for the typical small fan-outs this tree
	// sees per recursion level and keeps the tie-break explicit and stable.
	for i := 1; i < len(pairs); i++ {
		j := i
		for j > 0 && less(pairs[j], pairs[j-1]) {
			pairs[j], pairs[j-1] = pairs[j-1], pairs[j]
			j--
		}
	}
}

func less(a, b distID) bool {
	if a.d != b.d {
		return a.d < b.d
	}
	return a.id < b.id
}

// Neighbor is one kNN result entry.
type Neighbor struct {
	ID       int
	Distance float64
}

type candidate struct {
	id int
	d  float64
}

// maxHeap keeps the current k best candidates with the worst on top, so it
// can be popped when a strictly better candidate is found.
type maxHeap []candidate

func (h maxHeap) Len() int { return len(h) }
func (h maxHeap) Less(i, j int) bool {
	if h[i].d != h[j].d {
		return h[i].d > h[j].d // max-heap: worst distance first
	}
	return h[i].id > h[j].id
}
func (h maxHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KNearest returns the k nearest ids to q sorted ascending by
// (distance, id), using a best-first search with triangle-inequality
// pruning (spec.md §4.3). Returns an empty slice for an empty tree or
// k <= 0.
func (t *VPTree) KNearest(q, k int) []Neighbor {
	if t.root == -1 || k <= 0 {
		return nil
	}

	h := &maxHeap{}
	heap.Init(h)
	tau := math.Inf(1)

	var search func(idx int)
	search = func(idx int) {
		if idx == -1 {
			return
		}
		node := t.nodes[idx]
		d := t.dist(q, node.vp)

		if node.vp != q {
			better := d < tau || (h.Len() < k) || (d == tau && node.vp < (*h)[0].id)
			if better {
				heap.Push(h, candidate{id: node.vp, d: d})
				if h.Len() > k {
					heap.Pop(h)
				}
				if h.Len() == k {
					tau = (*h)[0].d
				}
			}
		}

		nearFirst := idx
		_ = nearFirst
		if d < node.threshold {
			search(node.left)
			if d+tau >= node.threshold {
				search(node.right)
			}
		} else {
			search(node.right)
			if d-tau <= node.threshold {
				search(node.left)
			}
		}
	}
	search(t.root)

	result := make([]Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		c := heap.Pop(h).(candidate)
		result[i] = Neighbor{ID: c.id, Distance: c.d}
	}
	return result
}
