package mining_test

import (
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
)

func TestVPTreeKNearestMatchesBruteForce(t *testing.T) {
	t.Parallel()

	points := []float64{0, 1, 2, 5, 9, 9.5, 20, -3}
	dist := func(a, b int) float64 { return math.Abs(points[a] - points[b]) }

	ids := make([]int, len(points))
	for i := range ids {
		ids[i] = i
	}
	tree := mining.BuildVPTree(ids, dist)

	type cand struct {
		id int
		d  float64
	}

	for q := range points {
		for k := 1; k <= len(points)-1; k++ {
			got := tree.KNearest(q, k)
			require.Len(t, got, k)

			var all []cand
			for _, id := range ids {
				if id == q {
					continue
				}
				all = append(all, cand{id, dist(q, id)})
			}
			sort.Slice(all, func(i, j int) bool {
				if all[i].d != all[j].d {
					return all[i].d < all[j].d
				}
				return all[i].id < all[j].id
			})

			for i, want := range all[:k] {
				assert.Equalf(t, want.id, got[i].ID, "q=%d k=%d pos=%d", q, k, i)
				assert.InDeltaf(t, want.d, got[i].Distance, 1e-9, "q=%d k=%d pos=%d", q, k, i)
			}
		}
	}
}

func TestVPTreeKNearestEmptyTreeOrZeroK(t *testing.T) {
	t.Parallel()

	tree := mining.BuildVPTree(nil, func(a, b int) float64 { return 0 })
	assert.Nil(t, tree.KNearest(0, 5))

	tree2 := mining.BuildVPTree([]int{0, 1, 2}, func(a, b int) float64 { return float64(a - b) })
	assert.Nil(t, tree2.KNearest(0, 0))
}
