package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestDominates(t *testing.T) {
	t.Parallel()

	assert.True(t, mining.Dominates([]float64{2, 2}, []float64{1, 1}))
	assert.True(t, mining.Dominates([]float64{2, 1}, []float64{1, 1}))
	assert.False(t, mining.Dominates([]float64{1, 1}, []float64{1, 1}))
	assert.False(t, mining.Dominates([]float64{1, 2}, []float64{2, 1}))
}

func popRecord(idx int, seed uint64, population, happiness float64) mining.MineRecord {
	return mining.MineRecord{
		Index: idx, Seed: seed,
		Stats: worldgen.Stats{Population: population, Happiness: happiness},
	}
}

func TestComputeParetoRanksFrontsInLayers(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		popRecord(0, 10, 100, 0.9), // front 0: dominates 1 and 2, dominated by none
		popRecord(1, 11, 50, 0.5),  // dominated by record 0
		popRecord(2, 12, 10, 0.2),  // dominated by both 0 and 1
	}
	objectives := []mining.ParetoObjective{
		{Metric: mining.MetricPopulation, Maximize: true},
		{Metric: mining.MetricHappiness, Maximize: true},
	}

	result := mining.ComputePareto(records, objectives)
	require.Len(t, result.Fronts, 3)
	assert.Equal(t, []int{0}, result.Fronts[0])
	assert.Equal(t, []int{1}, result.Fronts[1])
	assert.Equal(t, []int{2}, result.Fronts[2])
	assert.Equal(t, 0, result.Rank[0])
	assert.Equal(t, 1, result.Rank[1])
	assert.Equal(t, 2, result.Rank[2])
}

func TestComputeParetoMutuallyNonDominatedShareFront(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		popRecord(0, 10, 100, 0.1), // high population, low happiness
		popRecord(1, 11, 10, 0.9),  // low population, high happiness
	}
	objectives := []mining.ParetoObjective{
		{Metric: mining.MetricPopulation, Maximize: true},
		{Metric: mining.MetricHappiness, Maximize: true},
	}

	result := mining.ComputePareto(records, objectives)
	require.Len(t, result.Fronts, 1)
	assert.ElementsMatch(t, []int{0, 1}, result.Fronts[0])
	// Both are boundary points on a 2-point front: crowding saturates to the
	// large sentinel constant on each axis, so both get 2x that constant.
	assert.Greater(t, result.Crowding[0], 1e29)
	assert.Greater(t, result.Crowding[1], 1e29)
}

func TestSelectTopParetoIndicesRespectsCrowding(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		popRecord(0, 1, 10, 0.1),
		popRecord(1, 2, 20, 0.4),
		popRecord(2, 3, 30, 0.9),
	}
	objectives := []mining.ParetoObjective{{Metric: mining.MetricPopulation, Maximize: true}}
	pr := mining.ComputePareto(records, objectives)

	top := mining.SelectTopParetoIndices(pr, 2, true)
	assert.Len(t, top, 2)
}
