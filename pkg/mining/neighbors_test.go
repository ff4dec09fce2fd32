package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestComputeNeighborsReturnsClosestKInAscendingOrder(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		{Index: 0, Seed: 1, Stats: worldgen.Stats{Population: 0}},
		{Index: 1, Seed: 2, Stats: worldgen.Stats{Population: 1}},
		{Index: 2, Seed: 3, Stats: worldgen.Stats{Population: 5}},
		{Index: 3, Seed: 4, Stats: worldgen.Stats{Population: 100}},
	}
	indices := []int{0, 1, 2, 3}

	result := mining.ComputeNeighbors(records, indices, 2, mining.DiversityScalar, 0.5, false, []mining.Metric{mining.MetricPopulation})
	require.Len(t, result.Neighbors, 4)

	// Record 0's two nearest neighbors (by population) should be 1 then 2.
	require.Len(t, result.Neighbors[0], 2)
	assert.Equal(t, 1, result.Neighbors[0][0])
	assert.Equal(t, 2, result.Neighbors[0][1])
	assert.True(t, result.Distances[0][0] <= result.Distances[0][1])
}

func TestComputeNeighborsClampsKToAvailableRecords(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		popRecord(0, 1, 10, 0.1),
		popRecord(1, 2, 20, 0.2),
	}
	result := mining.ComputeNeighbors(records, []int{0, 1}, 50, mining.DiversityScalar, 0.5, true, nil)
	require.Len(t, result.Neighbors[0], 1)
}
