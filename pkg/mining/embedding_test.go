package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestComputeEmbeddingRequiresAtLeastTwoRecords(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{popRecord(0, 1, 100, 0.5)}
	result := mining.ComputeEmbedding(records, []int{0}, mining.DiversityScalar, 0.5, true, nil)
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Warning)
}

func TestComputeEmbeddingPreservesRelativeDistanceOrdering(t *testing.T) {
	t.Parallel()

	// Three clusters along a single metric axis; the 2-D embedding's
	// pairwise distance ordering should preserve the 1-D layout: the two
	// far-apart clusters should end up farther apart than either is from
	// its own near neighbor.
	records := []mining.MineRecord{
		{Index: 0, Seed: 1, Stats: worldgen.Stats{Population: 0}},
		{Index: 1, Seed: 2, Stats: worldgen.Stats{Population: 1}},
		{Index: 2, Seed: 3, Stats: worldgen.Stats{Population: 100}},
	}
	indices := []int{0, 1, 2}

	result := mining.ComputeEmbedding(records, indices, mining.DiversityScalar, 0.5, false, []mining.Metric{mining.MetricPopulation})
	require.True(t, result.OK)
	require.Len(t, result.X, 3)

	dist := func(i, j int) float64 {
		dx := result.X[i] - result.X[j]
		dy := result.Y[i] - result.Y[j]
		return dx*dx + dy*dy
	}

	d01 := dist(0, 1)
	d02 := dist(0, 2)
	d12 := dist(1, 2)

	assert.Greater(t, d02, d01)
	assert.Greater(t, d12, d01)
}
