package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestComputeClusteringSingleRecord(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{popRecord(0, 1, 100, 0.5)}
	cfg := mining.DefaultMineClusteringConfig()
	result := mining.ComputeClustering(records, []int{0}, cfg)
	require.True(t, result.OK)
	assert.Equal(t, []int{1}, result.ClusterSizes)
	assert.Equal(t, 0.0, result.AvgSilhouette)
}

func TestComputeClusteringSeparatesTwoTightGroups(t *testing.T) {
	t.Parallel()

	var records []mining.MineRecord
	for i := 0; i < 4; i++ {
		records = append(records, mining.MineRecord{
			Index: i, Seed: uint64(i + 1),
			Stats: worldgen.Stats{Population: 100 + float64(i)*0.1},
		})
	}
	for i := 0; i < 4; i++ {
		records = append(records, mining.MineRecord{
			Index: i + 4, Seed: uint64(i + 100),
			Stats: worldgen.Stats{Population: 100000 + float64(i)*0.1},
		})
	}

	cfg := mining.MineClusteringConfig{
		K: 2, Space: mining.DiversityScalar, RobustScaling: true, MaxIters: 30,
		Metrics: []mining.Metric{mining.MetricPopulation},
	}
	indices := make([]int, len(records))
	for i := range indices {
		indices[i] = i
	}

	result := mining.ComputeClustering(records, indices, cfg)
	require.True(t, result.OK)
	assert.Len(t, result.ClusterSizes, 2)
	assert.Equal(t, 4, result.ClusterSizes[0])
	assert.Equal(t, 4, result.ClusterSizes[1])
	// Two well-separated tight groups should have decent average silhouette.
	assert.Greater(t, result.AvgSilhouette, 0.9)
}

func TestComputeClusteringEmptySelectionWarns(t *testing.T) {
	t.Parallel()

	result := mining.ComputeClustering(nil, nil, mining.DefaultMineClusteringConfig())
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Warning)
}
