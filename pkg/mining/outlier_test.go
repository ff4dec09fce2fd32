package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func makeCluster(n int, seedBase uint64, populationBase float64) []mining.MineRecord {
	records := make([]mining.MineRecord, n)
	for i := 0; i < n; i++ {
		records[i] = mining.MineRecord{
			Index: i, Seed: seedBase + uint64(i),
			Stats: worldgen.Stats{Population: populationBase + float64(i)*0.01},
		}
	}
	return records
}

func TestComputeLocalOutlierFactorSingleRecordDegenerate(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{popRecord(0, 1, 100, 0.5)}
	result := mining.ComputeLocalOutlierFactor(records, mining.OutlierConfig{K: 5})
	require.Len(t, result.Lof, 1)
	assert.Equal(t, 1.0, result.Lof[0])
	assert.Equal(t, 0.0, result.Novelty[0])
}

func TestComputeLocalOutlierFactorFlagsDistantPoint(t *testing.T) {
	t.Parallel()

	// A tight cluster of near-identical records plus one far-off outlier.
	records := append(makeCluster(8, 1, 100), mining.MineRecord{
		Index: 8, Seed: 999, Stats: worldgen.Stats{Population: 100000},
	})

	result := mining.ComputeLocalOutlierFactor(records, mining.OutlierConfig{
		K: 4, Space: mining.DiversityScalar, RobustScaling: true,
		Metrics: []mining.Metric{mining.MetricPopulation},
	})

	outlierIdx := len(records) - 1
	for i := 0; i < outlierIdx; i++ {
		assert.Greaterf(t, result.Lof[outlierIdx], result.Lof[i], "outlier record should have a higher LOF than cluster member %d", i)
	}
}

func TestSelectTopOutlierIndicesOrdersDescendingWithTieBreak(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		{Index: 0, Seed: 5, OutlierLof: 2.0},
		{Index: 1, Seed: 1, OutlierLof: 2.0},
		{Index: 2, Seed: 9, OutlierLof: 3.0},
	}
	top := mining.SelectTopOutlierIndices(records, 2)
	require.Len(t, top, 2)
	assert.Equal(t, 2, top[0]) // highest lof
	assert.Equal(t, 1, top[1]) // tie broken by lower seed
}
