package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func TestResolveAxisRangeAutoWidensOnDegenerateRange(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{popRecord(0, 1, 50, 0), popRecord(1, 2, 50, 0)}
	axis := mining.MapElitesAxis{Metric: mining.MetricPopulation, Bins: 4, Auto: true}

	resolved := mining.ResolveAxisRange(axis, records)
	assert.Equal(t, 50.0, resolved.Min)
	assert.Greater(t, resolved.Max, resolved.Min)
}

func TestBinForValueClampAndOutOfRange(t *testing.T) {
	t.Parallel()

	bin, ok := mining.BinForValue(5, 0, 10, 4, false)
	require.True(t, ok)
	assert.Equal(t, 2, bin)

	_, ok = mining.BinForValue(-1, 0, 10, 4, false)
	assert.False(t, ok)

	bin, ok = mining.BinForValue(-1, 0, 10, 4, true)
	require.True(t, ok)
	assert.Equal(t, 0, bin)

	bin, ok = mining.BinForValue(10, 0, 10, 4, true)
	require.True(t, ok)
	assert.Equal(t, 3, bin)
}

func TestComputeMapElitesTieBreakBySeedThenIndex(t *testing.T) {
	t.Parallel()

	// Two records land in the same cell with equal quality; lower seed wins.
	records := []mining.MineRecord{
		{Index: 0, Seed: 99, Score: 5},
		{Index: 1, Seed: 3, Score: 5},
	}
	cfg := mining.MapElitesConfig{
		X:               mining.MapElitesAxis{Metric: mining.MetricScore, Bins: 1, Min: 0, Max: 10},
		Y:               mining.MapElitesAxis{Metric: mining.MetricScore, Bins: 1, Min: 0, Max: 10},
		Quality:         mining.MetricScore,
		QualityMaximize: true,
		ClampToBounds:   true,
	}

	result := mining.ComputeMapElites(records, cfg)
	require.Len(t, result.Grid, 1)
	assert.Equal(t, 1, result.Grid[0]) // record with seed 3 wins the tie
	assert.Equal(t, 1, result.FilledCells)
	assert.Equal(t, 1.0, result.Coverage)
}

func TestSelectTopMapElitesIndicesOrdersByQualityDescending(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		{Index: 0, Seed: 1, Score: 1, Stats: worldgen.Stats{Population: 1}},
		{Index: 1, Seed: 2, Score: 9, Stats: worldgen.Stats{Population: 9}},
	}
	cfg := mining.MapElitesConfig{
		X:               mining.MapElitesAxis{Metric: mining.MetricPopulation, Bins: 2, Min: 0, Max: 10, Auto: false},
		Y:               mining.MapElitesAxis{Metric: mining.MetricPopulation, Bins: 1, Min: 0, Max: 10, Auto: false},
		Quality:         mining.MetricScore,
		QualityMaximize: true,
		ClampToBounds:   true,
	}
	result := mining.ComputeMapElites(records, cfg)
	top := mining.SelectTopMapElitesIndices(result, records, -1)
	require.Len(t, top, 2)
	assert.Equal(t, 1, top[0]) // higher score first
	assert.Equal(t, 0, top[1])
}
