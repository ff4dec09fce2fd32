package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func featureRecord(index int, seed uint64, score float64, population, happiness, traffic, seaFloodFrac, pondMaxDepth, landValue float64) mining.MineRecord {
	return mining.MineRecord{
		Index: index, Seed: seed, Score: score, W: 1, H: 1,
		Stats: worldgen.Stats{
			Population:        population,
			Happiness:         happiness,
			TrafficCongestion: traffic,
			AvgLandValue:      landValue,
		},
		SeaFloodFrac: seaFloodFrac,
		PondMaxDepth: pondMaxDepth,
	}
}

func TestSelectTopIndicesNonDiverseReturnsScoreOrder(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		{Index: 0, Seed: 1, Score: 3},
		{Index: 1, Seed: 2, Score: 9},
		{Index: 2, Seed: 3, Score: 1},
	}
	top := mining.SelectTopIndices(records, 2, false, 0, 0.5, mining.DiversityScalar, 0.5)
	require.Len(t, top, 2)
	assert.Equal(t, []int{1, 0}, top)
}

func TestSelectTopIndicesScoreTieBrokenBySeedThenIndex(t *testing.T) {
	t.Parallel()

	records := []mining.MineRecord{
		{Index: 0, Seed: 50, Score: 5},
		{Index: 1, Seed: 10, Score: 5},
	}
	top := mining.SelectTopIndices(records, 2, false, 0, 0.5, mining.DiversityScalar, 0.5)
	assert.Equal(t, []int{1, 0}, top)
}

func TestSelectTopIndicesDiversePrefersDistantSecondPick(t *testing.T) {
	t.Parallel()

	// Record 1 scores second-highest but sits right next to record 0 in
	// feature space; record 2 scores lowest but is far away. With a low
	// score weight, MMR should favor record 2 as the diverse second pick.
	records := []mining.MineRecord{
		featureRecord(0, 1, 10, 100, 0.9, 50, 0.1, 0.9, 1000),
		featureRecord(1, 2, 9, 101, 0.91, 51, 0.11, 0.91, 1001),
		featureRecord(2, 3, 1, 5, 0.01, 1, 0.9, 0.01, 5),
	}

	top := mining.SelectTopIndices(records, 2, true, 3, 0.1, mining.DiversityScalar, 0.5)
	require.Len(t, top, 2)
	assert.Equal(t, 0, top[0])
	assert.Equal(t, 2, top[1])
}
