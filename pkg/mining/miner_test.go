package mining_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func smallMineConfig(samples, threads int) mining.Config {
	cfg := mining.DefaultConfig()
	cfg.Samples = samples
	cfg.Threads = threads
	cfg.W, cfg.H = 8, 8
	cfg.Days = 2
	return cfg
}

func TestMineSeedsProducesOneRecordPerSampleInOrder(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(5, 1)
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	records, err := mining.MineSeeds(cfg, proc, sim, nil)
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, r := range records {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, mining.MineSeedForSample(cfg, uint64(i)), r.Seed)
	}
}

func TestMineSeedsIsThreadCountInvariant(t *testing.T) {
	t.Parallel()

	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	serialCfg := smallMineConfig(6, 1)
	serial, err := mining.MineSeeds(serialCfg, proc, sim, nil)
	require.NoError(t, err)

	parallelCfg := smallMineConfig(6, 4)
	parallel, err := mining.MineSeeds(parallelCfg, proc, sim, nil)
	require.NoError(t, err)

	require.Len(t, parallel, len(serial))
	for i := range serial {
		assert.Equal(t, serial[i].Seed, parallel[i].Seed)
		assert.Equal(t, serial[i].Score, parallel[i].Score)
		assert.Equal(t, serial[i].OverlayPHash, parallel[i].OverlayPHash)
	}
}

func TestMineSeedsDeliversProgressInStrictlyIncreasingOrder(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(8, 4)
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	var seen []int
	_, err := mining.MineSeeds(cfg, proc, sim, func(index, total int, record *mining.MineRecord) {
		seen = append(seen, index)
	})
	require.NoError(t, err)

	require.Len(t, seen, 8)
	for i, idx := range seen {
		assert.Equal(t, i, idx)
	}
}

func TestMineSessionStepIsEquivalentToMineSeeds(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(4, 1)
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	want, err := mining.MineSeeds(cfg, proc, sim, nil)
	require.NoError(t, err)

	session := mining.NewMineSession(cfg, proc, sim)
	for !session.Done() {
		_, err := session.Step(1, nil)
		require.NoError(t, err)
	}

	got := session.Records()
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Seed, got[i].Seed)
		assert.Equal(t, want[i].Score, got[i].Score)
	}
}

func TestRunSuccessiveHalvingNarrowsKeptSetEachStage(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(8, 1)
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}
	stages := []mining.SuccessiveHalvingStage{
		{Days: 2, Keep: 4},
		{Days: 3, Keep: 2},
	}

	var stageSeen []int
	results, err := mining.RunSuccessiveHalving(cfg, proc, sim, stages, false, 0, 0.5, mining.DiversityScalar, 0.5,
		func(stage, index, total int, record *mining.MineRecord) {
			stageSeen = append(stageSeen, stage)
		})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Len(t, results[0], 8)
	assert.Len(t, results[1], 4)

	for _, s := range stageSeen {
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 1)
	}
}

func TestRunSuccessiveHalvingRequiresAtLeastOneStage(t *testing.T) {
	t.Parallel()

	cfg := smallMineConfig(4, 1)
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	_, err := mining.RunSuccessiveHalving(cfg, proc, sim, nil, false, 0, 0.5, mining.DiversityScalar, 0.5, nil)
	assert.Error(t, err)
}
