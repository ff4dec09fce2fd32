package checkpoint_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/mining/checkpoint"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

func testConfig() mining.Config {
	cfg := mining.DefaultConfig()
	cfg.Samples = 3
	return cfg
}

func TestFlatCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	cfg := testConfig()
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}
	runID := uuid.New()

	w, err := checkpoint.CreateFlat(path, runID, cfg, proc, sim)
	require.NoError(t, err)

	records := []mining.MineRecord{
		{Index: 0, Seed: 1, Score: 1.5, OverlayPHash: 0xabc},
		{Index: 1, Seed: 2, Score: 2.5, OverlayPHash: 0xdef},
	}
	for _, r := range records {
		require.NoError(t, w.AppendRecord(r.Index, r))
	}
	require.NoError(t, w.Close())

	loaded, err := checkpoint.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.MaxStage)
	require.Len(t, loaded.Records[0], 2)
	assert.Equal(t, records[0].Seed, loaded.Records[0][0].Seed)
	assert.Equal(t, records[1].Score, loaded.Records[0][1].Score)
	assert.True(t, loaded.HaveIndex[0][0])
	assert.True(t, loaded.HaveIndex[0][1])

	reason, ok := checkpoint.ConfigsEquivalent(loaded, cfg, proc, sim, nil)
	assert.True(t, ok, reason)
}

func TestConfigsEquivalentDetectsDrift(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	cfg := testConfig()
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	w, err := checkpoint.CreateFlat(path, uuid.New(), cfg, proc, sim)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	loaded, err := checkpoint.Load(path)
	require.NoError(t, err)

	changed := cfg
	changed.Samples = cfg.Samples + 1
	_, ok := checkpoint.ConfigsEquivalent(loaded, changed, proc, sim, nil)
	assert.False(t, ok)

	// Threads is explicitly excluded from the equivalence comparison.
	onlyThreadsChanged := cfg
	onlyThreadsChanged.Threads = cfg.Threads + 7
	_, ok = checkpoint.ConfigsEquivalent(loaded, onlyThreadsChanged, proc, sim, nil)
	assert.True(t, ok)
}

func TestConfigsEquivalentTreatsNaNSeaLevelOverrideAsEqual(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	cfg := testConfig()
	cfg.SeaLevelOverride = math.NaN()
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	w, err := checkpoint.CreateFlat(path, uuid.New(), cfg, proc, sim)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	loaded, err := checkpoint.Load(path)
	require.NoError(t, err)

	_, ok := checkpoint.ConfigsEquivalent(loaded, cfg, proc, sim, nil)
	assert.True(t, ok)
}

func TestStagedCheckpointRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	cfg := testConfig()
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}
	sh := checkpoint.ShSection{
		Stages:         []checkpoint.ShStage{{Days: 30, Keep: 10}, {Days: 120, Keep: 2}},
		Diverse:        true,
		CandidatePool:  20,
		MmrScoreWeight: 0.5,
		DiversityMode:  int(mining.DiversityHybrid),
		LayoutWeight:   0.5,
	}

	w, err := checkpoint.CreateStaged(path, uuid.New(), cfg, proc, sim, sh)
	require.NoError(t, err)
	require.NoError(t, w.AppendStagedRecord(0, 0, mining.MineRecord{Index: 0, Seed: 1}))
	require.NoError(t, w.AppendStagedRecord(1, 0, mining.MineRecord{Index: 0, Seed: 1, Score: 9}))
	require.NoError(t, w.Close())

	loaded, err := checkpoint.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.MaxStage)
	assert.Equal(t, 9.0, loaded.Records[1][0].Score)

	_, ok := checkpoint.ConfigsEquivalent(loaded, cfg, proc, sim, &sh)
	assert.True(t, ok)

	_, ok = checkpoint.ConfigsEquivalent(loaded, cfg, proc, sim, nil)
	assert.False(t, ok)
}

func TestOpenForAppendInfersStagedness(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "run.jsonl")
	cfg := testConfig()
	proc := worldgen.DefaultProcGenConfig()
	sim := worldgen.SimConfig{}

	w, err := checkpoint.CreateFlat(path, uuid.New(), cfg, proc, sim)
	require.NoError(t, err)
	require.NoError(t, w.AppendRecord(0, mining.MineRecord{Index: 0, Seed: 1}))
	require.NoError(t, w.Close())

	reopened, err := checkpoint.OpenForAppend(path)
	require.NoError(t, err)
	require.NoError(t, reopened.AppendRecord(1, mining.MineRecord{Index: 1, Seed: 2}))
	require.NoError(t, reopened.Close())

	loaded, err := checkpoint.Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Records[0], 2)
	assert.Equal(t, uint64(2), loaded.Records[0][1].Seed)
}
