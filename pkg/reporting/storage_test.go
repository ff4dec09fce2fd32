package reporting_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
)

func discardLogger() *reporting.Logger {
	return reporting.NewLogger(reporting.LoggerConfig{Output: io.Discard})
}

func sampleRecords() []mining.MineRecord {
	return []mining.MineRecord{
		{Index: 0, Seed: 1, Score: 1.0},
		{Index: 1, Seed: 2, Score: 2.0},
	}
}

func TestSaveRunThenLoadRunRoundTrips(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := reporting.NewStorage(dir, 0, discardLogger())
	require.NoError(t, err)

	jsonPath, csvPath, err := s.SaveRun("abc", sampleRecords())
	require.NoError(t, err)
	assert.FileExists(t, jsonPath)
	assert.FileExists(t, csvPath)

	loaded, err := s.LoadRun(jsonPath)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, uint64(1), loaded[0].Seed)
	assert.Equal(t, uint64(2), loaded[1].Seed)
}

func TestSaveRunCleansUpOldRunsBeyondKeepLastN(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := reporting.NewStorage(dir, 1, discardLogger())
	require.NoError(t, err)

	_, _, err = s.SaveRun("run-a", sampleRecords())
	require.NoError(t, err)
	_, _, err = s.SaveRun("run-b", sampleRecords())
	require.NoError(t, err)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 1, "only the most recently saved run should survive cleanup")
	assert.Contains(t, filepath.Base(runs[0]), "run-b")
}

func TestListRunsOrdersNewestFirst(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := reporting.NewStorage(dir, 0, discardLogger())
	require.NoError(t, err)

	_, _, err = s.SaveRun("first", sampleRecords())
	require.NoError(t, err)
	_, _, err = s.SaveRun("second", sampleRecords())
	require.NoError(t, err)

	runs, err := s.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Contains(t, filepath.Base(runs[0]), "second")
	assert.Contains(t, filepath.Base(runs[1]), "first")
}

func TestGetOutputDirReturnsConfiguredDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := reporting.NewStorage(dir, 0, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, dir, s.GetOutputDir())
}

func TestSaveTracesWritesFileOnlyWhenARecordHasTraces(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := reporting.NewStorage(dir, 0, discardLogger())
	require.NoError(t, err)

	path, err := s.SaveTraces("no-traces", sampleRecords())
	require.NoError(t, err)
	assert.Empty(t, path)

	withTrace := sampleRecords()
	withTrace[0].Traces = &mining.MineTrace{
		Metrics: []mining.TraceMetric{mining.TracePopulation, mining.TraceMoney},
		Series: map[mining.TraceMetric][]float64{
			mining.TracePopulation: {1, 2, 3},
			mining.TraceMoney:      {10, 20, 30},
		},
	}
	path, err = s.SaveTraces("with-traces", withTrace)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, path, "with-traces")
}
