package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/procisocity/seedminer/pkg/mining"
)

// Storage handles persistence of finished mining-run outputs: the
// per-record CSV/JSON export and a run index, adapted from the teacher's
// report storage (pkg/reporting/storage.go).
type Storage struct {
	outputDir string
	keepLastN int
	logger    *Logger
}

// NewStorage creates a new storage instance rooted at outputDir.
func NewStorage(outputDir string, keepLastN int, logger *Logger) (*Storage, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Storage{outputDir: outputDir, keepLastN: keepLastN, logger: logger}, nil
}

// SaveRun writes a mining run's records to run-<runID>.json and
// run-<runID>.csv under the output directory.
func (s *Storage) SaveRun(runID string, records []mining.MineRecord) (jsonPath, csvPath string, err error) {
	jsonPath = filepath.Join(s.outputDir, fmt.Sprintf("run-%s.json", runID))
	csvPath = filepath.Join(s.outputDir, fmt.Sprintf("run-%s.csv", runID))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return "", "", fmt.Errorf("failed to write json records: %w", err)
	}

	f, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close()
	if err := WriteRecordsCSV(f, records); err != nil {
		return "", "", fmt.Errorf("failed to write csv records: %w", err)
	}

	s.logger.Info("mining run saved", "json", jsonPath, "csv", csvPath, "records", len(records))

	if s.keepLastN > 0 {
		if err := s.cleanupOldRuns(); err != nil {
			s.logger.Warn("failed to cleanup old runs", "error", err)
		}
	}

	return jsonPath, csvPath, nil
}

// traceExport is the JSON shape for a single seed's entry in traces.json.
type traceExport struct {
	Seed    uint64               `json:"seed"`
	Score   float64              `json:"score"`
	Metrics []string             `json:"metrics"`
	Series  map[string][]float64 `json:"series"`
}

// SaveTraces writes a dedicated traces.json export alongside a run's
// records, one entry per record carrying a captured MineTrace
// (original_source/src/isocity/MineTraces.cpp's exported time-series,
// kept separate from the full run JSON since most records have none).
// Returns "" if no record carries a trace.
func (s *Storage) SaveTraces(runID string, records []mining.MineRecord) (string, error) {
	var entries []traceExport
	for _, r := range records {
		if r.Traces == nil {
			continue
		}
		series := make(map[string][]float64, len(r.Traces.Metrics))
		names := make([]string, len(r.Traces.Metrics))
		for i, m := range r.Traces.Metrics {
			names[i] = m.Name()
			series[m.Name()] = r.Traces.Series[m]
		}
		entries = append(entries, traceExport{Seed: r.Seed, Score: r.Score, Metrics: names, Series: series})
	}
	if len(entries) == 0 {
		return "", nil
	}

	tracesPath := filepath.Join(s.outputDir, fmt.Sprintf("run-%s.traces.json", runID))
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal traces: %w", err)
	}
	if err := os.WriteFile(tracesPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write traces json: %w", err)
	}
	s.logger.Info("mining run traces saved", "traces", tracesPath, "entries", len(entries))
	return tracesPath, nil
}

// LoadRun loads a mining run's records from its JSON export.
func (s *Storage) LoadRun(jsonPath string) ([]mining.MineRecord, error) {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}
	var records []mining.MineRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run file: %w", err)
	}
	return records, nil
}

// ListRuns lists all saved mining runs in the output directory, newest
// first by file modification time.
func (s *Storage) ListRuns() ([]string, error) {
	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	type fileInfo struct {
		path    string
		modTime int64
	}
	var files []fileInfo
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, fileInfo{
			path:    filepath.Join(s.outputDir, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime > files[j].modTime })

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.path
	}
	return paths, nil
}

func (s *Storage) cleanupOldRuns() error {
	paths, err := s.ListRuns()
	if err != nil {
		return err
	}
	if len(paths) <= s.keepLastN {
		return nil
	}
	for _, p := range paths[s.keepLastN:] {
		if err := os.Remove(p); err != nil {
			s.logger.Warn("failed to delete old run", "path", p, "error", err)
			continue
		}
		csvPath := p[:len(p)-len(".json")] + ".csv"
		_ = os.Remove(csvPath)
		s.logger.Debug("deleted old run", "path", p)
	}
	return nil
}

// GetOutputDir returns the output directory path.
func (s *Storage) GetOutputDir() string {
	return s.outputDir
}
