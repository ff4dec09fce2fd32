// Package checkpoint implements the resumable JSON-Lines checkpoint format
// for mining runs: an append-only header line followed by one record line
// per mined sample, plus a staged (successive-halving) variant
// (spec.md §4.14).
package checkpoint

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

const (
	headerTypeFlat   = "procisocity_mine_checkpoint"
	headerTypeStaged = "procisocity_mine_checkpoint_sh"
	headerVersion    = 1
)

// ShStage mirrors mining.SuccessiveHalvingStage for JSON round-tripping.
type ShStage struct {
	Days int `json:"days"`
	Keep int `json:"keep"`
}

// ShSection is the staged-only header extension (spec.md §4.14).
type ShSection struct {
	Stages         []ShStage `json:"stages"`
	Diverse        bool      `json:"diverse"`
	CandidatePool  int       `json:"candidatePool"`
	MmrScoreWeight float64   `json:"mmrScoreWeight"`
	DiversityMode  int       `json:"diversityMode"`
	LayoutWeight   float64   `json:"layoutWeight"`
}

// Header is the deserialized form of a checkpoint's line 0, covering both
// the flat and staged variants (Sh is nil for flat checkpoints).
type Header struct {
	Type    string            `json:"type"`
	Version int               `json:"version"`
	RunID   uuid.UUID         `json:"runId"`
	Mine    mineConfigJSON    `json:"mine"`
	Proc    worldgen.ProcGenConfig `json:"proc"`
	Sim     worldgen.SimConfig    `json:"sim"`
	Sh      *ShSection        `json:"sh,omitempty"`
}

// mineConfigJSON mirrors mining.Config for JSON with seedStartHex/seedStepHex
// and a null seaLevelOverride when non-finite (spec.md §4.14 "Field
// encodings of special interest").
type mineConfigJSON struct {
	SeedStart       uint64   `json:"seedStart"`
	SeedStartHex    string   `json:"seedStartHex"`
	SeedStep        uint64   `json:"seedStep"`
	SeedStepHex     string   `json:"seedStepHex"`
	SeedXor         uint64   `json:"seedXor"`
	SeedSampler     int      `json:"seedSampler"`
	Samples         int      `json:"samples"`
	W               int      `json:"w"`
	H               int      `json:"h"`
	Days            int      `json:"days"`
	Objective       int      `json:"objective"`
	ScoreExpr       string   `json:"scoreExpr"`
	HydrologyEnabled bool    `json:"hydrologyEnabled"`
	SeaLevelOverride *float64 `json:"seaLevelOverride"`
	SeaRequireEdgeConnection bool `json:"seaRequireEdgeConnection"`
	SeaEightConnected        bool `json:"seaEightConnected"`
	DepressionEpsilon        float64 `json:"depressionEpsilon"`
	// Threads is intentionally excluded from equivalence per spec.md §4.14
	// ("all MineConfig fields except threads") but is still carried for
	// informational round-trip.
	Threads int `json:"threads"`
}

func toMineConfigJSON(cfg mining.Config) mineConfigJSON {
	m := mineConfigJSON{
		SeedStart:                cfg.SeedStart,
		SeedStartHex:             fmt.Sprintf("0x%016x", cfg.SeedStart),
		SeedStep:                 cfg.SeedStep,
		SeedStepHex:              fmt.Sprintf("0x%016x", cfg.SeedStep),
		SeedXor:                  cfg.SeedXor,
		SeedSampler:              int(cfg.SeedSampler),
		Samples:                  cfg.Samples,
		W:                        cfg.W,
		H:                        cfg.H,
		Days:                     cfg.Days,
		Objective:                int(cfg.Objective),
		ScoreExpr:                cfg.ScoreExpr,
		HydrologyEnabled:         cfg.HydrologyEnabled,
		SeaRequireEdgeConnection: cfg.SeaRequireEdgeConnection,
		SeaEightConnected:        cfg.SeaEightConnected,
		DepressionEpsilon:        cfg.DepressionEpsilon,
		Threads:                  cfg.Threads,
	}
	if !math.IsNaN(cfg.SeaLevelOverride) && !math.IsInf(cfg.SeaLevelOverride, 0) {
		v := cfg.SeaLevelOverride
		m.SeaLevelOverride = &v
	}
	return m
}

func (m mineConfigJSON) toConfig() mining.Config {
	seaLevel := math.NaN()
	if m.SeaLevelOverride != nil {
		seaLevel = *m.SeaLevelOverride
	}
	return mining.Config{
		SeedStart:                m.SeedStart,
		SeedStep:                 m.SeedStep,
		SeedXor:                  m.SeedXor,
		SeedSampler:              mining.SeedSampler(m.SeedSampler),
		Samples:                  m.Samples,
		W:                        m.W,
		H:                        m.H,
		Days:                     m.Days,
		Threads:                  m.Threads,
		Objective:                mining.Objective(m.Objective),
		ScoreExpr:                m.ScoreExpr,
		HydrologyEnabled:         m.HydrologyEnabled,
		SeaLevelOverride:         seaLevel,
		SeaRequireEdgeConnection: m.SeaRequireEdgeConnection,
		SeaEightConnected:        m.SeaEightConnected,
		DepressionEpsilon:        m.DepressionEpsilon,
	}
}

// recordLine is one parsed line >=1 of the JSONL body.
type recordLine struct {
	Type  string            `json:"type"`
	Stage int               `json:"stage"`
	Index int               `json:"index"`
	Record recordJSON       `json:"record"`
}

// recordJSON is the wire form of mining.MineRecord, carrying seed/hash hex
// strings alongside the numeric forms for exact round-trips (spec.md §6).
type recordJSON struct {
	Index          int             `json:"index"`
	Seed           uint64          `json:"seed"`
	SeedHex        string          `json:"seedHex"`
	W              int             `json:"w"`
	H              int             `json:"h"`
	Stats          worldgen.Stats  `json:"stats"`
	WaterTiles     int             `json:"waterTiles"`
	RoadTiles      int             `json:"roadTiles"`
	ResTiles       int             `json:"resTiles"`
	ComTiles       int             `json:"comTiles"`
	IndTiles       int             `json:"indTiles"`
	ParkTiles      int             `json:"parkTiles"`
	SchoolTiles    int             `json:"schoolTiles"`
	HospitalTiles  int             `json:"hospitalTiles"`
	PoliceTiles    int             `json:"policeTiles"`
	FireTiles      int             `json:"fireTiles"`
	WaterFrac      float64         `json:"waterFrac"`
	RoadFrac       float64         `json:"roadFrac"`
	ZoneFrac       float64         `json:"zoneFrac"`
	ParkFrac       float64         `json:"parkFrac"`
	SeaFloodCells  int             `json:"seaFloodCells"`
	SeaFloodFrac   float64         `json:"seaFloodFrac"`
	SeaMaxDepth    float64         `json:"seaMaxDepth"`
	PondCells      int             `json:"pondCells"`
	PondFrac       float64         `json:"pondFrac"`
	PondMaxDepth   float64         `json:"pondMaxDepth"`
	PondVolume     float64         `json:"pondVolume"`
	ObjectiveScore float64         `json:"objectiveScore"`
	Score          float64         `json:"score"`
	OverlayPHash   uint64          `json:"overlayPhash"`
	OverlayPHashHex string         `json:"overlayPhashHex"`
	ParetoRank     int             `json:"paretoRank"`
	ParetoCrowding float64         `json:"paretoCrowding"`
	OutlierLof     float64         `json:"outlierLof"`
	Novelty        float64         `json:"novelty"`
}

func toRecordJSON(r mining.MineRecord) recordJSON {
	return recordJSON{
		Index: r.Index, Seed: r.Seed, SeedHex: fmt.Sprintf("0x%016x", r.Seed),
		W: r.W, H: r.H, Stats: r.Stats,
		WaterTiles: r.WaterTiles, RoadTiles: r.RoadTiles, ResTiles: r.ResTiles,
		ComTiles: r.ComTiles, IndTiles: r.IndTiles, ParkTiles: r.ParkTiles,
		SchoolTiles: r.SchoolTiles, HospitalTiles: r.HospitalTiles,
		PoliceTiles: r.PoliceTiles, FireTiles: r.FireTiles,
		WaterFrac: r.WaterFrac, RoadFrac: r.RoadFrac, ZoneFrac: r.ZoneFrac, ParkFrac: r.ParkFrac,
		SeaFloodCells: r.SeaFloodCells, SeaFloodFrac: r.SeaFloodFrac, SeaMaxDepth: r.SeaMaxDepth,
		PondCells: r.PondCells, PondFrac: r.PondFrac, PondMaxDepth: r.PondMaxDepth, PondVolume: r.PondVolume,
		ObjectiveScore: r.ObjectiveScore, Score: r.Score,
		OverlayPHash: r.OverlayPHash, OverlayPHashHex: fmt.Sprintf("0x%016x", r.OverlayPHash),
		ParetoRank: r.ParetoRank, ParetoCrowding: r.ParetoCrowding,
		OutlierLof: r.OutlierLof, Novelty: r.Novelty,
	}
}

func (rj recordJSON) toRecord() mining.MineRecord {
	return mining.MineRecord{
		Index: rj.Index, Seed: rj.Seed, W: rj.W, H: rj.H, Stats: rj.Stats,
		WaterTiles: rj.WaterTiles, RoadTiles: rj.RoadTiles, ResTiles: rj.ResTiles,
		ComTiles: rj.ComTiles, IndTiles: rj.IndTiles, ParkTiles: rj.ParkTiles,
		SchoolTiles: rj.SchoolTiles, HospitalTiles: rj.HospitalTiles,
		PoliceTiles: rj.PoliceTiles, FireTiles: rj.FireTiles,
		WaterFrac: rj.WaterFrac, RoadFrac: rj.RoadFrac, ZoneFrac: rj.ZoneFrac, ParkFrac: rj.ParkFrac,
		SeaFloodCells: rj.SeaFloodCells, SeaFloodFrac: rj.SeaFloodFrac, SeaMaxDepth: rj.SeaMaxDepth,
		PondCells: rj.PondCells, PondFrac: rj.PondFrac, PondMaxDepth: rj.PondMaxDepth, PondVolume: rj.PondVolume,
		ObjectiveScore: rj.ObjectiveScore, Score: rj.Score,
		OverlayPHash: rj.OverlayPHash,
		ParetoRank: rj.ParetoRank, ParetoCrowding: rj.ParetoCrowding,
		OutlierLof: rj.OutlierLof, Novelty: rj.Novelty,
	}
}

// Writer appends header and record lines, flushing (and fsync'ing) after
// every write so a crash mid-line leaves the file well-formed up to the last
// complete line (spec.md §4.14 "Write policy").
type Writer struct {
	f      *os.File
	staged bool
}

// CreateFlat opens path for append and writes a flat checkpoint header.
func CreateFlat(path string, runID uuid.UUID, cfg mining.Config, proc worldgen.ProcGenConfig, sim worldgen.SimConfig) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	h := Header{Type: headerTypeFlat, Version: headerVersion, RunID: runID, Mine: toMineConfigJSON(cfg), Proc: proc, Sim: sim}
	if err := writeLine(f, h); err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{f: f}, nil
}

// CreateStaged opens path for append and writes a staged checkpoint header.
func CreateStaged(path string, runID uuid.UUID, cfg mining.Config, proc worldgen.ProcGenConfig, sim worldgen.SimConfig, sh ShSection) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	h := Header{Type: headerTypeStaged, Version: headerVersion, RunID: runID, Mine: toMineConfigJSON(cfg), Proc: proc, Sim: sim, Sh: &sh}
	if err := writeLine(f, h); err != nil {
		f.Close()
		return nil, err
	}
	return &Writer{f: f, staged: true}, nil
}

// OpenForAppend opens an existing checkpoint file for appending new record
// lines without rewriting its header, inferring flat-vs-staged from the
// existing header.
func OpenForAppend(path string) (*Writer, error) {
	existing, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read existing checkpoint header: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint for append: %w", err)
	}
	return &Writer{f: f, staged: existing.Header.Type == headerTypeStaged}, nil
}

// AppendRecord appends one flat record line.
func (w *Writer) AppendRecord(index int, r mining.MineRecord) error {
	return writeLine(w.f, recordLine{Type: "record", Index: index, Record: toRecordJSON(r)})
}

// AppendStagedRecord appends one staged record line.
func (w *Writer) AppendStagedRecord(stage, index int, r mining.MineRecord) error {
	return writeLine(w.f, recordLine{Type: "record", Stage: stage, Index: index, Record: toRecordJSON(r)})
}

// Close closes the underlying file.
func (w *Writer) Close() error { return w.f.Close() }

func writeLine(f *os.File, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal checkpoint line: %w", err)
	}
	data = append(data, '\n')
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write checkpoint line: %w", err)
	}
	return f.Sync()
}

// Loaded is the result of loading a checkpoint file.
type Loaded struct {
	Header     Header
	Config     mining.Config
	MaxStage   int
	Records    [][]mining.MineRecord // per stage; stage 0 only for flat
	HaveIndex  [][]bool
}

// Load reads and parses a checkpoint file per spec.md §4.14's loading rules:
// the first non-empty line must be a header, non-"record" lines are skipped,
// and records are resized per stage to maxIndex+1 with defaults for gaps.
func Load(path string) (*Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header *Header
	type rawEntry struct {
		stage, index int
		rec          mining.MineRecord
	}
	var entries []rawEntry

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if header == nil {
			var h Header
			if err := json.Unmarshal(line, &h); err != nil {
				return nil, fmt.Errorf("line %d: invalid header: %w", lineNo, err)
			}
			if h.Type != headerTypeFlat && h.Type != headerTypeStaged {
				return nil, fmt.Errorf("line %d: first non-empty line is not a valid checkpoint header", lineNo)
			}
			header = &h
			continue
		}

		var rl recordLine
		if err := json.Unmarshal(line, &rl); err != nil {
			return nil, fmt.Errorf("line %d: malformed record line: %w", lineNo, err)
		}
		if rl.Type != "record" {
			continue
		}
		if rl.Index < 0 {
			return nil, fmt.Errorf("line %d: negative index %d", lineNo, rl.Index)
		}
		entries = append(entries, rawEntry{stage: rl.Stage, index: rl.Index, rec: rl.Record.toRecord()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan checkpoint: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("checkpoint file has no header")
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].stage != entries[j].stage {
			return entries[i].stage < entries[j].stage
		}
		return entries[i].index < entries[j].index
	})

	maxStage := 0
	for _, e := range entries {
		if e.stage > maxStage {
			maxStage = e.stage
		}
	}

	records := make([][]mining.MineRecord, maxStage+1)
	have := make([][]bool, maxStage+1)
	for _, e := range entries {
		if len(records[e.stage]) <= e.index {
			grow := e.index + 1
			nr := make([]mining.MineRecord, grow)
			copy(nr, records[e.stage])
			records[e.stage] = nr
			nh := make([]bool, grow)
			copy(nh, have[e.stage])
			have[e.stage] = nh
		}
		records[e.stage][e.index] = e.rec
		have[e.stage][e.index] = true
	}

	return &Loaded{
		Header:    *header,
		Config:    header.Mine.toConfig(),
		MaxStage:  maxStage,
		Records:   records,
		HaveIndex: have,
	}, nil
}

// canonicalize serializes a config with pretty=false, sortKeys=true
// semantics (Go's encoding/json naturally
// sorts map keys and struct fields are fixed-order, so a plain Marshal of
// these field-stable structs already satisfies the canonical form spec.md
// §4.14 requires for byte comparison).
func canonicalize(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ConfigsEquivalent compares a loaded header's config against the current
// run's config per spec.md §4.14's "Config equivalence" rule: all
// mining.Config fields except Threads; canonicalized proc/sim configs;
// for staged headers, also the stage schedule and SH parameters. Returns
// ("", true) on a match, or a human-readable mismatch reason.
func ConfigsEquivalent(loaded *Loaded, cfg mining.Config, proc worldgen.ProcGenConfig, sim worldgen.SimConfig, sh *ShSection) (string, bool) {
	lc := loaded.Config

	if lc.SeedStart != cfg.SeedStart {
		return "seedStart differs", false
	}
	if lc.SeedStep != cfg.SeedStep {
		return "seedStep differs", false
	}
	if lc.SeedXor != cfg.SeedXor {
		return "seedXor differs", false
	}
	if lc.SeedSampler != cfg.SeedSampler {
		return "seedSampler differs", false
	}
	if lc.Samples != cfg.Samples {
		return "samples differs", false
	}
	if lc.W != cfg.W || lc.H != cfg.H {
		return "w/h differs", false
	}
	if lc.Days != cfg.Days {
		return "days differs", false
	}
	if lc.Objective != cfg.Objective {
		return "objective differs", false
	}
	if lc.ScoreExpr != cfg.ScoreExpr {
		return "scoreExpr differs", false
	}
	if lc.HydrologyEnabled != cfg.HydrologyEnabled {
		return "hydrologyEnabled differs", false
	}
	if !seaLevelEqual(lc.SeaLevelOverride, cfg.SeaLevelOverride) {
		return "seaLevelOverride differs", false
	}
	if lc.SeaRequireEdgeConnection != cfg.SeaRequireEdgeConnection {
		return "seaRequireEdgeConnection differs", false
	}
	if lc.SeaEightConnected != cfg.SeaEightConnected {
		return "seaEightConnected differs", false
	}
	if lc.DepressionEpsilon != cfg.DepressionEpsilon {
		return "depressionEpsilon differs", false
	}

	lproc, err := canonicalize(loaded.Header.Proc)
	if err != nil {
		return "failed to canonicalize loaded proc config", false
	}
	cproc, err := canonicalize(proc)
	if err != nil {
		return "failed to canonicalize current proc config", false
	}
	if lproc != cproc {
		return "procGenConfig differs", false
	}

	lsim, err := canonicalize(loaded.Header.Sim)
	if err != nil {
		return "failed to canonicalize loaded sim config", false
	}
	csim, err := canonicalize(sim)
	if err != nil {
		return "failed to canonicalize current sim config", false
	}
	if lsim != csim {
		return "simConfig differs", false
	}

	if loaded.Header.Type == headerTypeStaged {
		if sh == nil {
			return "checkpoint is staged but no stage schedule was supplied", false
		}
		if loaded.Header.Sh == nil {
			return "staged checkpoint is missing its sh section", false
		}
		lsh, _ := canonicalize(*loaded.Header.Sh)
		csh, _ := canonicalize(*sh)
		if lsh != csh {
			return "stage schedule or SH selection parameters differ", false
		}
	} else if sh != nil {
		return "checkpoint is flat but a stage schedule was supplied", false
	}

	return "", true
}

func seaLevelEqual(a, b float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return a == b
}

// ReadHeaderOnly reads just the first non-empty line of a checkpoint file,
// without loading every record (used for quick resume-compatibility checks).
func ReadHeaderOnly(r io.Reader) (*Header, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var h Header
		if err := json.Unmarshal(line, &h); err != nil {
			return nil, fmt.Errorf("invalid header: %w", err)
		}
		return &h, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("empty checkpoint file")
}
