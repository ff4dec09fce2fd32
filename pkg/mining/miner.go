package mining

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/procisocity/seedminer/pkg/mining/expr"
	"github.com/procisocity/seedminer/pkg/worldgen"
)

// ProgressFn is invoked with strictly increasing index as each record
// completes (spec.md §4.5, §9 "Callbacks and progress delivery").
type ProgressFn func(index, total int, record *MineRecord)

// MineSeeds mines cfg.Samples seeds using MineSeedForSample for each index
// (spec.md §4.5).
func MineSeeds(cfg Config, procCfg worldgen.ProcGenConfig, simCfg worldgen.SimConfig, progress ProgressFn) ([]MineRecord, error) {
	seeds := make([]uint64, cfg.Samples)
	for i := range seeds {
		seeds[i] = MineSeedForSample(cfg, uint64(i))
	}
	return MineSeedsExplicit(cfg, procCfg, simCfg, seeds, progress)
}

// MineSeedsExplicit mines the given seeds directly, preserving the driver
// contract of spec.md §4.5: output length equals len(seeds), records[i]
// corresponds to seeds[i], and results are identical for any threads >= 1.
func MineSeedsExplicit(cfg Config, procCfg worldgen.ProcGenConfig, simCfg worldgen.SimConfig, seeds []uint64, progress ProgressFn) ([]MineRecord, error) {
	var scoreProgram *expr.Program
	if cfg.ScoreExpr != "" {
		prog, err := expr.Compile(cfg.ScoreExpr)
		if err != nil {
			return nil, fmt.Errorf("score expression compile failed: %w", err)
		}
		scoreProgram = prog
	}

	n := len(seeds)
	records := make([]MineRecord, n)

	threads := cfg.Threads
	if threads <= 0 {
		threads = runtime.GOMAXPROCS(0)
	}
	if threads > n {
		threads = n
	}
	if threads < 1 {
		threads = 1
	}

	if threads <= 1 {
		sim := worldgen.NewSimulator(simCfg)
		for i := 0; i < n; i++ {
			records[i] = MineOneSeed(i, seeds[i], cfg, procCfg, sim, scoreProgram)
			if progress != nil {
				progress(i, n, &records[i])
			}
		}
		return records, nil
	}

	return mineParallel(cfg, procCfg, simCfg, seeds, scoreProgram, records, threads, progress)
}

// mineParallel is a 1:1 port of the C++ MineSeedsImpl parallel path
// (original_source/src/isocity/SeedMiner.cpp): an atomic work-stealing
// index hands out sample indices to worker goroutines, each owning its own
// Simulator; a ready-flag array plus a condition variable deliver progress
// callbacks in strictly increasing index order despite out-of-order
// completion (spec.md §4.5, §9).
func mineParallel(
	cfg Config, procCfg worldgen.ProcGenConfig, simCfg worldgen.SimConfig,
	seeds []uint64, scoreProgram *expr.Program, records []MineRecord,
	threads int, progress ProgressFn,
) ([]MineRecord, error) {
	n := len(records)
	var nextIndex atomic.Int64

	var mu sync.Mutex
	cond := sync.NewCond(&mu)
	ready := make([]uint8, n)

	var wg sync.WaitGroup
	wg.Add(threads)
	for w := 0; w < threads; w++ {
		go func() {
			defer wg.Done()
			sim := worldgen.NewSimulator(simCfg)
			for {
				i := int(nextIndex.Add(1)) - 1
				if i >= n {
					return
				}
				records[i] = MineOneSeed(i, seeds[i], cfg, procCfg, sim, scoreProgram)
				if progress != nil {
					mu.Lock()
					ready[i] = 1
					cond.Broadcast()
					mu.Unlock()
				}
			}
		}()
	}

	if progress != nil {
		delivered := 0
		mu.Lock()
		for delivered < n {
			for delivered < n && ready[delivered] == 1 {
				mu.Unlock()
				progress(delivered, n, &records[delivered])
				mu.Lock()
				delivered++
			}
			if delivered < n {
				cond.Wait()
			}
		}
		mu.Unlock()
	}

	wg.Wait()
	return records, nil
}

// MineSession is a cooperative driver exposing step(maxSteps, progress) for
// UI integration that spreads work across frames, preserving the same
// determinism as single-threaded mining (spec.md §4.5).
type MineSession struct {
	cfg          Config
	procCfg      worldgen.ProcGenConfig
	simCfg       worldgen.SimConfig
	seeds        []uint64
	sim          *worldgen.Simulator
	scoreProgram *expr.Program
	scoreErr     error

	records []MineRecord
	index   int
}

// NewMineSession constructs a session over cfg.Samples sequential samples.
func NewMineSession(cfg Config, procCfg worldgen.ProcGenConfig, simCfg worldgen.SimConfig) *MineSession {
	seeds := make([]uint64, cfg.Samples)
	for i := range seeds {
		seeds[i] = MineSeedForSample(cfg, uint64(i))
	}
	return newMineSessionExplicit(cfg, procCfg, simCfg, seeds)
}

func newMineSessionExplicit(cfg Config, procCfg worldgen.ProcGenConfig, simCfg worldgen.SimConfig, seeds []uint64) *MineSession {
	s := &MineSession{
		cfg: cfg, procCfg: procCfg, simCfg: simCfg, seeds: seeds,
		sim:     worldgen.NewSimulator(simCfg),
		records: make([]MineRecord, len(seeds)),
	}
	if cfg.ScoreExpr != "" {
		prog, err := expr.Compile(cfg.ScoreExpr)
		if err != nil {
			s.scoreErr = fmt.Errorf("score expression compile failed: %w", err)
		} else {
			s.scoreProgram = prog
		}
	}
	return s
}

// Step processes up to maxSteps samples, invoking progress for each.
// Returns true once every sample has been mined.
func (s *MineSession) Step(maxSteps int, progress ProgressFn) (bool, error) {
	if s.scoreErr != nil {
		return false, s.scoreErr
	}
	total := len(s.seeds)
	steps := 0
	for s.index < total && steps < maxSteps {
		i := s.index
		s.records[i] = MineOneSeed(i, s.seeds[i], s.cfg, s.procCfg, s.sim, s.scoreProgram)
		if progress != nil {
			progress(i, total, &s.records[i])
		}
		s.index++
		steps++
	}
	return s.Done(), nil
}

// Done reports whether every sample has been mined.
func (s *MineSession) Done() bool { return s.index >= len(s.seeds) }

// Index returns the number of samples mined so far.
func (s *MineSession) Index() int { return s.index }

// Total returns the total number of samples this session will mine.
func (s *MineSession) Total() int { return len(s.seeds) }

// Records returns the session's record slice (stable order,
// unfinished entries are the zero value).
func (s *MineSession) Records() []MineRecord { return s.records }

// StageProgressFn is called for every record mined during a staged run,
// identifying which stage the record belongs to in addition to its index
// within that stage (so a caller can route records to a staged checkpoint
// writer, which keys records by (stage, index)).
type StageProgressFn func(stage, index, total int, record *MineRecord)

// RunSuccessiveHalving implements the staged mining driver (spec.md §4.14,
// SPEC_FULL.md §C.2): mine stage 0 at its day budget, keep the top
// stages[0].Keep via SelectTopIndices, re-mine the kept seeds at each
// subsequent stage's (longer) day budget, narrowing the kept set each time.
func RunSuccessiveHalving(
	cfg Config, procCfg worldgen.ProcGenConfig, simCfg worldgen.SimConfig,
	stages []SuccessiveHalvingStage, diverse bool, candidatePool int,
	mmrScoreWeight float64, diversityMode DiversityMode, layoutWeight float64,
	progress StageProgressFn,
) ([][]MineRecord, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("successive halving requires at least one stage")
	}

	results := make([][]MineRecord, len(stages))

	stageProgress := func(stage int) ProgressFn {
		if progress == nil {
			return nil
		}
		return func(index, total int, record *MineRecord) { progress(stage, index, total, record) }
	}

	stage0Cfg := cfg
	stage0Cfg.Days = stages[0].Days
	records, err := MineSeeds(stage0Cfg, procCfg, simCfg, stageProgress(0))
	if err != nil {
		return nil, fmt.Errorf("stage 0 mining failed: %w", err)
	}
	results[0] = records

	kept := selectKeptSeeds(records, stages[0].Keep, diverse, candidatePool, mmrScoreWeight, diversityMode, layoutWeight)

	for stageIdx := 1; stageIdx < len(stages); stageIdx++ {
		stageCfg := cfg
		stageCfg.Days = stages[stageIdx].Days
		stageRecords, err := MineSeedsExplicit(stageCfg, procCfg, simCfg, kept, stageProgress(stageIdx))
		if err != nil {
			return nil, fmt.Errorf("stage %d mining failed: %w", stageIdx, err)
		}
		results[stageIdx] = stageRecords
		kept = selectKeptSeeds(stageRecords, stages[stageIdx].Keep, diverse, candidatePool, mmrScoreWeight, diversityMode, layoutWeight)
	}

	return results, nil
}

// SuccessiveHalvingStage is one stage of a staged mining schedule
// (spec.md §C.2, original_source/src/isocity/MineCheckpointSh.hpp).
type SuccessiveHalvingStage struct {
	Days int
	Keep int
}

func selectKeptSeeds(records []MineRecord, keep int, diverse bool, candidatePool int, mmrScoreWeight float64, mode DiversityMode, layoutWeight float64) []uint64 {
	indices := SelectTopIndices(records, keep, diverse, candidatePool, mmrScoreWeight, mode, layoutWeight)
	seeds := make([]uint64, len(indices))
	for i, idx := range indices {
		seeds[i] = records[idx].Seed
	}
	return seeds
}
