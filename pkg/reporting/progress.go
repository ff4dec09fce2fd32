package reporting

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/procisocity/seedminer/pkg/mining"
)

// OutputFormat represents the progress output format.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatTUI  OutputFormat = "tui"
)

// MiningState is a snapshot of an in-flight mining run, reported through
// isocity::MineProgressFn (spec.md §4.5).
type MiningState struct {
	Done      int
	Total     int
	BestScore float64
	BestSeed  uint64
	Elapsed   time.Duration
}

// ProgressReporter reports mining progress to the console in one of three
// formats, adapted from the teacher's test-progress reporter.
type ProgressReporter struct {
	format OutputFormat
	logger *Logger
	start  time.Time
}

// NewProgressReporter creates a new progress reporter.
func NewProgressReporter(format OutputFormat, logger *Logger) *ProgressReporter {
	return &ProgressReporter{format: format, logger: logger, start: time.Now()}
}

// ReportProgress reports the current mining state. Intended to be wired
// directly as (or wrapped by) a MineProgressFn.
func (pr *ProgressReporter) ReportProgress(state MiningState) {
	switch pr.format {
	case FormatJSON:
		pr.reportJSON(state)
	case FormatTUI:
		pr.reportTUI(state)
	default:
		pr.reportText(state)
	}
}

// ReportDone reports the completion of a mining run.
func (pr *ProgressReporter) ReportDone(records []mining.MineRecord) {
	best := bestOf(records)
	switch pr.format {
	case FormatJSON:
		data, _ := json.Marshal(map[string]interface{}{
			"event":       "mine_completed",
			"samples":     len(records),
			"best_score":  best.Score,
			"best_seed":   fmt.Sprintf("0x%016x", best.Seed),
			"best_index":  best.Index,
			"timestamp":   time.Now(),
		})
		fmt.Println(string(data))
	case FormatTUI:
		pr.clearLine()
		pr.printSummary(records, best)
	default:
		pr.printSummaryText(records, best)
	}
}

func bestOf(records []mining.MineRecord) mining.MineRecord {
	var best mining.MineRecord
	bestSet := false
	for _, r := range records {
		if !bestSet || r.Score > best.Score {
			best = r
			bestSet = true
		}
	}
	return best
}

func (pr *ProgressReporter) reportText(state MiningState) {
	fmt.Printf("[%s] mined %d/%d | best=%.6f seed=0x%016x | elapsed=%s\n",
		time.Now().Format("15:04:05"),
		state.Done, state.Total, state.BestScore, state.BestSeed,
		state.Elapsed.Round(time.Second))
}

func (pr *ProgressReporter) reportJSON(state MiningState) {
	data, err := json.Marshal(map[string]interface{}{
		"event":      "mine_progress",
		"done":       state.Done,
		"total":      state.Total,
		"best_score": state.BestScore,
		"best_seed":  fmt.Sprintf("0x%016x", state.BestSeed),
		"elapsed_ms": state.Elapsed.Milliseconds(),
	})
	if err != nil {
		pr.logger.Error("failed to marshal mining state", "error", err)
		return
	}
	fmt.Println(string(data))
}

func (pr *ProgressReporter) reportTUI(state MiningState) {
	pr.clearLine()
	pct := 0.0
	if state.Total > 0 {
		pct = 100 * float64(state.Done) / float64(state.Total)
	}
	fmt.Printf("\rmining %d/%d (%.1f%%) best=%.6f seed=0x%016x elapsed=%s",
		state.Done, state.Total, pct, state.BestScore, state.BestSeed,
		state.Elapsed.Round(time.Second))
}

func (pr *ProgressReporter) printSummary(records []mining.MineRecord, best mining.MineRecord) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Println("  MINING SUMMARY")
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  samples:    %d\n", len(records))
	fmt.Printf("  best score: %.6f\n", best.Score)
	fmt.Printf("  best seed:  0x%016x (index %d)\n", best.Seed, best.Index)
	fmt.Println(strings.Repeat("=", 72))
}

func (pr *ProgressReporter) printSummaryText(records []mining.MineRecord, best mining.MineRecord) {
	fmt.Printf("\n[MINE SUMMARY] samples=%d best_score=%.6f best_seed=0x%016x index=%d\n",
		len(records), best.Score, best.Seed, best.Index)
}

func (pr *ProgressReporter) clearLine() {
	fmt.Print("\033[K")
}
