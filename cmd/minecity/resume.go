package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/mining/checkpoint"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var resumeCmd = &cobra.Command{
	Use:   "resume <checkpoint>",
	Args:  cobra.ExactArgs(1),
	Short: "Resume or inspect a mining run from a checkpoint file",
	Long: `Loads a flat JSONL checkpoint, verifies it matches the current
configuration, and mines any remaining samples from where it left off.`,
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().String("format", "text", "progress output format (text, json, tui)")
}

func runResume(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	mineCfg, err := toMiningConfig(cfg.Mine)
	if err != nil {
		return fmt.Errorf("invalid mine config: %w", err)
	}
	procCfg := toProcGenConfig(cfg.ProcGen)
	simCfg := toSimConfig(cfg.Sim)

	loaded, err := checkpoint.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}

	reason, ok := checkpoint.ConfigsEquivalent(loaded, mineCfg, procCfg, simCfg, nil)
	if !ok {
		return fmt.Errorf("checkpoint does not match current configuration: %s", reason)
	}

	existing := loaded.Records[0]
	have := loaded.HaveIndex[0]
	logger.Info("checkpoint loaded", "present", countTrue(have), "total", mineCfg.Samples)

	missing := make([]int, 0)
	for i := 0; i < mineCfg.Samples; i++ {
		if i >= len(have) || !have[i] {
			missing = append(missing, i)
		}
	}

	seeds := make([]uint64, len(missing))
	for i, idx := range missing {
		seeds[i] = mining.MineSeedForSample(mineCfg, uint64(idx))
	}

	format, _ := cmd.Flags().GetString("format")
	progressReporter := reporting.NewProgressReporter(reporting.OutputFormat(format), logger)
	start := time.Now()

	ckptWriter, err := reopenForAppend(path)
	if err != nil {
		return fmt.Errorf("failed to reopen checkpoint for append: %w", err)
	}
	defer ckptWriter.Close()

	progress := func(localIdx, total int, record *mining.MineRecord) {
		globalIdx := missing[localIdx]
		record.Index = globalIdx
		if err := ckptWriter.AppendRecord(globalIdx, *record); err != nil {
			logger.Warn("failed to append checkpoint record", "index", globalIdx, "error", err)
		}
		progressReporter.ReportProgress(reporting.MiningState{
			Done: localIdx + 1, Total: total, BestScore: record.Score, BestSeed: record.Seed,
			Elapsed: time.Since(start),
		})
	}

	newRecords, err := mining.MineSeedsExplicit(mineCfg, procCfg, simCfg, seeds, progress)
	if err != nil {
		return fmt.Errorf("resume mining failed: %w", err)
	}

	merged := make([]mining.MineRecord, mineCfg.Samples)
	copy(merged, existing)
	for i, idx := range missing {
		merged[idx] = newRecords[i]
	}

	progressReporter.ReportDone(merged)
	return nil
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

// reopenForAppend opens an existing checkpoint file for appending new
// record lines without rewriting its header (spec.md §4.14 "Write policy").
func reopenForAppend(path string) (*checkpoint.Writer, error) {
	return checkpoint.OpenForAppend(path)
}
