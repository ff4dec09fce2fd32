package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/mining/checkpoint"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var stageCmd = &cobra.Command{
	Use:   "stage",
	Args:  cobra.NoArgs,
	Short: "Run a staged (successive-halving) mining schedule",
	Long: `Mines stage 0 at its day budget, keeps the top-scoring (or MMR-diverse)
seeds, and re-mines them at each subsequent stage's longer day budget,
narrowing the kept set each time (spec.md §4.14, SPEC_FULL.md §C.2).`,
	RunE: runStage,
}

func init() {
	stageCmd.Flags().String("format", "text", "progress output format (text, json, tui)")
	stageCmd.Flags().String("checkpoint", "", "path to a staged JSONL checkpoint file to write")
	stageCmd.Flags().StringSlice("stage", []string{"30:200", "120:20", "365:5"},
		"a stage as days:keep, repeatable or comma-separated")
	stageCmd.Flags().Bool("diverse", false, "select kept seeds per stage via MMR diversity instead of plain score")
	stageCmd.Flags().Int("candidate-pool", 0, "(diverse) candidate pool size, 0 = all records")
	stageCmd.Flags().Float64("mmr-weight", 0.5, "(diverse) MMR score-vs-diversity weight in [0,1]")
	stageCmd.Flags().String("diversity-mode", "hybrid", "(diverse) scalar, layout, or hybrid")
	stageCmd.Flags().Float64("layout-weight", 0.5, "(diverse, hybrid mode) layout distance weight in [0,1]")
}

func parseStages(raw []string) ([]mining.SuccessiveHalvingStage, error) {
	stages := make([]mining.SuccessiveHalvingStage, 0, len(raw))
	for _, s := range raw {
		parts := strings.SplitN(s, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid stage %q, want days:keep", s)
		}
		days, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("invalid stage days in %q: %w", s, err)
		}
		keep, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid stage keep in %q: %w", s, err)
		}
		stages = append(stages, mining.SuccessiveHalvingStage{Days: days, Keep: keep})
	}
	return stages, nil
}

func runStage(cmd *cobra.Command, args []string) error {
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

	rawStages, _ := cmd.Flags().GetStringSlice("stage")
	stages, err := parseStages(rawStages)
	if err != nil {
		return err
	}

	diverse, _ := cmd.Flags().GetBool("diverse")
	candidatePool, _ := cmd.Flags().GetInt("candidate-pool")
	mmrWeight, _ := cmd.Flags().GetFloat64("mmr-weight")
	diversityModeName, _ := cmd.Flags().GetString("diversity-mode")
	layoutWeight, _ := cmd.Flags().GetFloat64("layout-weight")
	diversityMode := parseDiversityMode(diversityModeName)

	format, _ := cmd.Flags().GetString("format")
	checkpointPath, _ := cmd.Flags().GetString("checkpoint")

	var ckpt *checkpoint.Writer
	if checkpointPath != "" {
		sh := checkpoint.ShSection{
			Stages:         toShStages(stages),
			Diverse:        diverse,
			CandidatePool:  candidatePool,
			MmrScoreWeight: mmrWeight,
			DiversityMode:  int(diversityMode),
			LayoutWeight:   layoutWeight,
		}
		ckpt, err = checkpoint.CreateStaged(checkpointPath, uuid.New(), mineCfg, procCfg, simCfg, sh)
		if err != nil {
			return fmt.Errorf("failed to create staged checkpoint: %w", err)
		}
		defer ckpt.Close()
	}

	progressReporter := reporting.NewProgressReporter(reporting.OutputFormat(format), logger)

	progress := func(stage, index, total int, record *mining.MineRecord) {
		if ckpt != nil {
			if err := ckpt.AppendStagedRecord(stage, index, *record); err != nil {
				logger.Warn("failed to append staged checkpoint record", "stage", stage, "index", index, "error", err)
			}
		}
		progressReporter.ReportProgress(reporting.MiningState{Done: index + 1, Total: total, BestScore: record.Score, BestSeed: record.Seed})
	}

	logger.Info("starting staged mine run", "stages", len(stages))

	results, err := mining.RunSuccessiveHalving(mineCfg, procCfg, simCfg, stages, diverse, candidatePool, mmrWeight, diversityMode, layoutWeight, progress)
	if err != nil {
		return fmt.Errorf("staged mining failed: %w", err)
	}

	final := results[len(results)-1]
	progressReporter.ReportDone(final)
	logger.Info("staged mine run complete", "final_stage_records", len(final))
	return nil
}

func toShStages(stages []mining.SuccessiveHalvingStage) []checkpoint.ShStage {
	out := make([]checkpoint.ShStage, len(stages))
	for i, s := range stages {
		out[i] = checkpoint.ShStage{Days: s.Days, Keep: s.Keep}
	}
	return out
}
