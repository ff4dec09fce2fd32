package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/mining/checkpoint"
	"github.com/procisocity/seedminer/pkg/reporting"
	"github.com/procisocity/seedminer/pkg/telemetry"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Args:  cobra.NoArgs,
	Short: "Mine a batch of seeds and report the results",
	Long:  `Samples, simulates, and scores mine.samples seeds per the loaded configuration.`,
	RunE:  runMine,
}

func init() {
	mineCmd.Flags().String("format", "text", "progress output format (text, json, tui)")
	mineCmd.Flags().String("checkpoint", "", "path to an append-only JSONL checkpoint file to write")
	mineCmd.Flags().Bool("csv", false, "also write a CSV export to the output directory")
	mineCmd.Flags().String("trace-metrics", "", "comma-separated per-day KPI metrics to capture (e.g. population,happiness); empty disables capture")
}

func runMine(cmd *cobra.Command, args []string) error {
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

	format, _ := cmd.Flags().GetString("format")
	checkpointPath, _ := cmd.Flags().GetString("checkpoint")
	writeCSV, _ := cmd.Flags().GetBool("csv")
	traceMetricsFlag, _ := cmd.Flags().GetString("trace-metrics")
	traceMetrics, err := mining.ParseTraceMetricList(traceMetricsFlag)
	if err != nil {
		return fmt.Errorf("invalid trace-metrics: %w", err)
	}
	mineCfg.TraceMetrics = traceMetrics

	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.New()
		go func() {
			if err := metrics.Serve(cfg.Telemetry.Addr); err != nil {
				logger.Warn("telemetry server stopped", "error", err)
			}
		}()
	}

	var ckpt *checkpoint.Writer
	if checkpointPath != "" {
		runID := uuid.New()
		ckpt, err = checkpoint.CreateFlat(checkpointPath, runID, mineCfg, procCfg, simCfg)
		if err != nil {
			return fmt.Errorf("failed to create checkpoint: %w", err)
		}
		defer ckpt.Close()
	}

	progressReporter := reporting.NewProgressReporter(reporting.OutputFormat(format), logger)
	start := time.Now()

	progress := func(index, total int, record *mining.MineRecord) {
		if metrics != nil {
			metrics.SamplesMined.Inc()
			metrics.BestScore.Set(record.Score)
		}
		if ckpt != nil {
			if err := ckpt.AppendRecord(index, *record); err != nil {
				logger.Warn("failed to append checkpoint record", "index", index, "error", err)
			}
		}
		progressReporter.ReportProgress(reporting.MiningState{
			Done: index + 1, Total: total, BestScore: record.Score, BestSeed: record.Seed,
			Elapsed: time.Since(start),
		})
	}

	logger.Info("starting mine run", "samples", mineCfg.Samples, "threads", mineCfg.Threads)
	records, err := mining.MineSeeds(mineCfg, procCfg, simCfg, progress)
	if err != nil {
		return fmt.Errorf("mining failed: %w", err)
	}
	progressReporter.ReportDone(records)

	storage, err := reporting.NewStorage(cfg.Reporting.OutputDir, 10, logger)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	runID := fmt.Sprintf("%d", time.Now().UnixNano())
	jsonPath, csvPath, err := storage.SaveRun(runID, records)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	logger.Info("mine run saved", "json", jsonPath)
	if writeCSV {
		logger.Info("mine run csv saved", "csv", csvPath)
	}
	if len(mineCfg.TraceMetrics) > 0 {
		if tracesPath, err := storage.SaveTraces(runID, records); err != nil {
			logger.Warn("failed to save traces", "error", err)
		} else if tracesPath != "" {
			logger.Info("mine run traces saved", "traces", tracesPath)
		}
	}

	return nil
}
