package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/gallery"
	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var galleryCmd = &cobra.Command{
	Use:   "gallery <run.json>",
	Args:  cobra.ExactArgs(1),
	Short: "Render a static HTML report of a saved mining run",
	RunE:  runGallery,
}

func init() {
	galleryCmd.Flags().String("out", "gallery.html", "output HTML file path")
	galleryCmd.Flags().Int("top", 25, "number of records in the ranked table")
	galleryCmd.Flags().String("pareto-x", "population", "pareto scatter x-axis metric")
	galleryCmd.Flags().String("pareto-y", "happiness", "pareto scatter y-axis metric")
	galleryCmd.Flags().String("trace-metrics", "", "comma-separated per-day KPI metrics to chart for the best record (requires the run to have been mined with --trace-metrics)")
}

func runGallery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	storage, err := reporting.NewStorage(cfg.Reporting.OutputDir, 10, logger)
	if err != nil {
		return err
	}
	records, err := storage.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	topK, _ := cmd.Flags().GetInt("top")
	xMetric := parseMetric(mustFlagString(cmd, "pareto-x"), mining.MetricPopulation)
	yMetric := parseMetric(mustFlagString(cmd, "pareto-y"), mining.MetricHappiness)

	pareto := mining.ComputePareto(records, []mining.ParetoObjective{
		{Metric: xMetric, Maximize: true},
		{Metric: yMetric, Maximize: true},
	})
	mapElites := mining.ComputeMapElites(records, mining.MapElitesConfig{
		X:               mining.MapElitesAxis{Metric: xMetric, Bins: 10, Auto: true},
		Y:               mining.MapElitesAxis{Metric: yMetric, Bins: 10, Auto: true},
		Quality:         mining.MetricScore,
		QualityMaximize: true,
		ClampToBounds:   true,
	})
	outliers := mining.ComputeLocalOutlierFactor(records, mining.OutlierConfig{K: 10, Space: mining.DiversityHybrid, LayoutWeight: 0.5, RobustScaling: true})

	traceMetricsFlag, _ := cmd.Flags().GetString("trace-metrics")
	traceMetrics, err := mining.ParseTraceMetricList(traceMetricsFlag)
	if err != nil {
		return fmt.Errorf("invalid trace-metrics: %w", err)
	}

	outPath, _ := cmd.Flags().GetString("out")
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create gallery output: %w", err)
	}
	defer f.Close()

	err = gallery.Render(f, records, gallery.Options{
		Title:        fmt.Sprintf("Mining Report: %s", args[0]),
		TopK:         topK,
		ParetoX:      xMetric,
		ParetoY:      yMetric,
		Pareto:       &pareto,
		MapElites:    &mapElites,
		Outliers:     &outliers,
		TraceMetrics: traceMetrics,
	})
	if err != nil {
		return fmt.Errorf("failed to render gallery: %w", err)
	}

	logger.Info("gallery report written", "path", outPath)
	return nil
}
