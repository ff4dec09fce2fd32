package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var rankCmd = &cobra.Command{
	Use:   "rank <run.json>",
	Args:  cobra.ExactArgs(1),
	Short: "Rank a saved mining run's records",
	Long: `Loads a saved run's JSON records and ranks them using score,
Pareto, MAP-Elites, MMR-diverse, or outlier-LOF selection.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("mode", "score", "ranking mode: score, pareto, mapelites, diverse, outlier")
	rankCmd.Flags().Int("top", 10, "number of records to keep")
	rankCmd.Flags().Bool("csv", false, "write the ranked output as CSV to stdout")
	rankCmd.Flags().Bool("diverse", true, "(diverse mode) enable MMR diversity selection")
	rankCmd.Flags().Int("candidate-pool", 0, "(diverse mode) candidate pool size, 0 = all records")
	rankCmd.Flags().Float64("mmr-weight", 0.5, "(diverse mode) MMR score-vs-diversity weight in [0,1]")
	rankCmd.Flags().String("diversity-mode", "hybrid", "(diverse/outlier mode) scalar, layout, or hybrid")
	rankCmd.Flags().Float64("layout-weight", 0.5, "(hybrid mode) layout distance weight in [0,1]")
	rankCmd.Flags().String("pareto-x", "population", "(pareto mode) x-axis metric")
	rankCmd.Flags().String("pareto-y", "happiness", "(pareto mode) y-axis metric")
}

func runRank(cmd *cobra.Command, args []string) error {
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

	mode, _ := cmd.Flags().GetString("mode")
	topK, _ := cmd.Flags().GetInt("top")
	diverse, _ := cmd.Flags().GetBool("diverse")
	candidatePool, _ := cmd.Flags().GetInt("candidate-pool")
	mmrWeight, _ := cmd.Flags().GetFloat64("mmr-weight")
	diversityModeName, _ := cmd.Flags().GetString("diversity-mode")
	layoutWeight, _ := cmd.Flags().GetFloat64("layout-weight")
	diversityMode := parseDiversityMode(diversityModeName)

	var selected []int
	switch mode {
	case "pareto":
		xMetric := parseMetric(mustFlagString(cmd, "pareto-x"), mining.MetricPopulation)
		yMetric := parseMetric(mustFlagString(cmd, "pareto-y"), mining.MetricHappiness)
		pr := mining.ComputePareto(records, []mining.ParetoObjective{
			{Metric: xMetric, Maximize: true},
			{Metric: yMetric, Maximize: true},
		})
		for i := range records {
			records[i].ParetoRank = pr.Rank[i]
			records[i].ParetoCrowding = pr.Crowding[i]
		}
		selected = mining.SelectTopParetoIndices(pr, topK, true)
	case "mapelites":
		cfgME := mining.MapElitesConfig{
			X:               mining.MapElitesAxis{Metric: mining.MetricPopulation, Bins: 10, Auto: true},
			Y:               mining.MapElitesAxis{Metric: mining.MetricHappiness, Bins: 10, Auto: true},
			Quality:         mining.MetricScore,
			QualityMaximize: true,
			ClampToBounds:   true,
		}
		result := mining.ComputeMapElites(records, cfgME)
		selected = mining.SelectTopMapElitesIndices(result, records, topK)
	case "diverse":
		selected = mining.SelectTopIndices(records, topK, diverse, candidatePool, mmrWeight, diversityMode, layoutWeight)
	case "outlier":
		outlierCfg := mining.OutlierConfig{K: 10, Space: diversityMode, LayoutWeight: layoutWeight, RobustScaling: true}
		result := mining.ComputeLocalOutlierFactor(records, outlierCfg)
		for i := range records {
			records[i].OutlierLof = result.Lof[i]
			records[i].Novelty = result.Novelty[i]
		}
		selected = mining.SelectTopOutlierIndices(records, topK)
	default:
		selected = mining.SelectTopIndices(records, topK, false, 0, 1.0, mining.DiversityScalar, 0)
	}

	ranked := make([]mining.MineRecord, len(selected))
	for i, idx := range selected {
		ranked[i] = records[idx]
	}

	asCSV, _ := cmd.Flags().GetBool("csv")
	if asCSV {
		return reporting.WriteRecordsCSV(os.Stdout, ranked)
	}

	for _, r := range ranked {
		fmt.Printf("seed=0x%016x score=%.6f objective=%.6f day=%d pop=%.2f happy=%.3f\n",
			r.Seed, r.Score, r.ObjectiveScore, r.Stats.Day, r.Stats.Population, r.Stats.Happiness)
	}
	return nil
}

func mustFlagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
