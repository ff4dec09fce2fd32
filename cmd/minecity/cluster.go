package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster <run.json>",
	Args:  cobra.ExactArgs(1),
	Short: "k-medoids cluster a saved mining run's records",
	RunE:  runCluster,
}

func init() {
	clusterCmd.Flags().Int("k", 8, "number of clusters")
	clusterCmd.Flags().String("diversity-mode", "hybrid", "scalar, layout, or hybrid")
	clusterCmd.Flags().Float64("layout-weight", 0.5, "layout distance weight in [0,1]")
}

func runCluster(cmd *cobra.Command, args []string) error {
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

	k, _ := cmd.Flags().GetInt("k")
	diversityModeName, _ := cmd.Flags().GetString("diversity-mode")
	layoutWeight, _ := cmd.Flags().GetFloat64("layout-weight")

	clusterCfg := mining.DefaultMineClusteringConfig()
	clusterCfg.K = k
	clusterCfg.Space = parseDiversityMode(diversityModeName)
	clusterCfg.LayoutWeight = layoutWeight

	indices := make([]int, len(records))
	for i := range indices {
		indices[i] = i
	}

	result := mining.ComputeClustering(records, indices, clusterCfg)
	if !result.OK {
		return fmt.Errorf("clustering failed: %s", result.Warning)
	}

	fmt.Printf("k=%d total_cost=%.4f avg_silhouette=%.4f\n", k, result.TotalCost, result.AvgSilhouette)
	for c := 0; c < k; c++ {
		medoidSeed := uint64(0)
		if c < len(result.MedoidRecIndex) {
			medoidSeed = records[result.MedoidRecIndex[c]].Seed
		}
		size := 0
		if c < len(result.ClusterSizes) {
			size = result.ClusterSizes[c]
		}
		fmt.Printf("cluster %d: size=%d medoid_seed=0x%016x\n", c, size, medoidSeed)
	}
	return nil
}
