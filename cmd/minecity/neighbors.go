package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var neighborsCmd = &cobra.Command{
	Use:   "neighbors <run.json>",
	Args:  cobra.ExactArgs(1),
	Short: "Build a kNN graph over a saved mining run's records",
	RunE:  runNeighbors,
}

func init() {
	neighborsCmd.Flags().Int("k", 5, "number of nearest neighbors per record")
	neighborsCmd.Flags().String("diversity-mode", "hybrid", "scalar, layout, or hybrid")
	neighborsCmd.Flags().Float64("layout-weight", 0.5, "layout distance weight in [0,1]")
}

func runNeighbors(cmd *cobra.Command, args []string) error {
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
	mode := parseDiversityMode(diversityModeName)

	indices := make([]int, len(records))
	for i := range indices {
		indices[i] = i
	}

	result := mining.ComputeNeighbors(records, indices, k, mode, layoutWeight, true, nil)
	for i, idx := range indices {
		fmt.Printf("seed=0x%016x neighbors=", records[idx].Seed)
		for j, nIdx := range result.Neighbors[i] {
			fmt.Printf("0x%016x(%.4f) ", records[nIdx].Seed, result.Distances[i][j])
		}
		fmt.Println()
	}
	return nil
}
