package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/procisocity/seedminer/pkg/mining"
	"github.com/procisocity/seedminer/pkg/reporting"
)

var embedCmd = &cobra.Command{
	Use:   "embed <run.json>",
	Args:  cobra.ExactArgs(1),
	Short: "Classical-MDS 2-D embed a saved mining run's records",
	RunE:  runEmbed,
}

func init() {
	embedCmd.Flags().String("diversity-mode", "hybrid", "scalar, layout, or hybrid")
	embedCmd.Flags().Float64("layout-weight", 0.5, "layout distance weight in [0,1]")
}

func runEmbed(cmd *cobra.Command, args []string) error {
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

	diversityModeName, _ := cmd.Flags().GetString("diversity-mode")
	layoutWeight, _ := cmd.Flags().GetFloat64("layout-weight")
	mode := parseDiversityMode(diversityModeName)

	indices := make([]int, len(records))
	for i := range indices {
		indices[i] = i
	}

	result := mining.ComputeEmbedding(records, indices, mode, layoutWeight, true, nil)
	if !result.OK {
		return fmt.Errorf("embedding failed: %s", result.Warning)
	}

	fmt.Printf("lambda1=%.4f lambda2=%.4f\n", result.Lambda1, result.Lambda2)
	for i, idx := range indices {
		fmt.Printf("seed=0x%016x x=%.6f y=%.6f\n", records[idx].Seed, result.X[i], result.Y[i])
	}
	return nil
}
