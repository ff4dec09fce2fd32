package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "minecity",
	Short: "ProcIsoCity seed-mining core",
	Long: `minecity samples procedural city seeds, simulates each for a fixed
number of days, and scores, ranks, and analyzes the results (Pareto fronts,
MAP-Elites grids, outlier detection, diverse top-K selection, clustering,
2-D embedding, and kNN neighbor graphs).`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./minecity.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(mineCmd)
	rootCmd.AddCommand(resumeCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(clusterCmd)
	rootCmd.AddCommand(embedCmd)
	rootCmd.AddCommand(neighborsCmd)
	rootCmd.AddCommand(galleryCmd)
	rootCmd.AddCommand(exprCmd)
	rootCmd.AddCommand(stageCmd)
}

// Commands are defined in separate files:
// - mineCmd in mine.go
// - resumeCmd in resume.go
// - rankCmd in rank.go
// - clusterCmd in cluster.go
// - embedCmd in embed.go
// - neighborsCmd in neighbors.go
// - galleryCmd in gallery.go
// - exprCmd in expr.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
