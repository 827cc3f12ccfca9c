package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eyebp/boosting/logger"
)

func cliParser() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "boosting",
		Short: "boosting trains and applies gradient boosted regression trees",
		Long:  `Train gradient boosted tree ensembles on npy or csv data, render them and apply them to new data.`,
	}
	rootCmd.AddCommand(versionCmd(), trainCmd(), predictCmd(), renderCmd(), curvesCmd())
	return rootCmd
}

func main() {
	logger.Init(true)
	defer logger.Sync()

	if err := cliParser().Execute(); err != nil {
		os.Exit(1)
	}
}
