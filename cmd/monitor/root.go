package main

import (
	"fmt"
	"upwatch/internals/modules/reconciler"

	"github.com/spf13/cobra"
)

var (
	cfgPath   string
	limitFlag int
	chunkFlag string
	testMode  bool
)

var rootCmd = &cobra.Command{
	Use:           "upwatch",
	Short:         "continuous health checks with throttled multi-channel alerting",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "env.yaml", "path to the yaml config file")
	rootCmd.PersistentFlags().IntVar(&limitFlag, "limit", 0, "cap on total managed items (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&chunkFlag, "chunk", "", "static partition \"k-S\": own items (k-1)*S+1..k*S by ascending id")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test", false, "use the isolated test config (env.test.yaml unless --config is set)")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(testCmd)
}

// configPath honors --test when the caller did not pick a file explicitly.
func configPath(cmd *cobra.Command) string {
	if testMode && !cmd.Flags().Changed("config") && !cmd.InheritedFlags().Changed("config") {
		return "env.test.yaml"
	}
	return cfgPath
}

func partitionFromFlags() (reconciler.Partition, error) {
	part, err := reconciler.ParsePartition(chunkFlag)
	if err != nil {
		return reconciler.Partition{}, fmt.Errorf("invalid --chunk: %w", err)
	}
	return part, nil
}
