package cmd

import (
	"github.com/spf13/cobra"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run and inspect bronze/silver/gold pipeline executions",
}

func init() {
	rootCmd.AddCommand(pipelineCmd)
}
