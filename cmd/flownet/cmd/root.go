// Package cmd provides the command-line interface for FlowNet.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use: "flownet",
	Short: "FlowNet CLI tool can run example dataflow networks and " +
		"report their throughput.",
	Long: `FlowNet CLI tool can run example dataflow networks and report ` +
		`their throughput. Currently, it supports running a demo network ` +
		`built from the library actors.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
