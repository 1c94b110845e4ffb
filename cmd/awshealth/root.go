package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.2.0"
	rootCmd = &cobra.Command{
		Use:   "awshealth",
		Short: "AWS Resource Health Checker",
		Long: `awshealth - AWS Resource Health Checker

Check EC2 instance status and CloudWatch alarm state across regions,
summarize overall health, and export reports as text or JSON.

Run one-shot checks for scripts and CI, or watch continuously with
snapshot history, state transition detection and Prometheus metrics.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`awshealth {{.Version}} - AWS Resource Health Checker
`)
}
