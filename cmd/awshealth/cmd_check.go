package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	checkRegions     []string
	checkOutput      string
	checkSave        string
	checkConfigPath  string
	checkAlarmPrefix string
	checkFailOnAlarm bool
	checkNoStore     bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run a health check and print the report",
	Long: `Run one health check against EC2 and CloudWatch.

Lists all EC2 instances with their state and status checks, all
CloudWatch metric alarms with their current state, and prints
per-state tallies plus an overall verdict. Each run is stored as a
snapshot so state transitions since the previous run are reported.`,
	Example: `  awshealth check                                # Check default region
  awshealth check --region us-east-1             # Check a specific region
  awshealth check --region eu-west-1 --region us-east-1
  awshealth check --output json                  # JSON to stdout
  awshealth check --save report.json             # Save full JSON report
  awshealth check --fail-on-alarm                # Exit 1 if an alarm fires
  awshealth check --alarm-prefix prod-           # Only alarms named prod-*`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringSliceVarP(&checkRegions, "region", "r", nil, "AWS region to check (repeatable)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Output format: table, json")
	checkCmd.Flags().StringVarP(&checkSave, "save", "s", "", "Save full JSON report to file")
	checkCmd.Flags().StringVarP(&checkConfigPath, "config", "c", "", "Path to config file")
	checkCmd.Flags().StringVar(&checkAlarmPrefix, "alarm-prefix", "", "Only include alarms with this name prefix")
	checkCmd.Flags().BoolVar(&checkFailOnAlarm, "fail-on-alarm", false, "Exit non-zero if any alarm is in ALARM state")
	checkCmd.Flags().BoolVar(&checkNoStore, "no-store", false, "Skip snapshot persistence")
}

func runCheck(cmd *cobra.Command, args []string) error {
	command := &CheckCommand{
		Regions:     checkRegions,
		Output:      checkOutput,
		Save:        checkSave,
		ConfigPath:  checkConfigPath,
		AlarmPrefix: checkAlarmPrefix,
		FailOnAlarm: checkFailOnAlarm,
		NoStore:     checkNoStore,
	}

	if command.Output != "" && command.Output != "table" && command.Output != "json" {
		return fmt.Errorf("invalid output format: %s (must be table or json)", command.Output)
	}

	return command.Run(cmd.Context())
}
