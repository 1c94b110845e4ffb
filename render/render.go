// Package render turns a health report into console text or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/MarvelOlas/aws-health-checker/types"
)

// Table writes the report as human-readable console text.
func Table(w io.Writer, rpt *types.Report) error {
	fmt.Fprintf(w, "AWS Health Check — %s\n", strings.Join(rpt.Regions, ", "))
	fmt.Fprintf(w, "Generated: %s\n\n", rpt.GeneratedAt.Format("2006-01-02 15:04:05 MST"))

	writeInstanceTable(w, rpt.Instances)
	writeAlarmTable(w, rpt.Alarms)
	writeSummary(w, rpt.Summary)

	return nil
}

func writeInstanceTable(w io.Writer, instances []types.Instance) {
	fmt.Fprintf(w, "EC2 Instances:\n")

	if len(instances) == 0 {
		fmt.Fprintf(w, "   No EC2 instances found.\n\n")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tINSTANCE\tTYPE\tSTATE\tREGION\tCHECKS")
	_, _ = fmt.Fprintln(tw, "----\t--------\t----\t-----\t------\t------")

	for _, instance := range instances {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			truncate(instance.DisplayName(), 24),
			instance.ID,
			instance.Type,
			instance.State,
			instance.Region,
			statusChecks(instance),
		)
	}

	_ = tw.Flush()
	fmt.Fprintf(w, "\n")
}

func writeAlarmTable(w io.Writer, alarms []types.Alarm) {
	fmt.Fprintf(w, "CloudWatch Alarms:\n")

	if len(alarms) == 0 {
		fmt.Fprintf(w, "   No CloudWatch alarms configured.\n\n")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ALARM\tSTATE\tMETRIC\tREGION")
	_, _ = fmt.Fprintln(tw, "-----\t-----\t------\t------")

	for _, alarm := range alarms {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			truncate(alarm.Name, 40),
			alarm.State,
			alarm.MetricName,
			alarm.Region,
		)
	}

	_ = tw.Flush()
	fmt.Fprintf(w, "\n")
}

func writeSummary(w io.Writer, s types.Summary) {
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "   Instances: %d total, %d running, %d stopped", s.TotalInstances, s.RunningInstances, s.StoppedInstances)
	if s.OtherInstances > 0 {
		fmt.Fprintf(w, ", %d other", s.OtherInstances)
	}
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "   Alarms: %d total, %d OK, %d in alarm", s.TotalAlarms, s.OKAlarms, s.ActiveAlarms)
	if s.InsufficientData > 0 {
		fmt.Fprintf(w, ", %d insufficient data", s.InsufficientData)
	}
	fmt.Fprintf(w, "\n\n")

	fmt.Fprintf(w, "%s\n", verdictLine(s.Verdict))
}

func verdictLine(v types.Verdict) string {
	switch v {
	case types.VerdictAlarming:
		return "ATTENTION: active alarms need investigation"
	case types.VerdictHealthy:
		return "All systems healthy"
	case types.VerdictEmpty:
		return "No resources found to monitor"
	default:
		return "Some instances are not running"
	}
}

func statusChecks(i types.Instance) string {
	if i.SystemStatus == "" && i.StatusCheck == "" {
		return "-"
	}
	return fmt.Sprintf("%s/%s", orDash(i.SystemStatus), orDash(i.StatusCheck))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// JSON writes the report as indented JSON.
func JSON(w io.Writer, rpt *types.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rpt); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Save writes the full JSON report to a file.
func Save(path string, rpt *types.Report) error {
	data, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	return nil
}
