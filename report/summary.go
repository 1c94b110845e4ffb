// Package report aggregates check results into per-state tallies and a verdict.
package report

import "github.com/MarvelOlas/aws-health-checker/types"

// Summarize tallies instances and alarms by state and assesses overall health.
func Summarize(instances []types.Instance, alarms []types.Alarm) types.Summary {
	summary := types.Summary{
		TotalInstances: len(instances),
		TotalAlarms:    len(alarms),
	}

	for _, instance := range instances {
		switch instance.State {
		case "running":
			summary.RunningInstances++
		case "stopped":
			summary.StoppedInstances++
		default:
			summary.OtherInstances++
		}
	}

	for _, alarm := range alarms {
		switch alarm.State {
		case types.AlarmStateOK:
			summary.OKAlarms++
		case types.AlarmStateAlarm:
			summary.ActiveAlarms++
		case types.AlarmStateInsufficientData:
			summary.InsufficientData++
		}
	}

	summary.Verdict = Assess(summary)
	return summary
}

// Assess maps tallies to the overall verdict. Active alarms always win,
// then a fully running fleet, then the empty account case.
func Assess(s types.Summary) types.Verdict {
	switch {
	case s.ActiveAlarms > 0:
		return types.VerdictAlarming
	case s.TotalInstances > 0 && s.RunningInstances == s.TotalInstances:
		return types.VerdictHealthy
	case s.TotalInstances == 0 && s.TotalAlarms == 0:
		return types.VerdictEmpty
	default:
		return types.VerdictDegraded
	}
}
