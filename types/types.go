// Package types holds the core data model for health check reports.
package types

import (
	"strings"
	"time"
)

// Alarm states as reported by CloudWatch.
const (
	AlarmStateOK               = "OK"
	AlarmStateAlarm            = "ALARM"
	AlarmStateInsufficientData = "INSUFFICIENT_DATA"
)

// Instance represents an EC2 instance and its observed health.
type Instance struct {
	ID           string            `json:"instance_id"`
	Name         string            `json:"name"`
	Type         string            `json:"instance_type"`
	State        string            `json:"state"`
	AZ           string            `json:"availability_zone,omitempty"`
	Region       string            `json:"region"`
	PrivateIP    string            `json:"private_ip,omitempty"`
	PublicIP     string            `json:"public_ip,omitempty"`
	LaunchTime   time.Time         `json:"launch_time"`
	Tags         map[string]string `json:"tags,omitempty"`
	SystemStatus string            `json:"system_status,omitempty"`
	StatusCheck  string            `json:"status_check,omitempty"`
}

// Alarm represents a CloudWatch metric alarm and its current state.
type Alarm struct {
	Name        string    `json:"name"`
	State       string    `json:"state"`
	MetricName  string    `json:"metric"`
	Namespace   string    `json:"namespace,omitempty"`
	Description string    `json:"description,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Region      string    `json:"region"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Report is the full result of one health check run.
type Report struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Tool        string     `json:"tool"`
	Regions     []string   `json:"regions"`
	Instances   []Instance `json:"instances"`
	Alarms      []Alarm    `json:"alarms"`
	Summary     Summary    `json:"summary"`
}

// Summary holds per-state tallies and the overall verdict.
type Summary struct {
	TotalInstances   int     `json:"total_instances"`
	RunningInstances int     `json:"running_instances"`
	StoppedInstances int     `json:"stopped_instances"`
	OtherInstances   int     `json:"other_instances"`
	TotalAlarms      int     `json:"total_alarms"`
	OKAlarms         int     `json:"ok_alarms"`
	ActiveAlarms     int     `json:"active_alarms"`
	InsufficientData int     `json:"insufficient_data_alarms"`
	Verdict          Verdict `json:"verdict"`
}

// Verdict is the overall health assessment of a report.
type Verdict string

const (
	// VerdictHealthy means every instance is running and no alarm fires.
	VerdictHealthy Verdict = "healthy"
	// VerdictDegraded means some instances are not running.
	VerdictDegraded Verdict = "degraded"
	// VerdictAlarming means at least one alarm is in ALARM state.
	VerdictAlarming Verdict = "alarming"
	// VerdictEmpty means no instances and no alarms were found.
	VerdictEmpty Verdict = "empty"
)

// InstanceFilter narrows which instances a check collects.
type InstanceFilter struct {
	States []string          `json:"states,omitempty"`
	Tags   map[string]string `json:"tags,omitempty"`
}

// AlarmFilter narrows which alarms a check collects.
type AlarmFilter struct {
	States     []string `json:"states,omitempty"`
	NamePrefix string   `json:"name_prefix,omitempty"`
}

// Matches checks if an instance passes the filter.
func (f InstanceFilter) Matches(i Instance) bool {
	return f.matchesState(i) && f.matchesTags(i)
}

func (f InstanceFilter) matchesState(i Instance) bool {
	if len(f.States) == 0 {
		return true
	}
	for _, s := range f.States {
		if i.State == s {
			return true
		}
	}
	return false
}

func (f InstanceFilter) matchesTags(i Instance) bool {
	for k, v := range f.Tags {
		if i.Tags[k] != v {
			return false
		}
	}
	return true
}

// Matches checks if an alarm passes the filter.
func (f AlarmFilter) Matches(a Alarm) bool {
	if f.NamePrefix != "" && !strings.HasPrefix(a.Name, f.NamePrefix) {
		return false
	}
	if len(f.States) == 0 {
		return true
	}
	for _, s := range f.States {
		if a.State == s {
			return true
		}
	}
	return false
}

// IsFiring reports whether the alarm is in ALARM state.
func (a Alarm) IsFiring() bool {
	return a.State == AlarmStateAlarm
}

// IsRunning reports whether the instance is in the running state.
func (i Instance) IsRunning() bool {
	return i.State == "running"
}

// DisplayName returns the Name tag or a placeholder.
func (i Instance) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return "unnamed"
}
