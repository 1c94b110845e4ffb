package types

import "testing"

func TestInstanceFilter_Matches(t *testing.T) {
	instance := Instance{
		ID:    "i-123456",
		State: "running",
		Tags:  map[string]string{"Environment": "prod", "Team": "web"},
	}

	tests := []struct {
		name   string
		filter InstanceFilter
		want   bool
	}{
		{"empty filter matches", InstanceFilter{}, true},
		{"matching state", InstanceFilter{States: []string{"running"}}, true},
		{"non-matching state", InstanceFilter{States: []string{"stopped"}}, false},
		{"one of several states", InstanceFilter{States: []string{"pending", "running"}}, true},
		{"matching tag", InstanceFilter{Tags: map[string]string{"Environment": "prod"}}, true},
		{"non-matching tag", InstanceFilter{Tags: map[string]string{"Environment": "dev"}}, false},
		{"missing tag", InstanceFilter{Tags: map[string]string{"CostCenter": "42"}}, false},
		{"state and tag", InstanceFilter{States: []string{"running"}, Tags: map[string]string{"Team": "web"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(instance); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlarmFilter_Matches(t *testing.T) {
	alarm := Alarm{Name: "prod-high-cpu", State: AlarmStateAlarm}

	tests := []struct {
		name   string
		filter AlarmFilter
		want   bool
	}{
		{"empty filter matches", AlarmFilter{}, true},
		{"matching state", AlarmFilter{States: []string{AlarmStateAlarm}}, true},
		{"non-matching state", AlarmFilter{States: []string{AlarmStateOK}}, false},
		{"matching prefix", AlarmFilter{NamePrefix: "prod-"}, true},
		{"non-matching prefix", AlarmFilter{NamePrefix: "staging-"}, false},
		{"prefix longer than name", AlarmFilter{NamePrefix: "prod-high-cpu-and-more"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(alarm); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstance_DisplayName(t *testing.T) {
	named := Instance{Name: "web-server"}
	if named.DisplayName() != "web-server" {
		t.Errorf("DisplayName() = %v, want web-server", named.DisplayName())
	}

	unnamed := Instance{ID: "i-123456"}
	if unnamed.DisplayName() != "unnamed" {
		t.Errorf("DisplayName() = %v, want unnamed", unnamed.DisplayName())
	}
}

func TestInstance_IsRunning(t *testing.T) {
	if !(Instance{State: "running"}).IsRunning() {
		t.Error("running instance should report IsRunning")
	}
	if (Instance{State: "stopped"}).IsRunning() {
		t.Error("stopped instance should not report IsRunning")
	}
}
