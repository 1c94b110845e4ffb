package storage

import "github.com/MarvelOlas/aws-health-checker/types"

// ChangeType classifies a transition between two snapshots.
type ChangeType string

const (
	ChangeAppeared     ChangeType = "appeared"
	ChangeDisappeared  ChangeType = "disappeared"
	ChangeStateChanged ChangeType = "state_changed"
)

// Transition records one resource changing between two snapshots.
type Transition struct {
	Type   ChangeType `json:"type"`
	Kind   string     `json:"kind"` // "instance" or "alarm"
	ID     string     `json:"id"`
	Region string     `json:"region"`
	From   string     `json:"from,omitempty"`
	To     string     `json:"to,omitempty"`
}

// DetectTransitions compares two reports and returns every instance or
// alarm that appeared, disappeared, or changed state.
func DetectTransitions(prev, cur *types.Report) []Transition {
	if prev == nil || cur == nil {
		return nil
	}

	var transitions []Transition
	transitions = append(transitions, instanceTransitions(prev.Instances, cur.Instances)...)
	transitions = append(transitions, alarmTransitions(prev.Alarms, cur.Alarms)...)
	return transitions
}

func instanceTransitions(prev, cur []types.Instance) []Transition {
	prevByID := make(map[string]types.Instance, len(prev))
	for _, instance := range prev {
		prevByID[instance.ID] = instance
	}

	var transitions []Transition
	seen := make(map[string]bool, len(cur))

	for _, instance := range cur {
		seen[instance.ID] = true

		old, existed := prevByID[instance.ID]
		if !existed {
			transitions = append(transitions, Transition{
				Type:   ChangeAppeared,
				Kind:   "instance",
				ID:     instance.ID,
				Region: instance.Region,
				To:     instance.State,
			})
			continue
		}

		if old.State != instance.State {
			transitions = append(transitions, Transition{
				Type:   ChangeStateChanged,
				Kind:   "instance",
				ID:     instance.ID,
				Region: instance.Region,
				From:   old.State,
				To:     instance.State,
			})
		}
	}

	for _, instance := range prev {
		if !seen[instance.ID] {
			transitions = append(transitions, Transition{
				Type:   ChangeDisappeared,
				Kind:   "instance",
				ID:     instance.ID,
				Region: instance.Region,
				From:   instance.State,
			})
		}
	}

	return transitions
}

func alarmTransitions(prev, cur []types.Alarm) []Transition {
	prevByName := make(map[string]types.Alarm, len(prev))
	for _, alarm := range prev {
		prevByName[alarmKey(alarm)] = alarm
	}

	var transitions []Transition
	seen := make(map[string]bool, len(cur))

	for _, alarm := range cur {
		key := alarmKey(alarm)
		seen[key] = true

		old, existed := prevByName[key]
		if !existed {
			transitions = append(transitions, Transition{
				Type:   ChangeAppeared,
				Kind:   "alarm",
				ID:     alarm.Name,
				Region: alarm.Region,
				To:     alarm.State,
			})
			continue
		}

		if old.State != alarm.State {
			transitions = append(transitions, Transition{
				Type:   ChangeStateChanged,
				Kind:   "alarm",
				ID:     alarm.Name,
				Region: alarm.Region,
				From:   old.State,
				To:     alarm.State,
			})
		}
	}

	for _, alarm := range prev {
		if !seen[alarmKey(alarm)] {
			transitions = append(transitions, Transition{
				Type:   ChangeDisappeared,
				Kind:   "alarm",
				ID:     alarm.Name,
				Region: alarm.Region,
				From:   alarm.State,
			})
		}
	}

	return transitions
}

// Alarm names are unique per region, not globally.
func alarmKey(a types.Alarm) string {
	return a.Region + "/" + a.Name
}
