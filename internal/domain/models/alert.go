package models

import "time"

type AlertStatus string

const (
	AlertIdle   AlertStatus = "idle"
	AlertActive AlertStatus = "active"
)

// Alert is a point-in-time copy of the nag cycle.
// A zero LastSentAt means no nag has been sent in the current cycle.
type Alert struct {
	CycleID    string
	Active     bool
	StartedAt  time.Time
	LastSentAt time.Time
	NagCount   int
	Reason     string
}

func (a Alert) Status() AlertStatus {
	if a.Active {
		return AlertActive
	}

	return AlertIdle
}

// NagDecision is the outcome of one nag tick.
type NagDecision struct {
	Send    bool
	Count   int
	Capped  bool
	CycleID string
}
