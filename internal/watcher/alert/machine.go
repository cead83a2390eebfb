package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

// Machine holds the single current nag cycle. Every read-modify-write happens
// under mu because the command, event and nag loops run on separate goroutines.
type Machine struct {
	mu    sync.Mutex
	state models.Alert
}

func NewMachine() *Machine {
	return &Machine{}
}

// Arm starts a fresh cycle. Re-arming an active machine resets its counters.
func (m *Machine) Arm(reason string, now time.Time) models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = models.Alert{
		CycleID:   uuid.NewString(),
		Active:    true,
		StartedAt: now,
		Reason:    reason,
	}

	return m.state
}

// Stop is idempotent.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.Active = false
}

func (m *Machine) Snapshot() models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// TryNag records a nag if one is due. maxNags == 0 means uncapped; reaching the
// cap moves the machine to idle in the same critical section.
func (m *Machine) TryNag(now time.Time, interval time.Duration, maxNags int) models.NagDecision {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Active {
		return models.NagDecision{}
	}

	if !m.state.LastSentAt.IsZero() && now.Sub(m.state.LastSentAt) < interval {
		return models.NagDecision{Count: m.state.NagCount, CycleID: m.state.CycleID}
	}

	m.state.LastSentAt = now
	m.state.NagCount++

	decision := models.NagDecision{
		Send:    true,
		Count:   m.state.NagCount,
		CycleID: m.state.CycleID,
	}

	if maxNags > 0 && m.state.NagCount >= maxNags {
		m.state.Active = false
		decision.Capped = true
	}

	return decision
}
