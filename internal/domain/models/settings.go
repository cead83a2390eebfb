package models

const MinNagIntervalSeconds = 30

type GroupRef struct {
	Link   string
	Title  string
	PeerID int64
}

type TargetUser struct {
	ID       int64
	Username string
}

// Settings is the durable record of what is being watched and where alerts go.
// Nil pointers mean "not configured".
type Settings struct {
	OperatorChatID     *int64
	Group              *GroupRef
	Target             *TargetUser
	NagIntervalSeconds int

	// IntervalSet marks an interval chosen by /interval or /reset. Only such
	// an interval is persisted; otherwise the startup default applies.
	IntervalSet bool
}

func NewSettings(defaultInterval int) Settings {
	return Settings{NagIntervalSeconds: ClampNagInterval(defaultInterval)}
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (s Settings) Clone() Settings {
	out := Settings{NagIntervalSeconds: s.NagIntervalSeconds, IntervalSet: s.IntervalSet}

	if s.OperatorChatID != nil {
		id := *s.OperatorChatID
		out.OperatorChatID = &id
	}

	if s.Group != nil {
		g := *s.Group
		out.Group = &g
	}

	if s.Target != nil {
		t := *s.Target
		out.Target = &t
	}

	return out
}

func (s Settings) GroupTitle() string {
	if s.Group == nil {
		return ""
	}

	return s.Group.Title
}

func (s Settings) GroupPeerID() int64 {
	if s.Group == nil {
		return 0
	}

	return s.Group.PeerID
}

func (s Settings) TargetUsername() string {
	if s.Target == nil {
		return ""
	}

	return s.Target.Username
}

func (s Settings) HasOperator() bool {
	return s.OperatorChatID != nil && *s.OperatorChatID != 0
}

func ClampNagInterval(seconds int) int {
	if seconds < MinNagIntervalSeconds {
		return MinNagIntervalSeconds
	}

	return seconds
}
