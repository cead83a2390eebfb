package models

import (
	"strconv"
	"strings"
)

type EntityKind string

const (
	EntityUser    EntityKind = "user"
	EntityGroup   EntityKind = "group"
	EntityChannel EntityKind = "channel"
)

// Entity is a resolved platform peer. PeerID is the marked id used in events
// (negative for groups and channels).
type Entity struct {
	Kind     EntityKind `json:"kind"`
	ID       int64      `json:"id"`
	PeerID   int64      `json:"peer_id"`
	Title    string     `json:"title,omitempty"`
	Username string     `json:"username,omitempty"`
}

func (e *Entity) IsGroup() bool {
	return e.Kind == EntityGroup || e.Kind == EntityChannel
}

// DisplayTitle falls back to the numeric id when the group has no title.
func (e *Entity) DisplayTitle() string {
	if e.Title != "" {
		return e.Title
	}

	return strconv.FormatInt(e.ID, 10)
}

type Dialog struct {
	PeerID int64  `json:"peer_id"`
	Title  string `json:"title"`
	Entity Entity `json:"entity"`
}

// ExtractInviteHash returns the hash of a private invite link
// (t.me/joinchat/<hash> or t.me/+<hash>) or "" for anything else.
func ExtractInviteHash(link string) string {
	s := strings.TrimSpace(link)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "joinchat") {
		parts := strings.Split(s, "/")
		return strings.SplitN(parts[len(parts)-1], "?", 2)[0]
	}

	if _, after, ok := strings.Cut(s, "/+"); ok {
		return strings.SplitN(after, "?", 2)[0]
	}

	return ""
}

// ParsePeerID accepts signed decimal ids such as -1001234567890.
func ParsePeerID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.TrimLeft(s, "-") == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}

	return id, true
}
