package record

import (
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

// Record is the persisted shape of the settings. Key names are shared by the
// JSON file, the Redis value and the Postgres columns.
type Record struct {
	BotChatID      *int64  `json:"bot_chat_id"`
	GroupLink      string  `json:"group_link,omitempty"`
	GroupTitle     string  `json:"group_title,omitempty"`
	GroupPeerID    *int64  `json:"group_peer_id,omitempty"`
	TargetID       *int64  `json:"target_id,omitempty"`
	TargetUsername *string `json:"target_username,omitempty"`
	NagInterval    *int    `json:"nag_interval,omitempty"`
}

func FromSettings(s models.Settings) Record {
	var rec Record

	if s.IntervalSet {
		interval := s.NagIntervalSeconds
		rec.NagInterval = &interval
	}

	if s.OperatorChatID != nil {
		id := *s.OperatorChatID
		rec.BotChatID = &id
	}

	if s.Group != nil {
		peerID := s.Group.PeerID
		rec.GroupLink = s.Group.Link
		rec.GroupTitle = s.Group.Title
		rec.GroupPeerID = &peerID
	}

	if s.Target != nil {
		id := s.Target.ID
		username := s.Target.Username
		rec.TargetID = &id
		rec.TargetUsername = &username
	}

	return rec
}

func (r Record) ToSettings() models.Settings {
	var s models.Settings

	if r.NagInterval != nil {
		s.NagIntervalSeconds = *r.NagInterval
		s.IntervalSet = true
	}

	if r.BotChatID != nil && *r.BotChatID != 0 {
		id := *r.BotChatID
		s.OperatorChatID = &id
	}

	if r.GroupPeerID != nil && *r.GroupPeerID != 0 {
		s.Group = &models.GroupRef{
			Link:   r.GroupLink,
			Title:  r.GroupTitle,
			PeerID: *r.GroupPeerID,
		}
	}

	if r.TargetID != nil && *r.TargetID != 0 {
		s.Target = &models.TargetUser{ID: *r.TargetID}
		if r.TargetUsername != nil {
			s.Target.Username = *r.TargetUsername
		}
	}

	return s
}
