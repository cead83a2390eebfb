package clients

import (
	"context"

	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

// PlatformClient resolves references against the monitored messaging platform.
type PlatformClient interface {
	// ResolveEntity accepts an invite link, @username, public link or numeric id.
	ResolveEntity(ctx context.Context, ref string) (*models.Entity, error)

	ListDialogs(ctx context.Context, limit int) ([]models.Dialog, error)
}

type EventHandler interface {
	HandleEvent(ctx context.Context, event *models.PlatformEvent) error
}

// EventSource delivers platform events to the handler until ctx is done.
type EventSource interface {
	Run(ctx context.Context, handler EventHandler) error
	Close() error
}
