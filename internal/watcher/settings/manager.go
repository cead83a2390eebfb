package settings

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

type Repository interface {
	Load(ctx context.Context) (models.Settings, error)

	Save(ctx context.Context, settings models.Settings) error
}

// Manager owns the in-memory configuration record. Mutations are applied to a
// copy, persisted, and only then published, so readers never observe an
// unsaved state.
type Manager struct {
	mu              sync.RWMutex
	current         models.Settings
	repo            Repository
	defaultInterval int
	logger          *slog.Logger
}

func NewManager(repo Repository, defaultInterval int, logger *slog.Logger) *Manager {
	return &Manager{
		current:         models.NewSettings(defaultInterval),
		repo:            repo,
		defaultInterval: models.ClampNagInterval(defaultInterval),
		logger:          logger,
	}
}

// Load replaces the in-memory record with the persisted one. Read failures
// are treated as "no prior state".
func (m *Manager) Load(ctx context.Context) models.Settings {
	loaded, err := m.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, &domainerrors.ErrSettingsNotFound{}) {
			m.logger.Info("Сохраненные настройки отсутствуют, используются значения по умолчанию")
		} else {
			m.logger.Warn("Не удалось прочитать сохраненные настройки, используются значения по умолчанию",
				"error", err,
			)
		}

		loaded = models.NewSettings(m.defaultInterval)
	}

	if loaded.NagIntervalSeconds < models.MinNagIntervalSeconds {
		loaded.NagIntervalSeconds = m.defaultInterval
		loaded.IntervalSet = false
	}

	m.mu.Lock()
	m.current = loaded.Clone()
	m.mu.Unlock()

	return loaded
}

func (m *Manager) Snapshot() models.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.current.Clone()
}

func (m *Manager) DefaultInterval() int {
	return m.defaultInterval
}

// OverrideOperator sets the operator chat in memory only; it is written out
// with the next persisted mutation.
func (m *Manager) OverrideOperator(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.current.OperatorChatID = &chatID
}

// Update applies fn to a copy of the record and persists it. If fn or the save
// fails the in-memory record is left untouched.
func (m *Manager) Update(ctx context.Context, fn func(s *models.Settings) error) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current.Clone()

	if err := fn(&next); err != nil {
		return m.current.Clone(), err
	}

	if err := m.repo.Save(ctx, next); err != nil {
		m.logger.Error("Ошибка при сохранении настроек",
			"error", err,
		)

		return m.current.Clone(), err
	}

	m.current = next

	return next.Clone(), nil
}
