package settings_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/internal/watcher/settings"
	"github.com/Matthew11K/group-watcher/internal/watcher/settings/mocks"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestManager_LoadFallsBackToDefaultsOnReadError(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("Load", mock.Anything).Return(models.Settings{}, errors.New("битый файл"))

	m := settings.NewManager(repo, 300, newLogger())
	loaded := m.Load(context.Background())

	assert.Equal(t, 300, loaded.NagIntervalSeconds)
	assert.Nil(t, loaded.Group)
	assert.Nil(t, loaded.OperatorChatID)
}

func TestManager_LoadNotFoundIsNotAnError(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("Load", mock.Anything).Return(models.Settings{}, &domainerrors.ErrSettingsNotFound{})

	m := settings.NewManager(repo, 10, newLogger())
	loaded := m.Load(context.Background())

	assert.Equal(t, models.MinNagIntervalSeconds, loaded.NagIntervalSeconds, "default is clamped")
}

func TestManager_LoadIgnoresTooShortStoredInterval(t *testing.T) {
	chatID := int64(77)
	repo := mocks.NewRepository(t)
	repo.On("Load", mock.Anything).Return(models.Settings{
		OperatorChatID:     &chatID,
		NagIntervalSeconds: 5,
	}, nil)

	m := settings.NewManager(repo, 120, newLogger())
	loaded := m.Load(context.Background())

	assert.Equal(t, 120, loaded.NagIntervalSeconds)
	require.NotNil(t, loaded.OperatorChatID)
	assert.Equal(t, chatID, *loaded.OperatorChatID)
}

func TestManager_UpdatePersistsBeforePublishing(t *testing.T) {
	repo := mocks.NewRepository(t)

	want := models.Settings{
		Group:              &models.GroupRef{Title: "Ops", PeerID: -1009},
		NagIntervalSeconds: 150,
	}

	repo.On("Save", mock.Anything, mock.MatchedBy(func(s models.Settings) bool {
		return cmp.Equal(s, want)
	})).Return(nil).Once()

	m := settings.NewManager(repo, 150, newLogger())

	got, err := m.Update(context.Background(), func(s *models.Settings) error {
		s.Group = &models.GroupRef{Title: "Ops", PeerID: -1009}
		return nil
	})

	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected settings (-want +got):\n%s", diff)
	}

	assert.Equal(t, int64(-1009), m.Snapshot().GroupPeerID())
}

func TestManager_UpdateKeepsStateOnSaveFailure(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("Save", mock.Anything, mock.Anything).Return(&domainerrors.ErrStoreWrite{Backend: "FILE", Cause: os.ErrPermission})

	m := settings.NewManager(repo, 300, newLogger())

	_, err := m.Update(context.Background(), func(s *models.Settings) error {
		s.NagIntervalSeconds = 60
		return nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, 300, m.Snapshot().NagIntervalSeconds)
}

func TestManager_SnapshotIsACopy(t *testing.T) {
	repo := mocks.NewRepository(t)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	m := settings.NewManager(repo, 300, newLogger())
	_, err := m.Update(context.Background(), func(s *models.Settings) error {
		s.Target = &models.TargetUser{ID: 555, Username: "alice"}
		return nil
	})
	require.NoError(t, err)

	snap := m.Snapshot()
	snap.Target.Username = "mallory"

	assert.Equal(t, "alice", m.Snapshot().TargetUsername())
}

func TestManager_OverrideOperatorIsInMemory(t *testing.T) {
	repo := mocks.NewRepository(t)

	m := settings.NewManager(repo, 300, newLogger())
	m.OverrideOperator(4242)

	snap := m.Snapshot()
	require.True(t, snap.HasOperator())
	assert.Equal(t, int64(4242), *snap.OperatorChatID)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
