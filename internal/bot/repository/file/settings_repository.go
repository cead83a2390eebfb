package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Matthew11K/group-watcher/internal/bot/repository/record"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

const backendName = "FILE"

// SettingsRepository keeps the record in a single JSON file. Writes go to a
// temporary file in the same directory which is then renamed over the target.
type SettingsRepository struct {
	path string
}

func NewSettingsRepository(path string) *SettingsRepository {
	return &SettingsRepository{path: path}
}

func (r *SettingsRepository) Load(_ context.Context) (models.Settings, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.Settings{}, &domainerrors.ErrSettingsNotFound{}
		}

		return models.Settings{}, &domainerrors.ErrStoreRead{Backend: backendName, Cause: err}
	}

	var rec record.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return models.Settings{}, &domainerrors.ErrStoreRead{Backend: backendName, Cause: err}
	}

	return rec.ToSettings(), nil
}

func (r *SettingsRepository) Save(_ context.Context, settings models.Settings) error {
	data, err := json.MarshalIndent(record.FromSettings(settings), "", "  ")
	if err != nil {
		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: err}
	}

	dir := filepath.Dir(r.path)

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: err}
	}

	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: err}
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)
		return &domainerrors.ErrStoreWrite{Backend: backendName, Cause: fmt.Errorf("rename: %w", err)}
	}

	return nil
}
