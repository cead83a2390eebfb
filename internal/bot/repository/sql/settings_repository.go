package sql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Matthew11K/group-watcher/internal/bot/repository/record"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/pkg/txs"
)

const (
	selectSettingsQuery = `SELECT bot_chat_id, group_link, group_title, group_peer_id, target_id, target_username, nag_interval
FROM watcher_settings WHERE id = 1`

	upsertSettingsQuery = `INSERT INTO watcher_settings
    (id, bot_chat_id, group_link, group_title, group_peer_id, target_id, target_username, nag_interval, updated_at)
VALUES (1, $1, $2, $3, $4, $5, $6, $7, now())
ON CONFLICT (id) DO UPDATE SET
    bot_chat_id = EXCLUDED.bot_chat_id,
    group_link = EXCLUDED.group_link,
    group_title = EXCLUDED.group_title,
    group_peer_id = EXCLUDED.group_peer_id,
    target_id = EXCLUDED.target_id,
    target_username = EXCLUDED.target_username,
    nag_interval = EXCLUDED.nag_interval,
    updated_at = EXCLUDED.updated_at`

	insertHistoryQuery = `INSERT INTO watcher_settings_history (payload) VALUES ($1)`
)

type SettingsRepository struct {
	txManager txs.Transactor
}

func NewSettingsRepository(txManager txs.Transactor) *SettingsRepository {
	return &SettingsRepository{
		txManager: txManager,
	}
}

func (r *SettingsRepository) Load(ctx context.Context) (models.Settings, error) {
	querier := r.txManager.Querier(ctx)

	var rec record.Record

	err := querier.QueryRow(ctx, selectSettingsQuery).Scan(
		&rec.BotChatID,
		&rec.GroupLink,
		&rec.GroupTitle,
		&rec.GroupPeerID,
		&rec.TargetID,
		&rec.TargetUsername,
		&rec.NagInterval,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Settings{}, &domainerrors.ErrSettingsNotFound{}
		}

		return models.Settings{}, &domainerrors.ErrSQLExecution{Operation: "получение настроек", Cause: err}
	}

	return rec.ToSettings(), nil
}

// Save overwrites the single settings row and appends the new record to the
// history table in the same transaction.
func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	rec := record.FromSettings(settings)

	payload, err := json.Marshal(rec)
	if err != nil {
		return &domainerrors.ErrInvalidArgument{Message: "не удалось сериализовать настройки в JSON"}
	}

	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.Querier(ctx)

		if _, err := querier.Exec(ctx, upsertSettingsQuery,
			rec.BotChatID,
			rec.GroupLink,
			rec.GroupTitle,
			rec.GroupPeerID,
			rec.TargetID,
			rec.TargetUsername,
			rec.NagInterval,
		); err != nil {
			return &domainerrors.ErrSQLExecution{Operation: "сохранение настроек", Cause: err}
		}

		if _, err := querier.Exec(ctx, insertHistoryQuery, string(payload)); err != nil {
			return &domainerrors.ErrSQLExecution{Operation: "запись истории настроек", Cause: err}
		}

		return nil
	})
}
