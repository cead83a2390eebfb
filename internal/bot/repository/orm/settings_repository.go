package orm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Matthew11K/group-watcher/internal/bot/repository/record"
	customerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/pkg/txs"
)

const settingsRowID = 1

type SettingsRepository struct {
	txManager txs.Transactor
	sq        sq.StatementBuilderType
}

func NewSettingsRepository(txManager txs.Transactor) *SettingsRepository {
	return &SettingsRepository{
		txManager: txManager,
		sq:        sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *SettingsRepository) Load(ctx context.Context) (models.Settings, error) {
	querier := r.txManager.Querier(ctx)

	selectQuery := r.sq.Select(
		"bot_chat_id", "group_link", "group_title", "group_peer_id",
		"target_id", "target_username", "nag_interval",
	).
		From("watcher_settings").
		Where(sq.Eq{"id": settingsRowID})

	query, args, err := selectQuery.ToSql()
	if err != nil {
		return models.Settings{}, &customerrors.ErrBuildSQLQuery{Operation: "получение настроек", Cause: err}
	}

	var rec record.Record

	err = querier.QueryRow(ctx, query, args...).Scan(
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
			return models.Settings{}, &customerrors.ErrSettingsNotFound{}
		}

		return models.Settings{}, &customerrors.ErrSQLExecution{Operation: "получение настроек", Cause: err}
	}

	return rec.ToSettings(), nil
}

func (r *SettingsRepository) Save(ctx context.Context, settings models.Settings) error {
	rec := record.FromSettings(settings)

	payload, err := json.Marshal(rec)
	if err != nil {
		return &customerrors.ErrInvalidArgument{Message: "не удалось сериализовать настройки в JSON"}
	}

	now := time.Now()

	upsertQuery := r.sq.Insert("watcher_settings").
		Columns("id", "bot_chat_id", "group_link", "group_title", "group_peer_id",
			"target_id", "target_username", "nag_interval", "updated_at").
		Values(settingsRowID, rec.BotChatID, rec.GroupLink, rec.GroupTitle, rec.GroupPeerID,
			rec.TargetID, rec.TargetUsername, rec.NagInterval, now).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
bot_chat_id = EXCLUDED.bot_chat_id, group_link = EXCLUDED.group_link, group_title = EXCLUDED.group_title,
group_peer_id = EXCLUDED.group_peer_id, target_id = EXCLUDED.target_id,
target_username = EXCLUDED.target_username, nag_interval = EXCLUDED.nag_interval, updated_at = EXCLUDED.updated_at`)

	historyQuery := r.sq.Insert("watcher_settings_history").
		Columns("payload", "created_at").
		Values(string(payload), now)

	return r.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		querier := r.txManager.Querier(ctx)

		query, args, err := upsertQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "вставка/обновление настроек", Cause: err}
		}

		if _, err := querier.Exec(ctx, query, args...); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "сохранение настроек", Cause: err}
		}

		query, args, err = historyQuery.ToSql()
		if err != nil {
			return &customerrors.ErrBuildSQLQuery{Operation: "запись истории настроек", Cause: err}
		}

		if _, err := querier.Exec(ctx, query, args...); err != nil {
			return &customerrors.ErrSQLExecution{Operation: "запись истории настроек", Cause: err}
		}

		return nil
	})
}
