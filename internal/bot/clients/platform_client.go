package clients

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Matthew11K/group-watcher/internal/common/httputil"
	"github.com/Matthew11K/group-watcher/internal/common/metrics"
	"github.com/Matthew11K/group-watcher/internal/config"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

const (
	headerAPIID   = "X-Telegram-Api-Id"
	headerAPIHash = "X-Telegram-Api-Hash"
	headerSession = "X-Telegram-Session"
)

type resolveRequest struct {
	Ref        string `json:"ref,omitempty"`
	InviteHash string `json:"invite_hash,omitempty"`
}

type eventsResponse struct {
	Events     []models.PlatformEvent `json:"events"`
	NextOffset int64                  `json:"next_offset"`
}

// PlatformClient talks to the userbot gateway that holds the platform session.
type PlatformClient struct {
	client         *resty.Client
	requestTimeout time.Duration
	logger         *slog.Logger
}

func NewPlatformClient(cfg *config.Config, logger *slog.Logger) *PlatformClient {
	client := httputil.CreateResilientHTTPClient(cfg, logger, "platform_gateway")

	// Event long polls outlive a regular request; plain calls are bounded per request instead.
	client.SetTimeout(cfg.EventPollTimeout + cfg.ExternalRequestTimeout)
	client.SetBaseURL(strings.TrimRight(cfg.PlatformGatewayURL, "/"))
	client.SetHeader(headerAPIID, strconv.Itoa(cfg.TelegramAPIID))
	client.SetHeader(headerAPIHash, cfg.TelegramAPIHash)

	if cfg.TelegramStringSession != "" {
		client.SetHeader(headerSession, cfg.TelegramStringSession)
	}

	return &PlatformClient{
		client:         client,
		requestTimeout: cfg.ExternalRequestTimeout,
		logger:         logger,
	}
}

func (c *PlatformClient) ResolveEntity(ctx context.Context, ref string) (entity *models.Entity, err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("resolve", err, time.Since(start)) }()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &domainerrors.ErrInvalidArgument{Message: "пустая ссылка на сущность"}
	}

	body := resolveRequest{Ref: ref}
	if hash := models.ExtractInviteHash(ref); hash != "" {
		body = resolveRequest{InviteHash: hash}
	}

	entity = &models.Entity{}

	ctx, cancel := c.withRequestTimeout(ctx)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(entity).
		Post("/v1/entities/resolve")
	if err != nil {
		return nil, &domainerrors.ErrResolve{Ref: ref, Cause: err}
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return entity, nil
	case http.StatusNotFound:
		return nil, &domainerrors.ErrEntityNotFound{Ref: ref}
	default:
		return nil, &domainerrors.ErrResolve{Ref: ref, Cause: &domainerrors.HTTPError{StatusCode: resp.StatusCode()}}
	}
}

func (c *PlatformClient) ListDialogs(ctx context.Context, limit int) (dialogs []models.Dialog, err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("dialogs", err, time.Since(start)) }()

	ctx, cancel := c.withRequestTimeout(ctx)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&dialogs).
		Get("/v1/dialogs")
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка диалогов: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	return dialogs, nil
}

// PollEvents long-polls the gateway. The returned offset is the one to pass
// on the next call.
func (c *PlatformClient) PollEvents(
	ctx context.Context,
	offset int64,
	timeout time.Duration,
) (events []models.PlatformEvent, next int64, err error) {
	start := time.Now()
	defer func() { metrics.RecordGatewayRequest("events", err, time.Since(start)) }()

	result := &eventsResponse{}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"offset":  strconv.FormatInt(offset, 10),
			"timeout": strconv.Itoa(int(timeout.Seconds())),
		}).
		SetResult(result).
		Get("/v1/events")
	if err != nil {
		return nil, offset, fmt.Errorf("ошибка при получении событий платформы: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, offset, &domainerrors.HTTPError{StatusCode: resp.StatusCode()}
	}

	if result.NextOffset < offset {
		result.NextOffset = offset
	}

	return result.Events, result.NextOffset, nil
}

func (c *PlatformClient) withRequestTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.requestTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.requestTimeout)
}
