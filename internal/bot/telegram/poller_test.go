package telegram_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Matthew11K/group-watcher/internal/bot/domain"
	"github.com/Matthew11K/group-watcher/internal/bot/domain/mocks"
	"github.com/Matthew11K/group-watcher/internal/bot/telegram"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/internal/watcher/notify"
)

const pollTimeout = 50 * time.Second

type echoProcessor struct {
	mu       sync.Mutex
	commands []*models.Command
}

func (p *echoProcessor) ProcessCommand(_ context.Context, command *models.Command) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.commands = append(p.commands, command)

	if command.Type == models.CommandUnknown {
		return nil
	}

	return []string{"reply to " + string(command.Type)}
}

type operatorSettings struct {
	chatID int64
}

func (s operatorSettings) Snapshot() models.Settings {
	id := s.chatID
	return models.Settings{OperatorChatID: &id, NagIntervalSeconds: 300}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func message(updateID int64, chatID int64, text string) domain.Update {
	return domain.Update{
		UpdateID: updateID,
		Message: &domain.Message{
			MessageID: updateID,
			Text:      text,
			Chat:      domain.Chat{ID: chatID},
			From:      domain.User{ID: 6, Username: "operator"},
		},
	}
}

func TestPoller_Run(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mocks.NewTelegramClientAPI(t)
	processor := &echoProcessor{}
	logger := newTestLogger()
	dispatcher := notify.NewDispatcher(client, operatorSettings{chatID: 77}, logger)

	client.On("GetUpdates", mock.Anything, 0, pollTimeout).Return([]domain.Update{
		message(10, 5, "/status"),
		{UpdateID: 11},
		message(12, 5, "just chatting"),
	}, nil).Once()
	client.On("GetUpdates", mock.Anything, 13, pollTimeout).Return(nil, errors.New("bad gateway")).Once()
	client.On("GetUpdates", mock.Anything, 13, pollTimeout).
		Run(func(_ mock.Arguments) { cancel() }).
		Return(nil, context.Canceled).Once()

	client.On("SendMessage", mock.Anything, int64(77), "reply to /status").Return(nil).Once()

	poller := telegram.NewPoller(client, processor, dispatcher, telegram.PollerConfig{
		PollTimeout: pollTimeout,
		Backoff:     5 * time.Millisecond,
		BatchPause:  time.Millisecond,
	}, logger)

	require.NoError(t, poller.Run(ctx))

	assert.Equal(t, 13, poller.Offset())
	require.Len(t, processor.commands, 2)
	assert.Equal(t, models.CommandStatus, processor.commands[0].Type)
	assert.Equal(t, int64(5), processor.commands[0].ChatID)
	assert.Equal(t, models.CommandUnknown, processor.commands[1].Type)
}

func TestPoller_ReplyFailureDoesNotStopLoop(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mocks.NewTelegramClientAPI(t)
	processor := &echoProcessor{}
	logger := newTestLogger()
	dispatcher := notify.NewDispatcher(client, operatorSettings{chatID: 77}, logger)

	client.On("GetUpdates", mock.Anything, 0, pollTimeout).
		Return([]domain.Update{message(1, 77, "/help")}, nil).Once()
	client.On("GetUpdates", mock.Anything, 2, pollTimeout).
		Return([]domain.Update{message(2, 77, "/stop")}, nil).Once()
	client.On("GetUpdates", mock.Anything, 3, pollTimeout).
		Run(func(_ mock.Arguments) { cancel() }).
		Return(nil, context.Canceled).Once()

	client.On("SendMessage", mock.Anything, int64(77), "reply to /help").Return(errors.New("forbidden")).Once()
	client.On("SendMessage", mock.Anything, int64(77), "reply to /stop").Return(nil).Once()

	poller := telegram.NewPoller(client, processor, dispatcher, telegram.PollerConfig{
		PollTimeout: pollTimeout,
		Backoff:     time.Millisecond,
	}, logger)

	require.NoError(t, poller.Run(ctx))
	assert.Len(t, processor.commands, 2)
}

func TestPoller_StopsOnCancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := mocks.NewTelegramClientAPI(t)

	poller := telegram.NewPoller(client, &echoProcessor{}, notify.NewDispatcher(client, operatorSettings{}, newTestLogger()),
		telegram.PollerConfig{PollTimeout: pollTimeout}, newTestLogger())

	require.NoError(t, poller.Run(ctx))
	client.AssertNotCalled(t, "GetUpdates", mock.Anything, mock.Anything, mock.Anything)
}
