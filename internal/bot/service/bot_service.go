package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Matthew11K/group-watcher/internal/common/metrics"
	domainclients "github.com/Matthew11K/group-watcher/internal/domain/clients"
	domainerrors "github.com/Matthew11K/group-watcher/internal/domain/errors"
	"github.com/Matthew11K/group-watcher/internal/domain/models"
	"github.com/Matthew11K/group-watcher/internal/watcher/notify"
)

const (
	listDialogsLimit    = 100
	restoreDialogsLimit = 200
	listChunkLimit      = 3500
)

const HelpText = "Commands:\n" +
	"/start – register chat\n" +
	"/stop – stop alerts\n" +
	"/status – show status\n" +
	"/interval <minutes>\n" +
	"/setgroup <invite|@public|id>\n" +
	"/listgroups\n" +
	"/usegroup <peer_id>\n" +
	"/setuser <@username|id>\n" +
	"/reset\n" +
	"/test\n"

type SettingsManager interface {
	Snapshot() models.Settings

	Update(ctx context.Context, fn func(s *models.Settings) error) (models.Settings, error)

	DefaultInterval() int
}

type AlertMachine interface {
	Arm(reason string, now time.Time) models.Alert

	Stop()

	Snapshot() models.Alert
}

// Defaults are the startup values /reset and restoration fall back to.
type Defaults struct {
	GroupInvite    string
	TargetUsername string
}

type handlerFunc func(ctx context.Context, command *models.Command) []string

// BotService interprets operator commands. Every handler returns the reply
// texts; resolver and store failures are turned into reply text.
type BotService struct {
	settings SettingsManager
	machine  AlertMachine
	platform domainclients.PlatformClient
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
	handlers map[models.CommandType]handlerFunc
}

func NewBotService(
	settings SettingsManager,
	machine AlertMachine,
	platform domainclients.PlatformClient,
	defaults Defaults,
	logger *slog.Logger,
) *BotService {
	s := &BotService{
		settings: settings,
		machine:  machine,
		platform: platform,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}

	s.handlers = map[models.CommandType]handlerFunc{
		models.CommandStart:      s.handleStart,
		models.CommandHelp:       s.handleHelp,
		models.CommandStop:       s.handleStop,
		models.CommandStatus:     s.handleStatus,
		models.CommandInterval:   s.handleInterval,
		models.CommandSetGroup:   s.handleSetGroup,
		models.CommandListGroups: s.handleListGroups,
		models.CommandUseGroup:   s.handleUseGroup,
		models.CommandSetUser:    s.handleSetUser,
		models.CommandReset:      s.handleReset,
		models.CommandTest:       s.handleTest,
	}

	return s
}

// WithClock replaces the time source. Used by tests.
func (s *BotService) WithClock(now func() time.Time) *BotService {
	s.now = now
	return s
}

// ProcessCommand runs the handler mapped to command.Type. Unknown commands
// and plain text produce no reply.
func (s *BotService) ProcessCommand(ctx context.Context, command *models.Command) []string {
	handler, ok := s.handlers[command.Type]
	if !ok {
		s.logger.Debug("Неизвестная команда проигнорирована",
			"chat_id", command.ChatID,
			"text", command.Text,
		)

		return nil
	}

	metrics.RecordCommand(string(command.Type))

	return handler(ctx, command)
}

func reply(texts ...string) []string {
	return texts
}

func saveFailed(err error) []string {
	return reply("Could not save settings: " + err.Error())
}

func (s *BotService) handleStart(ctx context.Context, command *models.Command) []string {
	_, err := s.settings.Update(ctx, func(st *models.Settings) error {
		chatID := command.ChatID
		st.OperatorChatID = &chatID

		return nil
	})
	if err != nil {
		return saveFailed(err)
	}

	s.logger.Info("Чат оператора зарегистрирован", "chat_id", command.ChatID)

	return reply("Registered. /help for commands.")
}

func (s *BotService) handleHelp(_ context.Context, _ *models.Command) []string {
	return reply(HelpText)
}

func (s *BotService) handleStop(_ context.Context, _ *models.Command) []string {
	s.machine.Stop()
	metrics.RecordAlertStopped()

	return reply("Alerts stopped.")
}

func (s *BotService) handleStatus(_ context.Context, _ *models.Command) []string {
	current := s.settings.Snapshot()
	alert := s.machine.Snapshot()

	group := "unset"
	if current.GroupPeerID() != 0 {
		group = fmt.Sprintf("%s (peer_id=%d)", current.GroupTitle(), current.GroupPeerID())
	}

	user := "unset"
	if current.Target != nil && current.Target.ID != 0 {
		user = fmt.Sprintf("@%s (id=%d)", s.targetHandle(current), current.Target.ID)
	}

	return reply(fmt.Sprintf("Status: %s\n• Group: %s\n• User: %s\n• Interval: %ds\n• Cycle count: %d",
		alert.Status(), group, user, current.NagIntervalSeconds, alert.NagCount))
}

// IntervalSeconds converts minutes to the persisted nag interval.
func IntervalSeconds(minutes float64) int {
	return models.ClampNagInterval(int(math.Round(minutes * 60)))
}

func (s *BotService) handleInterval(ctx context.Context, command *models.Command) []string {
	const usage = "Usage: /interval <minutes>"

	if len(command.Args) == 0 {
		return reply(usage)
	}

	minutes, err := strconv.ParseFloat(command.Args[0], 64)
	if err != nil || math.IsNaN(minutes) || math.IsInf(minutes, 0) || minutes <= 0 || minutes > math.MaxInt32/60 {
		return reply(usage)
	}

	seconds := IntervalSeconds(minutes)

	if _, err := s.settings.Update(ctx, func(st *models.Settings) error {
		st.NagIntervalSeconds = seconds
		st.IntervalSet = true
		return nil
	}); err != nil {
		return saveFailed(err)
	}

	return reply(fmt.Sprintf("Interval set to %s min (%ds).", strconv.FormatFloat(minutes, 'g', 6, 64), seconds))
}

func (s *BotService) handleSetGroup(ctx context.Context, command *models.Command) []string {
	raw := command.RawArgs()
	if raw == "" {
		return reply("Usage: /setgroup <invite|@public|id>")
	}

	entity, err := s.platform.ResolveEntity(ctx, raw)
	if err != nil {
		s.logger.Warn("Не удалось определить группу", "error", err, "ref", raw)
		return reply("Could not set group: " + err.Error())
	}

	if !entity.IsGroup() {
		return reply("That resolves to a USER, not a group. Use an invite link or /listgroups + /usegroup <peer_id>.")
	}

	return s.storeGroup(ctx, raw, entity)
}

func (s *BotService) handleUseGroup(ctx context.Context, command *models.Command) []string {
	if len(command.Args) == 0 {
		return reply("Usage: /usegroup <peer_id>")
	}

	if _, ok := models.ParsePeerID(command.Args[0]); !ok {
		return reply("Usage: /usegroup <peer_id>")
	}

	entity, err := s.platform.ResolveEntity(ctx, command.Args[0])
	if err != nil {
		s.logger.Warn("Не удалось определить группу по id", "error", err, "ref", command.Args[0])
		return reply("Could not set group by id: " + err.Error())
	}

	if !entity.IsGroup() {
		return reply("That id resolves to a USER, not a group. Use a negative peer_id.")
	}

	return s.storeGroup(ctx, "", entity)
}

func (s *BotService) storeGroup(ctx context.Context, link string, entity *models.Entity) []string {
	group := &models.GroupRef{
		Link:   link,
		Title:  entity.DisplayTitle(),
		PeerID: entity.PeerID,
	}

	if _, err := s.settings.Update(ctx, func(st *models.Settings) error {
		st.Group = group
		return nil
	}); err != nil {
		return saveFailed(err)
	}

	s.logger.Info("Группа для отслеживания изменена", "peer_id", group.PeerID, "title", group.Title)

	return reply(fmt.Sprintf("Group set: %s (peer_id=%d)", group.Title, group.PeerID))
}

func (s *BotService) handleListGroups(ctx context.Context, _ *models.Command) []string {
	dialogs, err := s.platform.ListDialogs(ctx, listDialogsLimit)
	if err != nil {
		s.logger.Warn("Не удалось получить список групп", "error", err)
		return reply("Could not list groups: " + err.Error())
	}

	var lines []string

	for i := range dialogs {
		if dialogs[i].Entity.IsGroup() {
			lines = append(lines, fmt.Sprintf("%d\t%s", dialogs[i].PeerID, dialogs[i].Title))
		}
	}

	if len(lines) == 0 {
		return reply("No groups found.")
	}

	const header = "Groups (peer_id\\ttitle):\n"

	var (
		out   []string
		chunk []string
		size  int
	)

	for _, line := range lines {
		if len(chunk) > 0 && size+1+len(line) > listChunkLimit {
			out = append(out, header+strings.Join(chunk, "\n"))
			chunk, size = nil, 0
		}

		if len(chunk) > 0 {
			size++
		}

		chunk = append(chunk, line)
		size += len(line)
	}

	out = append(out, header+strings.Join(chunk, "\n"), "Use /usegroup <peer_id> to switch.")

	return out
}

func (s *BotService) handleSetUser(ctx context.Context, command *models.Command) []string {
	if len(command.Args) == 0 {
		return reply("Usage: /setuser <@username|id>")
	}

	who := strings.TrimLeft(command.Args[0], "@")
	if who == "" {
		return reply("Usage: /setuser <@username|id>")
	}

	target, err := s.resolveUser(ctx, who)
	if err != nil {
		s.logger.Warn("Не удалось определить пользователя", "error", err, "ref", who)
		return reply("Could not set user: " + err.Error())
	}

	if _, err := s.settings.Update(ctx, func(st *models.Settings) error {
		st.Target = target
		return nil
	}); err != nil {
		return saveFailed(err)
	}

	return reply(fmt.Sprintf("User set: @%s (id=%d)", target.Username, target.ID))
}

// resolveUser falls back to the given handle when the platform reports no username.
func (s *BotService) resolveUser(ctx context.Context, who string) (*models.TargetUser, error) {
	entity, err := s.platform.ResolveEntity(ctx, who)
	if err != nil {
		return nil, err
	}

	username := entity.Username
	if username == "" {
		username = who
	}

	return &models.TargetUser{ID: entity.ID, Username: username}, nil
}

func (s *BotService) handleReset(ctx context.Context, _ *models.Command) []string {
	s.machine.Stop()
	metrics.RecordAlertStopped()

	var (
		group    *models.GroupRef
		target   *models.TargetUser
		resetErr error
	)

	if s.defaults.GroupInvite != "" {
		entity, err := s.platform.ResolveEntity(ctx, s.defaults.GroupInvite)

		switch {
		case err != nil:
			resetErr = err
		case !entity.IsGroup():
			resetErr = &domainerrors.ErrNotAGroup{Ref: "GROUP_INVITE"}
		default:
			group = &models.GroupRef{Link: s.defaults.GroupInvite, Title: entity.DisplayTitle(), PeerID: entity.PeerID}
		}
	}

	if resetErr == nil && s.defaults.TargetUsername != "" {
		target, resetErr = s.resolveUser(ctx, strings.TrimLeft(s.defaults.TargetUsername, "@"))
	}

	interval := s.settings.DefaultInterval()

	if _, err := s.settings.Update(ctx, func(st *models.Settings) error {
		st.NagIntervalSeconds = interval
		st.IntervalSet = true

		if group != nil {
			st.Group = group
		}

		if target != nil {
			st.Target = target
		}

		return nil
	}); err != nil {
		return saveFailed(err)
	}

	if resetErr != nil {
		s.logger.Warn("Сброс настроек выполнен частично", "error", resetErr)
		return reply("Reset failed: " + resetErr.Error())
	}

	return reply("Reset done.")
}

func (s *BotService) handleTest(_ context.Context, _ *models.Command) []string {
	armed := s.machine.Arm("Manual test at "+s.now().Local().Format(notify.TimeLayout), s.now())
	metrics.RecordTrigger()

	s.logger.Info("Запущены тестовые оповещения", "cycle_id", armed.CycleID)

	return reply("Test alerts started. Send /stop to stop.")
}

func (s *BotService) targetHandle(st models.Settings) string {
	if name := st.TargetUsername(); name != "" {
		return name
	}

	return s.defaults.TargetUsername
}
