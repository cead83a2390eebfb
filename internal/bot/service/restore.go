package service

import (
	"context"
	"strconv"

	"github.com/Matthew11K/group-watcher/internal/domain/models"
)

// Restore re-resolves the watched group and user after the stored record has
// been loaded. Failures are logged; the watcher keeps running with whatever
// could be restored.
func (s *BotService) Restore(ctx context.Context) {
	s.restoreGroup(ctx)
	s.restoreTarget(ctx)
}

func (s *BotService) restoreGroup(ctx context.Context) {
	stored := s.settings.Snapshot()

	type candidate struct {
		origin string
		link   string
	}

	var candidates []candidate

	if stored.Group != nil && stored.Group.Link != "" {
		candidates = append(candidates, candidate{origin: "state_link", link: stored.Group.Link})
	}

	if s.defaults.GroupInvite != "" {
		candidates = append(candidates, candidate{origin: "env_link", link: s.defaults.GroupInvite})
	}

	for _, c := range candidates {
		entity, err := s.platform.ResolveEntity(ctx, c.link)
		if err != nil {
			s.logger.Warn("Не удалось определить группу", "origin", c.origin, "error", err)
			continue
		}

		if !entity.IsGroup() {
			s.logger.Warn("Ссылка на группу указывает на пользователя", "origin", c.origin)
			continue
		}

		group := &models.GroupRef{Link: c.link, Title: entity.DisplayTitle(), PeerID: entity.PeerID}
		if s.saveGroup(ctx, group) {
			s.logger.Info("Отслеживается группа", "origin", c.origin, "title", group.Title, "peer_id", group.PeerID)
		}

		return
	}

	if peerID := stored.GroupPeerID(); peerID != 0 {
		if s.restoreGroupFromDialogs(ctx, peerID) {
			return
		}
	}

	if s.settings.Snapshot().Group == nil {
		s.logger.Warn("Группа не настроена, используйте /setgroup в чате бота")
	}
}

func (s *BotService) restoreGroupFromDialogs(ctx context.Context, peerID int64) bool {
	dialogs, err := s.platform.ListDialogs(ctx, restoreDialogsLimit)
	if err != nil {
		s.logger.Warn("Не удалось получить список диалогов", "error", err)
		return false
	}

	for i := range dialogs {
		if dialogs[i].PeerID != peerID {
			continue
		}

		group := &models.GroupRef{Title: dialogs[i].Title, PeerID: peerID}
		if s.saveGroup(ctx, group) {
			s.logger.Info("Отслеживается группа", "origin", "state_peer", "title", group.Title, "peer_id", peerID)
		}

		return true
	}

	s.logger.Warn("Сохраненная группа не найдена среди диалогов", "peer_id", peerID)

	return false
}

func (s *BotService) saveGroup(ctx context.Context, group *models.GroupRef) bool {
	_, err := s.settings.Update(ctx, func(st *models.Settings) error {
		st.Group = group
		return nil
	})
	if err != nil {
		s.logger.Warn("Не удалось сохранить группу", "error", err)
		return false
	}

	return true
}

func (s *BotService) restoreTarget(ctx context.Context) {
	var refs []string

	stored := s.settings.Snapshot().Target
	if stored != nil {
		switch {
		case stored.ID != 0:
			refs = append(refs, strconv.FormatInt(stored.ID, 10))
		case stored.Username != "":
			refs = append(refs, stored.Username)
		}
	}

	if s.defaults.TargetUsername != "" {
		refs = append(refs, s.defaults.TargetUsername)
	}

	for _, ref := range refs {
		target, err := s.resolveUser(ctx, ref)
		if err != nil {
			s.logger.Warn("Не удалось определить пользователя", "ref", ref, "error", err)
			continue
		}

		if target.Username == ref && stored != nil && stored.Username != "" {
			target.Username = stored.Username
		}

		if _, err := s.settings.Update(ctx, func(st *models.Settings) error {
			st.Target = target
			return nil
		}); err != nil {
			s.logger.Warn("Не удалось сохранить пользователя", "error", err)
		}

		s.logger.Info("Отслеживаются сообщения пользователя", "username", target.Username, "id", target.ID)

		return
	}

	if len(refs) > 0 {
		s.logger.Warn("Пользователь не определен, используйте /setuser в чате бота")
	}
}
