package notificationservice

import (
	"context"
	"fmt"
	"log/slog"

	medalevents "github.com/ig0rayres/legendario-engine/app/modules/medal/domain/events"
	notificationdb "github.com/ig0rayres/legendario-engine/app/modules/notification/infrastructure/repositories"
	progressionevents "github.com/ig0rayres/legendario-engine/app/modules/progression/domain/events"
	seasonevents "github.com/ig0rayres/legendario-engine/app/modules/season/domain/events"
	"github.com/ig0rayres/legendario-engine/internal/observability/attr"
	"github.com/ig0rayres/legendario-engine/internal/sharedtypes"
)

// NotificationService materializes notification and system-chat rows from
// domain events. It is a pure projection: it never publishes events and
// its failures never reach the operations that emitted them.
type NotificationService struct {
	repo   notificationdb.Repository
	logger *slog.Logger
}

func NewNotificationService(repo notificationdb.Repository, logger *slog.Logger) *NotificationService {
	return &NotificationService{repo: repo, logger: logger}
}

// RecordMedalGranted writes the notification plus a system chat message in
// the member's conversation. The chat append is best effort: losing it
// keeps the notification.
func (s *NotificationService) RecordMedalGranted(ctx context.Context, payload *medalevents.MedalGrantedPayload) error {
	title := fmt.Sprintf("Conquista desbloqueada: %s", payload.AchievementName)
	body := payload.Description
	if payload.PointsAwarded > 0 {
		body = fmt.Sprintf("%s (+%d pontos)", payload.AchievementName, payload.PointsAwarded)
	}
	err := s.repo.InsertNotification(ctx, nil, &notificationdb.Notification{
		UserID: payload.UserID,
		Kind:   notificationdb.KindMedalGranted,
		Title:  title,
		Body:   body,
	})
	if err != nil {
		return fmt.Errorf("medal granted notification: %w", err)
	}

	convID, err := s.repo.LocateOrCreateConversation(ctx, nil, payload.UserID)
	if err == nil {
		err = s.repo.InsertChatMessage(ctx, nil, &notificationdb.ChatMessage{
			ConversationID: convID,
			Body:           title,
		})
	}
	if err != nil {
		s.logger.WarnContext(ctx, "System chat append failed, notification kept",
			attr.String("user_id", payload.UserID.String()),
			attr.Error(err),
		)
	}
	return nil
}

// RecordRankChanged writes a rank-up (or rank-down) notification.
func (s *NotificationService) RecordRankChanged(ctx context.Context, payload *progressionevents.RankChangedPayload) error {
	err := s.repo.InsertNotification(ctx, nil, &notificationdb.Notification{
		UserID: payload.UserID,
		Kind:   notificationdb.KindRankChanged,
		Title:  fmt.Sprintf("Novo nível: %s", payload.NewRankName),
		Body:   fmt.Sprintf("Você alcançou o nível %s com %d pontos.", payload.NewRankName, payload.LifetimePoints),
	})
	if err != nil {
		return fmt.Errorf("rank changed notification: %w", err)
	}
	return nil
}

// RecordSeasonFinished notifies each podium member of their final
// position.
func (s *NotificationService) RecordSeasonFinished(ctx context.Context, payload *seasonevents.SeasonFinishedPayload) error {
	for _, winner := range payload.Winners {
		err := s.repo.InsertNotification(ctx, nil, &notificationdb.Notification{
			UserID: winner.UserID,
			Kind:   notificationdb.KindSeasonFinished,
			Title:  fmt.Sprintf("Temporada %s encerrada", payload.SeasonName),
			Body:   fmt.Sprintf("Você terminou em %dº lugar com %d pontos.", winner.Position, winner.Points),
		})
		if err != nil {
			return fmt.Errorf("season finished notification for %s: %w", winner.UserID, err)
		}
	}
	return nil
}

// ListNotifications exposes a member's notification feed.
func (s *NotificationService) ListNotifications(ctx context.Context, userID sharedtypes.UserID, limit int) ([]notificationdb.Notification, error) {
	return s.repo.ListNotificationsForUser(ctx, nil, userID, limit)
}
