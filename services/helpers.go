package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
)

// Clock подменяется в тестах.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

// teamNotifier пересчитывает уведомления команды и рассылает их подписчикам.
type teamNotifier interface {
	Refresh(ctx context.Context, team *models.Team)
}

// publish не роняет запрос: ошибка доставки только логируется.
func publish(ctx context.Context, publisher events.Publisher, logger zerolog.Logger, event events.Event) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", event.Type).Str("team_id", event.TeamID).Msg("Failed to publish event")
	}
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
