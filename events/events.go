// Package events доставляет изменения состояния команд подписчикам: WebSocket-комнатам и RabbitMQ.
package events

import (
	"context"
	"errors"
	"time"
)

const (
	TypeNotificationsUpdated = "NOTIFICATIONS_UPDATED"
	TypeSubmissionUploaded   = "SUBMISSION_UPLOADED"
	TypeSubmissionReviewed   = "SUBMISSION_REVIEWED"
	TypeMentorAssigned       = "MENTOR_ASSIGNED"
	TypeFeedbackAdded        = "FEEDBACK_ADDED"
	TypeLeaderboardUpdated   = "LEADERBOARD_UPDATED"
)

// LeaderboardRoom получает события без команды.
const LeaderboardRoom = "leaderboard"

type Event struct {
	Type      string      `json:"type"`
	TeamID    string      `json:"team_id,omitempty"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// Publisher is passed explicitly to the services that emit events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// TeamRoom возвращает имя WebSocket-комнаты команды.
func TeamRoom(teamID string) string {
	return "team_" + teamID
}

// RoomFor выбирает комнату события: командную или общую комнату лидерборда.
func RoomFor(event Event) string {
	if event.TeamID == "" {
		return LeaderboardRoom
	}
	return TeamRoom(event.TeamID)
}

// Multi публикует событие во все приёмники и собирает ошибки.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
