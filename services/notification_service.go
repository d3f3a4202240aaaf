package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/notify"
	"github.com/Dosada05/hackathon-portal/readstate"
	"github.com/Dosada05/hackathon-portal/repositories"
)

// RoundDeadline описывает раунд на дашборде команды.
type RoundDeadline struct {
	Round    models.Round             `json:"round"`
	Deadline *time.Time               `json:"deadline,omitempty"`
	Status   *models.SubmissionStatus `json:"status,omitempty"`
}

type Dashboard struct {
	Team          *models.Team          `json:"team"`
	Progress      int                   `json:"progress"`
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	Rounds        []RoundDeadline       `json:"rounds"`
}

type NotificationService interface {
	GetTeamNotifications(ctx context.Context, teamID string) ([]models.Notification, error)
	GetDashboard(ctx context.Context, teamID string) (*Dashboard, error)
	MarkRead(ctx context.Context, teamID, notificationID string) error
	MarkAllRead(ctx context.Context, teamID string) (int, error)
	Refresh(ctx context.Context, team *models.Team)
}

type notificationService struct {
	teamRepo   repositories.TeamRepository
	mentorRepo repositories.MentorRepository
	readState  readstate.Store
	publisher  events.Publisher
	deadlines  notify.Deadlines
	now        Clock
	logger     zerolog.Logger
}

func NewNotificationService(
	teamRepo repositories.TeamRepository,
	mentorRepo repositories.MentorRepository,
	readState readstate.Store,
	publisher events.Publisher,
	deadlines notify.Deadlines,
	now Clock,
	logger zerolog.Logger,
) NotificationService {
	if now == nil {
		now = systemClock
	}
	return &notificationService{
		teamRepo:   teamRepo,
		mentorRepo: mentorRepo,
		readState:  readState,
		publisher:  publisher,
		deadlines:  deadlines,
		now:        now,
		logger:     logger.With().Str("service", "notifications").Logger(),
	}
}

// loadTeam читает команду и подставляет ментора для текста уведомления.
func (s *notificationService) loadTeam(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	s.attachMentor(ctx, team)
	return team, nil
}

func (s *notificationService) attachMentor(ctx context.Context, team *models.Team) {
	if !team.HasMentor() || team.Mentor != nil || s.mentorRepo == nil {
		return
	}
	mentor, err := s.mentorRepo.GetByID(ctx, *team.MentorID)
	if err != nil {
		if !errors.Is(err, repositories.ErrMentorNotFound) {
			s.logger.Warn().Err(err).Str("team_id", team.TeamID).Msg("Failed to load mentor for notifications")
		}
		return
	}
	team.Mentor = mentor
}

// derive строит список и проставляет флаги прочтения. Недоступное хранилище прочтений
// не ломает выдачу: все уведомления считаются непрочитанными.
func (s *notificationService) derive(ctx context.Context, team *models.Team) []models.Notification {
	list := notify.Derive(team, s.now(), s.deadlines)

	read, err := s.readState.ReadIDs(ctx, team.TeamID)
	if err != nil {
		s.logger.Warn().Err(err).Str("team_id", team.TeamID).Msg("Read-state unavailable, returning notifications as unread")
		return list
	}
	for i := range list {
		list[i].Read = read[list[i].ID]
	}
	return list
}

func (s *notificationService) GetTeamNotifications(ctx context.Context, teamID string) ([]models.Notification, error) {
	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return s.derive(ctx, team), nil
}

func (s *notificationService) GetDashboard(ctx context.Context, teamID string) (*Dashboard, error) {
	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	list := s.derive(ctx, team)
	unread := 0
	for _, n := range list {
		if !n.Read {
			unread++
		}
	}

	rounds := make([]RoundDeadline, 0, len(models.Rounds))
	for _, r := range models.Rounds {
		rd := RoundDeadline{Round: r}
		if d, ok := s.deadlines[r]; ok {
			d := d
			rd.Deadline = &d
		}
		if sub := team.SubmissionFor(r); sub != nil {
			st := sub.Status
			rd.Status = &st
		}
		rounds = append(rounds, rd)
	}

	return &Dashboard{
		Team:          team,
		Progress:      team.CalculateProgress(),
		Notifications: list,
		UnreadCount:   unread,
		Rounds:        rounds,
	}, nil
}

// MarkRead помечает одно уведомление. Id должен быть среди текущих уведомлений команды.
func (s *notificationService) MarkRead(ctx context.Context, teamID, notificationID string) error {
	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return err
	}

	found := false
	for _, n := range notify.Derive(team, s.now(), s.deadlines) {
		if n.ID == notificationID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("notification %q: %w", notificationID, ErrNotFound)
	}

	if err := s.readState.MarkRead(ctx, teamID, notificationID); err != nil {
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to persist read-state")
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// MarkAllRead помечает все текущие уведомления и возвращает их количество.
func (s *notificationService) MarkAllRead(ctx context.Context, teamID string) (int, error) {
	team, err := s.loadTeam(ctx, teamID)
	if err != nil {
		return 0, err
	}

	list := notify.Derive(team, s.now(), s.deadlines)
	ids := make([]string, 0, len(list))
	for _, n := range list {
		ids = append(ids, n.ID)
	}
	if err := s.readState.MarkRead(ctx, teamID, ids...); err != nil {
		s.logger.Error().Err(err).Str("team_id", teamID).Msg("Failed to persist read-state")
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return len(ids), nil
}

// Refresh рассылает актуальный список уведомлений в комнату команды.
func (s *notificationService) Refresh(ctx context.Context, team *models.Team) {
	if team == nil {
		return
	}
	s.attachMentor(ctx, team)
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeNotificationsUpdated,
		TeamID:    team.TeamID,
		Payload:   s.derive(ctx, team),
		Timestamp: s.now(),
	})
}
