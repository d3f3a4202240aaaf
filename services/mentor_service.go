package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
)

type MentorService interface {
	ListMentors(ctx context.Context) ([]*models.Mentor, error)
	GetMentor(ctx context.Context, mentorID string) (*models.Mentor, error)
	CreateMentor(ctx context.Context, input MentorInput) (*models.Mentor, error)
	UpdateMentor(ctx context.Context, mentorID string, input MentorInput) (*models.Mentor, error)
	DeleteMentor(ctx context.Context, mentorID string) error

	AssignMentor(ctx context.Context, teamID, mentorID string) (*models.Team, error)
	UnassignMentor(ctx context.Context, teamID string) (*models.Team, error)
	AutoAssign(ctx context.Context) (*AutoAssignResult, error)
	TeamsForMentor(ctx context.Context, mentorID string) ([]TeamSummary, error)
}

type MentorInput struct {
	MentorID  string   `json:"mentorId"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	Expertise []string `json:"expertise"`
	MaxTeams  *int     `json:"maxTeams"`
}

type Assignment struct {
	TeamID   string `json:"teamId"`
	MentorID string `json:"mentorId"`
}

type AutoAssignResult struct {
	Assigned   []Assignment `json:"assigned"`
	Unassigned []string     `json:"unassigned"`
}

type mentorService struct {
	mentorRepo repositories.MentorRepository
	teamRepo   repositories.TeamRepository
	notifier   teamNotifier
	publisher  events.Publisher
	now        Clock
	logger     zerolog.Logger
}

func NewMentorService(
	mentorRepo repositories.MentorRepository,
	teamRepo repositories.TeamRepository,
	notifier teamNotifier,
	publisher events.Publisher,
	now Clock,
	logger zerolog.Logger,
) MentorService {
	if now == nil {
		now = systemClock
	}
	return &mentorService{
		mentorRepo: mentorRepo,
		teamRepo:   teamRepo,
		notifier:   notifier,
		publisher:  publisher,
		now:        now,
		logger:     logger.With().Str("service", "mentors").Logger(),
	}
}

func (s *mentorService) ListMentors(ctx context.Context) ([]*models.Mentor, error) {
	mentors, err := s.mentorRepo.List(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return mentors, nil
}

func (s *mentorService) GetMentor(ctx context.Context, mentorID string) (*models.Mentor, error) {
	mentor, err := s.mentorRepo.GetByID(ctx, mentorID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return mentor, nil
}

func normalizeMentorInput(input MentorInput, requireID bool) (MentorInput, error) {
	input.MentorID = strings.TrimSpace(input.MentorID)
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	expertise := make([]string, 0, len(input.Expertise))
	for _, e := range input.Expertise {
		if e = strings.TrimSpace(e); e != "" {
			expertise = append(expertise, e)
		}
	}
	input.Expertise = expertise

	v := validator{}
	if requireID {
		v.check(input.MentorID != "", "mentorId", "is required")
	}
	v.check(input.Name != "", "name", "is required")
	_, mailErr := mail.ParseAddress(input.Email)
	v.check(input.Email != "" && mailErr == nil, "email", "must be a valid email address")
	if input.MaxTeams != nil {
		v.check(*input.MaxTeams >= 0, "maxTeams", "must not be negative")
	}
	return input, v.err()
}

func (s *mentorService) CreateMentor(ctx context.Context, input MentorInput) (*models.Mentor, error) {
	input, err := normalizeMentorInput(input, true)
	if err != nil {
		return nil, err
	}

	mentor := &models.Mentor{
		MentorID:  input.MentorID,
		Name:      input.Name,
		Email:     input.Email,
		Expertise: input.Expertise,
		MaxTeams:  models.DefaultMentorCapacity,
	}
	if input.MaxTeams != nil {
		mentor.MaxTeams = *input.MaxTeams
	}
	if err := s.mentorRepo.Create(ctx, mentor); err != nil {
		return nil, mapRepoError(err)
	}
	return mentor, nil
}

func (s *mentorService) UpdateMentor(ctx context.Context, mentorID string, input MentorInput) (*models.Mentor, error) {
	mentor, err := s.mentorRepo.GetByID(ctx, mentorID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	input, err = normalizeMentorInput(input, false)
	if err != nil {
		return nil, err
	}

	mentor.Name = input.Name
	mentor.Email = input.Email
	mentor.Expertise = input.Expertise
	if input.MaxTeams != nil {
		mentor.MaxTeams = *input.MaxTeams
	}
	if err := s.mentorRepo.Update(ctx, mentor); err != nil {
		return nil, mapRepoError(err)
	}
	return mentor, nil
}

func (s *mentorService) DeleteMentor(ctx context.Context, mentorID string) error {
	return mapRepoError(s.mentorRepo.Delete(ctx, mentorID))
}

// AssignMentor назначает ментора команде. Ёмкость проверяется под блокировкой строки ментора,
// поэтому два параллельных назначения не превысят maxTeams.
func (s *mentorService) AssignMentor(ctx context.Context, teamID, mentorID string) (*models.Team, error) {
	mentorID = strings.TrimSpace(mentorID)
	if mentorID == "" {
		return nil, &ValidationError{Fields: map[string]string{"mentorId": "is required"}}
	}

	var assigned *models.Mentor
	team, err := s.teamRepo.Mutate(ctx, teamID, func(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
		mentor, err := s.mentorRepo.GetForUpdate(ctx, exec, mentorID)
		if err != nil {
			return mapRepoError(err)
		}
		if derefString(team.MentorID) == mentorID {
			assigned = mentor
			return nil
		}
		if !mentor.HasCapacity() {
			return fmt.Errorf("%w: %s already mentors %d of %d teams", ErrMentorAtCapacity, mentorID, mentor.TeamCount, mentor.MaxTeams)
		}

		now := s.now()
		team.MentorID = &mentorID
		team.MentorAssignedAt = &now
		mentor.TeamCount++
		assigned = mentor
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	team.Mentor = assigned
	s.logger.Info().Str("team_id", teamID).Str("mentor_id", mentorID).Msg("Mentor assigned")
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeMentorAssigned,
		TeamID:    teamID,
		Payload:   Assignment{TeamID: teamID, MentorID: mentorID},
		Timestamp: s.now(),
	})
	if s.notifier != nil {
		s.notifier.Refresh(ctx, team)
	}
	return team, nil
}

func (s *mentorService) UnassignMentor(ctx context.Context, teamID string) (*models.Team, error) {
	team, err := s.teamRepo.Mutate(ctx, teamID, func(_ context.Context, _ repositories.SQLExecutor, team *models.Team) error {
		team.MentorID = nil
		team.MentorAssignedAt = nil
		return nil
	})
	if err != nil {
		return nil, mapRepoError(err)
	}
	if s.notifier != nil {
		s.notifier.Refresh(ctx, team)
	}
	return team, nil
}

// AutoAssign раздаёт команды без ментора: каждой следующей команде (по id) достаётся
// наименее загруженный ментор со свободным местом; при равной загрузке берётся меньший id.
func (s *mentorService) AutoAssign(ctx context.Context) (*AutoAssignResult, error) {
	teams, err := s.teamRepo.List(ctx, repositories.TeamFilter{WithoutMentor: true})
	if err != nil {
		return nil, mapRepoError(err)
	}
	mentors, err := s.mentorRepo.List(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	result := &AutoAssignResult{Assigned: []Assignment{}, Unassigned: []string{}}
	sort.Slice(teams, func(i, j int) bool { return teams[i].TeamID < teams[j].TeamID })

	for _, team := range teams {
		candidate := pickLeastLoaded(mentors)
		if candidate == nil {
			result.Unassigned = append(result.Unassigned, team.TeamID)
			continue
		}

		if _, err := s.AssignMentor(ctx, team.TeamID, candidate.MentorID); err != nil {
			// Параллельное назначение могло занять место: считаем ментора заполненным.
			if isCapacityOrGone(err) {
				candidate.TeamCount = candidate.MaxTeams
				result.Unassigned = append(result.Unassigned, team.TeamID)
				continue
			}
			return result, fmt.Errorf("auto-assign team %s: %w", team.TeamID, err)
		}
		candidate.TeamCount++
		result.Assigned = append(result.Assigned, Assignment{TeamID: team.TeamID, MentorID: candidate.MentorID})
	}

	s.logger.Info().Int("assigned", len(result.Assigned)).Int("unassigned", len(result.Unassigned)).Msg("Mentor auto-assignment finished")
	return result, nil
}

func isCapacityOrGone(err error) bool {
	return err != nil && (errors.Is(err, ErrMentorAtCapacity) || errors.Is(err, ErrMentorNotFound))
}

func pickLeastLoaded(mentors []*models.Mentor) *models.Mentor {
	var best *models.Mentor
	for _, m := range mentors {
		if !m.HasCapacity() {
			continue
		}
		if best == nil || m.TeamCount < best.TeamCount ||
			(m.TeamCount == best.TeamCount && m.MentorID < best.MentorID) {
			best = m
		}
	}
	return best
}

func (s *mentorService) TeamsForMentor(ctx context.Context, mentorID string) ([]TeamSummary, error) {
	if mentorID == "" {
		return nil, ErrForbiddenOperation
	}
	teams, err := s.teamRepo.List(ctx, repositories.TeamFilter{MentorID: &mentorID})
	if err != nil {
		return nil, mapRepoError(err)
	}
	return summarize(teams), nil
}
