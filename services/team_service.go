package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
)

// TeamSummary is a team together with its computed progress.
type TeamSummary struct {
	*models.Team
	Progress int `json:"progress"`
}

func summarize(teams []*models.Team) []TeamSummary {
	out := make([]TeamSummary, 0, len(teams))
	for _, t := range teams {
		out = append(out, TeamSummary{Team: t, Progress: t.CalculateProgress()})
	}
	return out
}

type TeamService interface {
	ListTeams(ctx context.Context, filter repositories.TeamFilter) ([]TeamSummary, error)
	GetTeam(ctx context.Context, teamID string) (*TeamSummary, error)
	CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error)
	UpdateTeam(ctx context.Context, teamID string, input UpdateTeamInput) (*models.Team, error)
	DeleteTeam(ctx context.Context, teamID string) error
}

type CreateTeamInput struct {
	TeamID   string              `json:"teamId"`
	TeamName string              `json:"teamName"`
	Category string              `json:"category"`
	Members  []models.TeamMember `json:"members"`
}

// UpdateTeamInput: nil-поля не меняются.
type UpdateTeamInput struct {
	TeamName *string              `json:"teamName"`
	Category *string              `json:"category"`
	IsActive *bool                `json:"isActive"`
	Rank     *models.TeamRank     `json:"rank"`
	Members  *[]models.TeamMember `json:"members"`
}

type teamService struct {
	teamRepo repositories.TeamRepository
	notifier teamNotifier
	now      Clock
	logger   zerolog.Logger
}

func NewTeamService(teamRepo repositories.TeamRepository, notifier teamNotifier, now Clock, logger zerolog.Logger) TeamService {
	if now == nil {
		now = systemClock
	}
	return &teamService{
		teamRepo: teamRepo,
		notifier: notifier,
		now:      now,
		logger:   logger.With().Str("service", "teams").Logger(),
	}
}

func (s *teamService) ListTeams(ctx context.Context, filter repositories.TeamFilter) ([]TeamSummary, error) {
	teams, err := s.teamRepo.List(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return summarize(teams), nil
}

func (s *teamService) GetTeam(ctx context.Context, teamID string) (*TeamSummary, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return &TeamSummary{Team: team, Progress: team.CalculateProgress()}, nil
}

func validateMembers(v validator, members []models.TeamMember) {
	for _, m := range members {
		v.check(strings.TrimSpace(m.Name) != "", "members", "every member needs a name")
	}
}

func (s *teamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.TeamName = strings.TrimSpace(input.TeamName)
	input.Category = strings.TrimSpace(input.Category)

	v := validator{}
	v.check(input.TeamID != "", "teamId", "is required")
	v.check(input.TeamName != "", "teamName", "is required")
	validateMembers(v, input.Members)
	if err := v.err(); err != nil {
		return nil, err
	}

	team := &models.Team{
		TeamID:       input.TeamID,
		TeamName:     input.TeamName,
		Category:     input.Category,
		Members:      input.Members,
		Submissions:  []models.Submission{},
		LastActivity: s.now(),
		IsActive:     true,
	}
	if team.Members == nil {
		team.Members = []models.TeamMember{}
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, mapRepoError(err)
	}
	s.logger.Info().Str("team_id", team.TeamID).Msg("Team created")
	return team, nil
}

func (s *teamService) UpdateTeam(ctx context.Context, teamID string, input UpdateTeamInput) (*models.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return nil, mapRepoError(err)
	}

	v := validator{}
	if input.TeamName != nil {
		name := strings.TrimSpace(*input.TeamName)
		v.check(name != "", "teamName", "must not be empty")
		team.TeamName = name
	}
	if input.Category != nil {
		team.Category = strings.TrimSpace(*input.Category)
	}
	if input.IsActive != nil {
		team.IsActive = *input.IsActive
	}
	if input.Rank != nil {
		v.check(input.Rank.Overall >= 0, "rank.overall", "must not be negative")
		v.check(input.Rank.Category >= 0, "rank.category", "must not be negative")
		team.Rank = *input.Rank
	}
	if input.Members != nil {
		validateMembers(v, *input.Members)
		team.Members = *input.Members
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, mapRepoError(err)
	}
	if input.Rank != nil && s.notifier != nil {
		s.notifier.Refresh(ctx, team)
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, teamID string) error {
	if err := s.teamRepo.Delete(ctx, teamID); err != nil {
		return mapRepoError(err)
	}
	s.logger.Info().Str("team_id", teamID).Msg("Team deleted")
	return nil
}
