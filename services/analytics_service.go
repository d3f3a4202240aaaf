package services

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
)

type AnalyticsService interface {
	GetStats(ctx context.Context) (models.AnalyticsStats, error)
}

type analyticsService struct {
	teamRepo     repositories.TeamRepository
	mentorRepo   repositories.MentorRepository
	feedbackRepo repositories.FeedbackRepository
}

func NewAnalyticsService(
	teamRepo repositories.TeamRepository,
	mentorRepo repositories.MentorRepository,
	feedbackRepo repositories.FeedbackRepository,
) AnalyticsService {
	return &analyticsService{
		teamRepo:     teamRepo,
		mentorRepo:   mentorRepo,
		feedbackRepo: feedbackRepo,
	}
}

// GetStats собирает независимые выборки параллельно.
func (s *analyticsService) GetStats(ctx context.Context) (models.AnalyticsStats, error) {
	var (
		teams         []*models.Team
		mentors       []*models.Mentor
		feedbackTotal int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teams, err = s.teamRepo.List(gctx, repositories.TeamFilter{})
		if err != nil {
			return fmt.Errorf("analytics: teams: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mentors, err = s.mentorRepo.List(gctx)
		if err != nil {
			return fmt.Errorf("analytics: mentors: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		feedbackTotal, err = s.feedbackRepo.Count(gctx)
		if err != nil {
			return fmt.Errorf("analytics: feedback: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return models.AnalyticsStats{}, mapRepoError(err)
	}

	return computeStats(teams, len(mentors), feedbackTotal), nil
}

func computeStats(teams []*models.Team, mentorsTotal, feedbackTotal int) models.AnalyticsStats {
	stats := models.AnalyticsStats{
		TeamsTotal:      len(teams),
		MentorsTotal:    mentorsTotal,
		FeedbackTotal:   feedbackTotal,
		TeamsByCategory: make(map[string]int),
		Rounds:          make([]models.RoundStats, 0, len(models.Rounds)),
	}

	perRound := make(map[models.Round]*models.RoundStats, len(models.Rounds))
	for _, r := range models.Rounds {
		stats.Rounds = append(stats.Rounds, models.RoundStats{Round: r, ByStatus: make(map[models.SubmissionStatus]int)})
	}
	for i := range stats.Rounds {
		perRound[stats.Rounds[i].Round] = &stats.Rounds[i]
	}

	progressSum := 0
	for _, t := range teams {
		if t.IsActive {
			stats.ActiveTeams++
		}
		if !t.HasMentor() {
			stats.TeamsWithoutMentor++
		}
		stats.TeamsByCategory[t.Category]++
		progressSum += t.CalculateProgress()

		for _, sub := range t.Submissions {
			rs, ok := perRound[sub.Round]
			if !ok {
				continue
			}
			rs.Total++
			rs.ByStatus[sub.Status]++
		}
	}
	if len(teams) > 0 {
		avg := float64(progressSum) / float64(len(teams))
		stats.AverageProgress = math.Round(avg*10) / 10
	}
	return stats
}
