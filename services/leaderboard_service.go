package services

import (
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/ranking"
	"github.com/Dosada05/hackathon-portal/repositories"
	"github.com/Dosada05/hackathon-portal/sheets"
)

const (
	maxCriterionScore = 10
	maxTotalScore     = 30
)

// LeaderboardColumns: обязательная шапка импорта таблицы лидеров.
var LeaderboardColumns = []string{
	"team_name", "rank", "innovation_uniqueness", "technical_feasibility", "potential_impact", "total_score",
}

type LeaderboardService interface {
	GetLeaderboard(ctx context.Context) (models.Leaderboard, error)
	ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) (models.Leaderboard, error)
	ImportLeaderboard(ctx context.Context, r io.Reader, filename string) (models.Leaderboard, error)
}

type leaderboardService struct {
	leaderboardRepo repositories.LeaderboardRepository
	teamRepo        repositories.TeamRepository
	notifier        teamNotifier
	publisher       events.Publisher
	now             Clock
	logger          zerolog.Logger
}

func NewLeaderboardService(
	leaderboardRepo repositories.LeaderboardRepository,
	teamRepo repositories.TeamRepository,
	notifier teamNotifier,
	publisher events.Publisher,
	now Clock,
	logger zerolog.Logger,
) LeaderboardService {
	if now == nil {
		now = systemClock
	}
	return &leaderboardService{
		leaderboardRepo: leaderboardRepo,
		teamRepo:        teamRepo,
		notifier:        notifier,
		publisher:       publisher,
		now:             now,
		logger:          logger.With().Str("service", "leaderboard").Logger(),
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context) (models.Leaderboard, error) {
	entries, err := s.leaderboardRepo.List(ctx)
	if err != nil {
		return models.Leaderboard{}, mapRepoError(err)
	}
	return ranking.Build(entries), nil
}

func validateEntries(entries []models.LeaderboardEntry) error {
	v := validator{}
	inRange := func(x, max float64) bool { return !math.IsNaN(x) && x >= 0 && x <= max }
	for i, e := range entries {
		row := fmt.Sprintf("entries[%d]", i)
		v.check(strings.TrimSpace(e.TeamName) != "", row+".team_name", "is required")
		v.check(inRange(e.InnovationUniqueness, maxCriterionScore), row+".innovation_uniqueness", "must be between 0 and 10")
		v.check(inRange(e.TechnicalFeasibility, maxCriterionScore), row+".technical_feasibility", "must be between 0 and 10")
		v.check(inRange(e.PotentialImpact, maxCriterionScore), row+".potential_impact", "must be between 0 and 10")
		v.check(inRange(e.TotalScore, maxTotalScore), row+".total_score", "must be between 0 and 30")
	}
	return v.err()
}

// ReplaceLeaderboard атомарно заменяет таблицу и пересчитывает места команд.
// total_score сохраняется как прислали, без пересчёта.
func (s *leaderboardService) ReplaceLeaderboard(ctx context.Context, entries []models.LeaderboardEntry) (models.Leaderboard, error) {
	if err := validateEntries(entries); err != nil {
		return models.Leaderboard{}, err
	}

	importedAt := s.now()
	stored := make([]models.LeaderboardEntry, len(entries))
	for i, e := range entries {
		e.TeamName = strings.TrimSpace(e.TeamName)
		e.Rank = models.RankValue(strings.TrimSpace(string(e.Rank)))
		e.ImportedAt = importedAt
		stored[i] = e
	}

	teams, err := s.teamRepo.List(ctx, repositories.TeamFilter{})
	if err != nil {
		return models.Leaderboard{}, mapRepoError(err)
	}
	ranks := TeamRanks(stored, teams)

	if err := s.leaderboardRepo.Replace(ctx, stored, ranks); err != nil {
		return models.Leaderboard{}, mapRepoError(fmt.Errorf("failed to replace leaderboard: %w", err))
	}

	board := ranking.Build(stored)
	s.logger.Info().Int("entries", len(stored)).Int("ranked_teams", len(ranks)).Msg("Leaderboard replaced")
	publish(ctx, s.publisher, s.logger, events.Event{
		Type:      events.TypeLeaderboardUpdated,
		Payload:   board,
		Timestamp: importedAt,
	})

	if s.notifier != nil {
		for _, team := range teams {
			rank := ranks[team.TeamName]
			if rank == team.Rank {
				continue
			}
			team.Rank = rank
			s.notifier.Refresh(ctx, team)
		}
	}
	return board, nil
}

func (s *leaderboardService) ImportLeaderboard(ctx context.Context, r io.Reader, filename string) (models.Leaderboard, error) {
	sheet, err := sheets.Read(r, filename)
	if err != nil {
		return models.Leaderboard{}, err
	}
	if err := sheet.Require(LeaderboardColumns...); err != nil {
		return models.Leaderboard{}, err
	}

	v := validator{}
	entries := make([]models.LeaderboardEntry, 0, len(sheet.Rows))
	for i, row := range sheet.Rows {
		line := i + 2 // строка 1 это шапка
		num := func(col string) float64 {
			raw := strings.TrimSpace(row[col])
			if raw == "" {
				return 0
			}
			f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
			v.check(err == nil, fmt.Sprintf("row %d.%s", line, col), "must be a number")
			return f
		}
		entries = append(entries, models.LeaderboardEntry{
			TeamName:             row["team_name"],
			Rank:                 models.RankValue(row["rank"]),
			InnovationUniqueness: num("innovation_uniqueness"),
			TechnicalFeasibility: num("technical_feasibility"),
			PotentialImpact:      num("potential_impact"),
			TotalScore:           num("total_score"),
		})
	}
	if err := v.err(); err != nil {
		return models.Leaderboard{}, err
	}
	return s.ReplaceLeaderboard(ctx, entries)
}

// TeamRanks переводит импортированные места в места команд.
// Общее место: целый положительный rank записи. Место в категории: порядковый номер
// среди команд той же категории по общему месту. Записи без совпадающей команды
// (сравнение без учёта регистра) и без целого места в диапазоне 1..MaxInt32 пропускаются:
// колонки rank_* в teams имеют тип INTEGER.
func TeamRanks(entries []models.LeaderboardEntry, teams []*models.Team) map[string]models.TeamRank {
	byName := make(map[string]*models.Team, len(teams))
	for _, t := range teams {
		byName[strings.ToLower(strings.TrimSpace(t.TeamName))] = t
	}

	type ranked struct {
		team    *models.Team
		overall int
	}
	var list []ranked
	seen := make(map[string]bool)
	for _, e := range entries {
		team, ok := byName[strings.ToLower(strings.TrimSpace(e.TeamName))]
		if !ok || seen[team.TeamName] {
			continue
		}
		n, ok := e.Rank.Numeric()
		if !ok || n < 1 || n > math.MaxInt32 || n != math.Trunc(n) {
			continue
		}
		seen[team.TeamName] = true
		list = append(list, ranked{team: team, overall: int(n)})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].overall < list[j].overall })

	out := make(map[string]models.TeamRank, len(list))
	perCategory := make(map[string]int)
	for _, r := range list {
		perCategory[r.team.Category]++
		out[r.team.TeamName] = models.TeamRank{Overall: r.overall, Category: perCategory[r.team.Category]}
	}
	return out
}
