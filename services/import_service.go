package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/repositories"
	"github.com/Dosada05/hackathon-portal/sheets"
)

// TeamImportColumns: обязательная шапка импорта команд; leader_name и leader_email необязательны.
var TeamImportColumns = []string{"team_id", "team_name", "category"}

type TeamImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

type ImportService interface {
	ImportTeams(ctx context.Context, r io.Reader, filename string) (*TeamImportResult, error)
}

type importService struct {
	teamRepo repositories.TeamRepository
	logger   zerolog.Logger
}

func NewImportService(teamRepo repositories.TeamRepository, logger zerolog.Logger) ImportService {
	return &importService{
		teamRepo: teamRepo,
		logger:   logger.With().Str("service", "import").Logger(),
	}
}

// ImportTeams читает таблицу и создаёт или обновляет команды по team_id одной транзакцией.
func (s *importService) ImportTeams(ctx context.Context, r io.Reader, filename string) (*TeamImportResult, error) {
	sheet, err := sheets.Read(r, filename)
	if err != nil {
		return nil, err
	}
	if err := sheet.Require(TeamImportColumns...); err != nil {
		return nil, err
	}

	v := validator{}
	teams := make([]*models.Team, 0, len(sheet.Rows))
	firstLine := make(map[string]int)
	for i, row := range sheet.Rows {
		line := i + 2
		id := strings.TrimSpace(row["team_id"])
		name := strings.TrimSpace(row["team_name"])

		v.check(id != "", fmt.Sprintf("row %d.team_id", line), "is required")
		v.check(name != "", fmt.Sprintf("row %d.team_name", line), "is required")
		if id != "" {
			if prev, dup := firstLine[id]; dup {
				v.check(false, fmt.Sprintf("row %d.team_id", line), fmt.Sprintf("duplicates row %d", prev))
				continue
			}
			firstLine[id] = line
		}

		team := &models.Team{
			TeamID:   id,
			TeamName: name,
			Category: strings.TrimSpace(row["category"]),
			Members:  []models.TeamMember{},
			IsActive: true,
		}
		if leader := strings.TrimSpace(row["leader_name"]); leader != "" {
			team.Members = append(team.Members, models.TeamMember{
				Name:  leader,
				Email: strings.ToLower(strings.TrimSpace(row["leader_email"])),
			})
		}
		teams = append(teams, team)
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	created, updated, err := s.teamRepo.UpsertMany(ctx, teams)
	if err != nil {
		return nil, mapRepoError(err)
	}

	s.logger.Info().Str("file", filename).Int("created", created).Int("updated", updated).Msg("Teams imported")
	return &TeamImportResult{Created: created, Updated: updated, Total: len(teams)}, nil
}
