package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/sheets"
)

func TestImportService_ImportTeams(t *testing.T) {
	repo := newFakeTeamRepo(&models.Team{TeamID: "T1", TeamName: "Old name", Category: "AI", IsActive: true})
	svc := NewImportService(repo, zerolog.Nop())

	csv := "team_id,team_name,category,leader_name,leader_email\n" +
		"T1,Alpha,AI,Ada,ADA@example.com\n" +
		"T2,Beta,Web,,\n"
	res, err := svc.ImportTeams(context.Background(), strings.NewReader(csv), "teams.csv")
	require.NoError(t, err)
	assert.Equal(t, &TeamImportResult{Created: 1, Updated: 1, Total: 2}, res)

	t1 := repo.get("T1")
	assert.Equal(t, "Alpha", t1.TeamName)
	assert.Equal(t, []models.TeamMember{{Name: "Ada", Email: "ada@example.com"}}, t1.Members)

	t2 := repo.get("T2")
	assert.True(t, t2.IsActive)
	assert.Empty(t, t2.Members)
}

func TestImportService_RejectsBadRows(t *testing.T) {
	repo := newFakeTeamRepo()
	svc := NewImportService(repo, zerolog.Nop())

	csv := "team_id,team_name,category\n" +
		"T1,Alpha,AI\n" +
		",Beta,AI\n" +
		"T1,Gamma,Web\n"
	_, err := svc.ImportTeams(context.Background(), strings.NewReader(csv), "teams.csv")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "row 3.team_id")
	assert.Equal(t, "duplicates row 2", verr.Fields["row 4.team_id"])
	assert.Nil(t, repo.get("T1"), "nothing is written when a row is invalid")
}

func TestImportService_MissingColumns(t *testing.T) {
	svc := NewImportService(newFakeTeamRepo(), zerolog.Nop())

	_, err := svc.ImportTeams(context.Background(), strings.NewReader("team_id\nT1\n"), "teams.csv")
	var missing *sheets.MissingColumnsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"team_name", "category"}, missing.Missing)
}
