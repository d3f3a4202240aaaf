package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/models"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func baseTeam() *models.Team {
	return &models.Team{
		TeamID:       "TEAM001",
		TeamName:     "Null Pointers",
		Category:     "FinTech",
		LastActivity: testNow,
		IsActive:     true,
	}
}

func categories(ns []models.Notification) []models.NotificationCategory {
	out := make([]models.NotificationCategory, 0, len(ns))
	for _, n := range ns {
		out = append(out, n.Category)
	}
	return out
}

func TestDerive_EmptyTeamHasNoNotifications(t *testing.T) {
	got := Derive(baseTeam(), testNow, nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDerive_NilTeam(t *testing.T) {
	assert.Empty(t, Derive(nil, testNow, nil))
}

func TestDerive_QualifiedSubmission(t *testing.T) {
	team := baseTeam()
	team.Submissions = []models.Submission{{
		Round:       models.Round1,
		Status:      models.SubmissionQualified,
		SubmittedAt: testNow.Add(-2 * time.Hour),
	}}

	got := Derive(team, testNow, nil)

	var qualification []models.Notification
	for _, n := range got {
		if n.Category == models.CategoryQualification {
			qualification = append(qualification, n)
		}
	}
	require.Len(t, qualification, 1)
	assert.Equal(t, models.NotificationSuccess, qualification[0].Type)
	assert.Equal(t, "qualification-TEAM001-round-1", qualification[0].ID)
	assert.Equal(t, "TEAM001", qualification[0].TeamID)
	assert.Len(t, got, 1)
}

func TestDerive_NotQualifiedIsWarning(t *testing.T) {
	team := baseTeam()
	reviewed := testNow.Add(-time.Hour)
	team.Submissions = []models.Submission{{
		Round:       models.RoundIST,
		Status:      models.SubmissionNotQualified,
		SubmittedAt: testNow.Add(-48 * time.Hour),
		ReviewedAt:  &reviewed,
	}}

	got := Derive(team, testNow, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationWarning, got[0].Type)
	assert.Equal(t, reviewed, got[0].Timestamp)
}

func TestDerive_UploadedSubmission(t *testing.T) {
	team := baseTeam()
	team.Submissions = []models.Submission{{
		Round:       models.RoundIST,
		Status:      models.SubmissionUploaded,
		Files:       []models.SubmissionFile{{Filename: "a.pdf"}},
		SubmittedAt: testNow.Add(-time.Hour),
	}}

	got := Derive(team, testNow, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.CategorySubmission, got[0].Category)
	assert.Equal(t, "submission-TEAM001-ist", got[0].ID)
}

func TestDerive_ReviewedSubmissionIsSilent(t *testing.T) {
	team := baseTeam()
	team.Submissions = []models.Submission{{Round: models.Round2, Status: models.SubmissionReviewed, SubmittedAt: testNow}}
	assert.Empty(t, Derive(team, testNow, nil))
}

func TestDerive_Deadlines(t *testing.T) {
	deadlines := Deadlines{
		models.RoundIST: testNow.Add(12 * time.Hour),      // due tomorrow
		models.Round1:   testNow.Add(48 * time.Hour),      // reminder
		models.Round2:   testNow.Add(10 * 24 * time.Hour), // too far
	}

	got := Derive(baseTeam(), testNow, deadlines)
	require.Len(t, got, 2)

	assert.Equal(t, "deadline-urgent-TEAM001-ist", got[0].ID)
	assert.Equal(t, models.NotificationWarning, got[0].Type)
	assert.Equal(t, "deadline-reminder-TEAM001-round-1", got[1].ID)
	assert.Equal(t, models.NotificationInfo, got[1].Type)
}

func TestDerive_PastDeadlineIsSilent(t *testing.T) {
	deadlines := Deadlines{models.RoundIST: testNow.Add(-time.Hour)}
	assert.Empty(t, Derive(baseTeam(), testNow, deadlines))
}

func TestDerive_DeadlineBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		until    time.Duration
		wantType models.NotificationType
		wantNone bool
	}{
		{name: "exactly one day", until: 24 * time.Hour, wantType: models.NotificationWarning},
		{name: "just over one day", until: 24*time.Hour + time.Minute, wantType: models.NotificationInfo},
		{name: "exactly three days", until: 72 * time.Hour, wantType: models.NotificationInfo},
		{name: "just over three days", until: 72*time.Hour + time.Minute, wantNone: true},
		{name: "now", until: 0, wantNone: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(baseTeam(), testNow, Deadlines{models.Round2: testNow.Add(tt.until)})
			if tt.wantNone {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, tt.wantType, got[0].Type)
		})
	}
}

func TestDerive_Mentor(t *testing.T) {
	team := baseTeam()
	team.MentorID = strPtr("MENTOR01")
	team.Mentor = &models.Mentor{MentorID: "MENTOR01", Name: "Ada Lovelace"}

	got := Derive(team, testNow, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "mentor-TEAM001-MENTOR01", got[0].ID)
	assert.Contains(t, got[0].Message, "Ada Lovelace")
	assert.Equal(t, testNow, got[0].Timestamp)
}

func TestDerive_ProgressComplete(t *testing.T) {
	team := baseTeam()
	for _, r := range models.Rounds {
		team.Submissions = append(team.Submissions, models.Submission{
			Round: r, Status: models.SubmissionQualified, SubmittedAt: testNow.Add(-72 * time.Hour),
		})
	}

	got := Derive(team, testNow, nil)
	assert.Contains(t, categories(got), models.CategoryProgress)
	// completion is stamped "now", so it sorts ahead of older qualification events
	assert.Equal(t, "progress-complete-TEAM001", got[0].ID)
}

func TestDerive_RankingRulesAreIndependent(t *testing.T) {
	team := baseTeam()
	team.Rank = models.TeamRank{Overall: 4, Category: 1}

	got := Derive(team, testNow, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "ranking-overall-TEAM001-4", got[0].ID)
	assert.Equal(t, "ranking-category-TEAM001-1", got[1].ID)

	team.Rank = models.TeamRank{Overall: 6, Category: 3}
	got = Derive(team, testNow, nil)
	require.Len(t, got, 1)
	assert.Equal(t, "ranking-category-TEAM001-3", got[0].ID)
}

func TestDerive_Inactivity(t *testing.T) {
	team := baseTeam()
	team.LastActivity = testNow.Add(-25 * time.Hour)

	got := Derive(team, testNow, nil)
	require.Len(t, got, 1)
	assert.Equal(t, models.CategoryActivity, got[0].Category)
	assert.Equal(t, models.NotificationWarning, got[0].Type)

	team.LastActivity = testNow.Add(-24 * time.Hour)
	assert.Empty(t, Derive(team, testNow, nil))

	team.LastActivity = time.Time{}
	assert.Empty(t, Derive(team, testNow, nil))
}

func TestDerive_SortedNewestFirst(t *testing.T) {
	team := baseTeam()
	team.Submissions = []models.Submission{
		{Round: models.RoundIST, Status: models.SubmissionUploaded, SubmittedAt: testNow.Add(-3 * time.Hour)},
		{Round: models.Round1, Status: models.SubmissionUploaded, SubmittedAt: testNow.Add(-1 * time.Hour)},
	}
	team.LastActivity = testNow.Add(-30 * time.Hour)

	got := Derive(team, testNow, nil)
	require.Len(t, got, 3)
	assert.Equal(t, models.CategoryActivity, got[0].Category)
	assert.Equal(t, "submission-TEAM001-round-1", got[1].ID)
	assert.Equal(t, "submission-TEAM001-ist", got[2].ID)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Timestamp.After(got[i-1].Timestamp))
	}
}

func TestDerive_Idempotent(t *testing.T) {
	team := baseTeam()
	team.MentorID = strPtr("M1")
	team.Rank = models.TeamRank{Overall: 2, Category: 2}
	team.Submissions = []models.Submission{{Round: models.RoundIST, Status: models.SubmissionUploaded, SubmittedAt: testNow}}
	deadlines := Deadlines{models.Round1: testNow.Add(36 * time.Hour)}

	first := Derive(team, testNow, deadlines)
	second := Derive(team, testNow, deadlines)
	assert.Equal(t, first, second)
}
