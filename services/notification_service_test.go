package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/events"
	"github.com/Dosada05/hackathon-portal/models"
	"github.com/Dosada05/hackathon-portal/notify"
	"github.com/Dosada05/hackathon-portal/readstate"
)

func notificationTeam() *models.Team {
	team := activeTeam("T1")
	team.MentorID = strPtr("M1")
	assigned := testNow.Add(-2 * time.Hour)
	team.MentorAssignedAt = &assigned
	team.LastActivity = testNow.Add(-time.Hour)
	team.Submissions = []models.Submission{
		{Round: models.RoundIST, Status: models.SubmissionUploaded, SubmittedAt: testNow.Add(-3 * time.Hour)},
	}
	return team
}

func newNotificationFixture(store readstate.Store, pub *recordingPublisher) NotificationService {
	teams := newFakeTeamRepo(notificationTeam())
	mentors := newFakeMentorRepo(teams, &models.Mentor{MentorID: "M1", Name: "Ada Lovelace", MaxTeams: 3})
	deadlines := notify.Deadlines{models.Round1: testNow.Add(36 * time.Hour)}
	var publisher events.Publisher = events.Nop{}
	if pub != nil {
		publisher = pub
	}
	return NewNotificationService(teams, mentors, store, publisher, deadlines, fixedClock, zerolog.Nop())
}

func ids(list []models.Notification) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		out = append(out, n.ID)
	}
	return out
}

func TestNotificationService_DerivesWithMentorName(t *testing.T) {
	svc := newNotificationFixture(readstate.NewMemoryStore(), nil)

	list, err := svc.GetTeamNotifications(context.Background(), "T1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"submission-T1-ist",
		"mentor-T1-M1",
		"deadline-reminder-T1-round-1",
	}, ids(list))

	for _, n := range list {
		assert.False(t, n.Read)
		if n.Category == models.CategoryMentor {
			assert.Contains(t, n.Message, "Ada Lovelace")
		}
	}

	_, err = svc.GetTeamNotifications(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestNotificationService_MarkRead(t *testing.T) {
	ctx := context.Background()
	svc := newNotificationFixture(readstate.NewMemoryStore(), nil)

	require.NoError(t, svc.MarkRead(ctx, "T1", "mentor-T1-M1"))
	assert.ErrorIs(t, svc.MarkRead(ctx, "T1", "mentor-T1-M9"), ErrNotFound)

	dash, err := svc.GetDashboard(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 2, dash.UnreadCount)
	assert.Equal(t, 33, dash.Progress)

	n, err := svc.MarkAllRead(ctx, "T1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dash, err = svc.GetDashboard(ctx, "T1")
	require.NoError(t, err)
	assert.Zero(t, dash.UnreadCount)
}

func TestNotificationService_Dashboard(t *testing.T) {
	svc := newNotificationFixture(readstate.NewMemoryStore(), nil)

	dash, err := svc.GetDashboard(context.Background(), "T1")
	require.NoError(t, err)
	require.Len(t, dash.Rounds, 3)

	assert.Equal(t, models.RoundIST, dash.Rounds[0].Round)
	require.NotNil(t, dash.Rounds[0].Status)
	assert.Equal(t, models.SubmissionUploaded, *dash.Rounds[0].Status)
	assert.Nil(t, dash.Rounds[0].Deadline)

	require.NotNil(t, dash.Rounds[1].Deadline)
	assert.Equal(t, testNow.Add(36*time.Hour), *dash.Rounds[1].Deadline)
	assert.Nil(t, dash.Rounds[1].Status)
}

func TestNotificationService_ReadStateUnavailable(t *testing.T) {
	ctx := context.Background()
	svc := newNotificationFixture(failingStore{}, nil)

	list, err := svc.GetTeamNotifications(ctx, "T1")
	require.NoError(t, err, "reads degrade to unread instead of failing")
	assert.Len(t, list, 3)

	assert.ErrorIs(t, svc.MarkRead(ctx, "T1", "mentor-T1-M1"), ErrUnavailable)
	_, err = svc.MarkAllRead(ctx, "T1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNotificationService_RefreshPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newNotificationFixture(readstate.NewMemoryStore(), pub)

	svc.Refresh(context.Background(), notificationTeam())
	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, events.TypeNotificationsUpdated, ev.Type)
	assert.Equal(t, "T1", ev.TeamID)
	assert.Len(t, ev.Payload, 3)

	svc.Refresh(context.Background(), nil)
	assert.Len(t, pub.events, 1)
}

func TestNotificationService_InactivityWarning(t *testing.T) {
	teams := newFakeTeamRepo(&models.Team{TeamID: "T9", TeamName: "Idle", IsActive: true, LastActivity: testNow.Add(-48 * time.Hour)})
	svc := NewNotificationService(teams, nil, readstate.NewMemoryStore(), nil, nil, fixedClock, zerolog.Nop())

	list, err := svc.GetTeamNotifications(context.Background(), "T9")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryActivity, list[0].Category)
}
