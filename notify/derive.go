// Package notify derives user-facing team notifications from persisted team state.
//
// Nothing here is stored: the same team and clock always yield the same list,
// with the same ids, so clients can poll and deduplicate by id.
package notify

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/Dosada05/hackathon-portal/models"
)

const (
	inactivityThreshold = 24 * time.Hour

	topOverallRank  = 5
	topCategoryRank = 3

	nearCompletionProgress = 75
)

// Deadlines maps a round to its absolute submission deadline.
// Rounds missing from the map never produce deadline notifications.
type Deadlines map[models.Round]time.Time

// Derive builds the notification list for a team at the given instant.
// The result is sorted newest first; equal timestamps keep rule order.
func Derive(team *models.Team, now time.Time, deadlines Deadlines) []models.Notification {
	if team == nil {
		return []models.Notification{}
	}

	var out []models.Notification
	out = append(out, submissionNotifications(team)...)
	out = append(out, qualificationNotifications(team)...)
	out = append(out, deadlineNotifications(team, now, deadlines)...)
	out = append(out, mentorNotifications(team, now)...)
	out = append(out, progressNotifications(team, now)...)
	out = append(out, rankingNotifications(team, now)...)
	out = append(out, activityNotifications(team, now)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if out == nil {
		return []models.Notification{}
	}
	return out
}

func notificationID(kind, teamID string, context ...string) string {
	id := kind + "-" + teamID
	for _, c := range context {
		id += "-" + c
	}
	return id
}

func eventTime(s *models.Submission) time.Time {
	if s.ReviewedAt != nil && !s.ReviewedAt.IsZero() {
		return *s.ReviewedAt
	}
	return s.SubmittedAt
}

func submissionNotifications(team *models.Team) []models.Notification {
	var out []models.Notification
	for i := range team.Submissions {
		s := &team.Submissions[i]
		if s.Status != models.SubmissionUploaded {
			continue
		}
		out = append(out, models.Notification{
			ID:        notificationID("submission", team.TeamID, s.Round.Slug()),
			Type:      models.NotificationSuccess,
			Title:     "Submission received",
			Message:   fmt.Sprintf("Your %s submission (%d file(s)) has been received and is awaiting review.", s.Round, len(s.Files)),
			Timestamp: s.SubmittedAt,
			TeamID:    team.TeamID,
			Category:  models.CategorySubmission,
		})
	}
	return out
}

func qualificationNotifications(team *models.Team) []models.Notification {
	var out []models.Notification
	for i := range team.Submissions {
		s := &team.Submissions[i]
		var n models.Notification
		switch s.Status {
		case models.SubmissionQualified:
			n = models.Notification{
				Type:    models.NotificationSuccess,
				Title:   fmt.Sprintf("Qualified for %s", s.Round),
				Message: fmt.Sprintf("Congratulations! %s has qualified in %s.", team.TeamName, s.Round),
			}
		case models.SubmissionNotQualified:
			n = models.Notification{
				Type:    models.NotificationWarning,
				Title:   fmt.Sprintf("Not qualified in %s", s.Round),
				Message: fmt.Sprintf("Unfortunately %s did not qualify in %s. Check the judges' feedback.", team.TeamName, s.Round),
			}
		default:
			continue
		}
		n.ID = notificationID("qualification", team.TeamID, s.Round.Slug())
		n.Timestamp = eventTime(s)
		n.TeamID = team.TeamID
		n.Category = models.CategoryQualification
		out = append(out, n)
	}
	return out
}

func deadlineNotifications(team *models.Team, now time.Time, deadlines Deadlines) []models.Notification {
	var out []models.Notification
	for _, round := range models.Rounds {
		deadline, ok := deadlines[round]
		if !ok || deadline.IsZero() {
			continue
		}
		days := deadline.Sub(now).Hours() / 24
		switch {
		case days > 0 && days <= 1:
			out = append(out, models.Notification{
				ID:        notificationID("deadline-urgent", team.TeamID, round.Slug()),
				Type:      models.NotificationWarning,
				Title:     fmt.Sprintf("%s deadline tomorrow", round),
				Message:   fmt.Sprintf("The %s submission deadline is %s. Make sure your files are uploaded.", round, deadline.UTC().Format(time.RFC1123)),
				Timestamp: now,
				TeamID:    team.TeamID,
				Category:  models.CategoryDeadline,
			})
		case days > 1 && days <= 3:
			out = append(out, models.Notification{
				ID:        notificationID("deadline-reminder", team.TeamID, round.Slug()),
				Type:      models.NotificationInfo,
				Title:     fmt.Sprintf("%s deadline approaching", round),
				Message:   fmt.Sprintf("%d day(s) left until the %s deadline.", int(math.Ceil(days)), round),
				Timestamp: now,
				TeamID:    team.TeamID,
				Category:  models.CategoryDeadline,
			})
		}
	}
	return out
}

func mentorNotifications(team *models.Team, now time.Time) []models.Notification {
	if !team.HasMentor() {
		return nil
	}
	ts := now
	if team.MentorAssignedAt != nil && !team.MentorAssignedAt.IsZero() {
		ts = *team.MentorAssignedAt
	}
	mentorName := *team.MentorID
	if team.Mentor != nil && team.Mentor.Name != "" {
		mentorName = team.Mentor.Name
	}
	return []models.Notification{{
		ID:        notificationID("mentor", team.TeamID, *team.MentorID),
		Type:      models.NotificationInfo,
		Title:     "Mentor assigned",
		Message:   fmt.Sprintf("%s has been assigned as your mentor.", mentorName),
		Timestamp: ts,
		TeamID:    team.TeamID,
		Category:  models.CategoryMentor,
	}}
}

func progressNotifications(team *models.Team, now time.Time) []models.Notification {
	progress := team.CalculateProgress()
	switch {
	case progress >= 100:
		return []models.Notification{{
			ID:        notificationID("progress-complete", team.TeamID),
			Type:      models.NotificationSuccess,
			Title:     "All rounds completed",
			Message:   "Your team has completed every round of the hackathon.",
			Timestamp: now,
			TeamID:    team.TeamID,
			Category:  models.CategoryProgress,
		}}
	case progress >= nearCompletionProgress:
		return []models.Notification{{
			ID:        notificationID("progress-near", team.TeamID),
			Type:      models.NotificationInfo,
			Title:     "Almost there",
			Message:   fmt.Sprintf("Your team is %d%% done. Keep going!", progress),
			Timestamp: now,
			TeamID:    team.TeamID,
			Category:  models.CategoryProgress,
		}}
	}
	return nil
}

func rankingNotifications(team *models.Team, now time.Time) []models.Notification {
	var out []models.Notification
	if r := team.Rank.Overall; r >= 1 && r <= topOverallRank {
		out = append(out, models.Notification{
			ID:        notificationID("ranking-overall", team.TeamID, strconv.Itoa(r)),
			Type:      models.NotificationSuccess,
			Title:     "Top 5 overall",
			Message:   fmt.Sprintf("%s is ranked #%d overall.", team.TeamName, r),
			Timestamp: now,
			TeamID:    team.TeamID,
			Category:  models.CategoryRanking,
		})
	}
	if r := team.Rank.Category; r >= 1 && r <= topCategoryRank {
		out = append(out, models.Notification{
			ID:        notificationID("ranking-category", team.TeamID, strconv.Itoa(r)),
			Type:      models.NotificationSuccess,
			Title:     "Category leader",
			Message:   fmt.Sprintf("%s is ranked #%d in %s.", team.TeamName, r, team.Category),
			Timestamp: now,
			TeamID:    team.TeamID,
			Category:  models.CategoryRanking,
		})
	}
	return out
}

func activityNotifications(team *models.Team, now time.Time) []models.Notification {
	if team.LastActivity.IsZero() {
		return nil
	}
	idle := now.Sub(team.LastActivity)
	if idle <= inactivityThreshold {
		return nil
	}
	return []models.Notification{{
		ID:        notificationID("activity", team.TeamID, strconv.FormatInt(team.LastActivity.Unix(), 10)),
		Type:      models.NotificationWarning,
		Title:     "No recent activity",
		Message:   fmt.Sprintf("We haven't seen activity from your team for %d hours.", int(idle.Hours())),
		Timestamp: now,
		TeamID:    team.TeamID,
		Category:  models.CategoryActivity,
	}}
}
