package models

import "time"

// Round is one of the fixed evaluation stages of the event.
type Round string

const (
	RoundIST Round = "IST"
	Round1   Round = "Round 1"
	Round2   Round = "Round 2"
)

// Rounds lists every round in evaluation order.
var Rounds = []Round{RoundIST, Round1, Round2}

// TotalRounds is the number of rounds a team is expected to complete.
const TotalRounds = 3

func (r Round) IsValid() bool {
	switch r {
	case RoundIST, Round1, Round2:
		return true
	}
	return false
}

// Slug returns a URL/key friendly form of the round ("ist", "round-1", "round-2").
func (r Round) Slug() string {
	switch r {
	case RoundIST:
		return "ist"
	case Round1:
		return "round-1"
	case Round2:
		return "round-2"
	}
	return ""
}

// ParseRound accepts either the display name ("Round 1") or the slug ("round-1").
func ParseRound(s string) (Round, bool) {
	for _, r := range Rounds {
		if s == string(r) || s == r.Slug() {
			return r, true
		}
	}
	return "", false
}

type TeamRank struct {
	Overall  int `json:"overall"`
	Category int `json:"category"`
}

type TeamMember struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Team хранится одной строкой: заявки и участники лежат в JSONB-колонках.
type Team struct {
	TeamID           string       `json:"teamId" db:"team_id"`
	TeamName         string       `json:"teamName" db:"team_name"`
	Category         string       `json:"category" db:"category"`
	MentorID         *string      `json:"mentorId,omitempty" db:"mentor_id"`
	MentorAssignedAt *time.Time   `json:"mentorAssignedAt,omitempty" db:"mentor_assigned_at"`
	Submissions      []Submission `json:"submissions" db:"submissions"`
	Members          []TeamMember `json:"members" db:"members"`
	Rank             TeamRank     `json:"rank" db:"-"`
	LastActivity     time.Time    `json:"lastActivity" db:"last_activity"`
	IsActive         bool         `json:"isActive" db:"is_active"`
	CreatedAt        time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time    `json:"updatedAt" db:"updated_at"`

	Mentor *Mentor `json:"mentor,omitempty" db:"-"`
}

func (t *Team) HasMentor() bool {
	return t.MentorID != nil && *t.MentorID != ""
}

// SubmissionFor returns the submission for the given round, or nil.
func (t *Team) SubmissionFor(round Round) *Submission {
	for i := range t.Submissions {
		if t.Submissions[i].Round == round {
			return &t.Submissions[i]
		}
	}
	return nil
}

// CalculateProgress returns the share of rounds with an uploaded or qualified
// submission, as a floored percentage in 0..100.
func (t *Team) CalculateProgress() int {
	done := 0
	seen := make(map[Round]bool, TotalRounds)
	for _, s := range t.Submissions {
		if seen[s.Round] || !s.Round.IsValid() {
			continue
		}
		if s.Status.CountsTowardsProgress() {
			seen[s.Round] = true
			done++
		}
	}
	progress := done * 100 / TotalRounds
	if progress > 100 {
		return 100
	}
	return progress
}
