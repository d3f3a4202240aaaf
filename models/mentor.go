package models

import "time"

const DefaultMentorCapacity = 3

type Mentor struct {
	MentorID  string    `json:"mentorId" db:"mentor_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Expertise []string  `json:"expertise" db:"expertise"`
	MaxTeams  int       `json:"maxTeams" db:"max_teams"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Заполняется репозиторием при выборке списка.
	TeamCount int `json:"teamCount" db:"-"`
}

func (m *Mentor) HasCapacity() bool {
	return m.TeamCount < m.MaxTeams
}
