package models

import "time"

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleJudge  UserRole = "judge"
	RoleMentor UserRole = "mentor"
	RoleTeam   UserRole = "team"
)

func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleJudge, RoleMentor, RoleTeam:
		return true
	}
	return false
}

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	TeamID       *string   `json:"team_id,omitempty"`
	MentorID     *string   `json:"mentor_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
