package models

import "time"

type Feedback struct {
	ID         int       `json:"id"`
	TeamID     string    `json:"teamId"`
	AuthorID   int       `json:"authorId"`
	AuthorRole UserRole  `json:"authorRole"`
	Round      *Round    `json:"round,omitempty"`
	Message    string    `json:"message"`
	Rating     *int      `json:"rating,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
