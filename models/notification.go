package models

import "time"

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

type NotificationCategory string

const (
	CategorySubmission    NotificationCategory = "submission"
	CategoryQualification NotificationCategory = "qualification"
	CategoryDeadline      NotificationCategory = "deadline"
	CategoryMentor        NotificationCategory = "mentor"
	CategoryProgress      NotificationCategory = "progress"
	CategoryRanking       NotificationCategory = "ranking"
	CategoryActivity      NotificationCategory = "activity"
)

// Notification is derived from team state on every request and never stored.
// Only the read flag comes from persisted read-state.
type Notification struct {
	ID        string               `json:"id"`
	Type      NotificationType     `json:"type"`
	Title     string               `json:"title"`
	Message   string               `json:"message"`
	Timestamp time.Time            `json:"timestamp"`
	TeamID    string               `json:"teamId"`
	Category  NotificationCategory `json:"category"`
	Read      bool                 `json:"read"`
}
