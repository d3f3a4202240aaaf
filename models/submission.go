package models

import (
	"sort"
	"time"
)

type SubmissionStatus string

const (
	SubmissionPending      SubmissionStatus = "pending"
	SubmissionUploaded     SubmissionStatus = "uploaded"
	SubmissionReviewed     SubmissionStatus = "reviewed"
	SubmissionQualified    SubmissionStatus = "qualified"
	SubmissionNotQualified SubmissionStatus = "not-qualified"
)

func (s SubmissionStatus) IsValid() bool {
	switch s {
	case SubmissionPending, SubmissionUploaded, SubmissionReviewed, SubmissionQualified, SubmissionNotQualified:
		return true
	}
	return false
}

// CountsTowardsProgress reports whether a round with this status is complete.
// "reviewed" is deliberately not counted.
func (s SubmissionStatus) CountsTowardsProgress() bool {
	return s == SubmissionUploaded || s == SubmissionQualified
}

type SubmissionFile struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	UploadedAt   time.Time `json:"uploadedAt"`
	URL          string    `json:"url,omitempty"`
}

type Submission struct {
	Round       Round            `json:"round"`
	Status      SubmissionStatus `json:"status"`
	Files       []SubmissionFile `json:"files"`
	Feedback    *string          `json:"feedback,omitempty"`
	Score       *float64         `json:"score,omitempty"`
	SubmittedAt time.Time        `json:"submittedAt"`
	ReviewedAt  *time.Time       `json:"reviewedAt,omitempty"`
	ReviewedBy  *int             `json:"reviewedBy,omitempty"`
}

// SortSubmissions orders submissions by round (IST, Round 1, Round 2).
func SortSubmissions(subs []Submission) {
	order := make(map[Round]int, len(Rounds))
	for i, r := range Rounds {
		order[r] = i
	}
	sort.SliceStable(subs, func(i, j int) bool {
		oi, okI := order[subs[i].Round]
		oj, okJ := order[subs[j].Round]
		if !okI {
			oi = len(Rounds)
		}
		if !okJ {
			oj = len(Rounds)
		}
		return oi < oj
	})
}
