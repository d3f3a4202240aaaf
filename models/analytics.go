package models

type RoundStats struct {
	Round    Round                    `json:"round"`
	Total    int                      `json:"total"`
	ByStatus map[SubmissionStatus]int `json:"byStatus"`
}

type AnalyticsStats struct {
	TeamsTotal         int            `json:"teamsTotal"`
	ActiveTeams        int            `json:"activeTeams"`
	TeamsWithoutMentor int            `json:"teamsWithoutMentor"`
	MentorsTotal       int            `json:"mentorsTotal"`
	FeedbackTotal      int            `json:"feedbackTotal"`
	TeamsByCategory    map[string]int `json:"teamsByCategory"`
	Rounds             []RoundStats   `json:"rounds"`
	AverageProgress    float64        `json:"averageProgress"`
}
