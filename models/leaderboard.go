package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// RankValue keeps the rank exactly as supplied upstream: a number, free text or nothing.
type RankValue string

// Numeric returns the rank as a number. Missing or non-numeric ranks report ok=false.
func (r RankValue) Numeric() (float64, bool) {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func (r RankValue) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(string(r)) == "" {
		return []byte("null"), nil
	}
	if f, ok := r.Numeric(); ok {
		return json.Marshal(f)
	}
	return json.Marshal(string(r))
}

func (r *RankValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RankValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RankValue(n.String())
	return nil
}

// LeaderboardEntry mirrors the scoring record produced by the evaluation subsystem.
// TotalScore is stored as provided and is not recomputed from the criteria.
type LeaderboardEntry struct {
	TeamName             string    `json:"team_name"`
	Rank                 RankValue `json:"rank"`
	InnovationUniqueness float64   `json:"innovation_uniqueness"`
	TechnicalFeasibility float64   `json:"technical_feasibility"`
	PotentialImpact      float64   `json:"potential_impact"`
	TotalScore           float64   `json:"total_score"`
	// ImportedAt is persisted per row but exposed once on Leaderboard.
	ImportedAt time.Time `json:"-"`
}

type Leaderboard struct {
	Entries    []LeaderboardEntry `json:"entries"`
	AvgScore   string             `json:"avgScore"`
	HighScore  float64            `json:"highScore"`
	ImportedAt *time.Time         `json:"importedAt,omitempty"`
}
