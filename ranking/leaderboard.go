// Package ranking orders leaderboard records for display.
package ranking

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Dosada05/hackathon-portal/models"
)

// Build returns the display leaderboard: entries ordered by their upstream rank,
// plus the average and highest total score. The input slice is not modified.
//
// Entries with a missing or non-numeric rank go after every ranked entry.
// Ties keep their relative input order; rank is assigned upstream, so no
// secondary key is applied.
func Build(entries []models.LeaderboardEntry) models.Leaderboard {
	sorted := make([]models.LeaderboardEntry, len(entries))
	copy(sorted, entries)

	sort.SliceStable(sorted, func(i, j int) bool {
		return rankKey(sorted[i]) < rankKey(sorted[j])
	})

	return models.Leaderboard{
		Entries:    sorted,
		AvgScore:   AverageScore(sorted),
		HighScore:  HighScore(sorted),
		ImportedAt: latestImport(sorted),
	}
}

// latestImport returns the newest import time among entries, nil if none was recorded.
func latestImport(entries []models.LeaderboardEntry) *time.Time {
	var latest *time.Time
	for i := range entries {
		at := entries[i].ImportedAt
		if at.IsZero() || (latest != nil && !at.After(*latest)) {
			continue
		}
		latest = &at
	}
	return latest
}

func rankKey(e models.LeaderboardEntry) float64 {
	if r, ok := e.Rank.Numeric(); ok {
		return r
	}
	return math.Inf(1)
}

// AverageScore formats the mean total score with one decimal place ("20.0").
func AverageScore(entries []models.LeaderboardEntry) string {
	if len(entries) == 0 {
		return "0.0"
	}
	var sum float64
	for _, e := range entries {
		sum += e.TotalScore
	}
	return fmt.Sprintf("%.1f", sum/float64(len(entries)))
}

func HighScore(entries []models.LeaderboardEntry) float64 {
	if len(entries) == 0 {
		return 0
	}
	high := entries[0].TotalScore
	for _, e := range entries[1:] {
		if e.TotalScore > high {
			high = e.TotalScore
		}
	}
	return high
}
