package ranking

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/models"
)

func entry(name string, rank models.RankValue, total float64) models.LeaderboardEntry {
	return models.LeaderboardEntry{TeamName: name, Rank: rank, TotalScore: total}
}

func names(entries []models.LeaderboardEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.TeamName)
	}
	return out
}

func TestBuild_SortsByNumericRank(t *testing.T) {
	board := Build([]models.LeaderboardEntry{
		entry("c", "3", 10),
		entry("a", "1", 30),
		entry("b", "2", 20),
	})
	assert.Equal(t, []string{"a", "b", "c"}, names(board.Entries))
}

func TestBuild_MissingAndTextRanksGoLast(t *testing.T) {
	board := Build([]models.LeaderboardEntry{
		entry("unranked", "", 5),
		entry("second", "2", 20),
		entry("text", "TBD", 7),
		entry("first", "1", 25),
	})
	assert.Equal(t, []string{"first", "second", "unranked", "text"}, names(board.Entries))
}

func TestBuild_TiesKeepInputOrder(t *testing.T) {
	board := Build([]models.LeaderboardEntry{
		entry("x", "1", 10),
		entry("y", "1", 20),
		entry("z", "1.0", 5),
	})
	assert.Equal(t, []string{"x", "y", "z"}, names(board.Entries))
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := []models.LeaderboardEntry{entry("b", "2", 1), entry("a", "1", 1)}
	_ = Build(in)
	assert.Equal(t, "b", in[0].TeamName)
}

func TestBuild_Aggregates(t *testing.T) {
	board := Build([]models.LeaderboardEntry{
		entry("a", "1", 10),
		entry("b", "2", 20),
		entry("c", "3", 30),
	})
	assert.Equal(t, "20.0", board.AvgScore)
	assert.Equal(t, float64(30), board.HighScore)
}

func TestBuild_TotalIsNotRecomputed(t *testing.T) {
	e := models.LeaderboardEntry{
		TeamName: "a", Rank: "1",
		InnovationUniqueness: 9, TechnicalFeasibility: 9, PotentialImpact: 9,
		TotalScore: 12,
	}
	board := Build([]models.LeaderboardEntry{e})
	require.Len(t, board.Entries, 1)
	assert.Equal(t, float64(12), board.Entries[0].TotalScore)
	assert.Equal(t, "12.0", board.AvgScore)
}

func TestBuild_Empty(t *testing.T) {
	board := Build(nil)
	assert.Empty(t, board.Entries)
	assert.Equal(t, "0.0", board.AvgScore)
	assert.Zero(t, board.HighScore)
}

func TestBuild_ImportTimeOnBoardOnly(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := entry("a", "1", 20)
	a.ImportedAt = at
	b := entry("b", "2", 10)
	b.ImportedAt = at

	board := Build([]models.LeaderboardEntry{b, a})
	require.NotNil(t, board.ImportedAt)
	assert.Equal(t, at, *board.ImportedAt)

	raw, err := json.Marshal(board.Entries[0])
	require.NoError(t, err)
	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.ElementsMatch(t, []string{
		"team_name", "rank", "innovation_uniqueness", "technical_feasibility", "potential_impact", "total_score",
	}, keys(fields))

	assert.Nil(t, Build([]models.LeaderboardEntry{entry("c", "1", 1)}).ImportedAt)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestAverageScore_Rounding(t *testing.T) {
	got := AverageScore([]models.LeaderboardEntry{entry("a", "1", 10), entry("b", "2", 10.5), entry("c", "3", 11)})
	assert.Equal(t, "10.5", got)
}

func TestBuildProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("numeric ranks are non-decreasing and precede unranked entries", prop.ForAll(
		func(ranks []int) bool {
			in := make([]models.LeaderboardEntry, len(ranks))
			for i, r := range ranks {
				// negative values stand for a missing rank
				rank := models.RankValue("")
				if r >= 0 {
					rank = models.RankValue(strconv.Itoa(r))
				}
				in[i] = entry(strconv.Itoa(i), rank, float64(i))
			}
			board := Build(in)
			if len(board.Entries) != len(in) {
				return false
			}
			seenUnranked := false
			prev := -1.0
			for _, e := range board.Entries {
				r, ok := e.Rank.Numeric()
				if !ok {
					seenUnranked = true
					continue
				}
				if seenUnranked || r < prev {
					return false
				}
				prev = r
			}
			return true
		},
		gen.SliceOf(gen.IntRange(-3, 10)),
	))

	properties.TestingRun(t)
}
