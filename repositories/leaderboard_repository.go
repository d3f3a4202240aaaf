package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Dosada05/hackathon-portal/models"
)

type LeaderboardRepository interface {
	// Replace атомарно заменяет таблицу лидеров и проставляет командам места.
	// Команды, отсутствующие в ranks, становятся без места (0).
	Replace(ctx context.Context, entries []models.LeaderboardEntry, ranks map[string]models.TeamRank) error
	// List возвращает записи в порядке импорта.
	List(ctx context.Context) ([]models.LeaderboardEntry, error)
}

type postgresLeaderboardRepository struct {
	db *sql.DB
}

func NewPostgresLeaderboardRepository(db *sql.DB) LeaderboardRepository {
	return &postgresLeaderboardRepository{db: db}
}

func (r *postgresLeaderboardRepository) Replace(ctx context.Context, entries []models.LeaderboardEntry, ranks map[string]models.TeamRank) error {
	insert := `
		INSERT INTO leaderboard_entries
			(position, team_name, rank, innovation_uniqueness, technical_feasibility, potential_impact, total_score, imported_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard_entries`); err != nil {
			return fmt.Errorf("failed to clear leaderboard: %w", err)
		}

		for i, e := range entries {
			rank := sql.NullString{String: string(e.Rank), Valid: e.Rank != ""}
			if _, err := tx.ExecContext(ctx, insert,
				i,
				e.TeamName,
				rank,
				e.InnovationUniqueness,
				e.TechnicalFeasibility,
				e.PotentialImpact,
				e.TotalScore,
				e.ImportedAt,
			); err != nil {
				return fmt.Errorf("failed to insert leaderboard entry %q: %w", e.TeamName, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `UPDATE teams SET rank_overall = 0, rank_category = 0`); err != nil {
			return fmt.Errorf("failed to reset team ranks: %w", err)
		}

		// стабильный порядок запросов
		names := make([]string, 0, len(ranks))
		for name := range ranks {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			rank := ranks[name]
			if _, err := tx.ExecContext(ctx,
				`UPDATE teams SET rank_overall = $1, rank_category = $2 WHERE team_name = $3`,
				rank.Overall, rank.Category, name,
			); err != nil {
				return fmt.Errorf("failed to set rank for team %q: %w", name, err)
			}
		}
		return nil
	})
}

func (r *postgresLeaderboardRepository) List(ctx context.Context) ([]models.LeaderboardEntry, error) {
	query := `
		SELECT team_name, rank, innovation_uniqueness, technical_feasibility, potential_impact, total_score, imported_at
		FROM leaderboard_entries
		ORDER BY position ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	entries := make([]models.LeaderboardEntry, 0)
	for rows.Next() {
		var e models.LeaderboardEntry
		var rank sql.NullString
		if err := rows.Scan(
			&e.TeamName,
			&rank,
			&e.InnovationUniqueness,
			&e.TechnicalFeasibility,
			&e.PotentialImpact,
			&e.TotalScore,
			&e.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %w", err)
		}
		if rank.Valid {
			e.Rank = models.RankValue(rank.String)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaderboard rows: %w", err)
	}
	return entries, nil
}
