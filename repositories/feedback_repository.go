package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/hackathon-portal/models"
)

var ErrFeedbackTeamInvalid = errors.New("feedback team conflict or invalid")

type FeedbackRepository interface {
	Create(ctx context.Context, fb *models.Feedback) error
	ListByTeam(ctx context.Context, teamID string) ([]*models.Feedback, error)
	Count(ctx context.Context) (int, error)
}

type postgresFeedbackRepository struct {
	db *sql.DB
}

func NewPostgresFeedbackRepository(db *sql.DB) FeedbackRepository {
	return &postgresFeedbackRepository{db: db}
}

func (r *postgresFeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	query := `
		INSERT INTO feedback (team_id, author_id, author_role, round, message, rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	var round sql.NullString
	if fb.Round != nil {
		round = sql.NullString{String: string(*fb.Round), Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		fb.TeamID,
		fb.AuthorID,
		fb.AuthorRole,
		round,
		fb.Message,
		fb.Rating,
	).Scan(&fb.ID, &fb.CreatedAt)

	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == pqForeignKeyViolation && constraint == "feedback_team_id_fkey" {
			return ErrFeedbackTeamInvalid
		}
		return fmt.Errorf("failed to insert feedback for team %s: %w", fb.TeamID, err)
	}
	return nil
}

func (r *postgresFeedbackRepository) ListByTeam(ctx context.Context, teamID string) ([]*models.Feedback, error) {
	query := `
		SELECT id, team_id, author_id, author_role, round, message, rating, created_at
		FROM feedback
		WHERE team_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to query feedback for team %s: %w", teamID, err)
	}
	defer rows.Close()

	list := make([]*models.Feedback, 0)
	for rows.Next() {
		var fb models.Feedback
		var round sql.NullString
		var rating sql.NullInt64
		if err := rows.Scan(&fb.ID, &fb.TeamID, &fb.AuthorID, &fb.AuthorRole, &round, &fb.Message, &rating, &fb.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback row: %w", err)
		}
		if round.Valid {
			rd := models.Round(round.String)
			fb.Round = &rd
		}
		if rating.Valid {
			v := int(rating.Int64)
			fb.Rating = &v
		}
		list = append(list, &fb)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback rows: %w", err)
	}
	return list, nil
}

func (r *postgresFeedbackRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count feedback: %w", err)
	}
	return count, nil
}
