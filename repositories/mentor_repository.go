package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/hackathon-portal/models"
)

var (
	ErrMentorNotFound      = errors.New("mentor not found")
	ErrMentorIDConflict    = errors.New("mentor id conflict")
	ErrMentorEmailConflict = errors.New("mentor email conflict")
)

type MentorRepository interface {
	Create(ctx context.Context, mentor *models.Mentor) error
	GetByID(ctx context.Context, mentorID string) (*models.Mentor, error)
	// GetForUpdate блокирует строку ментора до конца транзакции exec.
	GetForUpdate(ctx context.Context, exec SQLExecutor, mentorID string) (*models.Mentor, error)
	List(ctx context.Context) ([]*models.Mentor, error)
	Update(ctx context.Context, mentor *models.Mentor) error
	Delete(ctx context.Context, mentorID string) error
}

type postgresMentorRepository struct {
	db *sql.DB
}

func NewPostgresMentorRepository(db *sql.DB) MentorRepository {
	return &postgresMentorRepository{db: db}
}

func (r *postgresMentorRepository) Create(ctx context.Context, mentor *models.Mentor) error {
	query := `
		INSERT INTO mentors (mentor_id, name, email, expertise, max_teams)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		mentor.MentorID,
		mentor.Name,
		mentor.Email,
		pq.Array(mentor.Expertise),
		mentor.MaxTeams,
	).Scan(&mentor.CreatedAt)

	return r.handleMentorError(err)
}

func (r *postgresMentorRepository) GetByID(ctx context.Context, mentorID string) (*models.Mentor, error) {
	query := `
		SELECT m.mentor_id, m.name, m.email, m.expertise, m.max_teams, m.created_at,
		       (SELECT COUNT(*) FROM teams t WHERE t.mentor_id = m.mentor_id)
		FROM mentors m
		WHERE m.mentor_id = $1`

	mentor, err := scanMentor(r.db.QueryRowContext(ctx, query, mentorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("failed to scan mentor %s: %w", mentorID, err)
	}
	return mentor, nil
}

func (r *postgresMentorRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, mentorID string) (*models.Mentor, error) {
	if exec == nil {
		exec = r.db
	}
	// FOR UPDATE нельзя совместить с агрегатом, поэтому счётчик команд читаем отдельно.
	query := `
		SELECT mentor_id, name, email, expertise, max_teams, created_at, 0
		FROM mentors
		WHERE mentor_id = $1
		FOR UPDATE`

	mentor, err := scanMentor(exec.QueryRowContext(ctx, query, mentorID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMentorNotFound
		}
		return nil, fmt.Errorf("failed to lock mentor %s: %w", mentorID, err)
	}

	err = exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE mentor_id = $1`, mentorID).Scan(&mentor.TeamCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count teams for mentor %s: %w", mentorID, err)
	}
	return mentor, nil
}

func (r *postgresMentorRepository) List(ctx context.Context) ([]*models.Mentor, error) {
	query := `
		SELECT m.mentor_id, m.name, m.email, m.expertise, m.max_teams, m.created_at, COUNT(t.team_id)
		FROM mentors m
		LEFT JOIN teams t ON t.mentor_id = m.mentor_id
		GROUP BY m.mentor_id
		ORDER BY m.mentor_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query mentors: %w", err)
	}
	defer rows.Close()

	mentors := make([]*models.Mentor, 0)
	for rows.Next() {
		mentor, scanErr := scanMentor(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan mentor row: %w", scanErr)
		}
		mentors = append(mentors, mentor)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating mentor rows: %w", err)
	}
	return mentors, nil
}

func (r *postgresMentorRepository) Update(ctx context.Context, mentor *models.Mentor) error {
	query := `
		UPDATE mentors SET
			name = $1,
			email = $2,
			expertise = $3,
			max_teams = $4
		WHERE mentor_id = $5`

	result, err := r.db.ExecContext(ctx, query,
		mentor.Name,
		mentor.Email,
		pq.Array(mentor.Expertise),
		mentor.MaxTeams,
		mentor.MentorID,
	)
	if err != nil {
		return r.handleMentorError(err)
	}
	return checkAffectedRows(result, ErrMentorNotFound)
}

// Delete удаляет ментора; у его команд mentor_id обнуляется внешним ключом.
func (r *postgresMentorRepository) Delete(ctx context.Context, mentorID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM mentors WHERE mentor_id = $1`, mentorID)
	if err != nil {
		return fmt.Errorf("failed to delete mentor %s: %w", mentorID, err)
	}
	return checkAffectedRows(result, ErrMentorNotFound)
}

func (r *postgresMentorRepository) handleMentorError(err error) error {
	if err == nil {
		return nil
	}
	if code, constraint, ok := pqConstraint(err); ok && code == pqUniqueViolation {
		switch constraint {
		case "mentors_pkey":
			return ErrMentorIDConflict
		case "mentors_email_key":
			return ErrMentorEmailConflict
		}
	}
	return err
}

func scanMentor(row rowScanner) (*models.Mentor, error) {
	var mentor models.Mentor
	err := row.Scan(
		&mentor.MentorID,
		&mentor.Name,
		&mentor.Email,
		pq.Array(&mentor.Expertise),
		&mentor.MaxTeams,
		&mentor.CreatedAt,
		&mentor.TeamCount,
	)
	if err != nil {
		return nil, err
	}
	if mentor.Expertise == nil {
		mentor.Expertise = []string{}
	}
	return &mentor, nil
}
