package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/hackathon-portal/models"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrTeamIDConflict    = errors.New("team id conflict")
	ErrTeamNameConflict  = errors.New("team name conflict")
	ErrTeamMentorInvalid = errors.New("team mentor conflict or invalid")
)

// TeamFilter ограничивает выборку List. Нулевые поля не фильтруют.
type TeamFilter struct {
	Category      *string
	IsActive      *bool
	MentorID      *string
	WithoutMentor bool
}

// TeamMutation меняет команду внутри транзакции, которая держит блокировку строки.
// exec принадлежит той же транзакции.
type TeamMutation func(ctx context.Context, exec SQLExecutor, team *models.Team) error

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, teamID string) (*models.Team, error)
	List(ctx context.Context, filter TeamFilter) ([]*models.Team, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, teamID string) error
	Mutate(ctx context.Context, teamID string, fn TeamMutation) (*models.Team, error)
	UpsertMany(ctx context.Context, teams []*models.Team) (created int, updated int, err error)
	CountByMentor(ctx context.Context, exec SQLExecutor, mentorID string) (int, error)
}

const teamColumns = `team_id, team_name, category, mentor_id, mentor_assigned_at, submissions, members,
		rank_overall, rank_category, last_activity, is_active, created_at, updated_at`

type postgresTeamRepository struct {
	db *sql.DB
}

func NewPostgresTeamRepository(db *sql.DB) TeamRepository {
	return &postgresTeamRepository{db: db}
}

func (r *postgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	subs, members, err := marshalTeamDocuments(team)
	if err != nil {
		return err
	}
	if team.LastActivity.IsZero() {
		team.LastActivity = time.Now().UTC()
	}

	query := `
		INSERT INTO teams (team_id, team_name, category, mentor_id, submissions, members,
			rank_overall, rank_category, last_activity, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		team.TeamID,
		team.TeamName,
		team.Category,
		team.MentorID,
		subs,
		members,
		team.Rank.Overall,
		team.Rank.Category,
		team.LastActivity,
		team.IsActive,
	).Scan(&team.CreatedAt, &team.UpdatedAt)

	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) GetByID(ctx context.Context, teamID string) (*models.Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE team_id = $1`

	team, err := scanTeam(r.db.QueryRowContext(ctx, query, teamID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to scan team %s: %w", teamID, err)
	}
	return team, nil
}

func (r *postgresTeamRepository) List(ctx context.Context, filter TeamFilter) ([]*models.Team, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + teamColumns + ` FROM teams WHERE 1=1`)

	args := []interface{}{}
	placeholderIndex := 1

	if filter.Category != nil {
		queryBuilder.WriteString(" AND category = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Category)
		placeholderIndex++
	}
	if filter.IsActive != nil {
		queryBuilder.WriteString(" AND is_active = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.IsActive)
		placeholderIndex++
	}
	if filter.MentorID != nil {
		queryBuilder.WriteString(" AND mentor_id = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.MentorID)
	}
	if filter.WithoutMentor {
		queryBuilder.WriteString(" AND mentor_id IS NULL")
	}
	queryBuilder.WriteString(" ORDER BY team_id ASC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team, scanErr := scanTeam(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan team row: %w", scanErr)
		}
		teams = append(teams, team)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating team rows: %w", err)
	}
	return teams, nil
}

// Update сохраняет профиль команды (не заявки и не ментора).
func (r *postgresTeamRepository) Update(ctx context.Context, team *models.Team) error {
	_, members, err := marshalTeamDocuments(team)
	if err != nil {
		return err
	}

	query := `
		UPDATE teams SET
			team_name = $1,
			category = $2,
			is_active = $3,
			rank_overall = $4,
			rank_category = $5,
			members = $6,
			updated_at = NOW()
		WHERE team_id = $7
		RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		team.TeamName,
		team.Category,
		team.IsActive,
		team.Rank.Overall,
		team.Rank.Category,
		members,
		team.TeamID,
	).Scan(&team.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTeamNotFound
	}
	return r.handleTeamError(err)
}

func (r *postgresTeamRepository) Delete(ctx context.Context, teamID string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE team_id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("failed to delete team %s: %w", teamID, err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

// Mutate читает команду с SELECT ... FOR UPDATE, применяет fn и записывает документ обратно
// в той же транзакции. Ошибка из fn откатывает транзакцию и возвращается как есть.
func (r *postgresTeamRepository) Mutate(ctx context.Context, teamID string, fn TeamMutation) (*models.Team, error) {
	var result *models.Team

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `SELECT ` + teamColumns + ` FROM teams WHERE team_id = $1 FOR UPDATE`
		team, err := scanTeam(tx.QueryRowContext(ctx, query, teamID))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTeamNotFound
			}
			return fmt.Errorf("failed to lock team %s: %w", teamID, err)
		}

		if err := fn(ctx, tx, team); err != nil {
			return err
		}

		models.SortSubmissions(team.Submissions)
		subs, members, err := marshalTeamDocuments(team)
		if err != nil {
			return err
		}

		update := `
			UPDATE teams SET
				submissions = $1,
				members = $2,
				mentor_id = $3,
				mentor_assigned_at = $4,
				last_activity = $5,
				is_active = $6,
				updated_at = NOW()
			WHERE team_id = $7
			RETURNING updated_at`

		err = tx.QueryRowContext(ctx, update,
			subs,
			members,
			team.MentorID,
			team.MentorAssignedAt,
			team.LastActivity,
			team.IsActive,
			team.TeamID,
		).Scan(&team.UpdatedAt)
		if err != nil {
			return r.handleTeamError(err)
		}

		result = team
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpsertMany импортирует команды одной транзакцией. Существующие команды получают новые
// название, категорию и участников; заявки, ментор и рейтинг сохраняются.
func (r *postgresTeamRepository) UpsertMany(ctx context.Context, teams []*models.Team) (int, int, error) {
	created, updated := 0, 0

	query := `
		INSERT INTO teams (team_id, team_name, category, members, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (team_id) DO UPDATE SET
			team_name = EXCLUDED.team_name,
			category = EXCLUDED.category,
			members = EXCLUDED.members,
			updated_at = NOW()
		RETURNING (xmax = 0) AS inserted`

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, team := range teams {
			_, members, err := marshalTeamDocuments(team)
			if err != nil {
				return err
			}

			var inserted bool
			err = tx.QueryRowContext(ctx, query, team.TeamID, team.TeamName, team.Category, members).Scan(&inserted)
			if err != nil {
				if mapped := r.handleTeamError(err); !errors.Is(mapped, err) {
					return fmt.Errorf("team %s: %w", team.TeamID, mapped)
				}
				return fmt.Errorf("failed to upsert team %s: %w", team.TeamID, err)
			}
			if inserted {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return created, updated, nil
}

func (r *postgresTeamRepository) CountByMentor(ctx context.Context, exec SQLExecutor, mentorID string) (int, error) {
	if exec == nil {
		exec = r.db
	}
	var count int
	err := exec.QueryRowContext(ctx, `SELECT COUNT(*) FROM teams WHERE mentor_id = $1`, mentorID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count teams for mentor %s: %w", mentorID, err)
	}
	return count, nil
}

func (r *postgresTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	code, constraint, ok := pqConstraint(err)
	if ok {
		switch code {
		case pqUniqueViolation:
			switch constraint {
			case "teams_pkey":
				return ErrTeamIDConflict
			case "teams_team_name_key":
				return ErrTeamNameConflict
			}
		case pqForeignKeyViolation:
			if constraint == "teams_mentor_id_fkey" {
				return ErrTeamMentorInvalid
			}
		}
	}
	return err
}

func scanTeam(row rowScanner) (*models.Team, error) {
	var team models.Team
	var mentorID sql.NullString
	var assignedAt sql.NullTime
	var subs, members []byte

	err := row.Scan(
		&team.TeamID,
		&team.TeamName,
		&team.Category,
		&mentorID,
		&assignedAt,
		&subs,
		&members,
		&team.Rank.Overall,
		&team.Rank.Category,
		&team.LastActivity,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if mentorID.Valid {
		team.MentorID = &mentorID.String
	}
	if assignedAt.Valid {
		t := assignedAt.Time
		team.MentorAssignedAt = &t
	}
	if len(subs) > 0 {
		if err := json.Unmarshal(subs, &team.Submissions); err != nil {
			return nil, fmt.Errorf("failed to decode submissions of team %s: %w", team.TeamID, err)
		}
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &team.Members); err != nil {
			return nil, fmt.Errorf("failed to decode members of team %s: %w", team.TeamID, err)
		}
	}
	if team.Submissions == nil {
		team.Submissions = []models.Submission{}
	}
	if team.Members == nil {
		team.Members = []models.TeamMember{}
	}
	return &team, nil
}

// JSONB передаём строкой: lib/pq кодирует []byte как bytea.
func marshalTeamDocuments(team *models.Team) (string, string, error) {
	submissions := team.Submissions
	if submissions == nil {
		submissions = []models.Submission{}
	}
	members := team.Members
	if members == nil {
		members = []models.TeamMember{}
	}

	subs, err := json.Marshal(submissions)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode submissions: %w", err)
	}
	mems, err := json.Marshal(members)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode members: %w", err)
	}
	return string(subs), string(mems), nil
}
