package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/hackathon-portal/models"
)

var mentorRowColumns = []string{"mentor_id", "name", "email", "expertise", "max_teams", "created_at", "count"}

func TestMentorRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN teams t ON t.mentor_id = m.mentor_id")).
		WillReturnRows(sqlmock.NewRows(mentorRowColumns).
			AddRow("M1", "Ada", "ada@example.com", "{go,ml}", 3, now, 2).
			AddRow("M2", "Linus", "linus@example.com", "{}", 1, now, 0))

	mentors, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, mentors, 2)
	assert.Equal(t, []string{"go", "ml"}, mentors[0].Expertise)
	assert.Equal(t, 2, mentors[0].TeamCount)
	assert.True(t, mentors[0].HasCapacity())
	assert.Empty(t, mentors[1].Expertise)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepository_GetForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs("M1").
		WillReturnRows(sqlmock.NewRows(mentorRowColumns).AddRow("M1", "Ada", "ada@example.com", "{}", 2, time.Now(), 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teams WHERE mentor_id = $1")).
		WithArgs("M1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	mentor, err := repo.GetForUpdate(context.Background(), nil, "M1")
	require.NoError(t, err)
	assert.Equal(t, 2, mentor.TeamCount)
	assert.False(t, mentor.HasCapacity())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMentorRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE m.mentor_id = $1")).
		WithArgs("M404").
		WillReturnRows(sqlmock.NewRows(mentorRowColumns))

	_, err := repo.GetByID(context.Background(), "M404")
	assert.ErrorIs(t, err, ErrMentorNotFound)
}

func TestMentorRepository_CreateEmailConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgresMentorRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO mentors")).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "mentors_email_key"})

	err := repo.Create(context.Background(), &models.Mentor{MentorID: "M1", Email: "dup@example.com"})
	assert.ErrorIs(t, err, ErrMentorEmailConflict)
}
