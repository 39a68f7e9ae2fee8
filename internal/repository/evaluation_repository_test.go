package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stage-docs-api/internal/models"
)

var evaluationRowColumns = []string{"id", "intern_id", "grade", "comment", "created_at", "updated_at", "first_name", "last_name", "start_date", "end_date"}

func TestEvaluationRepositoryFindByIDJoinsIntern(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	start := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(evaluationRowColumns).
		AddRow("ev-1", "in-1", 17, "Très bon travail", start, start, "Jean", "Rakoto", start, end)
	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN interns i ON i.id = e.intern_id WHERE e.id = $1")).
		WithArgs("ev-1").
		WillReturnRows(rows)

	evaluation, err := repo.FindByID(context.Background(), "ev-1")
	require.NoError(t, err)
	subject := evaluation.Subject()
	assert.Equal(t, "Jean", subject.FirstName)
	assert.Equal(t, "Rakoto", subject.LastName)
	assert.Equal(t, 17, subject.Grade)
	assert.Equal(t, end, subject.EndDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryFindByIDWithoutIntern(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(evaluationRowColumns).
		AddRow("ev-2", nil, 11, nil, now, now, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.id = $1")).
		WithArgs("ev-2").
		WillReturnRows(rows)

	evaluation, err := repo.FindByID(context.Background(), "ev-2")
	require.NoError(t, err)
	assert.Nil(t, evaluation.InternID)
	assert.Empty(t, evaluation.Subject().FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEvaluationRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEvaluationRepository(db)

	minGrade := 14
	now := time.Now()
	rows := sqlmock.NewRows(evaluationRowColumns).
		AddRow("ev-1", "in-1", 17, nil, now, now, "Jean", "Rakoto", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND e.intern_id = $1 AND e.grade >= $2 ORDER BY e.created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("in-1", 14).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM evaluations e WHERE 1=1")).
		WithArgs("in-1", 14).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.EvaluationFilter{InternID: "in-1", MinGrade: &minGrade})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
