package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stage-docs-api/internal/models"
)

var assignmentRowColumns = []string{"id", "student", "supervisor", "company", "department", "status", "start_date", "end_date", "user_id", "created_at", "updated_at"}

func TestAssignmentRepositoryFindByIDScopedToOwner(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow("a-1", "Hery Andrianina", "Mme Rasoa", "Telma", "Réseaux", "assigned", start, start.AddDate(0, 2, 0), "user-1", start, start)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE id = $1 AND user_id = $2")).
		WithArgs("a-1", "user-1").
		WillReturnRows(rows)

	assignment, err := repo.FindByID(context.Background(), "a-1", "user-1")
	require.NoError(t, err)
	assert.Equal(t, "Telma", assignment.Company)
	assert.Equal(t, "Hery Andrianina", assignment.Subject().StudentName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing", "")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(assignmentRowColumns).
		AddRow("a-1", "Hery Andrianina", "Mme Rasoa", "Telma", "Réseaux", "pending", now, now, "user-1", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM assignments WHERE 1=1 AND user_id = $1 AND status = $2 AND (LOWER(student) LIKE $3 OR LOWER(company) LIKE $3) ORDER BY created_at DESC LIMIT 20 OFFSET 20")).
		WithArgs("user-1", "pending", "%telma%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM assignments WHERE 1=1")).
		WithArgs("user-1", "pending", "%telma%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	items, total, err := repo.List(context.Background(), models.AssignmentFilter{
		UserID: "user-1",
		Status: "pending",
		Search: "Telma",
		Page:   2,
	})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 21, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
