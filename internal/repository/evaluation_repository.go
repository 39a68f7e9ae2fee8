package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/stage-docs-api/internal/models"
)

const evaluationSelect = `SELECT e.id, e.intern_id, e.grade, e.comment, e.created_at, e.updated_at,
        i.first_name, i.last_name, i.start_date, i.end_date
        FROM evaluations e
        LEFT JOIN interns i ON i.id = e.intern_id`

// EvaluationRepository reads evaluations together with the evaluated intern.
type EvaluationRepository struct {
	db *sqlx.DB
}

// NewEvaluationRepository constructs an EvaluationRepository.
func NewEvaluationRepository(db *sqlx.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

// FindByID fetches one evaluation. sql.ErrNoRows is returned unwrapped.
func (r *EvaluationRepository) FindByID(ctx context.Context, id string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	if err := r.db.GetContext(ctx, &evaluation, evaluationSelect+" WHERE e.id = $1", id); err != nil {
		return nil, err
	}
	return &evaluation, nil
}

// List returns evaluations matching filter with the total count.
func (r *EvaluationRepository) List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.InternID != "" {
		conditions = append(conditions, fmt.Sprintf("e.intern_id = $%d", len(args)+1))
		args = append(args, filter.InternID)
	}
	if filter.MinGrade != nil {
		conditions = append(conditions, fmt.Sprintf("e.grade >= $%d", len(args)+1))
		args = append(args, *filter.MinGrade)
	}
	where := " WHERE " + strings.Join(conditions, " AND ")

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf("%s%s ORDER BY e.created_at DESC LIMIT %d OFFSET %d", evaluationSelect, where, size, (page-1)*size)

	var evaluations []models.Evaluation
	if err := r.db.SelectContext(ctx, &evaluations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list evaluations: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM evaluations e"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count evaluations: %w", err)
	}
	return evaluations, total, nil
}
