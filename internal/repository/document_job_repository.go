package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/stage-docs-api/internal/models"
)

const documentJobColumns = `id, kind, params, status, progress, items, result_url, manifest_url, created_by, created_at, finished_at, error_message`

// DocumentJobRepository persists batch render jobs.
type DocumentJobRepository struct {
	db *sqlx.DB
}

// NewDocumentJobRepository constructs the repository.
func NewDocumentJobRepository(db *sqlx.DB) *DocumentJobRepository {
	return &DocumentJobRepository{db: db}
}

// Create inserts a job, filling id, status and creation time when unset.
func (r *DocumentJobRepository) Create(ctx context.Context, job *models.DocumentJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.DocumentJobQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO document_jobs (id, kind, params, status, progress, items, result_url, manifest_url, created_by, created_at, finished_at, error_message)
VALUES (:id, :kind, :params, :status, :progress, :items, :result_url, :manifest_url, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create document job: %w", err)
	}
	return nil
}

// GetByID returns a job row. sql.ErrNoRows stays reachable through errors.Is.
func (r *DocumentJobRepository) GetByID(ctx context.Context, id string) (*models.DocumentJob, error) {
	query := "SELECT " + documentJobColumns + " FROM document_jobs WHERE id = $1"
	var job models.DocumentJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, fmt.Errorf("get document job: %w", err)
	}
	return &job, nil
}

// UpdateDocumentJobParams lists the mutable columns; nil fields are left alone.
type UpdateDocumentJobParams struct {
	Status       *models.DocumentJobStatus
	Progress     *int
	Items        *models.DocumentJobItems
	ResultURL    *string
	ManifestURL  *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a job row.
func (r *DocumentJobRepository) Update(ctx context.Context, id string, params UpdateDocumentJobParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Status != nil {
		add("status", *params.Status)
	}
	if params.Progress != nil {
		add("progress", *params.Progress)
	}
	if params.Items != nil {
		add("items", *params.Items)
	}
	if params.ResultURL != nil {
		add("result_url", *params.ResultURL)
	}
	if params.ManifestURL != nil {
		add("manifest_url", *params.ManifestURL)
	}
	if params.ErrorMessage != nil {
		add("error_message", *params.ErrorMessage)
	}
	if params.FinishedAt != nil {
		add("finished_at", *params.FinishedAt)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE document_jobs SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update document job: %w", err)
	}
	return nil
}

// ListQueued fetches queued jobs for recovery after a restart.
func (r *DocumentJobRepository) ListQueued(ctx context.Context, limit int) ([]models.DocumentJob, error) {
	if limit <= 0 {
		limit = 20
	}
	query := "SELECT " + documentJobColumns + " FROM document_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1"
	var jobs []models.DocumentJob
	if err := r.db.SelectContext(ctx, &jobs, query, limit); err != nil {
		return nil, fmt.Errorf("list queued document jobs: %w", err)
	}
	return jobs, nil
}

// ListFinishedBefore retrieves finished jobs older than cutoff.
func (r *DocumentJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.DocumentJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := "SELECT " + documentJobColumns + " FROM document_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2"
	var jobs []models.DocumentJob
	if err := r.db.SelectContext(ctx, &jobs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished document jobs: %w", err)
	}
	return jobs, nil
}
