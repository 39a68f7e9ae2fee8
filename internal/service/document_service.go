package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/stage-docs-api/internal/models"
	"github.com/noah-isme/stage-docs-api/pkg/document"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
)

type assignmentReader interface {
	FindByID(ctx context.Context, id, ownerID string) (*models.Assignment, error)
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error)
}

type evaluationReader interface {
	FindByID(ctx context.Context, id string) (*models.Evaluation, error)
	List(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, int, error)
}

type documentGenerator interface {
	Generate(ctx context.Context, subject document.Subject) (*document.Artifact, error)
	Now() time.Time
}

// RenderedDocument is a PDF ready to be sent or stored.
type RenderedDocument struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Content     []byte `json:"content"`
	Cached      bool   `json:"-"`
}

// DocumentService loads records and turns them into PDFs, caching renders of
// stored records.
type DocumentService struct {
	assignments assignmentReader
	evaluations evaluationReader
	generator   documentGenerator
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewDocumentService constructs a DocumentService.
func NewDocumentService(assignments assignmentReader, evaluations evaluationReader, generator documentGenerator, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		assignments: assignments,
		evaluations: evaluations,
		generator:   generator,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
	}
}

// ListAssignments returns assignments visible to the caller.
func (s *DocumentService) ListAssignments(ctx context.Context, filter models.AssignmentFilter, claims *models.JWTClaims) ([]models.Assignment, *models.Pagination, error) {
	owner, err := ownerScope(claims)
	if err != nil {
		return nil, nil, err
	}
	filter.UserID = owner
	items, total, err := s.assignments.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// ListEvaluations returns evaluations with their intern names.
func (s *DocumentService) ListEvaluations(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, *models.Pagination, error) {
	items, total, err := s.evaluations.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list evaluations")
	}
	return items, pagination(filter.Page, filter.PageSize, total), nil
}

// AssignmentOrder renders the order for a stored assignment. Regular users only
// reach their own rows; service tokens reach all of them.
func (s *DocumentService) AssignmentOrder(ctx context.Context, id string, claims *models.JWTClaims) (*RenderedDocument, error) {
	owner, err := ownerScope(claims)
	if err != nil {
		return nil, err
	}
	assignment, err := s.assignments.FindByID(ctx, id, owner)
	if err != nil {
		return nil, lookupError(err, "assignment")
	}
	return s.renderCached(ctx, assignment.Subject(), assignment.UpdatedAt)
}

// TrainingCertificate renders the certificate for a stored evaluation.
func (s *DocumentService) TrainingCertificate(ctx context.Context, id string) (*RenderedDocument, error) {
	evaluation, err := s.evaluations.FindByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "evaluation")
	}
	return s.renderCached(ctx, evaluation.Subject(), evaluation.UpdatedAt)
}

// RenderRecord renders a stored record by document kind, as the batch worker does.
func (s *DocumentService) RenderRecord(ctx context.Context, kind, id, ownerID string) (*RenderedDocument, error) {
	switch kind {
	case document.KindAssignmentOrder:
		assignment, err := s.assignments.FindByID(ctx, id, ownerID)
		if err != nil {
			return nil, lookupError(err, "assignment")
		}
		return s.renderCached(ctx, assignment.Subject(), assignment.UpdatedAt)
	case document.KindTrainingCertificate:
		return s.TrainingCertificate(ctx, id)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown document kind")
	}
}

// Render produces a PDF from an unsaved subject. Such renders are not cached.
func (s *DocumentService) Render(ctx context.Context, subject document.Subject) (*RenderedDocument, error) {
	return s.render(ctx, subject)
}

func (s *DocumentService) renderCached(ctx context.Context, subject document.Subject, updatedAt time.Time) (*RenderedDocument, error) {
	key := DocumentCacheKey(subject.Kind().Name, subject.Reference(), updatedAt, s.generator.Now())

	var cached RenderedDocument
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		cached.Cached = true
		return &cached, nil
	}

	doc, err := s.render(ctx, subject)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, doc, 0); err != nil {
		s.logger.Debug("document not cached", zap.String("key", key), zap.Error(err))
	}
	return doc, nil
}

func (s *DocumentService) render(ctx context.Context, subject document.Subject) (*RenderedDocument, error) {
	kind := subject.Kind().Name
	start := time.Now()
	artifact, err := s.generator.Generate(ctx, subject)
	if err != nil {
		if errors.Is(err, document.ErrInvalidSubject) {
			s.metrics.RecordRenderFailure(kind, "invalid")
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidSubject.Code, appErrors.ErrInvalidSubject.Status, err.Error())
		}
		s.metrics.RecordRenderFailure(kind, "render")
		s.logger.Error("document render failed", zap.String("kind", kind), zap.String("reference", subject.Reference()), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrRenderFailed.Code, appErrors.ErrRenderFailed.Status, appErrors.ErrRenderFailed.Message)
	}
	s.metrics.ObserveRender(kind, time.Since(start))
	return &RenderedDocument{
		Filename:    artifact.Filename,
		ContentType: artifact.ContentType,
		Content:     artifact.Content,
	}, nil
}

// ownerScope returns the user_id filter for claims; service tokens see every row.
func ownerScope(claims *models.JWTClaims) (string, error) {
	if claims.IsService() {
		return "", nil
	}
	if id := claims.UserID(); id != "" {
		return id, nil
	}
	return "", appErrors.ErrUnauthorized
}

func lookupError(err error, what string) *appErrors.Error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, what+" not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load "+what)
}

func pagination(page, size, total int) *models.Pagination {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
