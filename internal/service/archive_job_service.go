package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/noah-isme/stage-docs-api/internal/dto"
	"github.com/noah-isme/stage-docs-api/internal/models"
	"github.com/noah-isme/stage-docs-api/internal/repository"
	"github.com/noah-isme/stage-docs-api/pkg/document"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
	"github.com/noah-isme/stage-docs-api/pkg/export"
	"github.com/noah-isme/stage-docs-api/pkg/jobs"
)

type documentJobStore interface {
	Create(ctx context.Context, job *models.DocumentJob) error
	GetByID(ctx context.Context, id string) (*models.DocumentJob, error)
	Update(ctx context.Context, id string, params repository.UpdateDocumentJobParams) error
	ListQueued(ctx context.Context, limit int) ([]models.DocumentJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.DocumentJob, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type archiveStorage interface {
	Save(name string, data []byte) (string, error)
	Read(name string) ([]byte, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(id, payload string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (id, payload string, expiresAt time.Time, err error)
}

type recordRenderer interface {
	RenderRecord(ctx context.Context, kind, id, ownerID string) (*RenderedDocument, error)
}

// ArchiveJobConfig governs batch size, download links and cleanup.
type ArchiveJobConfig struct {
	MaxBatchSize    int
	DownloadURL     string
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ArchiveJobService manages batch render jobs from submission to download.
type ArchiveJobService struct {
	repo    documentJobStore
	queue   jobDispatcher
	storage archiveStorage
	signer  downloadSigner
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ArchiveJobConfig
}

// NewArchiveJobService constructs the service.
func NewArchiveJobService(repo documentJobStore, queue jobDispatcher, storage archiveStorage, signer downloadSigner, metrics *MetricsService, logger *zap.Logger, cfg ArchiveJobConfig) *ArchiveJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 100
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ArchiveJobService{repo: repo, queue: queue, storage: storage, signer: signer, metrics: metrics, logger: logger, cfg: cfg}
}

// SetQueue attaches the dispatcher once the worker queue exists.
func (s *ArchiveJobService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// CreateJob persists a batch and enqueues it.
func (s *ArchiveJobService) CreateJob(ctx context.Context, req dto.DocumentJobRequest, claims *models.JWTClaims) (*dto.DocumentJobResponse, error) {
	if _, ok := document.KindByName(req.Kind); !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported document kind")
	}
	ids := uniqueIDs(req.IDs)
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ids is required")
	}
	if len(ids) > s.cfg.MaxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d documents per job", s.cfg.MaxBatchSize))
	}
	creator, err := jobCreator(claims)
	if err != nil {
		return nil, err
	}

	job := &models.DocumentJob{
		Kind:      req.Kind,
		Params:    models.DocumentJobParams{IDs: ids},
		Status:    models.DocumentJobQueued,
		CreatedBy: creator,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: job.Kind}); err != nil {
		s.Fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue document job")
	}
	return dto.NewDocumentJobResponse(job), nil
}

// GetStatus returns a job to its creator or to a service token.
func (s *ArchiveJobService) GetStatus(ctx context.Context, id string, claims *models.JWTClaims) (*dto.DocumentJobResponse, error) {
	job, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !claims.IsService() && job.CreatedBy != claims.UserID() {
		return nil, appErrors.ErrNotFound
	}
	return dto.NewDocumentJobResponse(job), nil
}

// ResolveDownload checks a download token and reads the stored file.
func (s *ArchiveJobService) ResolveDownload(ctx context.Context, token string) (*RenderedDocument, error) {
	jobID, name, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != models.DocumentJobFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "documents not ready")
	}
	if !jobIssued(job, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	data, err := s.storage.Read(name)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrGone, "document file no longer available")
	}
	return &RenderedDocument{
		Filename:    path.Base(name),
		ContentType: mimetype.Detect(data).String(),
		Content:     data,
	}, nil
}

// Fail marks a job as failed for good. It is the queue's dead-job callback.
func (s *ArchiveJobService) Fail(jobID string, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	status := models.DocumentJobFailed
	progress := 100
	msg := cause.Error()
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, jobID, repository.UpdateDocumentJobParams{
		Status:       &status,
		Progress:     &progress,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark document job failed", zap.String("job_id", jobID), zap.Error(err))
	}
	s.metrics.RecordJob(string(status))
}

// RecoverPendingJobs replays jobs left QUEUED by a previous process.
func (s *ArchiveJobService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx, 50)
	if err != nil {
		s.logger.Warn("failed to recover queued document jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Kind: job.Kind}); err != nil {
			s.logger.Warn("failed to requeue pending document job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered queued document jobs", zap.Int("count", len(pending)))
	}
}

// StartCleanup purges expired archives every CleanupInterval until ctx ends.
func (s *ArchiveJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.cleanupExpired(ctx)
			}
		}
	}()
}

func (s *ArchiveJobService) cleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	finished, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
	if err != nil {
		s.logger.Warn("cleanup list failed", zap.Error(err))
		return
	}
	for _, job := range finished {
		for _, url := range jobURLs(&job) {
			_, name, _, err := s.signer.Parse(extractToken(url), true)
			if err != nil {
				continue
			}
			if err := s.storage.Delete(name); err != nil {
				s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
	}
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("archive cleanup failed", zap.Error(err))
		return
	}
	if len(removed) > 0 {
		s.logger.Info("expired archives removed", zap.Int("files", len(removed)))
	}
}

func (s *ArchiveJobService) load(ctx context.Context, id string) (*models.DocumentJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document job")
	}
	return job, nil
}

func (s *ArchiveJobService) downloadURL(jobID, name string) (string, error) {
	token, _, err := s.signer.Generate(jobID, name)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s.cfg.DownloadURL, "/") + "/" + token, nil
}

func jobCreator(claims *models.JWTClaims) (string, error) {
	if claims.IsService() {
		return models.ServiceActor, nil
	}
	if id := claims.UserID(); id != "" {
		return id, nil
	}
	return "", appErrors.ErrUnauthorized
}

func jobIssued(job *models.DocumentJob, token string) bool {
	for _, url := range jobURLs(job) {
		if extractToken(url) == token {
			return true
		}
	}
	return false
}

func jobURLs(job *models.DocumentJob) []string {
	urls := make([]string, 0, len(job.Items)+2)
	for _, u := range []*string{job.ResultURL, job.ManifestURL} {
		if u != nil && *u != "" {
			urls = append(urls, *u)
		}
	}
	for _, item := range job.Items {
		if item.URL != "" {
			urls = append(urls, item.URL)
		}
	}
	return urls
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func extractToken(url string) string {
	return url[strings.LastIndex(url, "/")+1:]
}

// DocumentJobWorker renders the records of a queued job and stores the files.
type DocumentJobWorker struct {
	jobs     *ArchiveJobService
	renderer recordRenderer
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
}

// NewDocumentJobWorker constructs a worker.
func NewDocumentJobWorker(jobs *ArchiveJobService, renderer recordRenderer, logger *zap.Logger) *DocumentJobWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentJobWorker{
		jobs:     jobs,
		renderer: renderer,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(3, 1, 5, 6),
		logger:   logger,
	}
}

// Handle processes one queue job. Records that cannot be rendered are reported
// per item; only storage or database trouble fails the attempt.
func (w *DocumentJobWorker) Handle(ctx context.Context, job jobs.Job) error {
	repo := w.jobs.repo
	record, err := repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	if record.Status == models.DocumentJobFinished || record.Status == models.DocumentJobFailed {
		return nil
	}
	processing := models.DocumentJobProcessing
	progress := 0
	if err := repo.Update(ctx, job.ID, repository.UpdateDocumentJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	owner := record.CreatedBy
	if owner == models.ServiceActor {
		owner = ""
	}
	ids := record.Params.IDs
	items := make(models.DocumentJobItems, 0, len(ids))
	entries := make([]export.ManifestEntry, 0, len(ids))
	rendered := 0

	for i, id := range ids {
		item := models.DocumentJobItem{RecordID: id}
		doc, err := w.renderer.RenderRecord(ctx, record.Kind, id, owner)
		switch {
		case ctx.Err() != nil:
			return ctx.Err()
		case err != nil:
			appErr := appErrors.FromError(err)
			if appErr.Status >= 500 {
				return err
			}
			item.Error = appErr.Message
		default:
			if item.URL, err = w.saveAndSign(job.ID, path.Join(id, doc.Filename), doc.Content); err != nil {
				return err
			}
			item.Filename = doc.Filename
			rendered++
		}
		items = append(items, item)
		entries = append(entries, export.ManifestEntry{RecordID: id, Filename: item.Filename, Error: item.Error})

		progress = (i + 1) * 90 / len(ids)
		if err := repo.Update(ctx, job.ID, repository.UpdateDocumentJobParams{Progress: &progress, Items: &items}); err != nil {
			w.logger.Warn("failed to record job progress", zap.String("job_id", job.ID), zap.Error(err))
		}
	}

	resultURL, manifestURL, err := w.storeManifest(job.ID, record.Kind, entries)
	if err != nil {
		return err
	}

	status := models.DocumentJobFinished
	msg := ""
	if rendered == 0 {
		status = models.DocumentJobFailed
		msg = "no document could be rendered"
	}
	progress = 100
	now := time.Now().UTC()
	if err := repo.Update(ctx, job.ID, repository.UpdateDocumentJobParams{
		Status:       &status,
		Progress:     &progress,
		Items:        &items,
		ResultURL:    &resultURL,
		ManifestURL:  &manifestURL,
		ErrorMessage: &msg,
		FinishedAt:   &now,
	}); err != nil {
		return err
	}
	w.jobs.metrics.RecordJob(string(status))
	w.logger.Info("document job done",
		zap.String("job_id", job.ID),
		zap.String("status", string(status)),
		zap.Int("rendered", rendered),
		zap.Int("total", len(ids)),
	)
	return nil
}

// storeManifest saves the PDF and CSV summaries and returns their links.
func (w *DocumentJobWorker) storeManifest(jobID, kind string, entries []export.ManifestEntry) (pdfURL, csvURL string, err error) {
	data := export.ManifestDataset(entries)
	title := kind
	if k, ok := document.KindByName(kind); ok {
		title = k.Title
	}
	pdfBytes, err := w.pdf.Render(data, title)
	if err != nil {
		return "", "", err
	}
	if pdfURL, err = w.saveAndSign(jobID, "manifest.pdf", pdfBytes); err != nil {
		return "", "", err
	}

	csvBytes, err := w.csv.Render(data)
	if err != nil {
		return "", "", err
	}
	if csvURL, err = w.saveAndSign(jobID, "manifest.csv", csvBytes); err != nil {
		return "", "", err
	}
	return pdfURL, csvURL, nil
}

func (w *DocumentJobWorker) saveAndSign(jobID, name string, data []byte) (string, error) {
	stored, err := w.jobs.storage.Save(path.Join(jobID, name), data)
	if err != nil {
		return "", err
	}
	return w.jobs.downloadURL(jobID, stored)
}
