package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/stage-docs-api/internal/dto"
	"github.com/noah-isme/stage-docs-api/internal/middleware"
	"github.com/noah-isme/stage-docs-api/internal/models"
	"github.com/noah-isme/stage-docs-api/internal/service"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
	"github.com/noah-isme/stage-docs-api/pkg/response"
)

type documentJobService interface {
	CreateJob(ctx context.Context, req dto.DocumentJobRequest, claims *models.JWTClaims) (*dto.DocumentJobResponse, error)
	GetStatus(ctx context.Context, id string, claims *models.JWTClaims) (*dto.DocumentJobResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.RenderedDocument, error)
}

// DocumentJobHandler exposes batch rendering endpoints.
type DocumentJobHandler struct {
	jobs documentJobService
}

// NewDocumentJobHandler constructs the handler.
func NewDocumentJobHandler(jobs documentJobService) *DocumentJobHandler {
	return &DocumentJobHandler{jobs: jobs}
}

// Create godoc
// @Summary Queue a batch of documents
// @Tags Document jobs
// @Accept json
// @Produce json
// @Param payload body dto.DocumentJobRequest true "Batch"
// @Success 202 {object} response.Envelope
// @Router /documents/jobs [post]
func (h *DocumentJobHandler) Create(c *gin.Context) {
	var req dto.DocumentJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload"))
		return
	}
	job, err := h.jobs.CreateJob(c.Request.Context(), req, middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Status godoc
// @Summary Batch job progress
// @Tags Document jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /documents/jobs/{id} [get]
func (h *DocumentJobHandler) Status(c *gin.Context) {
	job, err := h.jobs.GetStatus(c.Request.Context(), c.Param("id"), middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a file produced by a batch job
// @Tags Document jobs
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documents/download/{token} [get]
func (h *DocumentJobHandler) Download(c *gin.Context) {
	file, err := h.jobs.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}
