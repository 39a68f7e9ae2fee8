package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/stage-docs-api/internal/dto"
	"github.com/noah-isme/stage-docs-api/internal/middleware"
	"github.com/noah-isme/stage-docs-api/internal/models"
	"github.com/noah-isme/stage-docs-api/internal/service"
	"github.com/noah-isme/stage-docs-api/pkg/document"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
	"github.com/noah-isme/stage-docs-api/pkg/response"
)

// CacheHeader tells clients whether a PDF came from the render cache.
const CacheHeader = "X-Document-Cache"

type documentService interface {
	ListAssignments(ctx context.Context, filter models.AssignmentFilter, claims *models.JWTClaims) ([]models.Assignment, *models.Pagination, error)
	ListEvaluations(ctx context.Context, filter models.EvaluationFilter) ([]models.Evaluation, *models.Pagination, error)
	AssignmentOrder(ctx context.Context, id string, claims *models.JWTClaims) (*service.RenderedDocument, error)
	TrainingCertificate(ctx context.Context, id string) (*service.RenderedDocument, error)
	Render(ctx context.Context, subject document.Subject) (*service.RenderedDocument, error)
}

type sealVerifier interface {
	Verify(ctx context.Context, token string) (*dto.SealVerification, error)
}

// DocumentHandler serves PDF renders and seal checks.
type DocumentHandler struct {
	documents documentService
	seals     sealVerifier
}

// NewDocumentHandler constructs the handler.
func NewDocumentHandler(documents documentService, seals sealVerifier) *DocumentHandler {
	return &DocumentHandler{documents: documents, seals: seals}
}

// ListAssignments godoc
// @Summary List assignments of the caller
// @Tags Assignments
// @Produce json
// @Param status query string false "pending, assigned or completed"
// @Param search query string false "Student or company"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *DocumentHandler) ListAssignments(c *gin.Context) {
	filter := models.AssignmentFilter{
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}
	items, page, err := h.documents.ListAssignments(c.Request.Context(), filter, middleware.CurrentClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, page)
}

// ListEvaluations godoc
// @Summary List evaluations
// @Tags Evaluations
// @Produce json
// @Param internId query string false "Intern ID"
// @Param minGrade query int false "Lowest grade"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /evaluations [get]
func (h *DocumentHandler) ListEvaluations(c *gin.Context) {
	filter := models.EvaluationFilter{
		InternID: c.Query("internId"),
		Page:     queryInt(c, "page"),
		PageSize: queryInt(c, "pageSize"),
	}
	if raw := c.Query("minGrade"); raw != "" {
		grade, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "minGrade must be an integer"))
			return
		}
		filter.MinGrade = &grade
	}
	items, page, err := h.documents.ListEvaluations(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, page)
}

// AssignmentOrder godoc
// @Summary Download the assignment order of a stored assignment
// @Tags Documents
// @Produce application/pdf
// @Param id path string true "Assignment ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /assignments/{id}/order.pdf [get]
func (h *DocumentHandler) AssignmentOrder(c *gin.Context) {
	doc, err := h.documents.AssignmentOrder(c.Request.Context(), c.Param("id"), middleware.CurrentClaims(c))
	sendDocument(c, doc, err)
}

// TrainingCertificate godoc
// @Summary Download the training certificate of a stored evaluation
// @Tags Documents
// @Produce application/pdf
// @Param id path string true "Evaluation ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /evaluations/{id}/certificate.pdf [get]
func (h *DocumentHandler) TrainingCertificate(c *gin.Context) {
	doc, err := h.documents.TrainingCertificate(c.Request.Context(), c.Param("id"))
	sendDocument(c, doc, err)
}

// RenderAssignmentOrder godoc
// @Summary Render an assignment order from form data
// @Tags Documents
// @Accept json
// @Produce application/pdf
// @Param payload body dto.AssignmentOrderRequest true "Assignment"
// @Success 200 {file} binary
// @Failure 422 {object} response.Envelope
// @Router /documents/assignment-order [post]
func (h *DocumentHandler) RenderAssignmentOrder(c *gin.Context) {
	var req dto.AssignmentOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload"))
		return
	}
	doc, err := h.documents.Render(c.Request.Context(), req.Subject())
	sendDocument(c, doc, err)
}

// RenderCertificate godoc
// @Summary Render a training certificate from form data
// @Tags Documents
// @Accept json
// @Produce application/pdf
// @Param payload body dto.CertificateRequest true "Evaluation"
// @Success 200 {file} binary
// @Failure 422 {object} response.Envelope
// @Router /documents/certificate [post]
func (h *DocumentHandler) RenderCertificate(c *gin.Context) {
	var req dto.CertificateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certificate payload"))
		return
	}
	doc, err := h.documents.Render(c.Request.Context(), req.Subject())
	sendDocument(c, doc, err)
}

// VerifySeal godoc
// @Summary Check the seal printed on a document
// @Tags Documents
// @Produce json
// @Param token path string true "Seal token"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Router /documents/verify/{token} [get]
func (h *DocumentHandler) VerifySeal(c *gin.Context) {
	result, err := h.seals.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func sendDocument(c *gin.Context, doc *service.RenderedDocument, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if doc.Cached {
		c.Header(CacheHeader, "HIT")
	} else {
		c.Header(CacheHeader, "MISS")
	}
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Content)
}

func queryInt(c *gin.Context, key string) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return v
}
