package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/stage-docs-api/internal/dto"
	"github.com/noah-isme/stage-docs-api/pkg/document"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
)

type sealSigner interface {
	Sign(id, payload string, expiresAt time.Time) (string, error)
	Parse(token string, allowExpired bool) (id, payload string, expiresAt time.Time, err error)
}

// SealService issues and checks the verification seal printed as a QR code
// on each document rendered from a stored record.
type SealService struct {
	signer      sealSigner
	assignments assignmentReader
	evaluations evaluationReader
	verifyURL   string
	logger      *zap.Logger
}

// NewSealService constructs a SealService. verifyURL is the absolute URL the
// token is appended to.
func NewSealService(signer sealSigner, assignments assignmentReader, evaluations evaluationReader, verifyURL string, logger *zap.Logger) *SealService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SealService{
		signer:      signer,
		assignments: assignments,
		evaluations: evaluations,
		verifyURL:   strings.TrimRight(verifyURL, "/"),
		logger:      logger,
	}
}

// Content returns the URL encoded in the QR code. It matches document.SealFunc.
func (s *SealService) Content(kind *document.Kind, reference string, year int) (string, error) {
	if reference == "" {
		return "", errors.New("document has no stored record")
	}
	token, err := s.signer.Sign(kind.Name+":"+reference, strconv.Itoa(year), time.Time{})
	if err != nil {
		return "", fmt.Errorf("sign seal: %w", err)
	}
	return s.verifyURL + "/" + token, nil
}

// Verify checks a seal token and describes the record it was issued for.
func (s *SealService) Verify(ctx context.Context, token string) (*dto.SealVerification, error) {
	id, payload, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.ErrInvalidSeal
	}
	kindName, reference, ok := strings.Cut(id, ":")
	kind, known := document.KindByName(kindName)
	year, yearErr := strconv.Atoi(payload)
	if !ok || !known || reference == "" || yearErr != nil {
		return nil, appErrors.ErrInvalidSeal
	}

	result := &dto.SealVerification{
		Valid:     true,
		Kind:      kind.Name,
		Title:     kind.Title,
		Reference: reference,
		Year:      year,
	}
	switch kind.Name {
	case document.KindAssignmentOrder:
		assignment, err := s.assignments.FindByID(ctx, reference, "")
		if err != nil {
			return nil, s.recordError(err)
		}
		result.Holder = assignment.Student
		result.Summary = fmt.Sprintf("%s, %s", assignment.Company, assignment.Department)
	case document.KindTrainingCertificate:
		evaluation, err := s.evaluations.FindByID(ctx, reference)
		if err != nil {
			return nil, s.recordError(err)
		}
		subject := evaluation.Subject()
		result.Holder = subject.FullName()
		result.Summary = fmt.Sprintf("%d/20 (%s)", subject.Grade, document.GradeLabel(subject.Grade))
	}
	return result, nil
}

func (s *SealService) recordError(err error) error {
	appErr := lookupError(err, "record")
	if appErr.Status == appErrors.ErrNotFound.Status {
		// The seal was genuine but the record has since been deleted.
		return appErrors.Clone(appErrors.ErrGone, "document record no longer exists")
	}
	s.logger.Warn("seal lookup failed", zap.Error(err))
	return appErr
}
