package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/stage-docs-api/pkg/document"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
	"github.com/noah-isme/stage-docs-api/pkg/storage"
)

const verifyBase = "https://stages.gov.mg/api/v1/documents/verify"

func newTestSealService() *SealService {
	signer := storage.NewSignedURLSigner("seal-secret", time.Hour)
	return NewSealService(signer, newAssignmentStub(sampleAssignmentRow()), newEvaluationStub(sampleEvaluationRow()), verifyBase+"/", nil)
}

func sealToken(t *testing.T, svc *SealService, kind *document.Kind, ref string) string {
	t.Helper()
	url, err := svc.Content(kind, ref, 2025)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, verifyBase+"/"))
	return strings.TrimPrefix(url, verifyBase+"/")
}

func TestSealRoundTripForCertificate(t *testing.T) {
	svc := newTestSealService()
	token := sealToken(t, svc, document.TrainingCertificate, "ev-1")

	result, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "Jean Rakoto", result.Holder)
	assert.Equal(t, 2025, result.Year)
	assert.Equal(t, "17/20 (TRÈS BIEN)", result.Summary)
}

func TestSealRoundTripForAssignment(t *testing.T) {
	svc := newTestSealService()
	token := sealToken(t, svc, document.AssignmentOrder, "a-1")

	result, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "Hery Andrianina", result.Holder)
	assert.Equal(t, "Telma, Réseaux", result.Summary)
}

func TestSealWithoutReferenceIsRefused(t *testing.T) {
	_, err := newTestSealService().Content(document.AssignmentOrder, "", 2025)
	require.Error(t, err)
}

func TestSealVerifyFailures(t *testing.T) {
	svc := newTestSealService()
	ctx := context.Background()

	_, err := svc.Verify(ctx, "forged.0.MjAyNQ.deadbeef")
	assert.Equal(t, appErrors.ErrInvalidSeal.Code, appErrors.FromError(err).Code)

	other := NewSealService(storage.NewSignedURLSigner("other-secret", time.Hour), nil, nil, verifyBase, nil)
	_, err = svc.Verify(ctx, sealToken(t, other, document.TrainingCertificate, "ev-1"))
	assert.Equal(t, appErrors.ErrInvalidSeal.Code, appErrors.FromError(err).Code)

	_, err = svc.Verify(ctx, sealToken(t, svc, document.TrainingCertificate, "ev-deleted"))
	assert.Equal(t, appErrors.ErrGone.Code, appErrors.FromError(err).Code)
}
