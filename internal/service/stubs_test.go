package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/noah-isme/stage-docs-api/internal/models"
	"github.com/noah-isme/stage-docs-api/pkg/document"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
)

var (
	testStart = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)
	testNow   = time.Date(2025, 7, 14, 9, 30, 0, 0, time.UTC)
)

type assignmentStub struct {
	rows      map[string]models.Assignment
	err       error
	lastOwner string
	lastList  models.AssignmentFilter
}

func newAssignmentStub(rows ...models.Assignment) *assignmentStub {
	s := &assignmentStub{rows: map[string]models.Assignment{}}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *assignmentStub) FindByID(_ context.Context, id, ownerID string) (*models.Assignment, error) {
	s.lastOwner = ownerID
	if s.err != nil {
		return nil, s.err
	}
	row, ok := s.rows[id]
	if !ok || (ownerID != "" && row.UserID != ownerID) {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (s *assignmentStub) List(_ context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	s.lastList = filter
	var out []models.Assignment
	for _, r := range s.rows {
		if filter.UserID == "" || r.UserID == filter.UserID {
			out = append(out, r)
		}
	}
	return out, len(out), s.err
}

type evaluationStub struct {
	rows map[string]models.Evaluation
}

func newEvaluationStub(rows ...models.Evaluation) *evaluationStub {
	s := &evaluationStub{rows: map[string]models.Evaluation{}}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *evaluationStub) FindByID(_ context.Context, id string) (*models.Evaluation, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &row, nil
}

func (s *evaluationStub) List(_ context.Context, _ models.EvaluationFilter) ([]models.Evaluation, int, error) {
	out := make([]models.Evaluation, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r)
	}
	return out, len(out), nil
}

// fakeGenerator validates like the real generator but returns a fixed payload.
type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	now   time.Time
	real  *document.Generator
}

func newFakeGenerator() *fakeGenerator {
	g := &fakeGenerator{now: testNow}
	g.real = document.NewGenerator(document.Options{Now: g.Now})
	return g
}

func (g *fakeGenerator) Now() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now
}

func (g *fakeGenerator) advance(d time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.now = g.now.Add(d)
}

func (g *fakeGenerator) Generate(_ context.Context, subject document.Subject) (*document.Artifact, error) {
	g.mu.Lock()
	g.calls++
	g.mu.Unlock()
	if err := g.real.Validate(subject); err != nil {
		return nil, err
	}
	if g.err != nil {
		return nil, g.err
	}
	issued := g.Now()
	return &document.Artifact{
		Filename:    document.Filename(subject.Kind().FilePrefix, subject.FullName(), issued),
		ContentType: document.ContentType,
		Content:     []byte("%PDF-1.3 " + subject.Reference() + " " + document.FormatDate(issued)),
	}, nil
}

func (g *fakeGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// memoryCache stores values as-is, keyed by string.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]RenderedDocument
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]RenderedDocument{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	entry, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*RenderedDocument)) = entry
	return nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = *(value.(*RenderedDocument))
	return nil
}

func (m *memoryCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	return keys
}

func sampleAssignmentRow() models.Assignment {
	return models.Assignment{
		ID:         "a-1",
		Student:    "Hery Andrianina",
		Supervisor: "Mme Rasoa",
		Company:    "Telma",
		Department: "Réseaux",
		Status:     "assigned",
		StartDate:  testStart,
		EndDate:    testEnd,
		UserID:     "user-1",
		UpdatedAt:  testStart,
	}
}

func sampleEvaluationRow() models.Evaluation {
	first, last, comment := "Jean", "Rakoto", "Très bon travail"
	internID := "in-1"
	start, end := testStart, testEnd
	return models.Evaluation{
		ID:        "ev-1",
		InternID:  &internID,
		Grade:     17,
		Comment:   &comment,
		FirstName: &first,
		LastName:  &last,
		StartDate: &start,
		EndDate:   &end,
		UpdatedAt: testStart,
	}
}

func userClaims(id string) *models.JWTClaims {
	claims := &models.JWTClaims{Role: models.RoleAuthenticated}
	claims.Subject = id
	return claims
}

func serviceClaims() *models.JWTClaims {
	return &models.JWTClaims{Role: models.RoleServiceRole}
}
