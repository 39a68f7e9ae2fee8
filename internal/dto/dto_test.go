package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateAcceptsDayAndTimestamp(t *testing.T) {
	var req CertificateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"firstName":"Jean","startDate":"2025-01-06","endDate":"2025-06-27T00:00:00Z","grade":17}`), &req))

	subject := req.Subject()
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), subject.StartDate)
	assert.Equal(t, time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC), subject.EndDate)
	assert.Equal(t, 17, subject.Grade)
}

func TestDateRejectsGarbageAndKeepsEmptyZero(t *testing.T) {
	var req AssignmentOrderRequest
	require.Error(t, json.Unmarshal([]byte(`{"startDate":"06/01/2025"}`), &req))

	req = AssignmentOrderRequest{}
	require.NoError(t, json.Unmarshal([]byte(`{"startDate":"","endDate":null}`), &req))
	assert.True(t, req.Subject().StartDate.IsZero())
	assert.Empty(t, req.Subject().ID)

	out, err := json.Marshal(Date{Time: time.Date(2025, 7, 14, 10, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, `"2025-07-14"`, string(out))
}
