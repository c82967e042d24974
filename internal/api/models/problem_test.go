package models_test

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqipro/aqipro/internal/api/models"
)

func TestProblemWrite(t *testing.T) {
	p := models.NewBadRequest("req_123", "lat must be a number")
	p.Instance = "/api/feed/geo/x/y"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, 400, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_123", w.Header().Get("X-Request-Id"))

	var decoded models.Problem
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	assert.Equal(t, models.ProblemTypeValidation, decoded.Type)
	assert.Equal(t, "lat must be a number", decoded.Detail)
	assert.Equal(t, "/api/feed/geo/x/y", decoded.Instance)
	assert.Equal(t, "req_123", decoded.TraceID)
}

func TestProblemConstructors(t *testing.T) {
	cases := []struct {
		problem *models.Problem
		status  int
		ptype   string
	}{
		{models.NewNotFound("t", "d"), 404, models.ProblemTypeNotFound},
		{models.NewTooManyRequests("t", "d"), 429, models.ProblemTypeTooManyRequests},
		{models.NewInternalError("t", "d"), 500, models.ProblemTypeInternal},
		{models.NewServiceUnavailable("t", "d"), 503, models.ProblemTypeUnavailable},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, tc.problem.Status)
		assert.Equal(t, tc.ptype, tc.problem.Type)
	}
}
