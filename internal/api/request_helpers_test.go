package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/scry-review/internal/domain"
)

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	req := withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", id.String())
	got, err := getPathUUID(req, "id")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = getPathUUID(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", "nope"), "id")
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	_, err = getPathUUID(httptest.NewRequest(http.MethodGet, "/", nil), "id")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGetPathCode(t *testing.T) {
	t.Parallel()

	code, err := getPathCode(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "code", "abc123"))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", code)

	_, err = getPathCode(withURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "code", "TOOLONG1"))
	assert.ErrorIs(t, err, domain.ErrInvalidCode)

	_, err = getPathCode(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, domain.ErrCardCodeEmpty)
}

func TestParseLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query   string
		want    int
		wantErr bool
	}{
		{query: "", want: 25},
		{query: "?limit=3", want: 3},
		{query: "?limit=0", wantErr: true},
		{query: "?limit=-2", wantErr: true},
		{query: "?limit=abc", wantErr: true},
		{query: "?limit=10001", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseLimit(httptest.NewRequest(http.MethodGet, "/api/cards/due"+tt.query, nil), 25)
		if tt.wantErr {
			assert.Error(t, err, tt.query)
			continue
		}
		require.NoError(t, err, tt.query)
		assert.Equal(t, tt.want, got)
	}
}
