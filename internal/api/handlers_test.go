package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcrawl/shopcrawl/internal/sites"
)

func newTestHandlers() *Handlers {
	return NewHandlers(nil, sites.Default(), slog.Default())
}

func TestCreateJobRejectsInvalidBody(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.CreateJob(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateJobRejectsEmptyQuery(t *testing.T) {
	h := newTestHandlers()

	body := `{"site":"flipkart","query":"   "}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateJob(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "query is required")
}

func TestCreateJobRejectsUnknownSite(t *testing.T) {
	h := newTestHandlers()

	body := `{"site":"ebay","query":"shoes"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.CreateJob(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown site")
}

func TestListSitesReturnsRegistry(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sites", nil)
	rec := httptest.NewRecorder()
	h.ListSites(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var out []SiteInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, sites.Default().Len())
	assert.Equal(t, "flipkart", out[0].ID)
}

func TestHealth(t *testing.T) {
	h := newTestHandlers()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
