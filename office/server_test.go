package office

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, router *gin.Engine, path string, payload any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func getJSON(t *testing.T, router *gin.Engine, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return recorder, decoded
}

func resultsOf(t *testing.T, response map[string]any) []map[string]any {
	t.Helper()
	raw, ok := response["results"].([]any)
	require.True(t, ok, "results missing: %v", response)
	out := make([]map[string]any, len(raw))
	for i, entry := range raw {
		out[i] = entry.(map[string]any)
	}
	return out
}

func TestSearchEndpointContentHit(t *testing.T) {
	root := setupWorkspace(t)
	writeDocx(t, filepath.Join(root, "docs", "roadmap.docx"), "nebula docx launch marker")

	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/search", gin.H{"query": "nebula"})
	require.Equal(t, http.StatusOK, recorder.Code)

	assert.Equal(t, "nebula", response["query"])
	assert.EqualValues(t, 1, response["total"])
	assert.NotContains(t, response, "degraded")

	results := resultsOf(t, response)
	require.Len(t, results, 1)
	assert.Equal(t, "docs/roadmap.docx", results[0]["filePath"])
	assert.Equal(t, "roadmap.docx", results[0]["title"])

	sourceMeta := results[0]["sourceMeta"].(map[string]any)
	assert.Equal(t, "content-exact-phrase", sourceMeta["matchKind"])
	assert.Equal(t, "local-ooxml", sourceMeta["extractor"])

	snippet, ok := results[0]["snippet"].(string)
	require.True(t, ok)
	assert.Contains(t, snippet, "nebula docx launch marker")
}

func TestSearchEndpointValidation(t *testing.T) {
	setupWorkspace(t)
	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/search", gin.H{"query": "a"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_QUERY", response["errorCode"])
	assert.Equal(t, "Search query must be at least 2 characters.", response["message"])

	recorder, response = postJSON(t, router, "/search", gin.H{"query": "   "})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "Search query is required.", response["message"])

	recorder, _ = postJSON(t, router, "/search", gin.H{"query": "ab"})
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSearchEndpointDegradedOnMissingRoot(t *testing.T) {
	root := setupWorkspace(t)
	t.Setenv("WORKSPACE_FILES_ROOT", filepath.Join(root, "missing"))

	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/search", gin.H{"query": "nebula"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, response["degraded"])
	assert.EqualValues(t, 0, response["total"])

	diagnostics, ok := response["diagnostics"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, diagnostics)
	assert.Contains(t, diagnostics[0].(string), "refresh-failed:")
}

func TestSearchEndpointServesStaleIndexWhenRootVanishes(t *testing.T) {
	root := setupWorkspace(t)
	writeDocx(t, filepath.Join(root, "plan.docx"), "nebula body")

	ix := NewIndex()
	_, err := ix.Refresh(ModeFull, true)
	require.NoError(t, err)

	t.Setenv("WORKSPACE_FILES_ROOT", filepath.Join(root, "missing"))
	router := NewRouter(ix)

	recorder, response := postJSON(t, router, "/search", gin.H{"query": "nebula"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, true, response["degraded"])
	assert.EqualValues(t, 1, response["total"], "stale results remain searchable")
}

func TestSearchEndpointLimit(t *testing.T) {
	root := setupWorkspace(t)
	writeDocx(t, filepath.Join(root, "report a.docx"), "shared phrase here")
	writeDocx(t, filepath.Join(root, "report b.docx"), "shared phrase here")
	writeDocx(t, filepath.Join(root, "report c.docx"), "shared phrase here")

	router := NewRouter(NewIndex())

	_, response := postJSON(t, router, "/search", gin.H{"query": "shared phrase", "limit": 2})
	assert.EqualValues(t, 2, response["total"])
	assert.Len(t, resultsOf(t, response), 2)
}

func TestReindexEndpoint(t *testing.T) {
	root := setupWorkspace(t)
	writeDocx(t, filepath.Join(root, "a.docx"), "alpha body")

	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/reindex", gin.H{"mode": "full"})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, "full", response["mode"])
	assert.EqualValues(t, 1, response["indexedFiles"])
	assert.EqualValues(t, 1, response["scannedFiles"])
	assert.EqualValues(t, 1, response["updatedFiles"])
	assert.EqualValues(t, 0, response["failedFiles"])
	assert.Contains(t, response, "tookMs")
}

func TestReindexEndpointDefaultsToFull(t *testing.T) {
	setupWorkspace(t)
	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/reindex", gin.H{})
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "full", response["mode"])
}

func TestReindexEndpointInvalidMode(t *testing.T) {
	setupWorkspace(t)
	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/reindex", gin.H{"mode": "bogus"})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "INVALID_MODE", response["errorCode"])
}

func TestReindexEndpointMissingRoot(t *testing.T) {
	root := setupWorkspace(t)
	t.Setenv("WORKSPACE_FILES_ROOT", filepath.Join(root, "missing"))

	router := NewRouter(NewIndex())

	recorder, response := postJSON(t, router, "/reindex", gin.H{"mode": "full"})
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "WORKSPACE_ROOT_NOT_FOUND", response["errorCode"])
}

func TestHealthEndpoint(t *testing.T) {
	root := setupWorkspace(t)
	writeDocx(t, filepath.Join(root, "a.docx"), "alpha body")

	ix := NewIndex()
	router := NewRouter(ix)

	recorder, response := getJSON(t, router, "/health")
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "ok", response["status"])
	assert.Equal(t, "officeindex-adapter", response["service"])
	assert.EqualValues(t, 0, response["indexedFiles"])
	assert.Nil(t, response["lastIndexedAt"])
	assert.Equal(t, "none", response["lastRefreshMode"])
	assert.Equal(t, root, response["workspaceRoot"])
	assert.Equal(t, map[string]any{}, response["lastRefreshSummary"])

	_, err := ix.Refresh(ModeFull, true)
	require.NoError(t, err)

	_, response = getJSON(t, router, "/health")
	assert.EqualValues(t, 1, response["indexedFiles"])
	assert.NotNil(t, response["lastIndexedAt"])
	assert.Equal(t, "full", response["lastRefreshMode"])
	assert.NotNil(t, response["lastRefreshSummary"])
}
