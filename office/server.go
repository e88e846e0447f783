package office

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"search-adapters/config"
	"search-adapters/rank"
)

type searchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

type reindexRequest struct {
	Mode string `json:"mode"`
}

// NewRouter builds the adapter's HTTP surface.
func NewRouter(ix *Index) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", ix.handleHealth)
	router.POST("/search", ix.handleSearch)
	router.POST("/reindex", ix.handleReindex)

	return router
}

func apiError(c *gin.Context, status int, errorCode, message string) {
	c.AbortWithStatusJSON(status, gin.H{"errorCode": errorCode, "message": message})
}

func (ix *Index) handleHealth(c *gin.Context) {
	ix.mu.RLock()
	indexedFiles := len(ix.byPath)
	lastIndexedAt := ix.lastIndexedAt
	lastMode := ix.lastRefreshMode
	lastSummary := ix.lastRefreshSummary
	lastError := ix.lastRefreshError
	ix.mu.RUnlock()

	var lastIndexedAtMs *int64
	if !lastIndexedAt.IsZero() {
		ms := lastIndexedAt.UnixMilli()
		lastIndexedAtMs = &ms
	}
	var lastErrorValue *string
	if lastError != "" {
		lastErrorValue = &lastError
	}
	// Before the first refresh the summary serializes as an empty object, not
	// null.
	var summaryValue any = lastSummary
	if lastSummary == nil {
		summaryValue = gin.H{}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                 "ok",
		"service":                "officeindex-adapter",
		"indexedFiles":           indexedFiles,
		"lastIndexedAt":          lastIndexedAtMs,
		"refreshIntervalSeconds": config.RefreshIntervalSeconds(),
		"backgroundSyncSeconds":  config.BackgroundSyncSeconds(),
		"backgroundSyncActive":   ix.BackgroundSyncActive(),
		"lastRefreshMode":        lastMode,
		"lastRefreshSummary":     summaryValue,
		"lastRefreshError":       lastErrorValue,
		"workspaceRoot":          config.ResolveWorkspaceRoot(),
	})
}

func (ix *Index) handleSearch(c *gin.Context) {
	startedAt := time.Now()

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_QUERY", "Request body must be a JSON object with a query.")
		return
	}

	query, err := rank.ParseQuery(req.Query)
	if err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_QUERY", err.Error())
		return
	}
	limit := rank.ParseLimit(req.Limit)

	degraded := false
	diagnostics := []string{}

	// Opportunistic refresh: failure never aborts the search, it only marks
	// the response degraded so stale results stay available.
	summary, err := ix.Refresh(ModeIncremental, false)
	switch {
	case errors.Is(err, ErrWorkspaceRootNotFound):
		degraded = true
		log.Warn().Err(err).Msg("officeindex refresh skipped due to missing workspace root")
		diagnostics = appendDiagnostic(diagnostics, "refresh-failed:"+err.Error())
	case err != nil:
		degraded = true
		log.Error().Err(err).Msg("officeindex refresh failed; serving stale/partial index")
		diagnostics = appendDiagnostic(diagnostics, "refresh-failed:unexpected-error")
	case summary.FailedFiles > 0:
		degraded = true
		for _, warning := range summary.Diagnostics {
			diagnostics = appendDiagnostic(diagnostics, warning)
		}
	}

	results := ix.Search(query, limit)

	response := gin.H{
		"query":   query,
		"total":   len(results),
		"tookMs":  time.Since(startedAt).Milliseconds(),
		"results": results,
	}
	if degraded {
		response["degraded"] = true
	}
	if len(diagnostics) > 0 {
		response["diagnostics"] = diagnostics
	}
	c.JSON(http.StatusOK, response)
}

func (ix *Index) handleReindex(c *gin.Context) {
	var req reindexRequest
	_ = c.ShouldBindJSON(&req)

	mode, err := ParseRefreshMode(req.Mode, ModeFull)
	if err != nil {
		apiError(c, http.StatusBadRequest, "INVALID_MODE", err.Error())
		return
	}

	summary, err := ix.Refresh(mode, true)
	if errors.Is(err, ErrWorkspaceRootNotFound) {
		apiError(c, http.StatusServiceUnavailable, "WORKSPACE_ROOT_NOT_FOUND", err.Error())
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("officeindex reindex failed")
		apiError(c, http.StatusInternalServerError, "REINDEX_FAILED", "Reindex failed due to an unexpected error.")
		return
	}

	status := "ok"
	if summary.FailedFiles > 0 {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"mode":         mode,
		"indexedFiles": summary.IndexedFiles,
		"scannedFiles": summary.ScannedFiles,
		"reusedFiles":  summary.ReusedFiles,
		"updatedFiles": summary.UpdatedFiles,
		"removedFiles": summary.RemovedFiles,
		"failedFiles":  summary.FailedFiles,
		"diagnostics":  summary.Diagnostics,
		"tookMs":       summary.TookMs,
	})
}
