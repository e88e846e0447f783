package chat

import (
	"database/sql"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"search-adapters/rank"
)

type searchRequest struct {
	Query  string `json:"query"`
	Limit  *int   `json:"limit"`
	UserID string `json:"userId"`
}

// NewRouter builds the adapter's HTTP surface.
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handleHealth)
	router.POST("/search", handleSearch)

	return router
}

func apiError(c *gin.Context, status int, errorCode, message string) {
	c.AbortWithStatusJSON(status, gin.H{"errorCode": errorCode, "message": message})
}

func handleHealth(c *gin.Context) {
	databaseOK := false
	if db, err := OpenDatabase(); err == nil {
		databaseOK = db.Ping() == nil
		db.Close()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"service":    "chatindex-adapter",
		"databaseOk": databaseOK,
	})
}

func handleSearch(c *gin.Context) {
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

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = strings.TrimSpace(c.GetHeader("x-user-id"))
	}
	if userID == "" {
		apiError(c, http.StatusBadRequest, "INVALID_USER", "A userId is required, in the body or the x-user-id header.")
		return
	}

	db, err := OpenDatabase()
	if err != nil {
		apiError(c, http.StatusServiceUnavailable, "DB_NOT_FOUND", err.Error())
		return
	}
	defer db.Close()

	exists, err := userExists(db, userID)
	if err != nil {
		log.Error().Err(err).Msg("chatindex user lookup failed")
		apiError(c, http.StatusServiceUnavailable, "DB_NOT_FOUND", "Chat database query failed.")
		return
	}
	if !exists {
		apiError(c, http.StatusNotFound, "USER_NOT_FOUND", "User not found: "+userID)
		return
	}

	results, err := searchAll(db, userID, query, limit)
	if err != nil {
		log.Error().Err(err).Msg("chatindex search failed")
		apiError(c, http.StatusServiceUnavailable, "DB_NOT_FOUND", "Chat database query failed.")
		return
	}

	if len(results) > limit {
		results = results[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   query,
		"total":   len(results),
		"tookMs":  time.Since(startedAt).Milliseconds(),
		"results": results,
	})
}

// searchAll fans the query out to the three kinds with per-kind bucket limits
// proportional to the requested page, dedupes and sorts the merged set.
func searchAll(db *sql.DB, userID, query string, limit int) ([]Result, error) {
	needleLower := strings.ToLower(query)

	bucket := limit / 2
	if bucket < 10 {
		bucket = 10
	}
	channelLimit := clampBucket(bucket/3, 4, 10)
	dmLimit := clampBucket(bucket/4, 4, 10)
	messageLimit := int(float64(bucket) * 1.8)
	if messageLimit < 10 {
		messageLimit = 10
	}

	var merged []Result

	channels, err := searchChannels(db, query, needleLower, channelLimit)
	if err != nil {
		return nil, err
	}
	merged = append(merged, channels...)

	dms, err := searchDMs(db, userID, needleLower, dmLimit)
	if err != nil {
		return nil, err
	}
	merged = append(merged, dms...)

	messages, err := searchMessages(db, userID, query, needleLower, messageLimit)
	if err != nil {
		return nil, err
	}
	merged = append(merged, messages...)

	merged = dedupeResults(merged)

	sort.SliceStable(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return createdAtValue(merged[i]) > createdAtValue(merged[j])
	})
	return merged, nil
}

func clampBucket(value, minimum, maximum int) int {
	if value < minimum {
		return minimum
	}
	if value > maximum {
		return maximum
	}
	return value
}

func createdAtValue(r Result) float64 {
	if r.CreatedAt == nil {
		return 0
	}
	return rank.SortTimeValue(*r.CreatedAt)
}
