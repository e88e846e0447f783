// Package page implements the PageIndex adapter: a synchronous scan-and-score
// search over the editable text files of the workspace. Unlike the office
// adapter it keeps no index; every search walks the tree within hard read
// budgets.
package page

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"search-adapters/config"
	"search-adapters/rank"
)

const (
	maxScanDirectories = 300
	maxScanResults     = 240
	maxContentReads    = 80
	maxContentBytes    = 280_000
)

// Result is one page hit as returned on the wire.
type Result struct {
	ID       string  `json:"id"`
	FilePath string  `json:"filePath"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
	Snippet  *string `json:"snippet"`
	Score    int     `json:"score"`
}

type searchRequest struct {
	Query string `json:"query"`
	Limit *int   `json:"limit"`
}

// NewRouter builds the adapter's HTTP surface.
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "pageindex-adapter"})
	})
	router.POST("/search", handleSearch)

	return router
}

func isEditableTextDocument(name string) bool {
	return config.EditableTextExtensions[strings.ToLower(filepath.Ext(name))]
}

func handleSearch(c *gin.Context) {
	startedAt := time.Now()

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "INVALID_QUERY", "message": "Request body must be a JSON object with a query."})
		return
	}

	query, err := rank.ParseQuery(req.Query)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errorCode": "INVALID_QUERY", "message": err.Error()})
		return
	}
	limit := rank.ParseLimit(req.Limit)
	needleLower := strings.ToLower(query)

	workspaceRoot := config.ResolveWorkspaceRoot()
	info, err := os.Stat(workspaceRoot)
	if err != nil || !info.IsDir() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"errorCode": "WORKSPACE_ROOT_NOT_FOUND",
			"message":   "Workspace root directory not found: " + workspaceRoot,
		})
		return
	}

	results := scanAndScore(workspaceRoot, needleLower)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].FilePath > results[j].FilePath
	})
	if len(results) > limit {
		results = results[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"query":         query,
		"total":         len(results),
		"tookMs":        time.Since(startedAt).Milliseconds(),
		"workspaceRoot": workspaceRoot,
		"results":       results,
	})
}

// scanAndScore walks the workspace breadth-first, scoring paths first and
// falling back to a bounded number of content reads for text documents whose
// path did not match.
func scanAndScore(workspaceRoot, needleLower string) []Result {
	queue := []string{workspaceRoot}
	visited := make(map[string]bool)
	results := []Result{}
	contentReads := 0

	for len(queue) > 0 && len(visited) < maxScanDirectories {
		directory := queue[0]
		queue = queue[1:]
		if visited[directory] {
			continue
		}
		visited[directory] = true

		entries, err := os.ReadDir(directory)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() {
				if config.IsIncludedDirectory(name) {
					queue = append(queue, filepath.Join(directory, name))
				}
				continue
			}
			if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
				continue
			}

			absolutePath := filepath.Join(directory, name)
			relativePath, err := filepath.Rel(workspaceRoot, absolutePath)
			if err != nil {
				continue
			}
			relativePath = filepath.ToSlash(relativePath)

			pathScore := rank.ScoreTextMatch(relativePath, needleLower)
			if nameScore := rank.ScoreTextMatch(name, needleLower); nameScore > pathScore {
				pathScore = nameScore
			}

			contentScore := 0
			var snippet *string

			if pathScore == 0 && isEditableTextDocument(name) && contentReads < maxContentReads {
				if stat, err := os.Stat(absolutePath); err == nil && stat.Size() <= maxContentBytes {
					if raw, err := os.ReadFile(absolutePath); err == nil {
						contentReads++
						content := string(raw)
						contentScore = rank.ScoreTextMatch(content, needleLower)
						if contentScore > 0 {
							if s, ok := rank.ExtractSnippet(content, needleLower, rank.SnippetRadius); ok {
								snippet = &s
							}
						}
					}
				}
			}

			if pathScore == 0 && contentScore == 0 {
				continue
			}

			score := pathScore + 40
			if contentScore+16 > score {
				score = contentScore + 16
			}

			results = append(results, Result{
				ID:       relativePath,
				FilePath: relativePath,
				Title:    name,
				Subtitle: relativePath,
				Snippet:  snippet,
				Score:    score,
			})

			if len(results) >= maxScanResults {
				return results
			}
		}
	}

	return results
}
