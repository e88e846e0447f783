package office

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"search-adapters/rank"
)

// Index is the in-memory document store plus its refresh metadata. Reads take
// whole snapshots under the read lock; the map is only ever replaced
// wholesale during the swap step of a refresh, never mutated in place.
type Index struct {
	mu     sync.RWMutex
	byPath map[string]*Document

	lastIndexedAt      time.Time
	lastRefreshMode    string
	lastRefreshSummary *RefreshSummary
	lastRefreshError   string

	// refreshMu serializes refreshes; it is never held together with mu
	// except for the brief snapshot and swap sections.
	refreshMu sync.Mutex

	workerMu     sync.Mutex
	workerStop   chan struct{}
	workerActive bool
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		byPath:          make(map[string]*Document),
		lastRefreshMode: ModeNone,
	}
}

// Size returns the number of indexed documents.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byPath)
}

// snapshot returns the current documents without holding the lock during
// scoring.
func (ix *Index) snapshot() []*Document {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	docs := make([]*Document, 0, len(ix.byPath))
	for _, doc := range ix.byPath {
		docs = append(docs, doc)
	}
	return docs
}

// Search evaluates a parsed query against the current snapshot and returns at
// most limit results, ranked.
func (ix *Index) Search(query string, limit int) []SearchResult {
	needleLower := strings.ToLower(query)
	docs := ix.snapshot()

	results := make([]SearchResult, 0, len(docs))
	for _, doc := range docs {
		filePath := doc.FilePath
		title := doc.Title
		if title == "" {
			title = filePath
		}

		ranked := computeRankedMatch(filePath, title, doc.Content, needleLower)
		if ranked == nil {
			continue
		}

		sourceMeta := make(map[string]string, len(doc.SourceMeta)+1)
		for k, v := range doc.SourceMeta {
			sourceMeta[k] = v
		}
		sourceMeta["matchKind"] = ranked.kind

		subtitle := doc.Subtitle
		if subtitle == "" {
			subtitle = filePath
		}

		results = append(results, SearchResult{
			ID:         filePath,
			FilePath:   filePath,
			Title:      title,
			Subtitle:   subtitle,
			Snippet:    ranked.snippet,
			Score:      ranked.score,
			SourceMeta: sourceMeta,
		})
	}

	sortResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// sortResults orders by (score, filePath) descending.
func sortResults(results []SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].FilePath > results[j].FilePath
	})
}

type rankedMatch struct {
	score   int
	kind    string
	snippet *string
}

// Match-band bases. The layered rules are evaluated in order and the first
// hit wins; the bands keep filename-exact hits above content hits above
// filename-partial hits regardless of the inner text score.
const (
	bandFilenameExact      = 3_000
	bandContentExactPhrase = 2_000
	bandContentPartial     = 1_000
	bandFilenamePartial    = 800
)

// computeRankedMatch scores one document against the lowered needle.
func computeRankedMatch(filePath, title, content, needleLower string) *rankedMatch {
	normalizedContent := strings.ToLower(rank.NormalizeWhitespace(content))
	normalizedNeedle := strings.ToLower(rank.NormalizeWhitespace(needleLower))

	stemSource := title
	if stemSource == "" {
		stemSource = filePath
	}
	base := filepath.Base(stemSource)
	stemLower := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	pathScore := maxInt(
		rank.ScoreTextMatch(filePath, normalizedNeedle),
		rank.ScoreTextMatch(title, normalizedNeedle),
		rank.ScoreTextMatch(stemLower, normalizedNeedle),
	)

	filenameExact := stemLower == normalizedNeedle
	contentExactPhrase := false
	contentPartial := false

	if normalizedContent != "" {
		switch {
		case normalizedContent == normalizedNeedle:
			contentExactPhrase = true
		case strings.Contains(" "+normalizedContent+" ", " "+normalizedNeedle+" "):
			contentExactPhrase = true
		case rank.ScoreTextMatch(normalizedContent, normalizedNeedle) > 0:
			contentPartial = true
		}
	}

	if filenameExact {
		var snippet *string
		if contentExactPhrase || contentPartial {
			snippet = snippetPtr(content, normalizedNeedle)
		}
		return &rankedMatch{
			score:   bandFilenameExact + maxInt(pathScore, 1),
			kind:    "filename-exact",
			snippet: snippet,
		}
	}

	if contentExactPhrase {
		return &rankedMatch{
			score:   bandContentExactPhrase + maxInt(rank.ScoreTextMatch(normalizedContent, normalizedNeedle), 1),
			kind:    "content-exact-phrase",
			snippet: snippetPtr(content, normalizedNeedle),
		}
	}

	if contentPartial {
		return &rankedMatch{
			score:   bandContentPartial + maxInt(rank.ScoreTextMatch(normalizedContent, normalizedNeedle), 1),
			kind:    "content-partial",
			snippet: snippetPtr(content, normalizedNeedle),
		}
	}

	if pathScore > 0 {
		return &rankedMatch{
			score: bandFilenamePartial + pathScore,
			kind:  "filename-partial",
		}
	}

	return nil
}

func snippetPtr(content, needleLower string) *string {
	snippet, ok := rank.ExtractSnippet(content, needleLower, rank.SnippetRadius)
	if !ok {
		return nil
	}
	return &snippet
}

func maxInt(values ...int) int {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
