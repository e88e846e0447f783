package office

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func indexWithDocs(docs ...*Document) *Index {
	ix := NewIndex()
	for _, doc := range docs {
		ix.byPath[doc.FilePath] = doc
	}
	return ix
}

func TestSearchRankBands(t *testing.T) {
	ix := indexWithDocs(
		&Document{FilePath: "plans/alpha plan.docx", Title: "alpha plan.docx", Content: "unrelated body"},
		&Document{FilePath: "notes/minutes.docx", Title: "minutes.docx", Content: "we agreed the alpha plan ships in march"},
		&Document{FilePath: "notes/session.docx", Title: "session.docx", Content: "the alpha planning session ran long"},
		&Document{FilePath: "plans/alpha plan notes.pptx", Title: "alpha plan notes.pptx", Content: ""},
		&Document{FilePath: "misc/other.docx", Title: "other.docx", Content: "nothing relevant"},
	)

	results := ix.Search("alpha plan", 40)
	require.Len(t, results, 4)

	kinds := make([]string, len(results))
	paths := make([]string, len(results))
	for i, result := range results {
		kinds[i] = result.SourceMeta["matchKind"]
		paths[i] = result.FilePath
	}

	assert.Equal(t, []string{"filename-exact", "content-exact-phrase", "content-partial", "filename-partial"}, kinds)
	assert.Equal(t, []string{
		"plans/alpha plan.docx",
		"notes/minutes.docx",
		"notes/session.docx",
		"plans/alpha plan notes.pptx",
	}, paths)

	// Band floors hold regardless of inner text scores.
	assert.Greater(t, results[0].Score, bandFilenameExact)
	assert.Greater(t, results[1].Score, bandContentExactPhrase)
	assert.Less(t, results[1].Score, bandFilenameExact)
	assert.Greater(t, results[2].Score, bandContentPartial)
	assert.Less(t, results[2].Score, bandContentExactPhrase)
	assert.Greater(t, results[3].Score, bandFilenamePartial)
	assert.Less(t, results[3].Score, bandContentPartial)
}

func TestSearchSnippets(t *testing.T) {
	ix := indexWithDocs(
		&Document{FilePath: "a.docx", Title: "a.docx", Content: "the nebula launch marker is here"},
		&Document{FilePath: "nebula.docx", Title: "nebula.docx", Content: ""},
	)

	results := ix.Search("nebula", 40)
	require.Len(t, results, 2)

	// Filename-exact without a content hit carries no snippet.
	assert.Equal(t, "nebula.docx", results[0].FilePath)
	assert.Nil(t, results[0].Snippet)

	require.NotNil(t, results[1].Snippet)
	assert.Contains(t, *results[1].Snippet, "nebula launch marker")
}

func TestSearchTieBreakAndLimit(t *testing.T) {
	ix := indexWithDocs(
		&Document{FilePath: "b/report.docx", Title: "report.docx", Content: ""},
		&Document{FilePath: "a/report.docx", Title: "report.docx", Content: ""},
	)

	results := ix.Search("report", 40)
	require.Len(t, results, 2)
	assert.Equal(t, results[0].Score, results[1].Score)
	// Equal scores fall back to file path, descending.
	assert.Equal(t, "b/report.docx", results[0].FilePath)

	assert.Len(t, ix.Search("report", 1), 1)
}

func TestSearchNoMatches(t *testing.T) {
	ix := indexWithDocs(&Document{FilePath: "a.docx", Title: "a.docx", Content: "nothing"})
	assert.Empty(t, ix.Search("zzzzzz", 40))
}

func TestSearchPreservesSourceMeta(t *testing.T) {
	ix := indexWithDocs(&Document{
		FilePath:   "a.docx",
		Title:      "a.docx",
		Content:    "nebula",
		SourceMeta: map[string]string{"extractor": "local-ooxml"},
	})

	results := ix.Search("nebula", 40)
	require.Len(t, results, 1)
	assert.Equal(t, "local-ooxml", results[0].SourceMeta["extractor"])
	assert.Equal(t, "content-exact-phrase", results[0].SourceMeta["matchKind"])

	// The document's own meta is not mutated by searching.
	assert.NotContains(t, ix.byPath["a.docx"].SourceMeta, "matchKind")
}
