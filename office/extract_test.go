package office

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"search-adapters/config"
)

func TestExtractTextForFileOOXML(t *testing.T) {
	disableExternalExtractor(t)
	path := filepath.Join(t.TempDir(), "plan.docx")
	writeDocx(t, path, "roadmap contents")

	text, meta, err := extractTextForFile(path)
	require.NoError(t, err)
	assert.Equal(t, "roadmap contents", text)
	assert.Equal(t, "local-ooxml", meta["extractor"])
}

func TestExtractTextForFileLegacyBinary(t *testing.T) {
	disableExternalExtractor(t)
	path := filepath.Join(t.TempDir(), "old.doc")
	writeFile(t, path, []byte{0xd0, 0xcf, 0x11, 0xe0, 0x00, 0x01})

	text, meta, err := extractTextForFile(path)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, "path-only", meta["extractor"])
	assert.Equal(t, "legacy-binary", meta["reason"])
}

func TestExtractTextForFilePDFDisabled(t *testing.T) {
	disableExternalExtractor(t)
	path := filepath.Join(t.TempDir(), "scan.pdf")
	writeFile(t, path, []byte("%PDF-1.4 not really"))

	text, meta, err := extractTextForFile(path)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, "path-only", meta["extractor"])
	assert.Equal(t, "pdf-disabled-by-default", meta["reason"])
}

func TestExtractTextForFileTooLarge(t *testing.T) {
	disableExternalExtractor(t)
	path := filepath.Join(t.TempDir(), "huge.docx")

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Truncate(int64(config.MaxBinaryFileBytes)+1))
	require.NoError(t, f.Close())

	text, meta, err := extractTextForFile(path)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, "path-only", meta["extractor"])
	assert.Equal(t, "file-too-large", meta["reason"])
}

func TestExtractTextForFileMissing(t *testing.T) {
	disableExternalExtractor(t)
	_, _, err := extractTextForFile(filepath.Join(t.TempDir(), "absent.docx"))
	assert.Error(t, err)
}

func TestExtractTextForFileBrokenContainer(t *testing.T) {
	disableExternalExtractor(t)
	path := filepath.Join(t.TempDir(), "broken.docx")
	writeFile(t, path, []byte("not a zip"))

	// A corrupt container is indexed path-only with the extractor chain's
	// last meta rather than failing the file.
	text, meta, err := extractTextForFile(path)
	require.NoError(t, err)
	assert.Equal(t, "", text)
	assert.Equal(t, "opensearch-disabled", meta["extractor"])
}
