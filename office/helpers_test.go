package office

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// writeZip writes a zip archive with the given members.
func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	for name, content := range members {
		member, err := writer.Create(name)
		require.NoError(t, err)
		_, err = member.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

// writeDocx writes a minimal Word container whose body holds the given text.
func writeDocx(t *testing.T, path, text string) {
	t.Helper()
	writeZip(t, path, map[string]string{
		"word/document.xml": `<w:document><w:body><w:p><w:r><w:t>` + text + `</w:t></w:r></w:p></w:body></w:document>`,
	})
}

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

// disableExternalExtractor clears the OpenSearch configuration so extraction
// exercises the local chain.
func disableExternalExtractor(t *testing.T) {
	t.Helper()
	t.Setenv("OFFICEINDEX_OPENSEARCH_URL", "")
	t.Setenv("OFFICEINDEX_LOCAL_PDF", "")
	t.Setenv("OFFICEINDEX_LOCAL_LEGACY", "")
	t.Setenv("OFFICEINDEX_INCLUDE_PDF", "")
}
