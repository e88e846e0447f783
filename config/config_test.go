package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefreshIntervalSeconds(t *testing.T) {
	t.Setenv("OFFICEINDEX_REFRESH_INTERVAL_SECONDS", "")
	assert.Equal(t, DefaultRefreshIntervalSeconds, RefreshIntervalSeconds())

	t.Setenv("OFFICEINDEX_REFRESH_INTERVAL_SECONDS", "7")
	assert.Equal(t, 7, RefreshIntervalSeconds())

	t.Setenv("OFFICEINDEX_REFRESH_INTERVAL_SECONDS", "not-a-number")
	assert.Equal(t, DefaultRefreshIntervalSeconds, RefreshIntervalSeconds())

	t.Setenv("OFFICEINDEX_REFRESH_INTERVAL_SECONDS", "-3")
	assert.Equal(t, 0, RefreshIntervalSeconds())
}

func TestExtractWorkersFloor(t *testing.T) {
	t.Setenv("OFFICEINDEX_EXTRACT_WORKERS", "")
	assert.Equal(t, DefaultExtractWorkers, ExtractWorkers())

	t.Setenv("OFFICEINDEX_EXTRACT_WORKERS", "0")
	assert.Equal(t, 1, ExtractWorkers())
}

func TestBoolFlags(t *testing.T) {
	for _, raw := range []string{"1", "true", "YES", "On"} {
		t.Setenv("OFFICEINDEX_INCLUDE_PDF", raw)
		assert.True(t, IncludePDF(), "value %q", raw)
	}
	for _, raw := range []string{"", "0", "false", "off"} {
		t.Setenv("OFFICEINDEX_INCLUDE_PDF", raw)
		assert.False(t, IncludePDF(), "value %q", raw)
	}
}

func TestIsIncludedDirectory(t *testing.T) {
	assert.True(t, IsIncludedDirectory("Docs"))
	assert.False(t, IsIncludedDirectory("node_modules"))
	assert.False(t, IsIncludedDirectory("NODE_MODULES"))
	assert.False(t, IsIncludedDirectory(".git"))
	assert.False(t, IsIncludedDirectory(".anything"))
}

func TestResolveWorkspaceRoot(t *testing.T) {
	t.Setenv("WORKSPACE_FILES_ROOT", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "company_files"), ResolveWorkspaceRoot())

	t.Setenv("WORKSPACE_FILES_ROOT", "/srv/files")
	assert.Equal(t, "/srv/files", ResolveWorkspaceRoot())

	t.Setenv("WORKSPACE_FILES_ROOT", "relative/files")
	assert.Equal(t, filepath.Join(wd, "relative", "files"), ResolveWorkspaceRoot())
}

func TestResolveDatabasePath(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	t.Setenv("DATABASE_URL", "")
	assert.Equal(t, filepath.Join(wd, "prisma", "dev.db"), ResolveDatabasePath())

	t.Setenv("DATABASE_URL", "file:./prisma/dev.db?connection_limit=1")
	assert.Equal(t, filepath.Join(wd, "prisma", "dev.db"), ResolveDatabasePath())

	t.Setenv("DATABASE_URL", "file:/var/data/chat.db")
	assert.Equal(t, "/var/data/chat.db", ResolveDatabasePath())

	t.Setenv("DATABASE_URL", "/var/data/plain.db")
	assert.Equal(t, "/var/data/plain.db", ResolveDatabasePath())
}

func TestOpenSearchSettings(t *testing.T) {
	t.Setenv("OFFICEINDEX_OPENSEARCH_URL", "")
	assert.Equal(t, "", OpenSearchBaseURL())

	t.Setenv("OFFICEINDEX_OPENSEARCH_URL", "http://localhost:9200/")
	assert.Equal(t, "http://localhost:9200", OpenSearchBaseURL())

	t.Setenv("OFFICEINDEX_OPENSEARCH_PIPELINE", "")
	assert.Equal(t, "attachment", OpenSearchPipeline())
	t.Setenv("OFFICEINDEX_OPENSEARCH_PIPELINE", "custom")
	assert.Equal(t, "custom", OpenSearchPipeline())
}

func TestOpenSearchAuthHeader(t *testing.T) {
	// t.Setenv registers restoration; the unset after it keeps the missing-var
	// case testable without leaking into other tests.
	t.Setenv("OFFICEINDEX_OPENSEARCH_PASSWORD", "")
	os.Unsetenv("OFFICEINDEX_OPENSEARCH_PASSWORD")
	t.Setenv("OFFICEINDEX_OPENSEARCH_USERNAME", "u")
	assert.Equal(t, "", OpenSearchAuthHeader())

	t.Setenv("OFFICEINDEX_OPENSEARCH_USERNAME", "")
	t.Setenv("OFFICEINDEX_OPENSEARCH_PASSWORD", "p")
	assert.Equal(t, "", OpenSearchAuthHeader())

	t.Setenv("OFFICEINDEX_OPENSEARCH_USERNAME", "u")
	assert.Equal(t, "Basic dTpw", OpenSearchAuthHeader())
}

func TestListenAddrs(t *testing.T) {
	t.Setenv("OFFICEINDEX_ADDR", "")
	assert.Equal(t, DefaultOfficeIndexAddr, OfficeIndexAddr())

	t.Setenv("OFFICEINDEX_ADDR", "127.0.0.1:9000")
	assert.Equal(t, "127.0.0.1:9000", OfficeIndexAddr())
}
