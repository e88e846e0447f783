package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Budgets shared by the adapters. These are part of the wire contract and are
// asserted by the test suite; change them together with the tests.
const (
	MaxScanDirectories    = 400
	MaxIndexedFiles       = 2_000
	MaxBinaryFileBytes    = 16_000_000
	MaxXMLMemberBytes     = 3_000_000
	MaxExtractedTextChars = 160_000
	MaxDiagnosticMessages = 50
	HashChunkBytes        = 1 << 20

	DefaultRefreshIntervalSeconds = 25
	DefaultHTTPTimeoutSeconds     = 8
	DefaultExtractWorkers         = 4

	DefaultOfficeIndexAddr = ":8103"
	DefaultChatIndexAddr   = ":8101"
	DefaultPageIndexAddr   = ":8102"
)

// OfficeFileExtensions are the extensions the office scanner accepts.
var OfficeFileExtensions = map[string]bool{
	".doc":  true,
	".docx": true,
	".ppt":  true,
	".pptx": true,
	".xls":  true,
	".xlsx": true,
}

// OOXMLExtensions are the zipped-XML container formats the local extractor
// understands.
var OOXMLExtensions = map[string]bool{
	".docx": true,
	".pptx": true,
	".xlsx": true,
}

// ExcludedDirectoryNames are never descended into during a workspace scan.
var ExcludedDirectoryNames = map[string]bool{
	".git":         true,
	".next":        true,
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".turbo":       true,
	".cache":       true,
}

// EditableTextExtensions are the file types the page adapter reads content from.
var EditableTextExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".rtf":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
	".ts":   true,
	".tsx":  true,
	".js":   true,
	".jsx":  true,
	".html": true,
	".css":  true,
}

var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"yes":  true,
	"on":   true,
}

// IsIncludedDirectory reports whether a scan may descend into the named
// directory. Dot-directories are always skipped.
func IsIncludedDirectory(name string) bool {
	normalized := strings.ToLower(name)
	if strings.HasPrefix(normalized, ".") {
		return false
	}
	return !ExcludedDirectoryNames[normalized]
}

func intEnv(name string, fallback, minimum int) int {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value < minimum {
		return minimum
	}
	return value
}

func boolEnv(name string) bool {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	return truthyValues[raw]
}

// RefreshIntervalSeconds is the debounce between search-driven incremental
// refreshes. Zero disables the debounce.
func RefreshIntervalSeconds() int {
	return intEnv("OFFICEINDEX_REFRESH_INTERVAL_SECONDS", DefaultRefreshIntervalSeconds, 0)
}

// BackgroundSyncSeconds is the background worker interval. Zero (the default)
// disables the worker.
func BackgroundSyncSeconds() int {
	return intEnv("OFFICEINDEX_BACKGROUND_SYNC_SECONDS", 0, 0)
}

// ExtractTimeoutSeconds bounds a single external-extractor HTTP call.
func ExtractTimeoutSeconds() int {
	return intEnv("OFFICEINDEX_EXTRACT_TIMEOUT_SECONDS", DefaultHTTPTimeoutSeconds, 1)
}

// ExtractWorkers is the size of the per-refresh hash/extract worker pool.
func ExtractWorkers() int {
	return intEnv("OFFICEINDEX_EXTRACT_WORKERS", DefaultExtractWorkers, 1)
}

// IncludePDF reports whether .pdf files are scan candidates.
func IncludePDF() bool {
	return boolEnv("OFFICEINDEX_INCLUDE_PDF")
}

// LocalPDF reports whether the in-process PDF extractor may run for .pdf
// candidates the external extractor produced no text for.
func LocalPDF() bool {
	return boolEnv("OFFICEINDEX_LOCAL_PDF")
}

// LocalLegacy reports whether the OLE stream salvage may run for legacy
// .doc/.ppt/.xls candidates.
func LocalLegacy() bool {
	return boolEnv("OFFICEINDEX_LOCAL_LEGACY")
}

// OpenSearchBaseURL returns the external extractor base URL, or "" when the
// external extractor is not configured.
func OpenSearchBaseURL() string {
	configured := strings.TrimSpace(os.Getenv("OFFICEINDEX_OPENSEARCH_URL"))
	return strings.TrimRight(configured, "/")
}

// OpenSearchPipeline returns the ingest pipeline name, defaulting to
// "attachment".
func OpenSearchPipeline() string {
	configured := strings.TrimSpace(os.Getenv("OFFICEINDEX_OPENSEARCH_PIPELINE"))
	if configured == "" {
		return "attachment"
	}
	return configured
}

// OpenSearchAuthHeader returns a Basic authorization header value, or "" when
// credentials are not configured.
func OpenSearchAuthHeader() string {
	username := strings.TrimSpace(os.Getenv("OFFICEINDEX_OPENSEARCH_USERNAME"))
	password, hasPassword := os.LookupEnv("OFFICEINDEX_OPENSEARCH_PASSWORD")
	if username == "" || !hasPassword {
		return ""
	}
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + token
}

// repoRoot anchors relative configuration paths. The adapters run from the
// repository root, so the working directory stands in for it.
func repoRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// ResolveWorkspaceRoot returns the absolute workspace root the office and page
// adapters index. Relative configured paths resolve against the repo root.
func ResolveWorkspaceRoot() string {
	configured := strings.TrimSpace(os.Getenv("WORKSPACE_FILES_ROOT"))
	if configured == "" {
		return filepath.Join(repoRoot(), "company_files")
	}
	if filepath.IsAbs(configured) {
		return filepath.Clean(configured)
	}
	return filepath.Join(repoRoot(), configured)
}

// ResolveDatabasePath returns the SQLite file the chat adapter queries,
// derived from DATABASE_URL ("file:" URLs and bare paths are accepted).
func ResolveDatabasePath() string {
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		databaseURL = "file:./prisma/dev.db"
	}

	raw := databaseURL
	if strings.HasPrefix(raw, "file:") {
		raw = raw[len("file:"):]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimPrefix(raw, "//")

	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Join(repoRoot(), raw)
}

func addrEnv(name, fallback string) string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return raw
}

// OfficeIndexAddr is the office adapter listen address.
func OfficeIndexAddr() string { return addrEnv("OFFICEINDEX_ADDR", DefaultOfficeIndexAddr) }

// ChatIndexAddr is the chat adapter listen address.
func ChatIndexAddr() string { return addrEnv("CHATINDEX_ADDR", DefaultChatIndexAddr) }

// PageIndexAddr is the page adapter listen address.
func PageIndexAddr() string { return addrEnv("PAGEINDEX_ADDR", DefaultPageIndexAddr) }
