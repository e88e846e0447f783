// Package office implements the OfficeIndex adapter: an in-process
// incremental index over the office documents of a workspace file tree,
// refreshed on demand and served over HTTP.
package office

// Refresh modes. "full" re-extracts every candidate; "incremental" reuses
// records whose metadata or content hash is unchanged.
const (
	ModeFull        = "full"
	ModeIncremental = "incremental"
	ModeNone        = "none"
)

// Document is one indexed record, keyed by its workspace-relative path.
type Document struct {
	FilePath    string            `json:"filePath"`
	Title       string            `json:"title"`
	Subtitle    string            `json:"subtitle"`
	Content     string            `json:"content"`
	SourceMeta  map[string]string `json:"sourceMeta"`
	MtimeNs     int64             `json:"mtimeNs"`
	SizeBytes   int64             `json:"sizeBytes"`
	ContentHash string            `json:"contentHash"`
}

// RefreshSummary reports the outcome of one refresh pass.
type RefreshSummary struct {
	Status       string   `json:"status"`
	Mode         string   `json:"mode"`
	Reason       string   `json:"reason,omitempty"`
	IndexedFiles int      `json:"indexedFiles"`
	ScannedFiles int      `json:"scannedFiles"`
	ReusedFiles  int      `json:"reusedFiles"`
	UpdatedFiles int      `json:"updatedFiles"`
	RemovedFiles int      `json:"removedFiles"`
	FailedFiles  int      `json:"failedFiles"`
	Diagnostics  []string `json:"diagnostics"`
	TookMs       int64    `json:"tookMs"`
}

// SearchResult is one ranked hit as returned on the wire.
type SearchResult struct {
	ID         string            `json:"id"`
	FilePath   string            `json:"filePath"`
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	Snippet    *string           `json:"snippet"`
	Score      int               `json:"score"`
	SourceMeta map[string]string `json:"sourceMeta"`
}
