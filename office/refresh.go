package office

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"search-adapters/config"
)

// ErrWorkspaceRootNotFound marks refreshes aborted because the configured
// workspace root is missing or not a directory. The existing index is kept.
var ErrWorkspaceRootNotFound = errors.New("workspace root directory not found")

// Refresh rebuilds the index in the requested mode. At most one refresh runs
// at a time; concurrent callers queue on the refresh mutex. Incremental
// refreshes without bypassInterval are debounced against the configured
// refresh interval. The index lock is held only to snapshot the previous map
// and to perform the final swap, so searches proceed while the scan runs.
func (ix *Index) Refresh(mode string, bypassInterval bool) (*RefreshSummary, error) {
	ix.refreshMu.Lock()
	defer ix.refreshMu.Unlock()

	startedAt := time.Now()
	diagnostics := []string{}

	ix.mu.RLock()
	currentSize := len(ix.byPath)
	previous := make(map[string]*Document, len(ix.byPath))
	for path, doc := range ix.byPath {
		previous[path] = doc
	}
	lastIndexedAt := ix.lastIndexedAt
	ix.mu.RUnlock()

	interval := time.Duration(config.RefreshIntervalSeconds()) * time.Second
	if mode == ModeIncremental && !bypassInterval && !lastIndexedAt.IsZero() && time.Since(lastIndexedAt) < interval {
		return &RefreshSummary{
			Status:       "skipped",
			Mode:         mode,
			Reason:       "refresh-interval",
			IndexedFiles: currentSize,
			Diagnostics:  []string{},
			TookMs:       time.Since(startedAt).Milliseconds(),
		}, nil
	}

	workspaceRoot := config.ResolveWorkspaceRoot()
	rootInfo, err := os.Stat(workspaceRoot)
	if err != nil || !rootInfo.IsDir() {
		rootErr := fmt.Errorf("%w: %s", ErrWorkspaceRootNotFound, workspaceRoot)
		ix.mu.Lock()
		ix.lastRefreshError = rootErr.Error()
		ix.mu.Unlock()
		return nil, rootErr
	}

	scannedPaths, scanDiagnostics := scanWorkspace(workspaceRoot)
	for _, warning := range scanDiagnostics {
		diagnostics = appendDiagnostic(diagnostics, warning)
	}

	updated := make(map[string]*Document, len(scannedPaths))
	var resultMu sync.Mutex
	reusedFiles := 0
	updatedFiles := 0
	failedFiles := 0

	recordFailure := func(message string) {
		resultMu.Lock()
		failedFiles++
		diagnostics = appendDiagnostic(diagnostics, message)
		resultMu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(config.ExtractWorkers())

	for _, absolutePath := range scannedPaths {
		g.Go(func() error {
			relativePath, ok := relativeFilePath(workspaceRoot, absolutePath)
			if !ok {
				return nil
			}

			stat, err := os.Stat(absolutePath)
			if err != nil {
				log.Warn().Err(err).Str("file", relativePath).Msg("skipping file with unreadable stat")
				recordFailure("file-stat-failed:" + relativePath)
				return nil
			}
			mtimeNs := stat.ModTime().UnixNano()
			sizeBytes := stat.Size()

			existing := previous[relativePath]
			if mode == ModeIncremental && existing != nil && existing.MtimeNs == mtimeNs && existing.SizeBytes == sizeBytes {
				resultMu.Lock()
				updated[relativePath] = existing
				reusedFiles++
				resultMu.Unlock()
				return nil
			}

			contentHash, err := computeFileHash(absolutePath)
			if err != nil {
				log.Warn().Err(err).Str("file", relativePath).Msg("skipping unreadable file during hash pass")
				recordFailure("file-hash-failed:" + relativePath)
				return nil
			}

			if mode == ModeIncremental && existing != nil && existing.ContentHash == contentHash {
				reused := *existing
				reused.MtimeNs = mtimeNs
				reused.SizeBytes = sizeBytes
				resultMu.Lock()
				updated[relativePath] = &reused
				reusedFiles++
				resultMu.Unlock()
				return nil
			}

			content, sourceMeta, err := extractTextForFile(absolutePath)
			if err != nil {
				log.Warn().Err(err).Str("file", relativePath).Msg("skipping unreadable file during extraction")
				recordFailure("file-extract-failed:" + relativePath)
				return nil
			}

			doc := &Document{
				FilePath:    relativePath,
				Title:       filepath.Base(absolutePath),
				Subtitle:    relativePath,
				Content:     content,
				SourceMeta:  sourceMeta,
				MtimeNs:     mtimeNs,
				SizeBytes:   sizeBytes,
				ContentHash: contentHash,
			}
			resultMu.Lock()
			updated[relativePath] = doc
			updatedFiles++
			resultMu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	removedFiles := len(previous) - len(updated)
	if removedFiles < 0 {
		removedFiles = 0
	}

	summary := &RefreshSummary{
		Status:       "ok",
		Mode:         mode,
		IndexedFiles: len(updated),
		ScannedFiles: len(scannedPaths),
		ReusedFiles:  reusedFiles,
		UpdatedFiles: updatedFiles,
		RemovedFiles: removedFiles,
		FailedFiles:  failedFiles,
		Diagnostics:  diagnostics,
		TookMs:       time.Since(startedAt).Milliseconds(),
	}

	ix.mu.Lock()
	ix.byPath = updated
	ix.lastIndexedAt = time.Now()
	ix.lastRefreshMode = mode
	ix.lastRefreshSummary = summary
	ix.lastRefreshError = ""
	ix.mu.Unlock()

	return summary, nil
}

// ParseRefreshMode validates a requested mode, applying the default when the
// input is empty.
func ParseRefreshMode(raw, fallback string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return fallback, nil
	}
	if value != ModeFull && value != ModeIncremental {
		return "", errors.New("mode must be one of: full, incremental")
	}
	return value, nil
}

// computeFileHash streams the file through SHA-256.
func computeFileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	digest := sha256.New()
	buf := make([]byte, config.HashChunkBytes)
	if _, err := io.CopyBuffer(digest, f, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}
