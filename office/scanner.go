package office

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"search-adapters/config"
)

// entryCollator orders directory entries by case-folded name so scan output is
// deterministic across runs and filesystems.
var entryCollator = collate.New(language.Und, collate.IgnoreCase)

// isOfficeCandidate checks a file name against the permitted extension set.
func isOfficeCandidate(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if config.OfficeFileExtensions[ext] {
		return true
	}
	return ext == ".pdf" && config.IncludePDF()
}

// relativeFilePath converts an absolute path under root into the
// forward-slash-normalized key used by the index.
func relativeFilePath(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// scanWorkspace walks the workspace breadth-first and returns the candidate
// office files in deterministic order, plus scan diagnostics. The walk visits
// at most MaxScanDirectories directories and collects at most MaxIndexedFiles
// candidates.
func scanWorkspace(root string) ([]string, []string) {
	queue := []string{root}
	visited := make(map[string]bool)
	var candidates []string
	var diagnostics []string

	for len(queue) > 0 && len(visited) < config.MaxScanDirectories && len(candidates) < config.MaxIndexedFiles {
		directory := queue[0]
		queue = queue[1:]
		if visited[directory] {
			continue
		}
		visited[directory] = true

		entries, err := os.ReadDir(directory)
		if err != nil {
			relativeDir, ok := relativeFilePath(root, directory)
			if !ok || relativeDir == "" {
				relativeDir = "."
			}
			log.Warn().Err(err).Str("dir", relativeDir).Msg("skipping unreadable directory during office indexing")
			diagnostics = appendDiagnostic(diagnostics, "directory-unreadable:"+relativeDir)
			continue
		}

		sort.SliceStable(entries, func(i, j int) bool {
			return entryCollator.CompareString(entries[i].Name(), entries[j].Name()) < 0
		})

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
			if !isOfficeCandidate(name) {
				continue
			}

			candidates = append(candidates, filepath.Join(directory, name))
			if len(candidates) >= config.MaxIndexedFiles {
				break
			}
		}
	}

	return candidates, diagnostics
}

// appendDiagnostic keeps the first MaxDiagnosticMessages entries and silently
// drops the rest.
func appendDiagnostic(diagnostics []string, message string) []string {
	if len(diagnostics) < config.MaxDiagnosticMessages {
		return append(diagnostics, message)
	}
	return diagnostics
}
