package office

import (
	"os"
	"path/filepath"
	"strings"

	"search-adapters/config"
)

// extractTextForFile runs the extractor chain for one candidate: size gate,
// external extractor, local OOXML, then the format-specific fallbacks. The
// first extractor producing text wins; otherwise the returned meta explains
// why the record is path-only. An error is returned only when the file cannot
// be statted.
func extractTextForFile(path string) (string, map[string]string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	if stat.Size() > config.MaxBinaryFileBytes {
		return "", map[string]string{"extractor": "path-only", "reason": "file-too-large"}, nil
	}

	openSearchText, openSearchMeta := extractWithOpenSearch(path)
	if openSearchText != "" {
		return openSearchText, openSearchMeta, nil
	}

	ext := strings.ToLower(filepath.Ext(path))
	if config.OOXMLExtensions[ext] {
		if localText := extractOOXMLText(path); localText != "" {
			return localText, map[string]string{"extractor": "local-ooxml"}, nil
		}
	}

	switch ext {
	case ".doc", ".ppt", ".xls":
		if config.LocalLegacy() {
			if text := extractOLEText(path); text != "" {
				return text, map[string]string{"extractor": "local-ole"}, nil
			}
		}
		return "", map[string]string{"extractor": "path-only", "reason": "legacy-binary"}, nil
	case ".pdf":
		if config.LocalPDF() {
			if text := extractPDFText(path); text != "" {
				return text, map[string]string{"extractor": "local-pdf"}, nil
			}
		}
		return "", map[string]string{"extractor": "path-only", "reason": "pdf-disabled-by-default"}, nil
	}

	return "", openSearchMeta, nil
}
