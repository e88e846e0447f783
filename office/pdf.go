package office

import (
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"search-adapters/config"
	"search-adapters/office/pdfx"
	"search-adapters/rank"
)

// extractPDFText extracts page text from a PDF on disk. The pdfcpu-based
// extractor is preferred when built in; otherwise the default reader runs with
// per-page panic guards, since malformed PDFs can panic the library. Returns
// empty text on any failure.
func extractPDFText(path string) (out string) {
	if text, err := pdfx.ExtractAllTextCapped(path, 0, 0); err == nil && text != "" {
		return rank.TruncateChars(text, config.MaxExtractedTextChars)
	}

	defer func() {
		if r := recover(); r != nil {
			out = ""
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return ""
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return ""
	}

	pages := 0
	func() {
		defer func() { _ = recover() }()
		pages = reader.NumPage()
	}()
	if pages <= 0 {
		return ""
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		func() {
			defer func() { _ = recover() }()
			page := reader.Page(i)
			if page.V.IsNull() {
				return
			}
			content := page.Content()
			for _, item := range content.Text {
				b.WriteString(item.S)
				b.WriteByte(' ')
			}
		}()
		if b.Len() > config.MaxExtractedTextChars {
			break
		}
	}

	return rank.TruncateChars(strings.TrimSpace(b.String()), config.MaxExtractedTextChars)
}
