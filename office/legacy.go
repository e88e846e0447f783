package office

import (
	"io"
	"os"
	"strings"
	"unicode/utf16"

	"github.com/richardlehane/mscfb"

	"search-adapters/config"
	"search-adapters/rank"
)

// oleTextStreams are the compound-file streams that commonly carry body text
// in legacy Office binaries.
var oleTextStreams = map[string]bool{
	"WordDocument":        true,
	"1Table":              true,
	"0Table":              true,
	"PowerPoint Document": true,
	"Workbook":            true,
	"Book":                true,
}

// maxOLEBytes bounds the total bytes read across salvaged streams.
const maxOLEBytes = 2 * 1024 * 1024

// extractOLEText salvages best-effort text from a legacy .doc/.ppt/.xls
// compound file: known text-bearing streams are read within a byte budget and
// decoded as UTF-16 when plausible, otherwise as printable ASCII. Any open or
// parse failure yields empty text.
func extractOLEText(path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	cf, err := mscfb.New(f)
	if err != nil {
		return ""
	}

	var b strings.Builder
	var total int64

	for entry, err := cf.Next(); err == nil; entry, err = cf.Next() {
		if total >= maxOLEBytes {
			break
		}
		if !oleTextStreams[entry.Name] {
			continue
		}

		data, _ := io.ReadAll(io.LimitReader(entry, maxOLEBytes-total))
		total += int64(len(data))
		if len(data) == 0 {
			continue
		}

		if text, ok := tryDecodeUTF16(data); ok {
			b.WriteString(text)
		} else {
			b.WriteString(salvagePrintableASCII(data))
		}
		b.WriteByte(' ')
	}

	return rank.TruncateChars(rank.NormalizeWhitespace(b.String()), config.MaxExtractedTextChars)
}

// tryDecodeUTF16 decodes little-endian UTF-16 when the zero-byte distribution
// of the data makes that encoding plausible.
func tryDecodeUTF16(data []byte) (string, bool) {
	if len(data) < 4 {
		return "", false
	}

	pairs := len(data) / 2
	zeroHigh := 0
	for i := 0; i < pairs; i++ {
		if data[i*2+1] == 0 {
			zeroHigh++
		}
	}
	if zeroHigh*10 < pairs*4 {
		return "", false
	}

	units := make([]uint16, pairs)
	for i := 0; i < pairs; i++ {
		units[i] = uint16(data[i*2]) | uint16(data[i*2+1])<<8
	}
	return string(utf16.Decode(units)), true
}

// salvagePrintableASCII keeps printable ASCII and common whitespace, mapping
// everything else to spaces.
func salvagePrintableASCII(data []byte) string {
	buf := make([]rune, 0, len(data))
	for _, c := range data {
		if c == '\t' || c == '\n' || c == '\r' || (c >= 0x20 && c <= 0x7e) {
			buf = append(buf, rune(c))
		} else {
			buf = append(buf, ' ')
		}
	}
	return string(buf)
}
