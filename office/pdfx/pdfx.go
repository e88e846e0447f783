//go:build pdfcpu

// Package pdfx holds the pdfcpu-backed PDF text path, compiled in with the
// "pdfcpu" build tag. Default builds use the stub and fall back to the
// in-process reader in the office package.
package pdfx

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

const (
	defaultPageCap    = 200
	defaultPerPageCap = 128 * 1024
)

// ExtractAllTextCapped dumps the content streams of a PDF and salvages their
// string literals into one normalized string, bounded by a page cap and a
// per-page byte cap (<=0 selects the defaults).
func ExtractAllTextCapped(path string, pageCap, perPageCap int) (string, error) {
	if pageCap <= 0 {
		pageCap = defaultPageCap
	}
	if perPageCap <= 0 {
		perPageCap = defaultPerPageCap
	}

	defer func() { _ = recover() }()

	tmpDir, err := os.MkdirTemp("", "officeindex_pdfcpu_*")
	if err != nil {
		return "", fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := api.ExtractContentFile(path, tmpDir, nil, nil); err != nil {
		return "", fmt.Errorf("pdfcpu ExtractContentFile: %w", err)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		return "", fmt.Errorf("read dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var b strings.Builder
	pages := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pages >= pageCap {
			break
		}
		data, _ := os.ReadFile(filepath.Join(tmpDir, entry.Name()))
		if len(data) == 0 {
			continue
		}

		text := normalizeASCII(parseStringLiterals(string(data), perPageCap))
		if len(text) > perPageCap {
			text = text[:perPageCap]
		}
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		pages++
	}

	return b.String(), nil
}

// parseStringLiterals collects the text inside the balanced parenthesis
// literals of a content stream, capped at maxOut bytes. Backslash escapes are
// unescaped, with the whitespace escape codes mapped to spaces.
func parseStringLiterals(s string, maxOut int) string {
	var out strings.Builder
	i := 0
	for out.Len() < maxOut {
		open := strings.IndexByte(s[i:], '(')
		if open < 0 {
			break
		}
		i += open + 1

		depth := 1
		for i < len(s) && depth > 0 && out.Len() < maxOut {
			c := s[i]
			i++
			switch c {
			case '\\':
				if i < len(s) {
					out.WriteByte(unescapeLiteral(s[i]))
					i++
				}
			case '(':
				depth++
				out.WriteByte(c)
			case ')':
				if depth--; depth == 0 {
					out.WriteByte(' ')
				} else {
					out.WriteByte(c)
				}
			default:
				out.WriteByte(c)
			}
		}
	}
	return out.String()
}

func unescapeLiteral(c byte) byte {
	switch c {
	case 'n', 'r', 't', 'f', 'b':
		return ' '
	}
	return c
}

// normalizeASCII collapses non-printable and non-ASCII runes to spaces and
// squeezes whitespace.
func normalizeASCII(s string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > 127 || !unicode.IsPrint(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(ascii), " ")
}
