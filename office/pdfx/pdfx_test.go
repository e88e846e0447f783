//go:build pdfcpu

package pdfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStringLiterals(t *testing.T) {
	stream := `BT /F1 12 Tf (Hello) Tj (World) Tj ET`
	assert.Equal(t, "Hello World ", parseStringLiterals(stream, 1024))

	// Nested parentheses stay part of the literal.
	assert.Equal(t, "a (b) c ", parseStringLiterals(`(a (b) c)`, 1024))

	// Escaped delimiters are unescaped, whitespace escapes become spaces.
	assert.Equal(t, "lit(eral) line break ", parseStringLiterals(`(lit\(eral\) line\nbreak)`, 1024))

	// The byte cap truncates mid-literal.
	assert.Equal(t, "abc", parseStringLiterals(`(abcdef)`, 3))

	assert.Equal(t, "", parseStringLiterals(`no literals here`, 1024))
}

func TestNormalizeASCII(t *testing.T) {
	assert.Equal(t, "plain text", normalizeASCII("plain\x00\x01 \ttexté"))
	assert.Equal(t, "", normalizeASCII("\x00\x02"))
}
