//go:build !pdfcpu

package pdfx

import "errors"

// ErrUnavailable is returned by default builds; the office package falls back
// to its in-process PDF reader.
var ErrUnavailable = errors.New("pdfcpu extraction not built in (build with -tags pdfcpu)")

// ExtractAllTextCapped is the default-build stub.
func ExtractAllTextCapped(path string, pageCap, perPageCap int) (string, error) {
	return "", ErrUnavailable
}
