package link

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeName returns the canonical form of a leaf name: surrounding
// whitespace trimmed and NFC-normalized, so canonically equivalent
// spellings name the same point.
func NormalizeName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	if n == "" {
		return "", ErrInvalidName
	}
	return n, nil
}
