package reminder

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeMessage converts raw input to canonical text: invalid UTF-8
// sequences are dropped and the result is NFC-composed.
func NormalizeMessage(raw string) string {
	return norm.NFC.String(strings.ToValidUTF8(raw, ""))
}
