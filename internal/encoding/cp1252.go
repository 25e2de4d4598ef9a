package encoding

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Windows1252 converts UTF-8 text to the single-byte charset used by the
// PDF core fonts. Characters outside the charset become '?'.
func Windows1252(s string) string {
	if isASCII(s) {
		return s
	}

	enc := charmap.Windows1252

	var sb strings.Builder
	sb.Grow(len(s))

	for _, r := range s {
		b, ok := enc.EncodeRune(r)
		if !ok {
			b = '?'
		}

		sb.WriteByte(b)
	}

	return sb.String()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}

	return true
}
