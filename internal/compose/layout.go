package compose

import (
	"strings"

	"github.com/MrJamesThe3rd/accountill/internal/invoice"
)

// DefaultPageFormat is used when LayoutOptions leaves the format empty.
const DefaultPageFormat = "A4"

// LayoutOptions controls the page geometry of a composed document.
type LayoutOptions struct {
	PageFormat string // A3, A4, A5, Letter, Legal or Tabloid; case-insensitive
	Landscape  bool
}

var pageFormats = map[string]string{
	"a3":      "A3",
	"a4":      "A4",
	"a5":      "A5",
	"letter":  "Letter",
	"legal":   "Legal",
	"tabloid": "Tabloid",
}

// ResolvePageFormat returns the canonical name of a page format.
func ResolvePageFormat(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPageFormat, nil
	}

	canonical, ok := pageFormats[strings.ToLower(name)]
	if !ok {
		return "", invoice.NewValidationError("pageFormat", "unsupported page format "+name)
	}

	return canonical, nil
}
