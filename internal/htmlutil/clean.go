package htmlutil

import (
	"strings"

	"github.com/k3a/html2text"
)

// ToText converts HTML to plain text using a proper HTML parser.
// Handles entities, strips tags, and trims surrounding whitespace.
func ToText(s string) string {
	return strings.TrimSpace(html2text.HTML2Text(s))
}
