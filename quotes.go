package markupdocx

import "strings"

// quoteReplacer maps the curly quotes Word and WPS autocorrect inserts
// back to their straight equivalents, so code-like text the user typed is
// restored before it is interpreted as markup.
var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

// NormalizeQuotes replaces curly quotation marks with straight quotes.
// All other text passes through unchanged.
func NormalizeQuotes(text string) string {
	return quoteReplacer.Replace(text)
}
