// Package styles maps rendered block and inline types to host document
// style names. The mapping is configuration, not a hard-coded assumption
// about the host's built-in styles: defaults follow the style IDs pandoc's
// reference.docx ships with, and a YAML file can override any of them.
package styles

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/qixing/markup-docx/internal/yamlutil"
)

// Sentinel errors for style map loading.
var (
	ErrMapNotFound = errors.New("style map file not found")
	ErrMapParse    = errors.New("failed to parse style map")
	ErrMapInvalid  = errors.New("invalid style map")
)

// Word caps outline levels at nine.
const maxHeadingLevels = 9

// Map names the host document styles each fragment element maps to.
type Map struct {
	Body        string   `yaml:"body"`        // plain paragraphs
	Headings    []string `yaml:"headings"`    // index 0 = heading level 1
	CodeBlock   string   `yaml:"codeBlock"`   // fenced/indented code paragraphs
	CodeInline  string   `yaml:"codeInline"`  // inline code character style
	ListBullet  string   `yaml:"listBullet"`  // bulleted list paragraphs
	ListOrdered string   `yaml:"listOrdered"` // ordered list paragraphs
	Table       string   `yaml:"table"`       // table style
}

// Default returns the style IDs used by pandoc's reference.docx, which is
// what the rendering engine emits when no custom reference is supplied.
func Default() *Map {
	return &Map{
		Body: "BodyText",
		Headings: []string{
			"Heading1", "Heading2", "Heading3",
			"Heading4", "Heading5", "Heading6",
			"Heading7", "Heading8", "Heading9",
		},
		CodeBlock:   "SourceCode",
		CodeInline:  "VerbatimChar",
		ListBullet:  "Compact",
		ListOrdered: "Compact",
		Table:       "Table",
	}
}

// Load reads a YAML style map and merges it over the defaults, so a file
// only needs to name the styles it overrides.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the user's own --styles flag
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMapNotFound, path)
		}
		return nil, fmt.Errorf("%w: %v", ErrMapNotFound, err)
	}

	var override Map
	if err := yamlutil.UnmarshalStrict(data, &override); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMapParse, err)
	}

	m := Default()
	m.merge(&override)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the map is usable: heading styles present and capped.
func (m *Map) Validate() error {
	if len(m.Headings) == 0 {
		return fmt.Errorf("%w: no heading styles", ErrMapInvalid)
	}
	if len(m.Headings) > maxHeadingLevels {
		return fmt.Errorf("%w: %d heading styles (max %d)", ErrMapInvalid, len(m.Headings), maxHeadingLevels)
	}
	for i, h := range m.Headings {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("%w: empty heading style at level %d", ErrMapInvalid, i+1)
		}
	}
	return nil
}

// HeadingStyle returns the style name for a heading level, clamping
// levels deeper than the map to its last entry.
func (m *Map) HeadingStyle(level int) string {
	if level < 1 {
		level = 1
	}
	if level > len(m.Headings) {
		level = len(m.Headings)
	}
	return m.Headings[level-1]
}

// HeadingLevel resolves a style name back to a heading level. Matching is
// case-insensitive and ignores spaces, so "Heading 1", "heading1" and the
// localized builder variants all resolve.
func (m *Map) HeadingLevel(style string) (int, bool) {
	key := normalizeStyle(style)
	if key == "" {
		return 0, false
	}
	for i, h := range m.Headings {
		if key == normalizeStyle(h) {
			return i + 1, true
		}
	}
	// Fall back to a trailing digit on anything that looks like a heading.
	if strings.HasPrefix(key, "heading") {
		if n, err := strconv.Atoi(strings.TrimPrefix(key, "heading")); err == nil && n >= 1 && n <= maxHeadingLevels {
			return n, true
		}
	}
	return 0, false
}

// IsCodeBlock reports whether a paragraph style marks a code block.
func (m *Map) IsCodeBlock(style string) bool {
	return styleEqual(style, m.CodeBlock)
}

// IsCodeInline reports whether a character style marks inline code.
func (m *Map) IsCodeInline(style string) bool {
	return styleEqual(style, m.CodeInline)
}

// ListKind reports whether a paragraph style marks a list item and, if so,
// whether the list is ordered.
func (m *Map) ListKind(style string) (ordered bool, ok bool) {
	// When both list styles share one name (pandoc's "Compact") every
	// match reads back as bulleted; the distinction is write-only then.
	switch {
	case styleEqual(style, m.ListOrdered) && m.ListOrdered != m.ListBullet:
		return true, true
	case styleEqual(style, m.ListBullet):
		return false, true
	}
	return false, false
}

func (m *Map) merge(o *Map) {
	if o.Body != "" {
		m.Body = o.Body
	}
	if len(o.Headings) > 0 {
		m.Headings = o.Headings
	}
	if o.CodeBlock != "" {
		m.CodeBlock = o.CodeBlock
	}
	if o.CodeInline != "" {
		m.CodeInline = o.CodeInline
	}
	if o.ListBullet != "" {
		m.ListBullet = o.ListBullet
	}
	if o.ListOrdered != "" {
		m.ListOrdered = o.ListOrdered
	}
	if o.Table != "" {
		m.Table = o.Table
	}
}

func styleEqual(a, b string) bool {
	return b != "" && normalizeStyle(a) == normalizeStyle(b)
}

func normalizeStyle(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}
