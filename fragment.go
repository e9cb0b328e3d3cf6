package markupdocx

import "strings"

// BlockKind identifies the type of a block element.
type BlockKind string

// Block kinds produced by the rendering engine.
const (
	KindParagraph BlockKind = "paragraph"
	KindHeading   BlockKind = "heading"
	KindListItem  BlockKind = "list-item"
	KindCodeBlock BlockKind = "code-block"
	KindTable     BlockKind = "table"
)

// Heading level bounds (Word supports nine outline levels).
const (
	MinHeadingLevel = 1
	MaxHeadingLevel = 9
)

// Run is a span of text with uniform character formatting.
type Run struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// Cell is one table cell; cell content is flattened to runs.
type Cell struct {
	Runs []Run
}

// Table holds rows of cells. The first row is the header row when the
// source markup declares one; the document mapping does not distinguish.
type Table struct {
	Rows [][]Cell
}

// Block is one block-level element of a rendered fragment.
type Block struct {
	Kind    BlockKind
	Level   int    // heading level (1-9) or list nesting depth
	Ordered bool   // ordered vs. bulleted list item
	Runs    []Run  // inline content for non-table blocks
	Table   *Table // set only for KindTable
}

// Fragment is the structured output of one render call, ready for
// insertion into the host document.
type Fragment struct {
	Blocks []Block

	// Inline marks fragments rendered from a single-line selection.
	// They are inserted without a trailing paragraph mark and inherit
	// the style of the paragraph they land in.
	Inline bool
}

// Empty reports whether the fragment carries no visible content.
func (f *Fragment) Empty() bool {
	if f == nil {
		return true
	}
	for _, b := range f.Blocks {
		if b.Kind == KindTable {
			if b.Table != nil && len(b.Table.Rows) > 0 {
				return false
			}
			continue
		}
		for _, r := range b.Runs {
			if r.Text != "" {
				return false
			}
		}
	}
	return true
}

// Text returns the plain-text projection of the fragment: block contents
// joined by newlines, table cells by tabs, all formatting dropped.
func (f *Fragment) Text() string {
	if f == nil {
		return ""
	}
	parts := make([]string, 0, len(f.Blocks))
	for _, b := range f.Blocks {
		if b.Kind == KindTable {
			if b.Table != nil {
				parts = append(parts, b.Table.text())
			}
			continue
		}
		parts = append(parts, runsText(b.Runs))
	}
	return strings.Join(parts, "\n")
}

// Validate checks that every block can be mapped to the host document
// model. Unknown kinds and out-of-range heading levels are rejected so a
// replacement never starts with an element it cannot finish.
func (f *Fragment) Validate() error {
	if f == nil {
		return ErrEmptyFragment
	}
	for _, b := range f.Blocks {
		switch b.Kind {
		case KindParagraph, KindListItem, KindCodeBlock:
		case KindHeading:
			if b.Level < MinHeadingLevel || b.Level > MaxHeadingLevel {
				return ErrUnsupportedStructure
			}
		case KindTable:
			if b.Table == nil {
				return ErrUnsupportedStructure
			}
		default:
			return ErrUnsupportedStructure
		}
	}
	return nil
}

func (t *Table) text() string {
	rows := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			cells = append(cells, runsText(c.Runs))
		}
		rows = append(rows, strings.Join(cells, "\t"))
	}
	return strings.Join(rows, "\n")
}

func runsText(runs []Run) string {
	var sb strings.Builder
	for _, r := range runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}
