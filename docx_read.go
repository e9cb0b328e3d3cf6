package markupdocx

import (
	"fmt"

	"baliance.com/gooxml/document"
	"baliance.com/gooxml/schema/soo/wml"

	"github.com/qixing/markup-docx/internal/styles"
)

// ReadFragmentFile parses a .docx file produced by the rendering engine
// into a Fragment, resolving paragraph and run styles through the map.
//
// List items are classified by paragraph style alone: nesting depth
// flattens to one level, and ordered vs. bulleted can only be told apart
// when the map assigns the two kinds distinct style names. Pandoc's
// defaults share one name, so ordered identity is write-only there.
func ReadFragmentFile(path string, m *styles.Map) (*Fragment, error) {
	doc, err := document.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening rendered output: %v", ErrRenderFailed, err)
	}
	return readFragment(doc, m)
}

// readFragment walks the document body in element order. Paragraphs and
// tables are wrapped types over the raw XML nodes, so the walk matches raw
// nodes back to their wrappers by pointer.
func readFragment(doc *document.Document, m *styles.Map) (*Fragment, error) {
	paraByX := make(map[*wml.CT_P]document.Paragraph)
	for _, p := range doc.Paragraphs() {
		paraByX[p.X()] = p
	}
	tblByX := make(map[*wml.CT_Tbl]document.Table)
	for _, t := range doc.Tables() {
		tblByX[t.X()] = t
	}

	frag := &Fragment{}
	body := doc.X().Body
	if body == nil {
		return frag, nil
	}

	for _, elts := range body.EG_BlockLevelElts {
		for _, content := range elts.EG_ContentBlockContent {
			for _, rawP := range content.P {
				p, ok := paraByX[rawP]
				if !ok {
					continue // paragraph owned by a table cell
				}
				if b, ok := readParagraph(p, m); ok {
					frag.Blocks = append(frag.Blocks, b)
				}
			}
			for _, rawT := range content.Tbl {
				t, ok := tblByX[rawT]
				if !ok {
					continue
				}
				frag.Blocks = append(frag.Blocks, readTable(t, m))
			}
		}
	}

	return frag, nil
}

// readParagraph maps one paragraph to a block. Empty paragraphs (no runs,
// no text) are dropped; the engine pads its output with them.
func readParagraph(p document.Paragraph, m *styles.Map) (Block, bool) {
	runs := readRuns(p.Runs(), m)
	if len(runs) == 0 {
		return Block{}, false
	}

	style := p.Style()
	if level, ok := m.HeadingLevel(style); ok {
		return Block{Kind: KindHeading, Level: level, Runs: runs}, true
	}
	if m.IsCodeBlock(style) {
		return Block{Kind: KindCodeBlock, Runs: runs}, true
	}
	if ordered, ok := m.ListKind(style); ok {
		return Block{Kind: KindListItem, Level: 1, Ordered: ordered, Runs: runs}, true
	}
	return Block{Kind: KindParagraph, Runs: runs}, true
}

func readTable(t document.Table, m *styles.Map) Block {
	tbl := &Table{}
	for _, row := range t.Rows() {
		cells := make([]Cell, 0, len(row.Cells()))
		for _, c := range row.Cells() {
			cell := Cell{}
			for _, p := range c.Paragraphs() {
				cell.Runs = append(cell.Runs, readRuns(p.Runs(), m)...)
			}
			cells = append(cells, cell)
		}
		tbl.Rows = append(tbl.Rows, cells)
	}
	return Block{Kind: KindTable, Table: tbl}
}

// readRuns converts document runs, merging adjacent runs with identical
// formatting. The engine splits text at arbitrary points; merging keeps
// fragments stable across render round-trips.
func readRuns(runs []document.Run, m *styles.Map) []Run {
	out := make([]Run, 0, len(runs))
	for _, r := range runs {
		text := r.Text()
		if text == "" {
			continue
		}
		props := r.Properties()
		run := Run{
			Text:   text,
			Bold:   props.IsBold(),
			Italic: props.IsItalic(),
			Code:   m.IsCodeInline(runStyleID(r)),
		}
		if n := len(out); n > 0 && sameFormat(out[n-1], run) {
			out[n-1].Text += run.Text
			continue
		}
		out = append(out, run)
	}
	return out
}

// runStyleID reads the character style of a run from the raw node; the
// wrapper type exposes no getter for it.
func runStyleID(r document.Run) string {
	x := r.X()
	if x == nil || x.RPr == nil || x.RPr.RStyle == nil {
		return ""
	}
	return x.RPr.RStyle.ValAttr
}

func sameFormat(a, b Run) bool {
	return a.Bold == b.Bold && a.Italic == b.Italic && a.Code == b.Code
}
