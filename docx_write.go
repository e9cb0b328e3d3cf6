package markupdocx

import (
	"fmt"

	"baliance.com/gooxml/document"

	"github.com/qixing/markup-docx/internal/styles"
)

// WriteFragmentFile materializes a fragment as a .docx file. The host
// automation layer inserts that file into the live document in one edit,
// which is what keeps the replacement a single undo step.
func WriteFragmentFile(path string, frag *Fragment, m *styles.Map) error {
	if err := frag.Validate(); err != nil {
		return err
	}

	doc := document.New()
	for _, b := range frag.Blocks {
		if err := writeBlock(doc, b, m); err != nil {
			return err
		}
	}

	if err := doc.SaveToFile(path); err != nil {
		return fmt.Errorf("saving fragment: %w", err)
	}
	return nil
}

func writeBlock(doc *document.Document, b Block, m *styles.Map) error {
	switch b.Kind {
	case KindParagraph:
		p := doc.AddParagraph()
		if m.Body != "" {
			p.SetStyle(m.Body)
		}
		writeRuns(p, b.Runs, m)
	case KindHeading:
		p := doc.AddParagraph()
		p.SetStyle(m.HeadingStyle(b.Level))
		writeRuns(p, b.Runs, m)
	case KindListItem:
		p := doc.AddParagraph()
		if b.Ordered {
			p.SetStyle(m.ListOrdered)
		} else {
			p.SetStyle(m.ListBullet)
		}
		writeRuns(p, b.Runs, m)
	case KindCodeBlock:
		p := doc.AddParagraph()
		p.SetStyle(m.CodeBlock)
		writeRuns(p, b.Runs, m)
	case KindTable:
		writeTable(doc, b.Table, m)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedStructure, b.Kind)
	}
	return nil
}

func writeTable(doc *document.Document, t *Table, m *styles.Map) {
	tbl := doc.AddTable()
	if m.Table != "" {
		tbl.Properties().SetStyle(m.Table)
	}
	for _, row := range t.Rows {
		r := tbl.AddRow()
		for _, cell := range row {
			c := r.AddCell()
			writeRuns(c.AddParagraph(), cell.Runs, m)
		}
	}
}

func writeRuns(p document.Paragraph, runs []Run, m *styles.Map) {
	for _, run := range runs {
		r := p.AddRun()
		props := r.Properties()
		if run.Bold {
			props.SetBold(true)
		}
		if run.Italic {
			props.SetItalic(true)
		}
		if run.Code && m.CodeInline != "" {
			props.SetStyle(m.CodeInline)
		}
		r.AddText(run.Text)
	}
}
