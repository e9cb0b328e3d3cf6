//go:build windows

// Package winauto drives a live Word or WPS Office instance over COM.
package winauto

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unsafe"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"

	markupdocx "github.com/qixing/markup-docx"
	"github.com/qixing/markup-docx/internal/styles"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
)

// Word collapse direction for Selection.Collapse.
const wdCollapseEnd = 0

// rangeHandle pins the selected range: document identity plus character
// offsets plus the text that was read. Any drift means the selection went
// stale.
type rangeHandle struct {
	docName string
	start   int32
	end     int32
	text    string
}

// Automator drives the host word processor through its COM automation
// surface. One Automator serves one title pattern (Word or WPS).
type Automator struct {
	ProgID      string      // COM program ID, default ProgIDWord
	TitleSuffix string      // required foreground window title suffix
	Styles      *styles.Map // style map for fragment materialization
}

// New returns an automator for the given window title suffix, bound to
// Word's ProgID; set ProgID to ProgIDWPS to target WPS Office.
func New(titleSuffix string, m *styles.Map) *Automator {
	if m == nil {
		m = styles.Default()
	}
	return &Automator{
		ProgID:      ProgIDWord,
		TitleSuffix: titleSuffix,
		Styles:      m,
	}
}

// Available checks that a running host instance can be bound over COM.
func (a *Automator) Available() error {
	return a.withWord(func(*ole.IDispatch) error { return nil })
}

// Selection reads the current selection of the foreground document.
func (a *Automator) Selection(ctx context.Context) (*markupdocx.Selection, error) {
	title, err := a.foregroundTitle()
	if err != nil {
		return nil, err
	}

	var out *markupdocx.Selection
	err = a.withWord(func(word *ole.IDispatch) error {
		sel, err := dispProp(word, "Selection")
		if err != nil {
			return fmt.Errorf("reading selection: %w", err)
		}
		defer sel.Release()

		raw, err := strProp(sel, "Text")
		if err != nil {
			return fmt.Errorf("reading selection text: %w", err)
		}

		inline := !strings.Contains(strings.TrimSpace(raw), "\r")
		if inline && strings.TrimSpace(raw) != "" {
			// A single-line selection that reaches the end of its
			// paragraph includes the paragraph mark; exclude it so the
			// replacement stays inline.
			if err := trimParagraphMark(sel); err != nil {
				return err
			}
			raw, err = strProp(sel, "Text")
			if err != nil {
				return err
			}
		}

		handle, err := a.captureRange(word, sel, raw)
		if err != nil {
			return err
		}

		out = &markupdocx.Selection{
			Text:   strings.ReplaceAll(raw, "\r", "\n"),
			Window: title,
			Inline: inline,
			Handle: handle,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Validate re-reads the selection and compares it to the captured handle.
func (a *Automator) Validate(ctx context.Context, sel *markupdocx.Selection) error {
	handle, ok := sel.Handle.(*rangeHandle)
	if !ok {
		return markupdocx.ErrStaleSelection
	}

	return a.withWord(func(word *ole.IDispatch) error {
		current, err := a.currentRange(word)
		if err != nil {
			return markupdocx.ErrStaleSelection
		}
		if current.docName != handle.docName ||
			current.start != handle.start ||
			current.end != handle.end ||
			current.text != handle.text {
			return markupdocx.ErrStaleSelection
		}
		return nil
	})
}

// Replace materializes the fragment as a temporary .docx and inserts it
// over the selection inside one custom undo record, so the whole
// replacement is a single undo step. The cursor ends up after the
// inserted content.
func (a *Automator) Replace(ctx context.Context, sel *markupdocx.Selection, frag *markupdocx.Fragment) error {
	dir, err := os.MkdirTemp("", "markup-docx-insert-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, "fragment.docx")
	if err := markupdocx.WriteFragmentFile(path, frag, a.Styles); err != nil {
		return err
	}

	return a.withWord(func(word *ole.IDispatch) error {
		wsel, err := dispProp(word, "Selection")
		if err != nil {
			return fmt.Errorf("reading selection: %w", err)
		}
		defer wsel.Release()

		undo, err := dispProp(word, "UndoRecord")
		if err != nil {
			return fmt.Errorf("opening undo record: %w", err)
		}
		defer undo.Release()

		if _, err := oleutil.CallMethod(undo, "StartCustomRecord", "Markup conversion"); err != nil {
			return fmt.Errorf("starting undo record: %w", err)
		}
		defer func() { _, _ = oleutil.CallMethod(undo, "EndCustomRecord") }()

		var style *ole.VARIANT
		if frag.Inline {
			// Remember the paragraph style so the inline insert can
			// restore it; pandoc output carries its own styles.
			style, _ = oleutil.GetProperty(wsel, "Style")
		}

		if _, err := oleutil.CallMethod(wsel, "InsertFile", path); err != nil {
			return fmt.Errorf("inserting fragment: %w", err)
		}

		if frag.Inline {
			if err := dropTrailingMark(wsel); err != nil {
				return err
			}
			if style != nil {
				_, _ = oleutil.PutProperty(wsel, "Style", style.Value())
			}
		}

		// Leave the cursor just after the inserted content.
		_, _ = oleutil.CallMethod(wsel, "Collapse", wdCollapseEnd)
		return nil
	})
}

// withWord runs fn against the running Word instance inside a COM
// apartment scoped to this call.
func (a *Automator) withWord(fn func(word *ole.IDispatch) error) error {
	if err := ole.CoInitialize(0); err != nil {
		return fmt.Errorf("initializing COM: %w", err)
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.GetActiveObject(a.ProgID)
	if err != nil {
		return fmt.Errorf("%w: no running %s instance", markupdocx.ErrWindowNotFound, a.ProgID)
	}
	defer unknown.Release()

	word, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("querying IDispatch: %w", err)
	}
	defer word.Release()

	return fn(word)
}

// foregroundTitle returns the foreground window title after checking it
// matches the configured suffix.
func (a *Automator) foregroundTitle() (string, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", markupdocx.ErrWindowNotFound
	}

	buf := make([]uint16, 512)
	n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	title := syscall.UTF16ToString(buf[:n])

	if a.TitleSuffix != "" && !strings.HasSuffix(title, a.TitleSuffix) {
		return "", fmt.Errorf("%w: foreground window %q does not match %q",
			markupdocx.ErrWindowNotFound, title, a.TitleSuffix)
	}
	return title, nil
}

func (a *Automator) captureRange(word, sel *ole.IDispatch, text string) (*rangeHandle, error) {
	current, err := a.currentRangeFrom(word, sel)
	if err != nil {
		return nil, err
	}
	current.text = text
	return current, nil
}

func (a *Automator) currentRange(word *ole.IDispatch) (*rangeHandle, error) {
	sel, err := dispProp(word, "Selection")
	if err != nil {
		return nil, err
	}
	defer sel.Release()

	text, err := strProp(sel, "Text")
	if err != nil {
		return nil, err
	}
	h, err := a.currentRangeFrom(word, sel)
	if err != nil {
		return nil, err
	}
	h.text = text
	return h, nil
}

func (a *Automator) currentRangeFrom(word, sel *ole.IDispatch) (*rangeHandle, error) {
	doc, err := dispProp(word, "ActiveDocument")
	if err != nil {
		return nil, fmt.Errorf("%w: no active document", markupdocx.ErrWindowNotFound)
	}
	defer doc.Release()

	name, err := strProp(doc, "Name")
	if err != nil {
		return nil, err
	}
	start, err := intProp(sel, "Start")
	if err != nil {
		return nil, err
	}
	end, err := intProp(sel, "End")
	if err != nil {
		return nil, err
	}
	return &rangeHandle{docName: name, start: start, end: end}, nil
}

// trimParagraphMark shrinks the selection by one character when it ends
// on its paragraph's final position, excluding the paragraph mark.
func trimParagraphMark(sel *ole.IDispatch) error {
	end, err := intProp(sel, "End")
	if err != nil {
		return err
	}
	paras, err := dispProp(sel, "Paragraphs")
	if err != nil {
		return err
	}
	defer paras.Release()
	last, err := dispProp(paras, "Last")
	if err != nil {
		return err
	}
	defer last.Release()
	rng, err := dispProp(last, "Range")
	if err != nil {
		return err
	}
	defer rng.Release()
	paraEnd, err := intProp(rng, "End")
	if err != nil {
		return err
	}

	if end == paraEnd {
		if _, err := oleutil.PutProperty(sel, "End", end-1); err != nil {
			return fmt.Errorf("shrinking selection: %w", err)
		}
	}
	return nil
}

// dropTrailingMark removes the paragraph mark InsertFile appends after an
// inline insert.
func dropTrailingMark(sel *ole.IDispatch) error {
	if _, err := oleutil.CallMethod(sel, "MoveLeft"); err != nil {
		return fmt.Errorf("positioning after insert: %w", err)
	}
	text, err := strProp(sel, "Text")
	if err != nil {
		return err
	}
	if text == "\r" {
		if _, err := oleutil.CallMethod(sel, "Delete"); err != nil {
			return fmt.Errorf("removing trailing mark: %w", err)
		}
	}
	return nil
}

func dispProp(d *ole.IDispatch, name string) (*ole.IDispatch, error) {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return nil, err
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, fmt.Errorf("property %s is not an object", name)
	}
	return disp, nil
}

func strProp(d *ole.IDispatch, name string) (string, error) {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return "", err
	}
	defer v.Clear()
	return v.ToString(), nil
}

func intProp(d *ole.IDispatch, name string) (int32, error) {
	v, err := oleutil.GetProperty(d, name)
	if err != nil {
		return 0, err
	}
	defer v.Clear()
	return int32(v.Val), nil
}
