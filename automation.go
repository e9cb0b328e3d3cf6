package markupdocx

import (
	"context"

	"github.com/atotto/clipboard"
)

// Selection is a live reference to the highlighted range of the target
// document. It is valid for one request only; the automator invalidates it
// once the document mutates.
type Selection struct {
	Text   string // selected text, paragraph marks normalized to \n
	Window string // title of the containing window at read time
	Inline bool   // selection spans a single line

	// Handle is the automator's private range reference. The pipeline
	// never inspects it; it only hands it back to the same automator.
	Handle any
}

// Automator is the document automation capability. Implementations wrap a
// live host application (Word/WPS over COM) or an in-memory document for
// tests; the pipeline core is identical over both.
type Automator interface {
	// Selection reads the current selection of the target window.
	// Returns ErrWindowNotFound when no window matches the title pattern.
	Selection(ctx context.Context) (*Selection, error)

	// Validate reports whether sel still addresses the range it was read
	// from. Returns ErrStaleSelection when the document was edited or the
	// window closed in the meantime.
	Validate(ctx context.Context, sel *Selection) error

	// Replace swaps the selected range for the fragment as one logical
	// edit (a single undo step) and leaves the cursor just after the
	// inserted content. On error the document must be unchanged.
	Replace(ctx context.Context, sel *Selection, frag *Fragment) error
}

// Clipboard supplies fallback source text when the selection is empty.
type Clipboard interface {
	Text() (string, error)
}

// SystemClipboard returns the OS clipboard capability.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

type systemClipboard struct{}

func (systemClipboard) Text() (string, error) {
	return clipboard.ReadAll()
}

// Notifier surfaces request failures to the user. The pipeline never
// swallows an error silently; the channel (dialog, log line, status text)
// is the caller's choice.
type Notifier interface {
	Notify(err error)
}

type noopNotifier struct{}

func (noopNotifier) Notify(error) {}
