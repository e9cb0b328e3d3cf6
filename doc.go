// Package markupdocx replaces the selected markup in a live Word or WPS
// Office document with its rendered equivalent.
//
// # Quick Start
//
// Create a service around an Automator (the capability driving the host
// word processor) and run the resident listener loop:
//
//	svc, err := markupdocx.New(
//	    markupdocx.WithAutomator(automator),
//	    markupdocx.WithFormat(markupdocx.FormatMarkdown),
//	    markupdocx.WithStraightQuotes(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = svc.Run(ctx, trigger)
//
// Each trigger fires one conversion request:
//
//  1. Read the current selection (clipboard fallback when empty)
//  2. Normalize autocorrected curly quotes back to straight quotes
//  3. Render the markup to a document fragment via pandoc
//  4. Replace the selection with the fragment as one undo step
//
// # Capabilities
//
// The pipeline talks to the outside world through small interfaces
// (Engine, Automator, Clipboard, Notifier), so the core is testable with
// in-memory fakes and carries no dependency on a real Word installation.
//
// # Errors
//
// All failures are sentinel errors (ErrNoSelection, ErrEngineNotFound,
// ErrRenderFailed, ...) wrapped with context. A failed request never
// mutates the document and never stops the listener.
package markupdocx
