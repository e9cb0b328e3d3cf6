package markupdocx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeEngine returns a canned fragment or error and records its input.
type fakeEngine struct {
	frag *Fragment
	err  error

	mu        sync.Mutex
	renders   int
	gotText   string
	gotFormat Format

	started chan struct{} // buffered; receives a signal when Render begins
	release chan struct{} // Render blocks until this is closed
}

func (e *fakeEngine) Render(ctx context.Context, text string, format Format) (*Fragment, error) {
	e.mu.Lock()
	e.renders++
	e.gotText = text
	e.gotFormat = format
	e.mu.Unlock()
	if e.started != nil {
		select {
		case e.started <- struct{}{}:
		default:
		}
	}
	if e.release != nil {
		select {
		case <-e.release:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrRenderTimeout, ctx.Err())
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.frag, nil
}

func (e *fakeEngine) renderCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.renders
}

// echoEngine renders any text as a single plain paragraph, which is what
// the real engine does with markup-free input.
type echoEngine struct{}

func (echoEngine) Render(_ context.Context, text string, _ Format) (*Fragment, error) {
	return &Fragment{Blocks: []Block{
		{Kind: KindParagraph, Runs: []Run{{Text: text}}},
	}}, nil
}

// fakeAutomator serves a scripted selection and counts logical edits.
type fakeAutomator struct {
	mu          sync.Mutex
	sel         *Selection
	selErr      error
	validateErr error
	replaceErr  error

	edits    int
	lastFrag *Fragment
}

func (a *fakeAutomator) Selection(context.Context) (*Selection, error) {
	if a.selErr != nil {
		return nil, a.selErr
	}
	return a.sel, nil
}

func (a *fakeAutomator) Validate(context.Context, *Selection) error {
	return a.validateErr
}

func (a *fakeAutomator) Replace(_ context.Context, _ *Selection, frag *Fragment) error {
	if a.replaceErr != nil {
		return a.replaceErr
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edits++
	a.lastFrag = frag
	return nil
}

func (a *fakeAutomator) editCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.edits
}

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) Text() (string, error) { return c.text, c.err }

type recordingNotifier struct {
	mu   sync.Mutex
	errs []error
}

func (n *recordingNotifier) Notify(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errs = append(n.errs, err)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.errs)
}

func selection(text string) *Selection {
	return &Selection{
		Text:   text,
		Window: "notes.docx - Word",
		Inline: !strings.Contains(strings.TrimSpace(text), "\n"),
	}
}

func plainFragment(text string) *Fragment {
	return &Fragment{Blocks: []Block{
		{Kind: KindParagraph, Runs: []Run{{Text: text}}},
	}}
}

func newTestService(t *testing.T, extra ...Option) (*Service, *fakeEngine, *fakeAutomator) {
	t.Helper()
	eng := &fakeEngine{frag: plainFragment("rendered")}
	auto := &fakeAutomator{sel: selection("*hello* world")}
	opts := append([]Option{
		WithEngine(eng),
		WithAutomator(auto),
		WithClipboard(&fakeClipboard{}),
	}, extra...)
	svc, err := New(opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, eng, auto
}

func TestNewRequiresAutomator(t *testing.T) {
	if _, err := New(WithEngine(&fakeEngine{})); err == nil {
		t.Fatal("expected error when no automator is configured")
	}
}

func TestNewRejectsInvalidFormat(t *testing.T) {
	_, err := New(WithAutomator(&fakeAutomator{}), WithFormat(Format("rst")))
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestServiceConvert(t *testing.T) {
	renderErr := fmt.Errorf("%w: unexpected token at line 2", ErrRenderFailed)

	tests := []struct {
		name      string
		sel       *Selection
		clip      *fakeClipboard
		engine    *fakeEngine
		validate  error
		opts      []Option
		wantErr   error
		wantEdits int
		wantText  string // text the engine must receive ("" = skip)
	}{
		{
			name:    "empty selection and clipboard",
			sel:     selection(""),
			clip:    &fakeClipboard{},
			engine:  &fakeEngine{frag: plainFragment("x")},
			wantErr: ErrNoSelection,
		},
		{
			name:    "whitespace selection and clipboard error",
			sel:     selection("  \n "),
			clip:    &fakeClipboard{err: errors.New("clipboard locked")},
			engine:  &fakeEngine{frag: plainFragment("x")},
			wantErr: ErrNoSelection,
		},
		{
			name:      "clipboard fallback",
			sel:       selection(""),
			clip:      &fakeClipboard{text: "**bold**"},
			engine:    &fakeEngine{frag: plainFragment("bold")},
			wantEdits: 1,
			wantText:  "**bold**",
		},
		{
			name:      "curly quotes normalized when enabled",
			sel:       selection("#quote[“hi”]"),
			clip:      &fakeClipboard{},
			engine:    &fakeEngine{frag: plainFragment("hi")},
			opts:      []Option{WithStraightQuotes()},
			wantEdits: 1,
			wantText:  `#quote["hi"]`,
		},
		{
			name:      "curly quotes pass through when disabled",
			sel:       selection("#quote[“hi”]"),
			clip:      &fakeClipboard{},
			engine:    &fakeEngine{frag: plainFragment("hi")},
			wantEdits: 1,
			wantText:  "#quote[“hi”]",
		},
		{
			name:    "render failure leaves document untouched",
			sel:     selection("*bad"),
			clip:    &fakeClipboard{},
			engine:  &fakeEngine{err: renderErr},
			wantErr: ErrRenderFailed,
		},
		{
			name: "unsupported structure aborts whole operation",
			sel:  selection("$equation$"),
			clip: &fakeClipboard{},
			engine: &fakeEngine{frag: &Fragment{Blocks: []Block{
				{Kind: KindParagraph, Runs: []Run{{Text: "ok"}}},
				{Kind: BlockKind("equation"), Runs: []Run{{Text: "e=mc2"}}},
			}}},
			wantErr: ErrUnsupportedStructure,
		},
		{
			name:    "empty render result",
			sel:     selection("%% comment only"),
			clip:    &fakeClipboard{},
			engine:  &fakeEngine{frag: &Fragment{}},
			wantErr: ErrEmptyFragment,
		},
		{
			name:     "stale selection aborts before write",
			sel:      selection("text"),
			clip:     &fakeClipboard{},
			engine:   &fakeEngine{frag: plainFragment("text")},
			validate: ErrStaleSelection,
			wantErr:  ErrStaleSelection,
		},
		{
			name:      "success is a single logical edit",
			sel:       selection("# Title\n\nbody"),
			clip:      &fakeClipboard{},
			engine:    &fakeEngine{frag: plainFragment("Title body")},
			wantEdits: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auto := &fakeAutomator{sel: tt.sel, validateErr: tt.validate}
			opts := append([]Option{
				WithEngine(tt.engine),
				WithAutomator(auto),
				WithClipboard(tt.clip),
			}, tt.opts...)
			svc, err := New(opts...)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			err = svc.Convert(context.Background())

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got := auto.editCount(); got != tt.wantEdits {
				t.Errorf("edits = %d, want %d", got, tt.wantEdits)
			}
			if tt.wantText != "" && tt.engine.gotText != tt.wantText {
				t.Errorf("engine received %q, want %q", tt.engine.gotText, tt.wantText)
			}
		})
	}
}

func TestServiceConvertInlinePropagates(t *testing.T) {
	svc, _, auto := newTestService(t)

	if err := svc.Convert(context.Background()); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if auto.lastFrag == nil || !auto.lastFrag.Inline {
		t.Error("fragment from a single-line selection must be inline")
	}
}

func TestServiceConvertBusy(t *testing.T) {
	eng := &fakeEngine{
		frag:    plainFragment("x"),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	auto := &fakeAutomator{sel: selection("text")}
	svc, err := New(WithEngine(eng), WithAutomator(auto), WithClipboard(&fakeClipboard{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- svc.Convert(context.Background()) }()

	<-eng.started
	if err := svc.Convert(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy for overlapping request, got %v", err)
	}

	close(eng.release)
	if err := <-done; err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if got := auto.editCount(); got != 1 {
		t.Errorf("edits = %d, want 1 (rejected press must not mutate)", got)
	}
}

func TestServiceRenderTimeout(t *testing.T) {
	eng := &fakeEngine{release: make(chan struct{})} // never released
	auto := &fakeAutomator{sel: selection("text")}
	svc, err := New(
		WithEngine(eng),
		WithAutomator(auto),
		WithClipboard(&fakeClipboard{}),
		WithTimeout(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := svc.Convert(context.Background()); !errors.Is(err, ErrRenderTimeout) {
		t.Fatalf("expected ErrRenderTimeout, got %v", err)
	}
	if got := auto.editCount(); got != 0 {
		t.Errorf("edits = %d, want 0 after timeout", got)
	}
}

func TestServicePlainTextIdempotence(t *testing.T) {
	const input = "just plain words, no markup"

	for _, format := range []Format{FormatTypst, FormatMarkdown, FormatHTML} {
		t.Run(string(format), func(t *testing.T) {
			auto := &fakeAutomator{sel: selection(input)}
			svc, err := New(
				WithEngine(echoEngine{}),
				WithAutomator(auto),
				WithClipboard(&fakeClipboard{}),
				WithFormat(format),
			)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if err := svc.Convert(context.Background()); err != nil {
				t.Fatalf("Convert: %v", err)
			}
			if got := auto.lastFrag.Text(); got != input {
				t.Errorf("round-tripped text = %q, want %q", got, input)
			}
		})
	}
}

// TestServiceEmphasisScenario follows "*hello* world" through a markdown
// conversion and then the unstyled text through a second one.
func TestServiceEmphasisScenario(t *testing.T) {
	rendered := &Fragment{Blocks: []Block{
		{Kind: KindParagraph, Runs: []Run{
			{Text: "hello", Italic: true},
			{Text: " world"},
		}},
	}}
	auto := &fakeAutomator{sel: selection("*hello* world")}
	svc, err := New(
		WithEngine(&fakeEngine{frag: rendered}),
		WithAutomator(auto),
		WithClipboard(&fakeClipboard{}),
		WithFormat(FormatMarkdown),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Convert(context.Background()); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	frag := auto.lastFrag
	if len(frag.Blocks) != 1 || frag.Blocks[0].Kind != KindParagraph {
		t.Fatalf("expected one paragraph, got %+v", frag.Blocks)
	}
	runs := frag.Blocks[0].Runs
	if len(runs) != 2 || !runs[0].Italic || runs[0].Text != "hello" || runs[1].Text != " world" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	// Second pass over the stripped plain text must come back unstyled.
	auto2 := &fakeAutomator{sel: selection(frag.Text())}
	svc, err = New(
		WithEngine(echoEngine{}),
		WithAutomator(auto2),
		WithClipboard(&fakeClipboard{}),
		WithFormat(FormatMarkdown),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := svc.Convert(context.Background()); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got := auto2.lastFrag
	if got.Text() != "hello world" {
		t.Errorf("round trip = %q, want %q", got.Text(), "hello world")
	}
	for _, r := range got.Blocks[0].Runs {
		if r.Bold || r.Italic || r.Code {
			t.Errorf("run %+v should be unstyled", r)
		}
	}
}

func TestServiceRun(t *testing.T) {
	eng := &fakeEngine{err: fmt.Errorf("%w: boom", ErrRenderFailed)}
	auto := &fakeAutomator{sel: selection("text")}
	notifier := &recordingNotifier{}
	svc, err := New(
		WithEngine(eng),
		WithAutomator(auto),
		WithClipboard(&fakeClipboard{}),
		WithNotifier(notifier),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	trigger := make(chan struct{}, 2)
	trigger <- struct{}{}
	trigger <- struct{}{}
	close(trigger)

	// Run must survive failing requests and return once triggers end.
	if err := svc.Run(context.Background(), trigger); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := notifier.count(); got != 2 {
		t.Errorf("notifications = %d, want 2", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Run(ctx, make(chan struct{})); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// TestServiceRunDropsPressWhileBusy drives Run through the same wiring the
// CLI uses: an unbuffered trigger channel fed by non-blocking sends. A
// press during an in-flight conversion must find no receiver and be
// dropped, never queued for execution after the conversion finishes.
func TestServiceRunDropsPressWhileBusy(t *testing.T) {
	eng := &fakeEngine{
		frag:    plainFragment("x"),
		started: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	auto := &fakeAutomator{sel: selection("text")}
	svc, err := New(WithEngine(eng), WithAutomator(auto), WithClipboard(&fakeClipboard{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	trigger := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- svc.Run(context.Background(), trigger) }()

	trigger <- struct{}{} // first press: picked up by the loop
	<-eng.started         // conversion is now in flight

	// Second press, sent the way the hotkey listener sends.
	select {
	case trigger <- struct{}{}:
		t.Error("press during an in-flight conversion must be dropped, not queued")
	default:
	}

	close(eng.release)
	close(trigger)
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := eng.renderCount(); got != 1 {
		t.Errorf("renders = %d, want 1", got)
	}
	if got := auto.editCount(); got != 1 {
		t.Errorf("edits = %d, want 1", got)
	}
}
