package markupdocx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
)

// Service orchestrates the selection round-trip: read the selection,
// render it, and replace it in the live document.
type Service struct {
	cfg       serviceConfig
	engine    Engine
	automator Automator
	clipboard Clipboard
	notifier  Notifier

	busy atomic.Bool
}

// New creates a Service. An Automator must be injected (the platform
// implementation lives behind a build tag and is wired by the caller);
// everything else has a production default.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{
			format:  FormatTypst,
			timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	if err := s.cfg.format.Validate(); err != nil {
		return nil, err
	}
	if s.automator == nil {
		return nil, errors.New("markupdocx: an Automator is required")
	}
	if s.engine == nil {
		s.engine = NewPandocEngine()
	}
	if s.clipboard == nil {
		s.clipboard = SystemClipboard()
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}

	return s, nil
}

// Convert runs one conversion request end to end. At most one request is
// in flight at a time; concurrent calls fail with ErrBusy and leave the
// document untouched.
func (s *Service) Convert(ctx context.Context) error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)
	return s.convert(ctx)
}

// Run serves triggers until ctx is canceled or the trigger channel closes.
// Requests are processed strictly in trigger order; the listener side is
// expected to drop presses that arrive while a request is in flight.
// Failures are reported through the notifier and never stop the loop.
func (s *Service) Run(ctx context.Context, trigger <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-trigger:
			if !ok {
				return nil
			}
			if err := s.Convert(ctx); err != nil {
				s.notifier.Notify(err)
			}
		}
	}
}

func (s *Service) convert(ctx context.Context) error {
	sel, err := s.automator.Selection(ctx)
	if err != nil {
		return err
	}

	text := sel.Text
	if strings.TrimSpace(text) == "" {
		// Word reports a collapsed cursor as an empty selection; fall
		// back to the clipboard so copy-then-convert workflows work.
		text = s.clipboardText()
		if strings.TrimSpace(text) == "" {
			return ErrNoSelection
		}
		sel.Inline = !strings.Contains(strings.TrimSpace(text), "\n")
	}

	if s.cfg.straightQuotes {
		text = NormalizeQuotes(text)
	}

	// Capture the request up front; ambient state (focus, selection) is
	// never re-queried past this point.
	req := Request{
		Text:   text,
		Format: s.cfg.format,
		Window: sel.Window,
		Inline: sel.Inline,
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.timeout)
	defer cancel()
	frag, err := s.engine.Render(rctx, req.Text, req.Format)
	if err != nil {
		return err
	}
	if frag.Empty() {
		return ErrEmptyFragment
	}
	if err := frag.Validate(); err != nil {
		return err
	}
	frag.Inline = req.Inline

	// The render call may have taken a while; make sure the range we are
	// about to overwrite is still the one we read.
	if err := s.automator.Validate(ctx, sel); err != nil {
		return err
	}

	if err := s.automator.Replace(ctx, sel, frag); err != nil {
		if errors.Is(err, ErrStaleSelection) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrReplaceFailed, err)
	}
	return nil
}

func (s *Service) clipboardText() string {
	if s.clipboard == nil {
		return ""
	}
	text, err := s.clipboard.Text()
	if err != nil {
		return ""
	}
	return text
}
