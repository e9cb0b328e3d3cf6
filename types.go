package markupdocx

import (
	"fmt"
	"strings"
	"time"
)

// Format is a source markup language accepted by the rendering engine.
type Format string

// Supported source formats. The tags double as pandoc reader names.
const (
	FormatTypst    Format = "typst"
	FormatMarkdown Format = "markdown_mmd"
	FormatHTML     Format = "html"
)

// ParseFormat resolves a user-supplied format tag, accepting "md" as a
// shorthand for markdown_mmd.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case string(FormatTypst):
		return FormatTypst, nil
	case string(FormatMarkdown), "md":
		return FormatMarkdown, nil
	case string(FormatHTML):
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q (want typst, markdown_mmd, md, or html)", ErrInvalidFormat, s)
}

// Ext returns the source file extension the engine expects for the format.
func (f Format) Ext() string {
	switch f {
	case FormatTypst:
		return "typ"
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	}
	return ""
}

// Validate checks that the format is one of the supported tags.
func (f Format) Validate() error {
	switch f {
	case FormatTypst, FormatMarkdown, FormatHTML:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidFormat, f)
}

// Request captures one hotkey-triggered conversion. The window identity is
// resolved once at trigger time and never re-queried mid-operation.
type Request struct {
	Text   string // source markup, after quote normalization
	Format Format
	Window string // title of the window targeted by this request
	Inline bool   // selection was a single line
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	format         Format
	straightQuotes bool
	timeout        time.Duration
}

// Default window title suffixes, matched against the end of the target
// window title ("{doc} - Word", "{doc} - WPS Office").
const (
	TitleSuffixWord = " - Word"
	TitleSuffixWPS  = " - WPS Office"
)

// defaultTimeout bounds one render call.
const defaultTimeout = 30 * time.Second

// WithFormat sets the source markup format (default typst).
func WithFormat(f Format) Option {
	return func(s *Service) { s.cfg.format = f }
}

// WithStraightQuotes enables curly-to-straight quote normalization before
// the selection is interpreted as markup.
func WithStraightQuotes() Option {
	return func(s *Service) { s.cfg.straightQuotes = true }
}

// WithTimeout sets the render deadline for one request.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("markupdocx: WithTimeout duration must be positive")
	}
	return func(s *Service) { s.cfg.timeout = d }
}

// WithEngine injects a rendering engine (e.g. a fake in tests).
func WithEngine(e Engine) Option {
	return func(s *Service) { s.engine = e }
}

// WithAutomator injects a document automation capability.
func WithAutomator(a Automator) Option {
	return func(s *Service) { s.automator = a }
}

// WithClipboard injects a clipboard capability.
func WithClipboard(c Clipboard) Option {
	return func(s *Service) { s.clipboard = c }
}

// WithNotifier injects the user-facing error channel.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}
