package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/shlex"
	"github.com/sirupsen/logrus"

	markupdocx "github.com/qixing/markup-docx"
	"github.com/qixing/markup-docx/internal/hotkey"
	"github.com/qixing/markup-docx/internal/styles"
	"github.com/qixing/markup-docx/internal/winauto"
)

// run wires the capabilities together and serves hotkey presses until the
// context is canceled.
func run(ctx context.Context, flags *appFlags, log *logrus.Logger) error {
	format, err := markupdocx.ParseFormat(flags.from)
	if err != nil {
		return err
	}

	suffix := markupdocx.TitleSuffixWord
	if flags.wps {
		suffix = markupdocx.TitleSuffixWPS
	}
	if flags.title != "" {
		suffix = flags.title
	}

	styleMap := styles.Default()
	if flags.stylesFile != "" {
		styleMap, err = styles.Load(flags.stylesFile)
		if err != nil {
			return err
		}
	}

	engine, err := buildEngine(flags, styleMap)
	if err != nil {
		return err
	}

	automator := newAutomator(flags, suffix, styleMap)
	if err := automator.Available(); err != nil {
		return fmt.Errorf("automation unavailable: %w", err)
	}

	opts := []markupdocx.Option{
		markupdocx.WithFormat(format),
		markupdocx.WithAutomator(automator),
		markupdocx.WithEngine(engine),
		markupdocx.WithTimeout(flags.timeout),
		markupdocx.WithNotifier(&logNotifier{log: log}),
	}
	if flags.straightQuotes {
		opts = append(opts, markupdocx.WithStraightQuotes())
	}
	svc, err := markupdocx.New(opts...)
	if err != nil {
		return err
	}

	listener, err := hotkey.New(flags.hotkey)
	if err != nil {
		return err
	}
	// Unbuffered on purpose: the listener sends non-blocking, so a press
	// during an in-flight conversion finds no receiver and is dropped
	// instead of queued against a selection the user may have moved past.
	trigger := make(chan struct{})
	if err := listener.Start(trigger); err != nil {
		return err
	}
	defer func() { _ = listener.Close() }()

	log.WithFields(logrus.Fields{
		"hotkey": flags.hotkey,
		"from":   string(format),
		"window": suffix,
	}).Info("listening; press the hotkey in the target window to convert")

	if err := svc.Run(ctx, trigger); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// newAutomator binds the automator to the host selected by --wps: WPS
// exposes a Word-compatible COM surface under its own ProgID.
func newAutomator(flags *appFlags, suffix string, m *styles.Map) *winauto.Automator {
	a := winauto.New(suffix, m)
	if flags.wps {
		a.ProgID = winauto.ProgIDWPS
	}
	return a
}

// buildEngine configures the pandoc engine, honoring an --engine override
// such as "pandoc --sandbox".
func buildEngine(flags *appFlags, m *styles.Map) (*markupdocx.PandocEngine, error) {
	engine := markupdocx.NewPandocEngine()
	engine.Styles = m
	engine.KeepDir = flags.keepDir

	if flags.engine != "" {
		parts, err := shlex.Split(flags.engine)
		if err != nil || len(parts) == 0 {
			return nil, fmt.Errorf("invalid --engine command line %q: %v", flags.engine, err)
		}
		engine.Command = parts
	}
	return engine, nil
}

// logNotifier surfaces request failures through the process log. An empty
// selection is a user no-op, not a fault; everything else is an error.
type logNotifier struct {
	log *logrus.Logger
}

func (n *logNotifier) Notify(err error) {
	switch {
	case errors.Is(err, markupdocx.ErrNoSelection):
		n.log.Info("nothing to convert: select some markup first")
	case errors.Is(err, markupdocx.ErrBusy):
		n.log.Debug("conversion already in flight; press dropped")
	default:
		n.log.WithError(err).Error("conversion failed; document left unchanged")
	}
}
