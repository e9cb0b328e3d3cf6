//go:build !windows

package hotkey

import (
	"os"
	"os/signal"
	"syscall"
)

// Listener approximates a global hotkey with SIGUSR1. Desktop-global key
// grabs are a Windows feature here; on other platforms the trigger is
// `kill -USR1 <pid>`, which keeps the pipeline operable for development
// and headless testing.
type Listener struct {
	sigc chan os.Signal
	done chan struct{}
}

// New returns a signal-backed listener. The combo is parsed for
// validation only; it cannot be bound outside Windows.
func New(combo string) (*Listener, error) {
	if _, err := ParseCombo(combo); err != nil {
		return nil, err
	}
	return &Listener{}, nil
}

// Start delivers each SIGUSR1 as a non-blocking send on trigger.
func (l *Listener) Start(trigger chan<- struct{}) error {
	l.sigc = make(chan os.Signal, 1)
	l.done = make(chan struct{})
	signal.Notify(l.sigc, syscall.SIGUSR1)

	go func() {
		defer close(l.done)
		for range l.sigc {
			select {
			case trigger <- struct{}{}:
			default:
				// A conversion is in flight; drop the press.
			}
		}
	}()

	return nil
}

// Close stops signal delivery and the forwarding goroutine.
func (l *Listener) Close() error {
	if l.sigc == nil {
		return nil
	}
	signal.Stop(l.sigc)
	close(l.sigc)
	<-l.done
	return nil
}
