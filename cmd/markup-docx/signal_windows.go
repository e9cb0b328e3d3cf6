//go:build windows

package main

import (
	"context"
	"os"
	"os/signal"
)

// notifyContext cancels the listener loop on interrupt, which is how the
// hotkey gets unregistered on shutdown. SIGTERM does not exist on Windows;
// console close and Ctrl-C both arrive as Interrupt.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt)
}
