//go:build windows

package hotkey

import (
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procRegisterHotKey   = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey = user32.NewProc("UnregisterHotKey")
	procGetMessageW      = user32.NewProc("GetMessageW")
	procPostThreadMsgW   = user32.NewProc("PostThreadMessageW")
)

// Win32 constants for RegisterHotKey and the message loop.
const (
	modAlt     = 0x0001
	modControl = 0x0002
	modShift   = 0x0004
	modWin     = 0x0008

	wmHotkey = 0x0312
	wmQuit   = 0x0012

	hotkeyID = 1
)

type msg struct {
	hwnd    uintptr
	message uint32
	wparam  uintptr
	lparam  uintptr
	time    uint32
	pt      [2]int32
}

// Listener owns a message-loop thread with a system-wide hotkey.
type Listener struct {
	combo Combo

	mu       sync.Mutex
	threadID uint32
	done     chan struct{}
}

// New returns a listener for the given combo string.
func New(combo string) (*Listener, error) {
	c, err := ParseCombo(combo)
	if err != nil {
		return nil, err
	}
	return &Listener{combo: c}, nil
}

// Start registers the hotkey and delivers each press as a non-blocking
// send on trigger: presses arriving while the receiver is busy are
// dropped rather than queued.
func (l *Listener) Start(trigger chan<- struct{}) error {
	errc := make(chan error, 1)
	l.done = make(chan struct{})

	go func() {
		// RegisterHotKey binds to the calling thread's message queue.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		l.mu.Lock()
		l.threadID = windows.GetCurrentThreadId()
		l.mu.Unlock()

		ok, _, err := procRegisterHotKey.Call(0, hotkeyID, uintptr(l.modifiers()), uintptr(l.combo.Key))
		if ok == 0 {
			errc <- fmt.Errorf("%w: %q: %v", ErrRegister, l.combo.String(), err)
			return
		}
		errc <- nil
		defer func() { _, _, _ = procUnregisterHotKey.Call(0, hotkeyID) }()
		defer close(l.done)

		var m msg
		for {
			ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(ret) <= 0 { // WM_QUIT or error
				return
			}
			if m.message == wmHotkey {
				select {
				case trigger <- struct{}{}:
				default:
					// A conversion is in flight; drop the press.
				}
			}
		}
	}()

	return <-errc
}

// Close stops the message loop and unregisters the hotkey.
func (l *Listener) Close() error {
	l.mu.Lock()
	tid := l.threadID
	l.mu.Unlock()
	if tid == 0 {
		return nil
	}
	_, _, _ = procPostThreadMsgW.Call(uintptr(tid), wmQuit, 0, 0)
	if l.done != nil {
		<-l.done
	}
	return nil
}

func (l *Listener) modifiers() uint32 {
	var m uint32
	if l.combo.Ctrl {
		m |= modControl
	}
	if l.combo.Shift {
		m |= modShift
	}
	if l.combo.Alt {
		m |= modAlt
	}
	if l.combo.Win {
		m |= modWin
	}
	return m
}
