// Package hotkey delivers global hotkey presses as channel sends. On
// Windows the key is registered system-wide; elsewhere SIGUSR1 stands in
// so the pipeline can be driven headless.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for hotkey registration.
var (
	ErrInvalidCombo = errors.New("invalid hotkey combo")
	ErrRegister     = errors.New("hotkey registration failed")
)

// Combo is a parsed key combination such as "ctrl+shift+t".
type Combo struct {
	Ctrl  bool
	Shift bool
	Alt   bool
	Win   bool
	Key   byte // uppercase letter or digit
}

// ParseCombo parses a "+"-separated combo. The last part must be a single
// letter or digit; the rest are modifiers (ctrl, shift, alt, win).
func ParseCombo(s string) (Combo, error) {
	var c Combo
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), "+")
	if len(parts) < 2 {
		return c, fmt.Errorf("%w: %q (want e.g. ctrl+shift+t)", ErrInvalidCombo, s)
	}

	for _, mod := range parts[:len(parts)-1] {
		switch strings.TrimSpace(mod) {
		case "ctrl", "control":
			c.Ctrl = true
		case "shift":
			c.Shift = true
		case "alt":
			c.Alt = true
		case "win", "super", "cmd":
			c.Win = true
		default:
			return c, fmt.Errorf("%w: unknown modifier %q", ErrInvalidCombo, mod)
		}
	}

	key := strings.TrimSpace(parts[len(parts)-1])
	if len(key) != 1 || !isKeyChar(key[0]) {
		return c, fmt.Errorf("%w: key must be a letter or digit, got %q", ErrInvalidCombo, key)
	}
	c.Key = upper(key[0])

	if !c.Ctrl && !c.Shift && !c.Alt && !c.Win {
		return c, fmt.Errorf("%w: at least one modifier required", ErrInvalidCombo)
	}
	return c, nil
}

// String renders the combo in canonical form.
func (c Combo) String() string {
	var parts []string
	if c.Ctrl {
		parts = append(parts, "ctrl")
	}
	if c.Shift {
		parts = append(parts, "shift")
	}
	if c.Alt {
		parts = append(parts, "alt")
	}
	if c.Win {
		parts = append(parts, "win")
	}
	parts = append(parts, strings.ToLower(string(c.Key)))
	return strings.Join(parts, "+")
}

func isKeyChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
