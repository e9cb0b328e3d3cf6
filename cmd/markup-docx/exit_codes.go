package main

import (
	"errors"
	"os"

	markupdocx "github.com/qixing/markup-docx"
	"github.com/qixing/markup-docx/internal/hotkey"
	"github.com/qixing/markup-docx/internal/styles"
	"github.com/qixing/markup-docx/internal/winauto"
)

// Exit codes for the markup-docx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, custom codes < 126.
const (
	ExitSuccess = 0 // Normal termination
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, format, or style map
	ExitIO      = 3 // File not found, permission denied
	ExitEngine  = 4 // Rendering engine missing or automation unavailable
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use
// fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Capability errors (exit 4): missing engine or automation surface.
	if errors.Is(err, markupdocx.ErrEngineNotFound) ||
		errors.Is(err, winauto.ErrUnsupported) ||
		errors.Is(err, hotkey.ErrRegister) {
		return ExitEngine
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, markupdocx.ErrInvalidFormat) ||
		errors.Is(err, styles.ErrMapNotFound) ||
		errors.Is(err, styles.ErrMapParse) ||
		errors.Is(err, styles.ErrMapInvalid) ||
		errors.Is(err, hotkey.ErrInvalidCombo) {
		return ExitUsage
	}

	return ExitGeneral
}
