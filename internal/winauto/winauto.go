package winauto

import "errors"

// COM program IDs of the supported hosts. WPS registers a Word-compatible
// automation surface under its own ProgID.
const (
	ProgIDWord = "Word.Application"
	ProgIDWPS  = "KWPS.Application"
)

// ErrUnsupported reports that no automation surface exists on this
// platform. Startup fails fast with it; the pipeline core stays portable
// through the Automator interface.
var ErrUnsupported = errors.New("winauto: document automation requires Windows (Word or WPS Office)")
