package markupdocx

import "errors"

// Sentinel errors for pipeline operations.
var (
	ErrNoSelection    = errors.New("nothing selected and clipboard is empty")
	ErrEngineNotFound = errors.New("rendering engine not found in PATH")
	ErrRenderFailed   = errors.New("rendering engine failed")
	ErrRenderTimeout  = errors.New("rendering engine timed out")
	ErrStaleSelection = errors.New("selection changed since it was read")
	ErrBusy           = errors.New("a conversion is already in flight")
	ErrEmptyFragment  = errors.New("rendered fragment is empty")
	ErrReplaceFailed  = errors.New("replacing the selection failed")
	ErrWindowNotFound = errors.New("target window not found")

	// Format validation errors.
	ErrInvalidFormat = errors.New("invalid source format")

	// Fragment mapping errors.
	ErrUnsupportedStructure = errors.New("fragment contains an unsupported element")
)
