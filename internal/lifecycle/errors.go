package lifecycle

import "errors"

// Failure reasons for issue/activate/validate. The HTTP layer maps these to
// response reason strings; clients must key off the reason, not the status
// code, to tell the causes apart. Error text is the wire-visible reason.
var (
	ErrAccessDenied   = errors.New("Access denied")
	ErrMissingInput   = errors.New("Missing key or HWID")
	ErrUnknownKey     = errors.New("Invalid key")
	ErrInvalidSession = errors.New("Invalid session")
	ErrDeviceMismatch = errors.New("Key already activated on another device")
	ErrNotActivated   = errors.New("Key not activated")
	ErrHWIDMismatch   = errors.New("HWID mismatch")
	ErrExpired        = errors.New("License expired")
)
