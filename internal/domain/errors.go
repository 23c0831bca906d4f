package domain

import "errors"

var (
	ErrMissingColumn     = errors.New("required column missing")
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
	ErrSessionNotReady   = errors.New("chat session did not become ready")
	ErrSessionClosed     = errors.New("chat session closed")
	ErrElementTimeout    = errors.New("timed out waiting for element")
	ErrProfileNotFound   = errors.New("locator profile not found")
)
