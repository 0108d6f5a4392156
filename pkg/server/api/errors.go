package api

import "errors"

// Package-level errors for the API server.
var (
	// ErrHijackUnsupported is returned when the underlying ResponseWriter
	// does not support connection hijacking
	ErrHijackUnsupported = errors.New("underlying writer does not support hijacking")
)
