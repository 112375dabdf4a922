package models

import "errors"

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrUnknownKind is returned for catalog kinds other than the three inventory tables.
	ErrUnknownKind = errors.New("unknown catalog kind")
	// ErrInvalidArguments marks input rejected before touching storage.
	ErrInvalidArguments = errors.New("invalid arguments")
	// ErrNotConfigured is returned by operations whose integration is disabled.
	ErrNotConfigured = errors.New("integration not configured")
)
