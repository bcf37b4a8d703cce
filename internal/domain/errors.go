package domain

import "errors"

// Shared error taxonomy. None of these abort an analysis on their own: an
// insufficient-data or upstream failure degrades the report and is surfaced
// through its completeness marker and DataErrors list.
var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientData    = errors.New("insufficient data")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
