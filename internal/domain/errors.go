package domain

import "errors"

var (
	// ErrMissingScope rejects calls without the required scope identifiers.
	ErrMissingScope = errors.New("tenant, facility and material identifiers are required")

	// ErrInsufficientHistory marks a material with too little demand history
	// to forecast. Batch callers skip and log; it never aborts a run.
	ErrInsufficientHistory = errors.New("insufficient demand history")

	// ErrNoQualifyingData is returned when an accuracy period contains no
	// rows carrying both actual and forecasted quantities.
	ErrNoQualifyingData = errors.New("no demand rows with both actual and forecasted quantities")

	// ErrNotFound is the generic missing-row error surfaced by repositories.
	ErrNotFound = errors.New("not found")
)
