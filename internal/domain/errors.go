package domain

import "errors"

// Error classes of the import pipeline. Components wrap exactly one of these so
// callers can classify failures with errors.Is.
var (
	// ErrStorage means the queue or artifact store is unreachable or unwritable.
	ErrStorage = errors.New("storage error")

	// ErrInvalidConfiguration means the import cannot be built from the project settings,
	// e.g. a product import without an owning catalog.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotReady means the document is not yet in an importable status.
	ErrNotReady = errors.New("document not ready")

	// ErrNotFound means the provider does not know the project or document.
	ErrNotFound = errors.New("not found")

	// ErrProvider means the provider call failed or returned a malformed response.
	ErrProvider = errors.New("provider error")

	// ErrInvalidRequest means an import request carries a blank or unsafe identifier.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrTriggerFailed means the import job endpoint did not accept the job.
	ErrTriggerFailed = errors.New("job trigger failed")
)
