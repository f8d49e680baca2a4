package source

import (
	"context"

	"github.com/timmy/tmimport/internal/domain"
)

// DocumentSource defines the interface for translated document providers.
type DocumentSource interface {
	// Name returns a stable identifier for this source, used in logs.
	// Parameters: none.
	// Returns:
	//   - string: source identifier.
	Name() string

	// Fetch reads the project and one of its documents and normalizes them.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	//   - projectID: provider project identifier.
	//   - documentID: provider document identifier.
	// Returns:
	//   - *domain.TranslatedDocument: normalized document; also returned alongside
	//     domain.ErrNotReady so callers can log its status.
	//   - error: wraps domain.ErrNotFound, domain.ErrNotReady, domain.ErrProvider or
	//     domain.ErrInvalidConfiguration.
	Fetch(ctx context.Context, projectID, documentID string) (*domain.TranslatedDocument, error)
}
