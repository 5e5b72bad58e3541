// Package store defines the conversation store interface and its SQLite
// implementation.
package store

import (
	"context"
	"errors"

	"github.com/maitred-ai/maitred/internal/domain"
)

// ErrUnavailable wraps every failure of the underlying storage medium.
var ErrUnavailable = errors.New("storage unavailable")

// Store is the interface for conversation persistence. The store exclusively
// owns session and message records; messages are immutable once appended and
// are removed only by deleting their session.
type Store interface {
	// CreateSession creates a session. An empty id generates a fresh unique
	// one; a supplied id overwrites any existing record (upsert). An empty
	// title is stored as no title.
	CreateSession(ctx context.Context, title, id string) (string, error)

	// SessionExists reports whether a session with the given id exists.
	SessionExists(ctx context.Context, id string) (bool, error)

	// AppendMessage appends a message to a session, creating the session
	// first if it does not exist. The message timestamp and the session's
	// updated_at refresh share the same instant, and the whole operation is
	// transactional.
	AppendMessage(ctx context.Context, sessionID string, role domain.Role, content string) error

	// GetMessages returns the `limit` most recently created messages of a
	// session in chronological (oldest-first) order.
	GetMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error)

	// UpdateSessionTitleIfEmpty sets the session title only when the current
	// title is null or empty; otherwise it is a no-op.
	UpdateSessionTitleIfEmpty(ctx context.Context, sessionID, title string) error

	// ListSessions returns sessions ordered by updated_at descending.
	ListSessions(ctx context.Context, limit, offset int) ([]domain.Session, error)

	// DeleteSession removes a session and all its messages. Deleting a
	// session that does not exist is a no-op, not an error.
	DeleteSession(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
