// Package remote defines the capability the task store uses to reach the
// authoritative backend. Implementations: rest (the sync server's JSON API)
// and bolt (a local on-disk store for disconnected use).
package remote

import (
	"context"
	"time"

	"github.com/daylogapp/daylog/domain"
)

// Insert carries the fields the client supplies on creation. Everything else
// (id, timestamps) is assigned by the store.
type Insert struct {
	Title       string `json:"title"`
	UserID      string `json:"user_id"`
	IsCompleted bool   `json:"is_completed"`
}

// Store is the remote record store. All operations are scoped to the
// authenticated user by the backend, not by client-side filtering.
type Store interface {
	// List returns the user's todos ordered by creation time descending.
	List(ctx context.Context) ([]domain.Todo, error)
	// Insert creates a record and returns it with the server-assigned id.
	Insert(ctx context.Context, fields Insert) (*domain.Todo, error)
	// Update applies a partial field set to one record.
	Update(ctx context.Context, id string, patch domain.TodoPatch) error
	// Delete removes one record.
	Delete(ctx context.Context, id string) error
	// CurrentUserID resolves the authenticated user's identifier.
	CurrentUserID(ctx context.Context) (string, error)
	// CompletionCounts returns per-day completion counts since the given
	// time, for the activity graph.
	CompletionCounts(ctx context.Context, since time.Time) ([]domain.ActivityPoint, error)
}
