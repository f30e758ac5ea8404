// Package store holds the client-side todo collection and applies optimistic
// mutations: local state changes first, the remote call follows, and a remote
// failure restores the captured snapshot.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/daylogapp/daylog/client/i18n"
	"github.com/daylogapp/daylog/client/remote"
	"github.com/daylogapp/daylog/client/validate"
	"github.com/daylogapp/daylog/domain"
)

// Alerter receives user-visible error messages. The presentation layer
// decides how to show them (dialog, toast, stderr).
type Alerter interface {
	Alert(title, message string)
}

// AlertFunc adapts a function to the Alerter interface.
type AlertFunc func(title, message string)

func (f AlertFunc) Alert(title, message string) { f(title, message) }

type nopAlerter struct{}

func (nopAlerter) Alert(string, string) {}

// Store owns the in-memory todo collection for the signed-in user. The
// collection is only ever written under the store's lock; observers read
// copies via Snapshot.
type Store struct {
	remote remote.Store
	tr     i18n.Translator
	alerts Alerter
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	todos    []domain.Todo
	loading  bool
	onChange func()
}

// New builds a store. A nil remote leaves every operation a silent no-op so
// the application stays usable in a disconnected/demo state.
func New(r remote.Store, tr i18n.Translator, alerts Alerter, logger *zap.Logger) *Store {
	if tr == nil {
		tr = func(key string) string { return key }
	}
	if alerts == nil {
		alerts = nopAlerter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		remote: r,
		tr:     tr,
		alerts: alerts,
		logger: logger,
		now:    time.Now,
	}
}

// SetObserver registers a callback invoked after every state change.
func (s *Store) SetObserver(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current collection, newest created first.
func (s *Store) Snapshot() []domain.Todo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyTodos(s.todos)
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Fetch replaces the collection with the remote's current record set. On
// failure the collection is left untouched; loading always clears.
func (s *Store) Fetch(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}

	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	s.notify()

	todos, err := s.remote.List(ctx)

	s.mu.Lock()
	if err == nil {
		s.todos = todos
	}
	s.loading = false
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Error("fetch todos failed", zap.Error(err))
		s.alert("error", "fetchFailed")
		return domain.WrapError(domain.ErrCodeInternal, "fetch todos", err)
	}
	return nil
}

// Add validates the title, resolves the current user and inserts a record.
// The new item is appended to the front only after the server returns it;
// there is no local placeholder.
func (s *Store) Add(ctx context.Context, title string) error {
	if s.remote == nil {
		return nil
	}

	if res := validate.Title(title); !res.Valid {
		s.alert("inputError", res.Error)
		return domain.NewError(domain.ErrCodeInvalid, res.Error)
	}

	userID, err := s.remote.CurrentUserID(ctx)
	if err != nil || userID == "" {
		s.logger.Warn("add todo without session", zap.Error(err))
		s.alert("error", "loginRequired")
		return domain.ErrUnauthorized
	}

	created, err := s.remote.Insert(ctx, remote.Insert{
		Title:       strings.TrimSpace(title),
		UserID:      userID,
		IsCompleted: false,
	})
	if err != nil {
		s.logger.Error("add todo failed", zap.Error(err))
		s.alert("error", "addFailed")
		return domain.WrapError(domain.ErrCodeInternal, "add todo", err)
	}

	s.mu.Lock()
	s.todos = append([]domain.Todo{*created}, s.todos...)
	s.mu.Unlock()
	s.notify()
	return nil
}

// Toggle flips a todo's completion state optimistically. completed_at is set
// to now on completion and cleared otherwise. On remote failure the record is
// restored to its exact pre-toggle values.
func (s *Store) Toggle(ctx context.Context, id string, isCompleted bool) error {
	newCompleted := !isCompleted
	var completedAt *time.Time
	if newCompleted {
		now := s.now()
		completedAt = &now
	}

	return s.optimistic(ctx,
		func() func() {
			var prevCompleted bool
			var prevAt *time.Time
			for i := range s.todos {
				if s.todos[i].ID == id {
					prevCompleted = s.todos[i].IsCompleted
					prevAt = s.todos[i].CompletedAt
					s.todos[i].IsCompleted = newCompleted
					s.todos[i].CompletedAt = completedAt
					break
				}
			}
			return func() {
				for i := range s.todos {
					if s.todos[i].ID == id {
						s.todos[i].IsCompleted = prevCompleted
						s.todos[i].CompletedAt = prevAt
						break
					}
				}
			}
		},
		func(ctx context.Context) error {
			return s.remote.Update(ctx, id, domain.TodoPatch{
				IsCompleted: &newCompleted,
				CompletedAt: completedAt,
			})
		},
		"toggleFailed")
}

// Delete removes a todo optimistically. On remote failure the entire prior
// collection is restored, not just the one record; see the note on optimistic.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.optimistic(ctx,
		func() func() {
			prev := copyTodos(s.todos)
			kept := s.todos[:0:0]
			for _, t := range s.todos {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			s.todos = kept
			return func() { s.todos = prev }
		},
		func(ctx context.Context) error {
			return s.remote.Delete(ctx, id)
		},
		"deleteFailed")
}

// UpdateOutput validates and saves the reflection note. Invalid input is
// rejected before any local mutation or remote call.
func (s *Store) UpdateOutput(ctx context.Context, id, output string) error {
	if s.remote == nil {
		return nil
	}
	if res := validate.Output(output); !res.Valid {
		s.alert("inputError", res.Error)
		return domain.NewError(domain.ErrCodeInvalid, res.Error)
	}

	value := output
	return s.optimistic(ctx,
		func() func() {
			prev := copyTodos(s.todos)
			for i := range s.todos {
				if s.todos[i].ID == id {
					s.todos[i].Output = &value
					break
				}
			}
			return func() { s.todos = prev }
		},
		func(ctx context.Context) error {
			return s.remote.Update(ctx, id, domain.TodoPatch{Output: &value, SetOutput: true})
		},
		"outputSaveFailed")
}

// UpdateURL validates and saves the link. An empty trimmed URL is stored as
// null, not as an empty string.
func (s *Store) UpdateURL(ctx context.Context, id, rawURL string) error {
	if s.remote == nil {
		return nil
	}
	if res := validate.URL(rawURL); !res.Valid {
		s.alert("inputError", res.Error)
		return domain.NewError(domain.ErrCodeInvalid, res.Error)
	}

	var value *string
	if trimmed := strings.TrimSpace(rawURL); trimmed != "" {
		value = &trimmed
	}
	return s.optimistic(ctx,
		func() func() {
			prev := copyTodos(s.todos)
			for i := range s.todos {
				if s.todos[i].ID == id {
					s.todos[i].URL = value
					break
				}
			}
			return func() { s.todos = prev }
		},
		func(ctx context.Context) error {
			return s.remote.Update(ctx, id, domain.TodoPatch{URL: value, SetURL: true})
		},
		"urlSaveFailed")
}

// optimistic runs the three-step mutation protocol: apply the local change
// under the lock (apply returns the restore closure), issue the remote call,
// and on failure run the restore and surface failKey.
//
// Restores that replace the full collection snapshot can clobber optimistic
// state written by other in-flight operations. That is a known trade-off of
// snapshot rollback without a merge strategy, kept as-is on purpose.
func (s *Store) optimistic(ctx context.Context, apply func() func(), call func(context.Context) error, failKey string) error {
	if s.remote == nil {
		return nil
	}

	s.mu.Lock()
	restore := apply()
	s.mu.Unlock()
	s.notify()

	if err := call(ctx); err != nil {
		s.mu.Lock()
		restore()
		s.mu.Unlock()
		s.notify()

		s.logger.Error("remote call failed, rolled back", zap.String("operation", failKey), zap.Error(err))
		s.alert("error", failKey)
		return domain.WrapError(domain.ErrCodeInternal, failKey, err)
	}
	return nil
}

func (s *Store) alert(titleKey, messageKey string) {
	s.alerts.Alert(s.tr(titleKey), s.tr(messageKey))
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func copyTodos(todos []domain.Todo) []domain.Todo {
	out := make([]domain.Todo, len(todos))
	copy(out, todos)
	return out
}
