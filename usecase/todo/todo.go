package todo

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/daylogapp/daylog/client/validate"
	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/repository"
)

type UseCase struct {
	todos  repository.TodoRepository
	logger *zap.Logger
}

func New(todos repository.TodoRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		todos:  todos,
		logger: logger,
	}
}

func (uc *UseCase) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	return uc.todos.List(ctx, userID)
}

// Create validates the title server-side (the client validates too, but the
// API is callable directly) and persists a new incomplete todo.
func (uc *UseCase) Create(ctx context.Context, userID, title string, priority int) (*domain.Todo, error) {
	if res := validate.Title(title); !res.Valid {
		return nil, domain.NewError(domain.ErrCodeInvalid, res.Error)
	}
	if priority < 0 || priority > 3 {
		priority = 0
	}

	todo := &domain.Todo{
		UserID:   userID,
		Title:    strings.TrimSpace(title),
		Priority: priority,
	}
	return uc.todos.Create(ctx, todo)
}

// Patch applies a partial update after validating the touched fields and
// normalizing the completion pair: completed_at is forced to match
// is_completed so the invariant cannot be broken over the wire.
func (uc *UseCase) Patch(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
	if patch.Empty() {
		return nil, domain.ErrInvalidPayload
	}

	if patch.IsCompleted != nil {
		if *patch.IsCompleted {
			if patch.CompletedAt == nil {
				now := time.Now()
				patch.CompletedAt = &now
			}
		} else {
			patch.CompletedAt = nil
		}
	}

	if patch.SetOutput && patch.Output != nil {
		if res := validate.Output(*patch.Output); !res.Valid {
			return nil, domain.NewError(domain.ErrCodeInvalid, res.Error)
		}
	}
	if patch.SetURL && patch.URL != nil {
		if res := validate.URL(*patch.URL); !res.Valid {
			return nil, domain.NewError(domain.ErrCodeInvalid, res.Error)
		}
	}

	return uc.todos.Update(ctx, id, userID, patch)
}

func (uc *UseCase) Delete(ctx context.Context, id, userID string) error {
	return uc.todos.Delete(ctx, id, userID)
}
