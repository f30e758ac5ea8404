package repository

import (
	"context"

	"github.com/daylogapp/daylog/domain"
)

type TodoRepository interface {
	GetByID(ctx context.Context, id, userID string) (*domain.Todo, error)
	List(ctx context.Context, userID string) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
