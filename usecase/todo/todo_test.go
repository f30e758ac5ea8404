package todo

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/daylogapp/daylog/client/validate"
	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/repository"
)

// MockTodoRepository implements repository.TodoRepository with function fields.
type MockTodoRepository struct {
	GetByIDFunc      func(ctx context.Context, id, userID string) (*domain.Todo, error)
	ListFunc         func(ctx context.Context, userID string) ([]domain.Todo, error)
	CreateFunc       func(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	UpdateFunc       func(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error)
	DeleteFunc       func(ctx context.Context, id, userID string) error
	DeleteByUserFunc func(ctx context.Context, userID string) error
}

var _ repository.TodoRepository = (*MockTodoRepository)(nil)

func (m *MockTodoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id, userID)
	}
	return nil, nil
}

func (m *MockTodoRepository) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockTodoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, todo)
	}
	return todo, nil
}

func (m *MockTodoRepository) Update(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, userID, patch)
	}
	return nil, nil
}

func (m *MockTodoRepository) Delete(ctx context.Context, id, userID string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id, userID)
	}
	return nil
}

func (m *MockTodoRepository) DeleteByUser(ctx context.Context, userID string) error {
	if m.DeleteByUserFunc != nil {
		return m.DeleteByUserFunc(ctx, userID)
	}
	return nil
}

func TestCreateTrimsTitle(t *testing.T) {
	ctx := context.Background()
	var saved *domain.Todo
	repo := &MockTodoRepository{
		CreateFunc: func(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
			saved = todo
			return todo, nil
		},
	}
	uc := New(repo, nil)

	created, err := uc.Create(ctx, "user-1", "  buy milk  ", 1)
	if err != nil {
		t.Fatalf("Create returned %v", err)
	}
	if saved.Title != "buy milk" {
		t.Errorf("saved title = %q, want trimmed", saved.Title)
	}
	if created.UserID != "user-1" || created.Priority != 1 {
		t.Errorf("created = %+v", created)
	}
}

func TestCreateRejectsInvalidTitle(t *testing.T) {
	ctx := context.Background()
	repo := &MockTodoRepository{
		CreateFunc: func(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
			t.Fatal("Create must not reach the repository")
			return nil, nil
		},
	}
	uc := New(repo, nil)

	_, err := uc.Create(ctx, "user-1", "   ", 0)
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) || domainErr.Code != domain.ErrCodeInvalid {
		t.Fatalf("err = %v, want invalid", err)
	}
	if domainErr.Message != validate.KeyTitleRequired {
		t.Errorf("message = %q, want %q", domainErr.Message, validate.KeyTitleRequired)
	}
}

func TestCreateClampsPriority(t *testing.T) {
	ctx := context.Background()
	var saved *domain.Todo
	repo := &MockTodoRepository{
		CreateFunc: func(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
			saved = todo
			return todo, nil
		},
	}
	uc := New(repo, nil)

	if _, err := uc.Create(ctx, "user-1", "task", 99); err != nil {
		t.Fatalf("Create returned %v", err)
	}
	if saved.Priority != 0 {
		t.Errorf("priority = %d, want clamped to 0", saved.Priority)
	}
}

func TestPatchEmptyRejected(t *testing.T) {
	ctx := context.Background()
	uc := New(&MockTodoRepository{}, nil)

	_, err := uc.Patch(ctx, "id", "user-1", domain.TodoPatch{})
	if !errors.Is(err, domain.ErrInvalidPayload) {
		t.Fatalf("err = %v, want ErrInvalidPayload", err)
	}
}

func TestPatchCompletionFillsTimestamp(t *testing.T) {
	ctx := context.Background()
	var sent domain.TodoPatch
	repo := &MockTodoRepository{
		UpdateFunc: func(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
			sent = patch
			return &domain.Todo{ID: id}, nil
		},
	}
	uc := New(repo, nil)

	completed := true
	before := time.Now()
	if _, err := uc.Patch(ctx, "id", "user-1", domain.TodoPatch{IsCompleted: &completed}); err != nil {
		t.Fatalf("Patch returned %v", err)
	}
	if sent.CompletedAt == nil {
		t.Fatal("completed_at must be filled when completing without a timestamp")
	}
	if sent.CompletedAt.Before(before) || sent.CompletedAt.After(time.Now()) {
		t.Errorf("completed_at %v outside execution window", sent.CompletedAt)
	}
}

func TestPatchUncompleteClearsTimestamp(t *testing.T) {
	ctx := context.Background()
	var sent domain.TodoPatch
	repo := &MockTodoRepository{
		UpdateFunc: func(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
			sent = patch
			return &domain.Todo{ID: id}, nil
		},
	}
	uc := New(repo, nil)

	completed := false
	stale := time.Now()
	_, err := uc.Patch(ctx, "id", "user-1", domain.TodoPatch{IsCompleted: &completed, CompletedAt: &stale})
	if err != nil {
		t.Fatalf("Patch returned %v", err)
	}
	if sent.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil when reopening", sent.CompletedAt)
	}
}

func TestPatchValidatesURL(t *testing.T) {
	ctx := context.Background()
	uc := New(&MockTodoRepository{
		UpdateFunc: func(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
			t.Fatal("Update must not reach the repository")
			return nil, nil
		},
	}, nil)

	bad := "ftp://example.com"
	_, err := uc.Patch(ctx, "id", "user-1", domain.TodoPatch{URL: &bad, SetURL: true})
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) || domainErr.Message != validate.KeyURLScheme {
		t.Fatalf("err = %v, want %s", err, validate.KeyURLScheme)
	}
}

func TestPatchValidatesOutput(t *testing.T) {
	ctx := context.Background()
	uc := New(&MockTodoRepository{}, nil)

	long := strings.Repeat("x", validate.MaxOutputLength+1)
	_, err := uc.Patch(ctx, "id", "user-1", domain.TodoPatch{Output: &long, SetOutput: true})
	var domainErr *domain.Error
	if !errors.As(err, &domainErr) || domainErr.Message != validate.KeyOutputTooLong {
		t.Fatalf("err = %v, want %s", err, validate.KeyOutputTooLong)
	}
}
