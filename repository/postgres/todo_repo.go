package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daylogapp/daylog/domain"
	"github.com/daylogapp/daylog/repository"
)

const todoColumns = "id, user_id, title, is_completed, completed_at, output, url, priority, created_at, updated_at"

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation of TodoRepository.
func NewTodoRepository(pool *pgxpool.Pool) repository.TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	query := fmt.Sprintf(`SELECT %s FROM todos WHERE id = $1 AND user_id = $2`, todoColumns)
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTodo(row)
}

func (r *todoRepository) List(ctx context.Context, userID string) ([]domain.Todo, error) {
	query := fmt.Sprintf(`
	SELECT %s
	FROM todos
	WHERE user_id = $1
	ORDER BY created_at DESC
	`, todoColumns)
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, *todo)
	}
	return todos, rows.Err()
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error) {
	if todo == nil {
		return nil, domain.ErrInvalidPayload
	}
	if todo.ID == "" {
		todo.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO todos (id, user_id, title, is_completed, completed_at, output, url, priority)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.IsCompleted,
		todo.CompletedAt,
		todo.Output,
		todo.URL,
		todo.Priority,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, err
	}

	return todo, nil
}

// Update applies only the fields carried by the patch and returns the
// updated row. The is_completed/completed_at pair always travels together so
// the completion invariant holds at the database boundary.
func (r *todoRepository) Update(ctx context.Context, id, userID string, patch domain.TodoPatch) (*domain.Todo, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id, userID)
	}

	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id, userID}

	if patch.IsCompleted != nil {
		args = append(args, *patch.IsCompleted)
		sets = append(sets, fmt.Sprintf("is_completed = $%d", len(args)))
		args = append(args, patch.CompletedAt)
		sets = append(sets, fmt.Sprintf("completed_at = $%d", len(args)))
	}
	if patch.SetOutput {
		args = append(args, patch.Output)
		sets = append(sets, fmt.Sprintf("output = $%d", len(args)))
	}
	if patch.SetURL {
		args = append(args, patch.URL)
		sets = append(sets, fmt.Sprintf("url = $%d", len(args)))
	}

	query := fmt.Sprintf(`
	UPDATE todos
	SET %s
	WHERE id = $1 AND user_id = $2
	RETURNING %s
	`, strings.Join(sets, ", "), todoColumns)

	row := r.pool.QueryRow(ctx, query, args...)
	return scanTodo(row)
}

func (r *todoRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM todos WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTodoNotFound
	}
	return nil
}

func (r *todoRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM todos WHERE user_id = $1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}

func scanTodo(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Todo, error) {
	var todo domain.Todo

	if err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.IsCompleted,
		&todo.CompletedAt,
		&todo.Output,
		&todo.URL,
		&todo.Priority,
		&todo.CreatedAt,
		&todo.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTodoNotFound
		}
		return nil, err
	}

	return &todo, nil
}
