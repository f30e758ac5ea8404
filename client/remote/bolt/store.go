// Package bolt implements the remote store capability on a local BoltDB
// file. It backs the disconnected/demo mode: a single local user, no network.
package bolt

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/daylogapp/daylog/client/remote"
	"github.com/daylogapp/daylog/domain"
)

// LocalUserID is the fixed owner of every record in a local store.
const LocalUserID = "local"

var todosBucket = []byte("todos")

// Store persists todos in a single-bucket Bolt database.
type Store struct {
	db *bolt.DB
}

// Open initializes the database file and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(todosBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// List implements remote.Store, newest created first.
func (s *Store) List(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(todosBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var todo domain.Todo
			if err := json.Unmarshal(v, &todo); err != nil {
				continue
			}
			todos = append(todos, todo)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(todos, func(i, j int) bool {
		return todos[i].CreatedAt.After(todos[j].CreatedAt)
	})
	return todos, nil
}

// Insert implements remote.Store, minting the id and timestamps locally.
func (s *Store) Insert(ctx context.Context, fields remote.Insert) (*domain.Todo, error) {
	now := time.Now()
	todo := domain.Todo{
		ID:          uuid.NewString(),
		UserID:      LocalUserID,
		Title:       fields.Title,
		IsCompleted: fields.IsCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.put(&todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// Update implements remote.Store.
func (s *Store) Update(ctx context.Context, id string, patch domain.TodoPatch) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(todosBucket)
		raw := bucket.Get([]byte(id))
		if raw == nil {
			return domain.ErrTodoNotFound
		}
		var todo domain.Todo
		if err := json.Unmarshal(raw, &todo); err != nil {
			return err
		}

		if patch.IsCompleted != nil {
			todo.IsCompleted = *patch.IsCompleted
			todo.CompletedAt = patch.CompletedAt
		}
		if patch.SetOutput {
			todo.Output = patch.Output
		}
		if patch.SetURL {
			todo.URL = patch.URL
		}
		todo.UpdatedAt = time.Now()

		payload, err := json.Marshal(todo)
		if err != nil {
			return err
		}
		return bucket.Put([]byte(id), payload)
	})
}

// Delete implements remote.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(todosBucket)
		if bucket.Get([]byte(id)) == nil {
			return domain.ErrTodoNotFound
		}
		return bucket.Delete([]byte(id))
	})
}

// CurrentUserID implements remote.Store.
func (s *Store) CurrentUserID(ctx context.Context) (string, error) {
	return LocalUserID, nil
}

// CompletionCounts implements remote.Store by scanning completed todos and
// counting per local calendar day.
func (s *Store) CompletionCounts(ctx context.Context, since time.Time) ([]domain.ActivityPoint, error) {
	counts := make(map[string]int)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(todosBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var todo domain.Todo
			if err := json.Unmarshal(v, &todo); err != nil {
				continue
			}
			if todo.CompletedAt == nil || todo.CompletedAt.Before(since) {
				continue
			}
			counts[todo.CompletedAt.Local().Format("2006-01-02")]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	points := make([]domain.ActivityPoint, 0, len(counts))
	for date, count := range counts {
		points = append(points, domain.ActivityPoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (s *Store) put(todo *domain.Todo) error {
	payload, err := json.Marshal(todo)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(todosBucket).Put([]byte(todo.ID), payload)
	})
}

var _ remote.Store = (*Store)(nil)
