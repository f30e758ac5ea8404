package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/daylogapp/daylog/client/remote"
	"github.com/daylogapp/daylog/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "daylog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndList(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.Insert(ctx, remote.Insert{Title: "first"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if first.ID == "" || first.UserID != LocalUserID {
		t.Errorf("insert result = %+v", first)
	}

	// ensure a later CreatedAt for ordering
	time.Sleep(2 * time.Millisecond)
	second, err := s.Insert(ctx, remote.Insert{Title: "second"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	todos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(todos) != 2 {
		t.Fatalf("len = %d, want 2", len(todos))
	}
	if todos[0].ID != second.ID || todos[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", todos[0].Title, todos[1].Title)
	}
}

func TestUpdateCompletionPair(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.Insert(ctx, remote.Insert{Title: "task"})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	completed := true
	at := time.Now().Round(time.Millisecond)
	if err := s.Update(ctx, created.ID, domain.TodoPatch{IsCompleted: &completed, CompletedAt: &at}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	todos, _ := s.List(ctx)
	if !todos[0].IsCompleted || todos[0].CompletedAt == nil || !todos[0].CompletedAt.Equal(at) {
		t.Errorf("todo = %+v, want completed at %v", todos[0], at)
	}

	reopened := false
	if err := s.Update(ctx, created.ID, domain.TodoPatch{IsCompleted: &reopened}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	todos, _ = s.List(ctx)
	if todos[0].IsCompleted || todos[0].CompletedAt != nil {
		t.Errorf("todo = %+v, want reopened with nil timestamp", todos[0])
	}
}

func TestUpdateOutputAndURLNulling(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, _ := s.Insert(ctx, remote.Insert{Title: "task"})

	output := "learned bbolt"
	url := "https://example.com"
	if err := s.Update(ctx, created.ID, domain.TodoPatch{
		Output: &output, SetOutput: true,
		URL: &url, SetURL: true,
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	todos, _ := s.List(ctx)
	if todos[0].Output == nil || *todos[0].Output != output {
		t.Errorf("output = %v", todos[0].Output)
	}
	if todos[0].URL == nil || *todos[0].URL != url {
		t.Errorf("url = %v", todos[0].URL)
	}

	if err := s.Update(ctx, created.ID, domain.TodoPatch{SetURL: true}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	todos, _ = s.List(ctx)
	if todos[0].URL != nil {
		t.Errorf("url = %v, want cleared to nil", todos[0].URL)
	}
	if todos[0].Output == nil {
		t.Error("output must survive an unrelated patch")
	}
}

func TestUpdateMissingRecord(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	completed := true
	err := s.Update(ctx, "missing", domain.TodoPatch{IsCompleted: &completed})
	if !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("err = %v, want ErrTodoNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, _ := s.Insert(ctx, remote.Insert{Title: "task"})
	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if todos, _ := s.List(ctx); len(todos) != 0 {
		t.Errorf("todos = %+v, want empty", todos)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, domain.ErrTodoNotFound) {
		t.Errorf("second delete err = %v, want ErrTodoNotFound", err)
	}
}

func TestCompletionCounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	completed := true
	// noon keeps day math stable regardless of when the test runs
	base := time.Now().Local()
	noon := time.Date(base.Year(), base.Month(), base.Day(), 12, 0, 0, 0, time.Local)
	yesterday := noon.AddDate(0, 0, -1)

	for i, at := range []time.Time{noon, noon.Add(-time.Hour), yesterday} {
		created, _ := s.Insert(ctx, remote.Insert{Title: "task"})
		ts := at
		if err := s.Update(ctx, created.ID, domain.TodoPatch{IsCompleted: &completed, CompletedAt: &ts}); err != nil {
			t.Fatalf("Update %d failed: %v", i, err)
		}
	}
	// open task, never counted
	if _, err := s.Insert(ctx, remote.Insert{Title: "open"}); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	points, err := s.CompletionCounts(ctx, noon.AddDate(0, 0, -7))
	if err != nil {
		t.Fatalf("CompletionCounts failed: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %+v, want 2 days", points)
	}
	if points[0].Date != yesterday.Format("2006-01-02") || points[0].Count != 1 {
		t.Errorf("points[0] = %+v", points[0])
	}
	if points[1].Date != noon.Format("2006-01-02") || points[1].Count != 2 {
		t.Errorf("points[1] = %+v", points[1])
	}
}
