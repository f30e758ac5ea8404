package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/daylogapp/daylog/client/remote"
	"github.com/daylogapp/daylog/client/validate"
	"github.com/daylogapp/daylog/domain"
)

// MockRemote implements remote.Store with overridable function fields.
type MockRemote struct {
	ListFunc             func(ctx context.Context) ([]domain.Todo, error)
	InsertFunc           func(ctx context.Context, fields remote.Insert) (*domain.Todo, error)
	UpdateFunc           func(ctx context.Context, id string, patch domain.TodoPatch) error
	DeleteFunc           func(ctx context.Context, id string) error
	CurrentUserIDFunc    func(ctx context.Context) (string, error)
	CompletionCountsFunc func(ctx context.Context, since time.Time) ([]domain.ActivityPoint, error)
}

var _ remote.Store = (*MockRemote)(nil)

func (m *MockRemote) List(ctx context.Context) ([]domain.Todo, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockRemote) Insert(ctx context.Context, fields remote.Insert) (*domain.Todo, error) {
	if m.InsertFunc != nil {
		return m.InsertFunc(ctx, fields)
	}
	return nil, nil
}

func (m *MockRemote) Update(ctx context.Context, id string, patch domain.TodoPatch) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, patch)
	}
	return nil
}

func (m *MockRemote) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockRemote) CurrentUserID(ctx context.Context) (string, error) {
	if m.CurrentUserIDFunc != nil {
		return m.CurrentUserIDFunc(ctx)
	}
	return "user-1", nil
}

func (m *MockRemote) CompletionCounts(ctx context.Context, since time.Time) ([]domain.ActivityPoint, error) {
	if m.CompletionCountsFunc != nil {
		return m.CompletionCountsFunc(ctx, since)
	}
	return nil, nil
}

type alertRecorder struct {
	titles   []string
	messages []string
}

func (a *alertRecorder) Alert(title, message string) {
	a.titles = append(a.titles, title)
	a.messages = append(a.messages, message)
}

func seededStore(t *testing.T, remote remote.Store, todos []domain.Todo) (*Store, *alertRecorder) {
	t.Helper()
	alerts := &alertRecorder{}
	s := New(remote, nil, alerts, nil)
	s.todos = todos
	return s, alerts
}

func timePtr(t time.Time) *time.Time { return &t }

func TestFetchReplacesCollection(t *testing.T) {
	ctx := context.Background()
	want := []domain.Todo{{ID: "a", Title: "one"}, {ID: "b", Title: "two"}}

	mock := &MockRemote{
		ListFunc: func(ctx context.Context) ([]domain.Todo, error) {
			return want, nil
		},
	}
	s, alerts := seededStore(t, mock, nil)

	if err := s.Fetch(ctx); err != nil {
		t.Fatalf("Fetch returned %v", err)
	}
	got := s.Snapshot()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("Snapshot = %+v, want %+v", got, want)
	}
	if s.Loading() {
		t.Error("loading should be false after fetch")
	}
	if len(alerts.messages) != 0 {
		t.Errorf("unexpected alerts: %v", alerts.messages)
	}
}

func TestFetchFailureKeepsCollectionAndClearsLoading(t *testing.T) {
	ctx := context.Background()
	existing := []domain.Todo{{ID: "a", Title: "keep me"}}

	mock := &MockRemote{
		ListFunc: func(ctx context.Context) ([]domain.Todo, error) {
			return nil, errors.New("boom")
		},
	}
	s, alerts := seededStore(t, mock, existing)

	if err := s.Fetch(ctx); err == nil {
		t.Fatal("expected error from Fetch")
	}
	if got := s.Snapshot(); len(got) != 1 || got[0].ID != "a" {
		t.Errorf("collection changed on failed fetch: %+v", got)
	}
	if s.Loading() {
		t.Error("loading should clear even on failure")
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != "fetchFailed" {
		t.Errorf("alerts = %v, want [fetchFailed]", alerts.messages)
	}
}

func TestAddValidationShortCircuits(t *testing.T) {
	ctx := context.Background()
	insertCalled := false
	mock := &MockRemote{
		InsertFunc: func(ctx context.Context, fields remote.Insert) (*domain.Todo, error) {
			insertCalled = true
			return &domain.Todo{}, nil
		},
	}
	s, alerts := seededStore(t, mock, nil)

	err := s.Add(ctx, "   ")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if insertCalled {
		t.Error("Insert must not be called for invalid input")
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != validate.KeyTitleRequired {
		t.Errorf("alerts = %v, want [%s]", alerts.messages, validate.KeyTitleRequired)
	}
	if len(s.Snapshot()) != 0 {
		t.Error("collection must stay empty after rejected add")
	}
}

func TestAddRequiresSession(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{
		CurrentUserIDFunc: func(ctx context.Context) (string, error) {
			return "", nil
		},
	}
	s, alerts := seededStore(t, mock, nil)

	if err := s.Add(ctx, "task"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != "loginRequired" {
		t.Errorf("alerts = %v, want [loginRequired]", alerts.messages)
	}
}

func TestAddPrependsServerRecord(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{
		InsertFunc: func(ctx context.Context, fields remote.Insert) (*domain.Todo, error) {
			if fields.Title != "new task" {
				t.Errorf("insert title = %q, want trimmed %q", fields.Title, "new task")
			}
			if fields.UserID != "user-1" {
				t.Errorf("insert user = %q, want user-1", fields.UserID)
			}
			return &domain.Todo{ID: "new", Title: fields.Title, UserID: fields.UserID}, nil
		},
	}
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "old"}})

	if err := s.Add(ctx, "  new task  "); err != nil {
		t.Fatalf("Add returned %v", err)
	}
	got := s.Snapshot()
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("new record must be first: %+v", got)
	}
}

func TestAddIntoEmptyCollection(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{
		InsertFunc: func(ctx context.Context, fields remote.Insert) (*domain.Todo, error) {
			return &domain.Todo{ID: "1", Title: fields.Title, UserID: fields.UserID}, nil
		},
	}
	s, _ := seededStore(t, mock, nil)

	if err := s.Add(ctx, "Buy milk"); err != nil {
		t.Fatalf("Add returned %v", err)
	}
	got := s.Snapshot()
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Title != "Buy milk" || got[0].IsCompleted {
		t.Errorf("todo = %+v", got[0])
	}
}

func TestToggleTwiceReturnsToOriginal(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{}
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "a"}})

	if err := s.Toggle(ctx, "a", false); err != nil {
		t.Fatalf("first Toggle returned %v", err)
	}
	if err := s.Toggle(ctx, "a", true); err != nil {
		t.Fatalf("second Toggle returned %v", err)
	}

	got := s.Snapshot()[0]
	if got.IsCompleted {
		t.Error("IsCompleted should return to false")
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil after toggling back", got.CompletedAt)
	}
}

func TestToggleCompletesOptimistically(t *testing.T) {
	ctx := context.Background()
	var sent domain.TodoPatch
	mock := &MockRemote{
		UpdateFunc: func(ctx context.Context, id string, patch domain.TodoPatch) error {
			sent = patch
			return nil
		},
	}
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "a", IsCompleted: false}})
	fixed := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Toggle(ctx, "a", false); err != nil {
		t.Fatalf("Toggle returned %v", err)
	}

	got := s.Snapshot()[0]
	if !got.IsCompleted {
		t.Error("todo should be completed")
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(fixed) {
		t.Errorf("CompletedAt = %v, want %v", got.CompletedAt, fixed)
	}
	if sent.IsCompleted == nil || !*sent.IsCompleted {
		t.Error("patch must carry is_completed=true")
	}
	if sent.CompletedAt == nil || !sent.CompletedAt.Equal(fixed) {
		t.Errorf("patch CompletedAt = %v, want %v", sent.CompletedAt, fixed)
	}
}

func TestToggleUncompleteClearsTimestamp(t *testing.T) {
	ctx := context.Background()
	var sent domain.TodoPatch
	mock := &MockRemote{
		UpdateFunc: func(ctx context.Context, id string, patch domain.TodoPatch) error {
			sent = patch
			return nil
		},
	}
	done := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "a", IsCompleted: true, CompletedAt: timePtr(done)}})

	if err := s.Toggle(ctx, "a", true); err != nil {
		t.Fatalf("Toggle returned %v", err)
	}

	got := s.Snapshot()[0]
	if got.IsCompleted || got.CompletedAt != nil {
		t.Errorf("todo should be reopened with nil CompletedAt, got %+v", got)
	}
	if sent.IsCompleted == nil || *sent.IsCompleted {
		t.Error("patch must carry is_completed=false")
	}
	if sent.CompletedAt != nil {
		t.Errorf("patch CompletedAt = %v, want nil", sent.CompletedAt)
	}
}

func TestToggleRollbackRestoresExactPriorValues(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{
		UpdateFunc: func(ctx context.Context, id string, patch domain.TodoPatch) error {
			return errors.New("network down")
		},
	}
	done := time.Date(2026, 8, 20, 18, 30, 0, 0, time.UTC)
	s, alerts := seededStore(t, mock, []domain.Todo{{ID: "a", IsCompleted: true, CompletedAt: timePtr(done)}})

	if err := s.Toggle(ctx, "a", true); err == nil {
		t.Fatal("expected error from Toggle")
	}

	got := s.Snapshot()[0]
	if !got.IsCompleted {
		t.Error("rollback must restore IsCompleted=true")
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(done) {
		t.Errorf("rollback must restore the original timestamp, got %v", got.CompletedAt)
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != "toggleFailed" {
		t.Errorf("alerts = %v, want [toggleFailed]", alerts.messages)
	}
}

func TestDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{}
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "a"}, {ID: "b"}, {ID: "c"}})

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete returned %v", err)
	}
	got := s.Snapshot()
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Snapshot = %+v, want a and c", got)
	}
}

func TestDeleteRollbackRestoresFullSnapshot(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{
		DeleteFunc: func(ctx context.Context, id string) error {
			return errors.New("server error")
		},
	}
	before := []domain.Todo{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	s, alerts := seededStore(t, mock, before)

	if err := s.Delete(ctx, "b"); err == nil {
		t.Fatal("expected error from Delete")
	}
	got := s.Snapshot()
	if len(got) != 3 || got[0].ID != "a" || got[1].ID != "b" || got[2].ID != "c" {
		t.Errorf("rollback must restore the full prior collection, got %+v", got)
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != "deleteFailed" {
		t.Errorf("alerts = %v, want [deleteFailed]", alerts.messages)
	}
}

func TestUpdateOutputValidatesBeforeMutation(t *testing.T) {
	ctx := context.Background()
	updateCalled := false
	mock := &MockRemote{
		UpdateFunc: func(ctx context.Context, id string, patch domain.TodoPatch) error {
			updateCalled = true
			return nil
		},
	}
	s, alerts := seededStore(t, mock, []domain.Todo{{ID: "a"}})

	tooLong := make([]byte, validate.MaxOutputLength+1)
	for i := range tooLong {
		tooLong[i] = 'x'
	}
	if err := s.UpdateOutput(ctx, "a", string(tooLong)); err == nil {
		t.Fatal("expected validation error")
	}
	if updateCalled {
		t.Error("Update must not be called for invalid output")
	}
	if got := s.Snapshot()[0]; got.Output != nil {
		t.Error("local record must not change on rejected output")
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != validate.KeyOutputTooLong {
		t.Errorf("alerts = %v, want [%s]", alerts.messages, validate.KeyOutputTooLong)
	}
}

func TestUpdateOutputSendsExplicitValue(t *testing.T) {
	ctx := context.Background()
	var sent domain.TodoPatch
	mock := &MockRemote{
		UpdateFunc: func(ctx context.Context, id string, patch domain.TodoPatch) error {
			sent = patch
			return nil
		},
	}
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "a"}})

	if err := s.UpdateOutput(ctx, "a", "shipped the report"); err != nil {
		t.Fatalf("UpdateOutput returned %v", err)
	}
	if !sent.SetOutput || sent.Output == nil || *sent.Output != "shipped the report" {
		t.Errorf("patch = %+v, want explicit output", sent)
	}
	got := s.Snapshot()[0]
	if got.Output == nil || *got.Output != "shipped the report" {
		t.Errorf("local output = %v", got.Output)
	}
}

func TestUpdateURLEmptyStoresNull(t *testing.T) {
	ctx := context.Background()
	var sent domain.TodoPatch
	mock := &MockRemote{
		UpdateFunc: func(ctx context.Context, id string, patch domain.TodoPatch) error {
			sent = patch
			return nil
		},
	}
	existing := "https://example.com"
	s, _ := seededStore(t, mock, []domain.Todo{{ID: "a", URL: &existing}})

	if err := s.UpdateURL(ctx, "a", "   "); err != nil {
		t.Fatalf("UpdateURL returned %v", err)
	}
	if !sent.SetURL || sent.URL != nil {
		t.Errorf("patch = %+v, want explicit null url", sent)
	}
	if got := s.Snapshot()[0]; got.URL != nil {
		t.Errorf("local url = %v, want nil", got.URL)
	}
}

func TestUpdateURLRejectsBadScheme(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{}
	s, alerts := seededStore(t, mock, []domain.Todo{{ID: "a"}})

	if err := s.UpdateURL(ctx, "a", "ftp://example.com"); err == nil {
		t.Fatal("expected validation error")
	}
	if len(alerts.messages) != 1 || alerts.messages[0] != validate.KeyURLScheme {
		t.Errorf("alerts = %v, want [%s]", alerts.messages, validate.KeyURLScheme)
	}
	if got := s.Snapshot()[0]; got.URL != nil {
		t.Errorf("local url = %v, must stay unchanged", got.URL)
	}
}

func TestNilRemoteIsNoOp(t *testing.T) {
	ctx := context.Background()
	s, alerts := seededStore(t, nil, nil)

	if err := s.Fetch(ctx); err != nil {
		t.Errorf("Fetch = %v", err)
	}
	if err := s.Add(ctx, "task"); err != nil {
		t.Errorf("Add = %v", err)
	}
	if err := s.Toggle(ctx, "a", false); err != nil {
		t.Errorf("Toggle = %v", err)
	}
	if err := s.Delete(ctx, "a"); err != nil {
		t.Errorf("Delete = %v", err)
	}
	if len(alerts.messages) != 0 {
		t.Errorf("no alerts expected, got %v", alerts.messages)
	}
}

func TestObserverFiresOnMutation(t *testing.T) {
	ctx := context.Background()
	mock := &MockRemote{
		ListFunc: func(ctx context.Context) ([]domain.Todo, error) {
			return []domain.Todo{{ID: "a"}}, nil
		},
	}
	s, _ := seededStore(t, mock, nil)

	fired := 0
	s.SetObserver(func() { fired++ })

	if err := s.Fetch(ctx); err != nil {
		t.Fatalf("Fetch returned %v", err)
	}
	// loading-on and loading-off both notify
	if fired != 2 {
		t.Errorf("observer fired %d times, want 2", fired)
	}
}
