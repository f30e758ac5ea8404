package domain

import "time"

// Todo represents a user-owned task item.
type Todo struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	Output      *string    `json:"output,omitempty"`
	URL         *string    `json:"url,omitempty"`
	Priority    int        `json:"priority"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasOutput reports whether a non-empty reflection note is attached.
func (t *Todo) HasOutput() bool {
	return t != nil && t.Output != nil && *t.Output != ""
}

// TodoPatch carries a partial update. Untouched concerns stay nil/false.
// IsCompleted and CompletedAt travel together: completed_at must be non-nil
// exactly when a todo is completed.
type TodoPatch struct {
	IsCompleted *bool
	CompletedAt *time.Time

	// SetOutput/SetURL distinguish "clear to null" (flag set, value nil)
	// from "do not change" (flag unset).
	Output    *string
	SetOutput bool
	URL       *string
	SetURL    bool
}

// Empty reports whether the patch changes nothing.
func (p TodoPatch) Empty() bool {
	return p.IsCompleted == nil && !p.SetOutput && !p.SetURL
}
