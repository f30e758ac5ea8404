// Package history derives the completion-history view from the todo
// collection: completed tasks grouped by local calendar day, today excluded.
// The derivation is pure and recomputed in full on every input change.
package history

import (
	"sort"
	"time"

	"github.com/daylogapp/daylog/client/i18n"
	"github.com/daylogapp/daylog/domain"
)

// Group is one calendar day of completed todos, most recent first.
type Group struct {
	// Date is the day key, YYYY-MM-DD in local time.
	Date string
	// DisplayDate is the header label: "Yesterday" via the translator, or a
	// short weekday+month+day string.
	DisplayDate string
	Todos       []domain.Todo
}

// Summary aggregates across all groups.
type Summary struct {
	TotalCompleted int
	WithOutput     int
	Days           int
}

const dayKeyFormat = "2006-01-02"

// GroupByDay filters the collection to completed todos, drops anything
// completed today, orders by completion time descending and groups by day.
func GroupByDay(todos []domain.Todo, now time.Time, tr i18n.Translator) ([]Group, Summary) {
	if tr == nil {
		tr = func(key string) string { return key }
	}

	today := truncateDay(now)

	completed := make([]domain.Todo, 0, len(todos))
	for _, t := range todos {
		if !t.IsCompleted || t.CompletedAt == nil {
			continue
		}
		if !truncateDay(t.CompletedAt.In(now.Location())).Before(today) {
			// Today's completions are shown on the main screen, not here.
			continue
		}
		completed = append(completed, t)
	}

	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CompletedAt.After(*completed[j].CompletedAt)
	})

	var groups []Group
	index := make(map[string]int)
	summary := Summary{}

	for _, t := range completed {
		day := t.CompletedAt.In(now.Location())
		key := day.Format(dayKeyFormat)
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{
				Date:        key,
				DisplayDate: displayDate(truncateDay(day), today, tr),
			})
		}
		groups[i].Todos = append(groups[i].Todos, t)

		summary.TotalCompleted++
		if t.HasOutput() {
			summary.WithOutput++
		}
	}
	summary.Days = len(groups)

	return groups, summary
}

func displayDate(day, today time.Time, tr i18n.Translator) string {
	switch {
	case day.Equal(today):
		return tr("today")
	case day.Equal(today.AddDate(0, 0, -1)):
		return tr("yesterday")
	default:
		return day.Format("Mon, Jan 2")
	}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
