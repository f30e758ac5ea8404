// Package activity builds the GitHub-style completion heatmap: a 365-day
// calendar grid aligned to week boundaries, plus total and streak stats.
package activity

import (
	"time"

	"github.com/daylogapp/daylog/domain"
)

// Day is one cell of the grid.
type Day struct {
	Date  time.Time
	Count int
}

// MonthMarker places a month label above the week where that month starts.
type MonthMarker struct {
	Label string
	Week  int
}

// Graph is the derived heatmap state.
type Graph struct {
	// Weeks are 7-day chunks in chronological order, oldest first. Every
	// chunk has exactly 7 entries because the span is left-padded to the
	// most recent Sunday before its start.
	Weeks         [][]Day
	Months        []MonthMarker
	TotalCount    int
	LongestStreak int
	CurrentStreak int
}

// Level is the color bucket of a cell.
type Level int

const (
	LevelEmpty Level = iota
	Level1
	Level2
	Level3
	Level4
)

// LevelFor maps a day's count to its color bucket. The breakpoints
// (0 / 1 / 2-3 / 4-5 / 6+) are a user-visible contract.
func LevelFor(count int) Level {
	switch {
	case count == 0:
		return LevelEmpty
	case count <= 1:
		return Level1
	case count <= 3:
		return Level2
	case count <= 5:
		return Level3
	default:
		return Level4
	}
}

const dayKeyFormat = "2006-01-02"

// Build computes the grid from a sparse per-day count series. The span runs
// from 364 days before today through today, padded backward to a Sunday; days
// missing from the series count zero.
func Build(points []domain.ActivityPoint, today time.Time) Graph {
	today = truncateDay(today)

	counts := make(map[string]int, len(points))
	for _, p := range points {
		counts[p.Date] = p.Count
	}

	start := today.AddDate(0, 0, -364)
	start = start.AddDate(0, 0, -int(start.Weekday())) // back to Sunday

	var (
		weeks     [][]Day
		months    []MonthMarker
		week      []Day
		lastMonth time.Month
		total     int
	)

	for current := start; !current.After(today); current = current.AddDate(0, 0, 1) {
		count := counts[current.Format(dayKeyFormat)]
		total += count

		if current.Month() != lastMonth {
			lastMonth = current.Month()
			months = append(months, MonthMarker{
				Label: current.Format("Jan"),
				Week:  len(weeks),
			})
		}

		week = append(week, Day{Date: current, Count: count})
		if len(week) == 7 {
			weeks = append(weeks, week)
			week = nil
		}
	}
	// Pad the trailing week with future days so every chunk has 7 entries.
	// Padding days carry zero counts and dates past today; consumers skip them.
	if len(week) > 0 {
		next := today
		for len(week) < 7 {
			next = next.AddDate(0, 0, 1)
			week = append(week, Day{Date: next})
		}
		weeks = append(weeks, week)
	}

	longest, current := streaks(weeks, today)

	return Graph{
		Weeks:         weeks,
		Months:        months,
		TotalCount:    total,
		LongestStreak: longest,
		CurrentStreak: current,
	}
}

// streaks scans the flattened day sequence most-recent-first. The current
// streak stops at the first zero-count day; the longest streak keeps
// scanning to the far end.
func streaks(weeks [][]Day, today time.Time) (longest, current int) {
	var run int
	counting := true

	for w := len(weeks) - 1; w >= 0; w-- {
		for d := len(weeks[w]) - 1; d >= 0; d-- {
			day := weeks[w][d]
			if day.Date.After(today) {
				continue
			}
			if day.Count > 0 {
				run++
				if counting {
					current++
				}
				continue
			}
			if run > longest {
				longest = run
			}
			run = 0
			counting = false
		}
	}
	if run > longest {
		longest = run
	}
	return longest, current
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
