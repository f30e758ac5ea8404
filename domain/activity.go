package domain

// ActivityPoint is a per-day completion count, one entry per calendar day
// (local time, YYYY-MM-DD) that had at least one completed todo.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
