package models

import "time"

// DateBucket names a deadline window anchored at the caller's current moment.
type DateBucket string

const (
	BucketToday DateBucket = "today"
	BucketWeek  DateBucket = "week"
	BucketMonth DateBucket = "month"
	BucketAll   DateBucket = "all"
)

// ValidBucket reports whether b is a known date bucket.
func ValidBucket(b DateBucket) bool {
	switch b {
	case BucketToday, BucketWeek, BucketMonth, BucketAll:
		return true
	}
	return false
}

// TaskFilter represents optional filters for querying tasks.
// Zero values / nil pointers mean filter not applied; Status and Priority
// accept "all" as an explicit no-constraint marker.
// All predicates are combined with logical AND.
// This struct lives in models for reuse by repository/service/handler layers.
type TaskFilter struct {
	// Search is a case-insensitive substring match against the task name.
	Search string

	// Status constrains to one lifecycle status ("" or "all" = no constraint).
	Status string

	// Priority constrains to one priority ("" or "all" = no constraint).
	Priority string

	// DateBucket constrains the deadline to a window computed from Now
	// in Location ("" is treated as "all").
	DateBucket DateBucket

	// CompletedOnly, when non-nil, restricts to completed tasks (true) or
	// excludes them (false). Applied together with Status; a contradictory
	// combination yields an empty result rather than an error.
	CompletedOnly *bool

	// Now is the reference moment for bucket computation. Zero means time.Now().
	Now time.Time

	// Location is the caller's reference timezone for calendar boundaries.
	// Nil means UTC.
	Location *time.Location
}

// StatisticsSnapshot holds derived task counters over a date-bucket window.
// It is never persisted; it must always be recomputable from the task set.
type StatisticsSnapshot struct {
	Total      int64                  `json:"total"`
	NotStarted int64                  `json:"notStarted"`
	InProgress int64                  `json:"inProgress"`
	Completed  int64                  `json:"completed"`
	ByPriority map[TaskPriority]int64 `json:"byPriority"`
}
