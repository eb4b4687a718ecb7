package tasks

import (
	"context"
	"strings"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"gorm.io/gorm"
)

// bucketWindow computes the [start, end) deadline window for a bucket
// anchored at now in loc. ok is false when the bucket is unconstrained
// ("all", empty, or unknown).
func bucketWindow(b models.DateBucket, now time.Time, loc *time.Location) (start, end time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	switch b {
	case models.BucketToday:
		return day, day.AddDate(0, 0, 1), true
	case models.BucketWeek:
		// ISO week: Monday is day 1
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		start = day.AddDate(0, 0, -(weekday - 1))
		return start, start.AddDate(0, 0, 7), true
	case models.BucketMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), true
	}
	return time.Time{}, time.Time{}, false
}

func filterNow(f models.TaskFilter) time.Time {
	if f.Now.IsZero() {
		return time.Now()
	}
	return f.Now
}

// applyBucket constrains the deadline to the filter's date bucket. This is
// the only predicate shared between the task list and the statistics
// counters, so both views move together when the bucket changes.
func applyBucket(q *gorm.DB, f models.TaskFilter) *gorm.DB {
	if start, end, ok := bucketWindow(f.DateBucket, filterNow(f), f.Location); ok {
		q = q.Where("deadline >= ? AND deadline < ?", start, end)
	}
	return q
}

// applyFilter composes every list predicate with logical AND. Status and
// completedOnly are both applied literally even when they contradict; an
// empty result is the defined outcome, not an error.
func applyFilter(q *gorm.DB, f models.TaskFilter) *gorm.DB {
	q = applyBucket(q, f)
	if s := strings.TrimSpace(f.Search); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Status != "" && f.Status != "all" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Priority != "" && f.Priority != "all" {
		q = q.Where("priority = ?", f.Priority)
	}
	if f.CompletedOnly != nil {
		if *f.CompletedOnly {
			q = q.Where("status = ?", models.StatusCompleted)
		} else {
			q = q.Where("status <> ?", models.StatusCompleted)
		}
	}
	return q
}

// Query returns the filtered task view, ordered by created_at ascending
// with ID as the tiebreak. The result is a pure function of the filter and
// the repository state at call time.
func (s *Service) Query(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	if f.Status != "" && f.Status != "all" && !models.ValidStatus(models.TaskStatus(f.Status)) {
		return nil, validationError("status", "unknown status filter")
	}
	if f.Priority != "" && f.Priority != "all" && !models.ValidPriority(models.TaskPriority(f.Priority)) {
		return nil, validationError("priority", "unknown priority filter")
	}
	if f.DateBucket != "" && !models.ValidBucket(f.DateBucket) {
		return nil, validationError("dateBucket", "unknown date bucket")
	}
	return s.repo.ListWhere(ctx, f)
}
