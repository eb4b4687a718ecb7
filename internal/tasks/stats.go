package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/cache"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/logging"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"github.com/sony/gobreaker"
)

// statsTTL bounds staleness for callers that bypass the mutation paths
// (e.g. direct DB writes); correctness does not depend on it because every
// mutation clears the cache eagerly.
const statsTTL = 30 * time.Second

var (
	statsCache = cache.NewTTLCache[string, *models.StatisticsSnapshot]()

	statsBreaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "TaskStatisticsCB",
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger.Warnf("circuit breaker %s changed from %s to %s", name, from.String(), to.String())
		},
	})
)

// InvalidateStatistics drops every cached snapshot. Every mutation path
// calls this so the counters never lag behind the task set.
func InvalidateStatistics() {
	statsCache.Clear()
}

func statsKey(f models.TaskFilter) string {
	start, _, ok := bucketWindow(f.DateBucket, filterNow(f), f.Location)
	if !ok {
		return "all"
	}
	return string(f.DateBucket) + "|" + start.UTC().Format(time.RFC3339)
}

// Aggregate computes status and priority counters over the filter's date
// bucket only. Search, status and completedOnly are deliberately ignored
// so the counters stay stable reference points while the list is narrowed.
// Queries run through a circuit breaker; when the store is unreachable the
// caller is expected to fall back to a locally computed approximation and
// flag it as degraded.
func (s *Service) Aggregate(ctx context.Context, f models.TaskFilter) (*models.StatisticsSnapshot, error) {
	if f.DateBucket != "" && !models.ValidBucket(f.DateBucket) {
		return nil, validationError("dateBucket", "unknown date bucket")
	}
	// Only the bucket predicate participates.
	f = models.TaskFilter{DateBucket: f.DateBucket, Now: f.Now, Location: f.Location}

	key := statsKey(f)
	if snap, ok := statsCache.Get(key); ok {
		return snap, nil
	}

	res, err := statsBreaker.Execute(func() (any, error) {
		statusCounts, err := s.repo.GroupedStatusCounts(ctx, f)
		if err != nil {
			return nil, err
		}
		prioCounts, err := s.repo.GroupedPriorityCounts(ctx, f)
		if err != nil {
			return nil, err
		}

		snap := &models.StatisticsSnapshot{
			NotStarted: statusCounts[models.StatusNotStarted],
			InProgress: statusCounts[models.StatusInProgress],
			Completed:  statusCounts[models.StatusCompleted],
			ByPriority: map[models.TaskPriority]int64{
				models.PriorityLow:    prioCounts[models.PriorityLow],
				models.PriorityNormal: prioCounts[models.PriorityNormal],
				models.PriorityHigh:   prioCounts[models.PriorityHigh],
				models.PriorityUrgent: prioCounts[models.PriorityUrgent],
			},
		}
		snap.Total = snap.NotStarted + snap.InProgress + snap.Completed
		return snap, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, unavailableError(err)
		}
		return nil, err
	}

	snap := res.(*models.StatisticsSnapshot)
	statsCache.Set(key, snap, statsTTL)
	return snap, nil
}

// LocalSnapshot derives an approximate snapshot from a task set the caller
// already holds. This is the degraded fallback when the aggregator cannot
// reach the store; it must never be presented as authoritative.
func LocalSnapshot(taskSet []models.Task) *models.StatisticsSnapshot {
	snap := &models.StatisticsSnapshot{
		ByPriority: map[models.TaskPriority]int64{
			models.PriorityLow:    0,
			models.PriorityNormal: 0,
			models.PriorityHigh:   0,
			models.PriorityUrgent: 0,
		},
	}
	for _, t := range taskSet {
		snap.Total++
		switch t.Status {
		case models.StatusNotStarted:
			snap.NotStarted++
		case models.StatusInProgress:
			snap.InProgress++
		case models.StatusCompleted:
			snap.Completed++
		}
		snap.ByPriority[t.Priority]++
	}
	return snap
}
