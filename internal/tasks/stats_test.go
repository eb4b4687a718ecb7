package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"github.com/stretchr/testify/require"
)

func seedStatsFixture(t *testing.T, svc *Service) {
	t.Helper()
	db := svc.repo.db
	seedTask(t, db, models.Task{ID: "task-s1", Name: "a", Deadline: time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), Status: models.StatusNotStarted, Priority: models.PriorityUrgent})
	seedTask(t, db, models.Task{ID: "task-s2", Name: "b", Deadline: time.Date(2026, 8, 26, 11, 0, 0, 0, time.UTC), Status: models.StatusInProgress, Priority: models.PriorityLow})
	seedTask(t, db, models.Task{ID: "task-s3", Name: "c", Deadline: time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC), Status: models.StatusCompleted, ReportLink: "https://r", Priority: models.PriorityLow})
	seedTask(t, db, models.Task{ID: "task-s4", Name: "d", Deadline: time.Date(2026, 8, 28, 13, 0, 0, 0, time.UTC), Status: models.StatusNotStarted, Priority: models.PriorityNormal})
}

func TestAggregate_CountsAndInvariant(t *testing.T) {
	svc, _ := newTestService(t)
	seedStatsFixture(t, svc)

	snap, err := svc.Aggregate(context.Background(), models.TaskFilter{DateBucket: models.BucketToday, Now: refNow})
	require.NoError(t, err)
	require.Equal(t, int64(3), snap.Total)
	require.Equal(t, int64(1), snap.NotStarted)
	require.Equal(t, int64(1), snap.InProgress)
	require.Equal(t, int64(1), snap.Completed)
	require.Equal(t, snap.Total, snap.NotStarted+snap.InProgress+snap.Completed)
	require.Equal(t, int64(2), snap.ByPriority[models.PriorityLow])
	require.Equal(t, int64(1), snap.ByPriority[models.PriorityUrgent])
	require.Equal(t, int64(0), snap.ByPriority[models.PriorityNormal])
}

func TestAggregate_IgnoresListOnlyPredicates(t *testing.T) {
	svc, _ := newTestService(t)
	seedStatsFixture(t, svc)

	base, err := svc.Aggregate(context.Background(), models.TaskFilter{DateBucket: models.BucketToday, Now: refNow})
	require.NoError(t, err)

	// narrowing the list must not move the counters
	yes := true
	narrowed, err := svc.Aggregate(context.Background(), models.TaskFilter{
		DateBucket:    models.BucketToday,
		Now:           refNow,
		Search:        "a",
		Status:        string(models.StatusCompleted),
		CompletedOnly: &yes,
	})
	require.NoError(t, err)
	require.Equal(t, base, narrowed)
}

func TestAggregate_TotalMatchesUnnarrowedQuery(t *testing.T) {
	svc, _ := newTestService(t)
	seedStatsFixture(t, svc)

	for _, bucket := range []models.DateBucket{models.BucketToday, models.BucketWeek, models.BucketMonth, models.BucketAll} {
		snap, err := svc.Aggregate(context.Background(), models.TaskFilter{DateBucket: bucket, Now: refNow})
		require.NoError(t, err)

		list, err := svc.Query(context.Background(), models.TaskFilter{DateBucket: bucket, Now: refNow, Status: "all"})
		require.NoError(t, err)
		require.Equal(t, int64(len(list)), snap.Total, "bucket %s", bucket)
	}
}

func TestAggregate_CacheInvalidatedByMutation(t *testing.T) {
	svc, _ := newTestService(t)

	filter := models.TaskFilter{DateBucket: models.BucketAll}
	snap, err := svc.Aggregate(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, int64(0), snap.Total)

	// a mutation must drop the cached snapshot immediately
	_, err = svc.Create(context.Background(), validPayload())
	require.NoError(t, err)

	snap, err = svc.Aggregate(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, int64(1), snap.Total)
}

func TestAggregate_ReflectsTransitions(t *testing.T) {
	svc, _ := newTestService(t)

	p := validPayload()
	p.Deadline = refNow.Add(2 * time.Hour)
	task, err := svc.Create(context.Background(), p)
	require.NoError(t, err)

	filter := models.TaskFilter{DateBucket: models.BucketToday, Now: refNow}
	snap, err := svc.Aggregate(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, int64(1), snap.NotStarted)
	require.Equal(t, int64(0), snap.Completed)

	_, err = svc.Transition(context.Background(), task.ID, models.StatusInProgress, "")
	require.NoError(t, err)
	_, err = svc.Transition(context.Background(), task.ID, models.StatusCompleted, "https://report")
	require.NoError(t, err)

	snap, err = svc.Aggregate(context.Background(), filter)
	require.NoError(t, err)
	require.Equal(t, int64(0), snap.NotStarted)
	require.Equal(t, int64(1), snap.Completed)
	require.Equal(t, int64(1), snap.Total)
}

func TestAggregate_UnreachableStore(t *testing.T) {
	svc, db := newTestService(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Aggregate(context.Background(), models.TaskFilter{DateBucket: models.BucketAll})
	require.ErrorIs(t, err, ErrRepositoryUnavailable)
}

func TestLocalSnapshot(t *testing.T) {
	taskSet := []models.Task{
		{Status: models.StatusNotStarted, Priority: models.PriorityHigh},
		{Status: models.StatusInProgress, Priority: models.PriorityHigh},
		{Status: models.StatusCompleted, Priority: models.PriorityLow},
		{Status: models.StatusCompleted, Priority: models.PriorityUrgent},
	}
	snap := LocalSnapshot(taskSet)
	require.Equal(t, int64(4), snap.Total)
	require.Equal(t, int64(1), snap.NotStarted)
	require.Equal(t, int64(1), snap.InProgress)
	require.Equal(t, int64(2), snap.Completed)
	require.Equal(t, snap.Total, snap.NotStarted+snap.InProgress+snap.Completed)
	require.Equal(t, int64(2), snap.ByPriority[models.PriorityHigh])
}
