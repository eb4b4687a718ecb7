package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"gorm.io/gorm"
)

// Repository is the durable store boundary for tasks and their feedback
// threads. It is the only layer that talks to gorm; every error crossing
// it is translated into the core taxonomy (NotFound vs RepositoryUnavailable).
type Repository struct {
	db *gorm.DB
}

// NewRepository wraps a gorm connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func translate(err error, taskID string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundError(taskID)
	}
	return unavailableError(err)
}

// Create persists a new task.
func (r *Repository) Create(ctx context.Context, task *models.Task) error {
	return translate(r.db.WithContext(ctx).Create(task).Error, task.ID)
}

// GetByID fetches a single task.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error; err != nil {
		return nil, translate(err, id)
	}
	return &task, nil
}

// UpdateFields writes back only the named columns of a task. Lifecycle
// columns (status, report_link) are never in the list, so a field edit
// racing a status transition cannot revert it with stale values.
func (r *Repository) UpdateFields(ctx context.Context, task *models.Task, cols []string) error {
	task.UpdatedAt = time.Now().UTC()
	selected := append([]string{"updated_at"}, cols...)
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ?", task.ID).
		Select(selected).
		Updates(task)
	if res.Error != nil {
		return unavailableError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFoundError(task.ID)
	}
	return nil
}

// CompareAndSetStatus atomically moves a task from one status to another.
// The WHERE clause on the current status makes two concurrent transitions
// on the same task serialize: only one UPDATE matches a row.
// Returns false when no row matched (task absent or status already moved).
func (r *Repository) CompareAndSetStatus(ctx context.Context, id string, from, to models.TaskStatus, reportLink string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":      to,
			"report_link": reportLink,
			"updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return false, unavailableError(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Delete removes a task and cascades to its feedback thread in one
// transaction. The task is the sole owner of its feedback list.
func (r *Repository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("task_id = ?", id).Delete(&models.Feedback{}).Error
	})
	return translate(err, id)
}

// ListWhere returns tasks matching the filter, ordered by created_at with
// ID as a stable tiebreak.
func (r *Repository) ListWhere(ctx context.Context, f models.TaskFilter) ([]models.Task, error) {
	var tasksOut []models.Task
	q := applyFilter(r.db.WithContext(ctx).Model(&models.Task{}), f)
	if err := q.Order("created_at asc, id asc").Find(&tasksOut).Error; err != nil {
		return nil, unavailableError(err)
	}
	return tasksOut, nil
}

// GroupedStatusCounts counts tasks per status inside the filter's date
// bucket, ignoring every other predicate.
func (r *Repository) GroupedStatusCounts(ctx context.Context, f models.TaskFilter) (map[models.TaskStatus]int64, error) {
	type row struct {
		Status models.TaskStatus
		Count  int64
	}
	var rows []row
	q := applyBucket(r.db.WithContext(ctx).Model(&models.Task{}), f)
	if err := q.Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error; err != nil {
		return nil, unavailableError(err)
	}
	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// GroupedPriorityCounts counts tasks per priority inside the filter's
// date bucket.
func (r *Repository) GroupedPriorityCounts(ctx context.Context, f models.TaskFilter) (map[models.TaskPriority]int64, error) {
	type row struct {
		Priority models.TaskPriority
		Count    int64
	}
	var rows []row
	q := applyBucket(r.db.WithContext(ctx).Model(&models.Task{}), f)
	if err := q.Select("priority, COUNT(*) as count").Group("priority").Scan(&rows).Error; err != nil {
		return nil, unavailableError(err)
	}
	counts := make(map[models.TaskPriority]int64, len(rows))
	for _, r := range rows {
		counts[r.Priority] = r.Count
	}
	return counts, nil
}

// CreateFeedback appends one feedback entry.
func (r *Repository) CreateFeedback(ctx context.Context, fb *models.Feedback) error {
	return translate(r.db.WithContext(ctx).Create(fb).Error, fb.TaskID)
}

// ListFeedback returns a task's feedback thread in insertion order, by
// the monotonic write sequence.
func (r *Repository) ListFeedback(ctx context.Context, taskID string) ([]models.Feedback, error) {
	var entries []models.Feedback
	err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("seq asc").
		Find(&entries).Error
	if err != nil {
		return nil, unavailableError(err)
	}
	return entries, nil
}

// CountFeedbackByTask counts feedback for a set of tasks in one grouped
// query instead of one round-trip per task.
func (r *Repository) CountFeedbackByTask(ctx context.Context, taskIDs []string) (map[string]int64, error) {
	counts := make(map[string]int64, len(taskIDs))
	for _, id := range taskIDs {
		counts[id] = 0
	}
	if len(taskIDs) == 0 {
		return counts, nil
	}
	type row struct {
		TaskID string
		Count  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("task_id, COUNT(*) as count").
		Where("task_id IN ?", taskIDs).
		Group("task_id").
		Scan(&rows).Error
	if err != nil {
		return nil, unavailableError(err)
	}
	for _, r := range rows {
		counts[r.TaskID] = r.Count
	}
	return counts, nil
}
