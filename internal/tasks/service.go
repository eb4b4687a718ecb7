package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"gorm.io/gorm"
)

// Service is the task workflow core: lifecycle transitions, feedback
// threads, filtered queries, statistics and bulk mutations. It is cheap to
// construct per request; the statistics cache and circuit breaker are
// process-wide singletons shared by every instance.
type Service struct {
	repo *Repository
}

// NewService builds a service on top of a gorm connection.
func NewService(db *gorm.DB) *Service {
	return &Service{repo: NewRepository(db)}
}

// CreatePayload carries the caller-supplied fields for a new task. Status
// is not part of it: every task starts at not_started.
type CreatePayload struct {
	Name          string
	Description   string
	DocumentLinks []string
	AssignedByID  string
	AssignedToID  string
	Deadline      time.Time
	Priority      models.TaskPriority
}

// Create validates and persists a new task with status not_started.
func (s *Service) Create(ctx context.Context, p CreatePayload) (*models.Task, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, validationError("name", "name must not be empty")
	}
	if p.Deadline.IsZero() {
		return nil, validationError("deadline", "deadline is required")
	}
	priority := p.Priority
	if priority == "" {
		priority = models.PriorityNormal
	}
	if !models.ValidPriority(priority) {
		return nil, validationError("priority", fmt.Sprintf("unknown priority %q", priority))
	}

	task := &models.Task{
		ID:            fmt.Sprintf("task-%d", time.Now().UnixNano()),
		Name:          name,
		Description:   p.Description,
		DocumentLinks: p.DocumentLinks,
		AssignedByID:  p.AssignedByID,
		AssignedToID:  p.AssignedToID,
		Deadline:      p.Deadline.UTC(),
		Priority:      priority,
		Status:        models.StatusNotStarted,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}
	InvalidateStatistics()
	broadcastTaskEvent(EventTaskCreated, task)
	return task, nil
}

// Get fetches a single task by ID.
func (s *Service) Get(ctx context.Context, id string) (*models.Task, error) {
	return s.repo.GetByID(ctx, id)
}

// Delete removes one task and its feedback thread.
func (s *Service) Delete(ctx context.Context, id string) error {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	InvalidateStatistics()
	broadcastTaskEvent(EventTaskDeleted, task)
	return nil
}
