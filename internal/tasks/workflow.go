package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"
)

// nextStatus encodes the only legal lifecycle edges. Completed has no
// successor: it is terminal.
var nextStatus = map[models.TaskStatus]models.TaskStatus{
	models.StatusNotStarted: models.StatusInProgress,
	models.StatusInProgress: models.StatusCompleted,
}

// Transition moves a task along the lifecycle state machine:
// not_started → in_progress → completed. Completing requires report
// evidence; without it the task is left untouched. The status write is a
// compare-and-set on the current status, so concurrent transitions on the
// same task cannot interleave.
func (s *Service) Transition(ctx context.Context, id string, target models.TaskStatus, reportLink string) (*models.Task, error) {
	if !models.ValidStatus(target) {
		return nil, validationError("status", fmt.Sprintf("unknown status %q", target))
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	succ, hasNext := nextStatus[task.Status]
	if !hasNext || succ != target {
		return nil, invalidTransitionError(id, task.Status, target)
	}

	report := ""
	if target == models.StatusCompleted {
		report = strings.TrimSpace(reportLink)
		if report == "" {
			return nil, missingReportError(id)
		}
	}

	ok, err := s.repo.CompareAndSetStatus(ctx, id, task.Status, target, report)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost a race: the task moved (or vanished) between read and write.
		if _, gerr := s.repo.GetByID(ctx, id); errors.Is(gerr, ErrNotFound) {
			return nil, gerr
		}
		return nil, invalidTransitionError(id, task.Status, target)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	InvalidateStatistics()
	broadcastTaskEvent(EventStatusChanged, updated)
	return updated, nil
}

// UpdatePatch carries optional field edits. Status and report link have no
// field here on purpose: status only moves through Transition, which is
// what enforces the report-evidence rule.
type UpdatePatch struct {
	Name          *string              `json:"name"`
	Description   *string              `json:"description"`
	DocumentLinks *[]string            `json:"documentLinks"`
	AssignedByID  *string              `json:"assignedById"`
	AssignedToID  *string              `json:"assignedToId"`
	Deadline      *time.Time           `json:"deadline"`
	Priority      *models.TaskPriority `json:"priority"`
}

// Update applies plain field edits to a task. Only the patched columns
// are written back: lifecycle state is not reachable from here, and a
// transition committing concurrently is never overwritten by the values
// this edit read.
func (s *Service) Update(ctx context.Context, id string, patch UpdatePatch) (*models.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, 7)
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationError("name", "name must not be empty")
		}
		task.Name = name
		cols = append(cols, "name")
	}
	if patch.Description != nil {
		task.Description = *patch.Description
		cols = append(cols, "description")
	}
	if patch.DocumentLinks != nil {
		task.DocumentLinks = *patch.DocumentLinks
		cols = append(cols, "document_links")
	}
	if patch.AssignedByID != nil {
		task.AssignedByID = *patch.AssignedByID
		cols = append(cols, "assigned_by_id")
	}
	if patch.AssignedToID != nil {
		task.AssignedToID = *patch.AssignedToID
		cols = append(cols, "assigned_to_id")
	}
	if patch.Deadline != nil {
		if patch.Deadline.IsZero() {
			return nil, validationError("deadline", "deadline is required")
		}
		task.Deadline = patch.Deadline.UTC()
		cols = append(cols, "deadline")
	}
	if patch.Priority != nil {
		if !models.ValidPriority(*patch.Priority) {
			return nil, validationError("priority", fmt.Sprintf("unknown priority %q", *patch.Priority))
		}
		task.Priority = *patch.Priority
		cols = append(cols, "priority")
	}

	if len(cols) == 0 {
		return task, nil
	}
	if err := s.repo.UpdateFields(ctx, task, cols); err != nil {
		return nil, err
	}
	// re-read so the result reflects any concurrent lifecycle change
	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	InvalidateStatistics()
	broadcastTaskEvent(EventTaskUpdated, updated)
	return updated, nil
}
