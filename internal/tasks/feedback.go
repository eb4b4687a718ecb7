package tasks

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"

	"github.com/google/uuid"
)

// MaxFeedbackLength is the upper bound, in characters, for one feedback
// message after trimming.
const MaxFeedbackLength = 500

// Author captures who wrote a feedback entry, as resolved by the identity
// collaborator at request time. The display name is frozen into the entry.
type Author struct {
	ID   string
	Name string
}

// AddFeedback appends one entry to a task's thread. Entries are immutable
// once written.
func (s *Service) AddFeedback(ctx context.Context, taskID string, author Author, message string) (*models.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, &Error{Kind: KindEmptyFeedback, Field: "message", TaskID: taskID, Msg: "feedback message must not be empty"}
	}
	if utf8.RuneCountInString(message) > MaxFeedbackLength {
		return nil, &Error{Kind: KindFeedbackTooLong, Field: "message", TaskID: taskID, Msg: "feedback message exceeds 500 characters"}
	}

	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	fb := &models.Feedback{
		ID:         uuid.New().String(),
		TaskID:     taskID,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Message:    message,
	}
	if err := s.repo.CreateFeedback(ctx, fb); err != nil {
		return nil, err
	}
	broadcastTaskEvent(EventFeedbackAdded, task)
	return fb, nil
}

// ListFeedback returns the thread in strict insertion order.
func (s *Service) ListFeedback(ctx context.Context, taskID string) ([]models.Feedback, error) {
	if _, err := s.repo.GetByID(ctx, taskID); err != nil {
		return nil, err
	}
	return s.repo.ListFeedback(ctx, taskID)
}

// CountFeedback returns per-task feedback counts for a set of task IDs,
// served by a single grouped query. IDs with no feedback map to zero.
func (s *Service) CountFeedback(ctx context.Context, taskIDs []string) (map[string]int64, error) {
	return s.repo.CountFeedbackByTask(ctx, taskIDs)
}
