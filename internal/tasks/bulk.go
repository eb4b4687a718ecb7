package tasks

import (
	"context"
	"errors"
)

// BulkResult enumerates per-ID outcomes of a bulk mutation so the caller
// can reconcile its state precisely instead of assuming all-or-nothing.
type BulkResult struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed"`
}

// Failure reasons reported in BulkResult.Failed.
const (
	ReasonNotFound    = "NotFound"
	ReasonUnavailable = "RepositoryUnavailable"
)

// BulkDelete deletes each task independently, continuing past per-ID
// failures. Each delete cascades to the task's feedback thread. Duplicate
// IDs are collapsed; an absent ID is reported as NotFound, never a crash.
func (s *Service) BulkDelete(ctx context.Context, ids []string) BulkResult {
	result := BulkResult{
		Succeeded: []string{},
		Failed:    map[string]string{},
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		task, err := s.repo.GetByID(ctx, id)
		if err == nil {
			err = s.repo.Delete(ctx, id)
		}
		if err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				result.Failed[id] = ReasonNotFound
			default:
				result.Failed[id] = ReasonUnavailable
			}
			continue
		}

		result.Succeeded = append(result.Succeeded, id)
		broadcastTaskEvent(EventTaskDeleted, task)
	}

	if len(result.Succeeded) > 0 {
		InvalidateStatistics()
	}
	return result
}
