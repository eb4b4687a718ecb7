package tasks

import (
	"encoding/json"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/realtime"
)

// Event types broadcast over the realtime hub.
const (
	EventTaskCreated   = "task_created"
	EventTaskUpdated   = "task_updated"
	EventStatusChanged = "task_status_changed"
	EventTaskDeleted   = "task_deleted"
	EventFeedbackAdded = "feedback_added"
)

// broadcastTaskEvent notifies both sides of the assignment. Best effort:
// an absent listener is not an error for the mutation itself.
func broadcastTaskEvent(eventType string, task *models.Task) {
	evt := map[string]any{
		"type":    eventType,
		"taskId":  task.ID,
		"status":  task.Status,
		"version": 1,
	}
	bytes, err := json.Marshal(evt)
	if err != nil {
		return
	}
	hub := realtime.GetHub()
	if task.AssignedByID != "" {
		hub.Broadcast(task.AssignedByID, bytes)
	}
	if task.AssignedToID != "" && task.AssignedToID != task.AssignedByID {
		hub.Broadcast(task.AssignedToID, bytes)
	}
}
