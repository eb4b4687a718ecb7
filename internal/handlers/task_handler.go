package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/database"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/tasks"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CreateTaskRequest represents the request payload for creating a task.
// Status is absent on purpose: every task starts at not_started.
type CreateTaskRequest struct {
	Name          string              `json:"name" binding:"required"`
	Description   string              `json:"description"`
	DocumentLinks []string            `json:"documentLinks"`
	AssignedTo    string              `json:"assignedTo"`
	Deadline      time.Time           `json:"deadline" binding:"required"`
	Priority      models.TaskPriority `json:"priority"`
}

// TransitionRequest moves a task to its next lifecycle status.
type TransitionRequest struct {
	Status     models.TaskStatus `json:"status" binding:"required"`
	ReportLink string            `json:"reportLink"`
}

// BulkDeleteRequest names the task IDs to remove.
type BulkDeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// parseTaskFilter builds the query filter from URL parameters. The tz
// parameter carries the caller's reference timezone for calendar buckets.
// Malformed values are rejected, matching how the core treats unknown
// status/priority/bucket filters.
func parseTaskFilter(c *gin.Context) (models.TaskFilter, error) {
	f := models.TaskFilter{
		Search:     c.Query("search"),
		Status:     c.DefaultQuery("status", "all"),
		Priority:   c.DefaultQuery("priority", "all"),
		DateBucket: models.DateBucket(c.DefaultQuery("dateBucket", "all")),
	}
	if v := c.Query("completedOnly"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, &tasks.Error{Kind: tasks.KindValidation, Field: "completedOnly", Msg: "completedOnly must be a boolean"}
		}
		f.CompletedOnly = &b
	}
	if tz := c.Query("tz"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return f, &tasks.Error{Kind: tasks.KindValidation, Field: "tz", Msg: "unknown timezone"}
		}
		f.Location = loc
	}
	return f, nil
}

// enrichUserRefs fills the AssignedBy/AssignedTo display fields from the
// users table for response payloads.
func enrichUserRefs(db *gorm.DB, items []models.Task) {
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return
	}
	refByID := make(map[string]models.UserRef, len(users))
	for _, u := range users {
		name := u.DisplayName
		if name == "" {
			name = u.Username
		}
		refByID[u.ID] = models.UserRef{ID: u.ID, Name: name}
	}
	for i := range items {
		if ref, ok := refByID[items[i].AssignedByID]; ok {
			items[i].AssignedBy = ref
		}
		if ref, ok := refByID[items[i].AssignedToID]; ok {
			items[i].AssignedTo = ref
		}
	}
}

// GetTasks handles GET /api/tasks
// Returns the filtered, ordered task list plus per-task feedback counts
// (one grouped query, never one fetch per task).
func GetTasks(c *gin.Context) {
	svc := tasks.NewService(database.GetDB())
	filter, err := parseTaskFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}

	taskList, err := svc.Query(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	enrichUserRefs(database.GetDB(), taskList)

	ids := make([]string, 0, len(taskList))
	for _, t := range taskList {
		ids = append(ids, t.ID)
	}
	feedbackCounts, err := svc.CountFeedback(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks":          taskList,
		"count":          len(taskList),
		"feedbackCounts": feedbackCounts,
	})
}

// GetTaskStats handles GET /api/tasks/stats
// Counters are computed over the date bucket only, so they stay stable
// while the list is narrowed by search or status. When the aggregator is
// unreachable the response falls back to a local approximation and says so.
func GetTaskStats(c *gin.Context) {
	svc := tasks.NewService(database.GetDB())
	parsed, err := parseTaskFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	// counters consider only the bucket window
	filter := models.TaskFilter{
		DateBucket: parsed.DateBucket,
		Location:   parsed.Location,
	}

	snap, err := svc.Aggregate(c.Request.Context(), filter)
	if err != nil {
		if errors.Is(err, tasks.ErrRepositoryUnavailable) {
			if taskSet, qerr := svc.Query(c.Request.Context(), filter); qerr == nil {
				c.JSON(http.StatusOK, gin.H{
					"stats":    tasks.LocalSnapshot(taskSet),
					"degraded": true,
				})
				return
			}
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"stats":    snap,
		"degraded": false,
	})
}

// CreateTask handles POST /api/tasks
// The authenticated caller becomes the assigner.
func CreateTask(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := tasks.NewService(database.GetDB())
	task, err := svc.Create(c.Request.Context(), tasks.CreatePayload{
		Name:          req.Name,
		Description:   req.Description,
		DocumentLinks: req.DocumentLinks,
		AssignedByID:  userID,
		AssignedToID:  req.AssignedTo,
		Deadline:      req.Deadline,
		Priority:      req.Priority,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	single := []models.Task{*task}
	enrichUserRefs(database.GetDB(), single)
	c.JSON(http.StatusCreated, single[0])
}

// GetTaskByID handles GET /api/tasks/:id
func GetTaskByID(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	svc := tasks.NewService(database.GetDB())
	task, err := svc.Get(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	single := []models.Task{*task}
	enrichUserRefs(database.GetDB(), single)
	c.JSON(http.StatusOK, single[0])
}

// UpdateTask handles PUT /api/tasks/:id
// Plain field edits only. A payload that names status or reportLink is
// rejected outright: lifecycle state moves exclusively through the
// transition endpoint, which enforces the report-evidence rule.
func UpdateTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, forbidden := range []string{"status", "reportLink", "report_link"} {
		if _, ok := raw[forbidden]; ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "status changes must go through PATCH /api/tasks/:id/status",
			})
			return
		}
	}

	body, err := json.Marshal(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var patch tasks.UpdatePatch
	if err := json.Unmarshal(body, &patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := tasks.NewService(database.GetDB())
	task, err := svc.Update(c.Request.Context(), taskID, patch)
	if err != nil {
		respondError(c, err)
		return
	}

	single := []models.Task{*task}
	enrichUserRefs(database.GetDB(), single)
	c.JSON(http.StatusOK, single[0])
}

// TransitionTaskStatus handles PATCH /api/tasks/:id/status
func TransitionTaskStatus(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := tasks.NewService(database.GetDB())
	task, err := svc.Transition(c.Request.Context(), taskID, req.Status, req.ReportLink)
	if err != nil {
		respondError(c, err)
		return
	}

	single := []models.Task{*task}
	enrichUserRefs(database.GetDB(), single)
	c.JSON(http.StatusOK, single[0])
}

// DeleteTask handles DELETE /api/tasks/:id
func DeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	svc := tasks.NewService(database.GetDB())
	if err := svc.Delete(c.Request.Context(), taskID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
		"id":      taskID,
	})
}

// BulkDeleteTasks handles POST /api/tasks/bulk-delete
// Always returns the structured per-ID result; clients must branch on it
// rather than assume all-or-nothing.
func BulkDeleteTasks(c *gin.Context) {
	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := tasks.NewService(database.GetDB())
	result := svc.BulkDelete(c.Request.Context(), req.IDs)

	c.JSON(http.StatusOK, result)
}
