package handlers

import (
	"net/http"
	"strings"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/database"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/tasks"

	"github.com/gin-gonic/gin"
)

// AddFeedbackRequest carries one feedback message. Validation (trim,
// emptiness, length) lives in the core, not in binding tags.
type AddFeedbackRequest struct {
	Message string `json:"message"`
}

// AddFeedback handles POST /api/tasks/:id/feedback
// The author identity comes from the validated credential; the display
// name is frozen into the entry at write time.
func AddFeedback(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in token"})
		return
	}
	displayName := c.GetString("display_name")
	if displayName == "" {
		displayName = c.GetString("username")
	}

	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	var req AddFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc := tasks.NewService(database.GetDB())
	fb, err := svc.AddFeedback(c.Request.Context(), taskID, tasks.Author{ID: userID, Name: displayName}, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, fb)
}

// ListFeedback handles GET /api/tasks/:id/feedback
// Entries come back in strict insertion order.
func ListFeedback(c *gin.Context) {
	taskID := c.Param("id")
	if taskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task ID is required"})
		return
	}

	svc := tasks.NewService(database.GetDB())
	entries, err := svc.ListFeedback(c.Request.Context(), taskID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feedback": entries,
		"count":    len(entries),
	})
}

// GetFeedbackCounts handles GET /api/feedback/counts?ids=a,b,c
// One grouped query serves the whole set of task IDs.
func GetFeedbackCounts(c *gin.Context) {
	idsParam := strings.TrimSpace(c.Query("ids"))
	if idsParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids query parameter is required"})
		return
	}

	var ids []string
	for _, id := range strings.Split(idsParam, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	svc := tasks.NewService(database.GetDB())
	counts, err := svc.CountFeedback(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"counts": counts})
}
