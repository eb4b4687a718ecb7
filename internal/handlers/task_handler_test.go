package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/auth"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/database"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/middleware"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/models"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/tasks"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupTaskRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	tasks.InvalidateStatistics()

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	api.GET("/tasks", GetTasks)
	api.GET("/tasks/stats", GetTaskStats)
	api.POST("/tasks", CreateTask)
	api.POST("/tasks/bulk-delete", BulkDeleteTasks)
	api.GET("/tasks/:id", GetTaskByID)
	api.PUT("/tasks/:id", UpdateTask)
	api.PATCH("/tasks/:id/status", TransitionTaskStatus)
	api.DELETE("/tasks/:id", DeleteTask)
	api.POST("/tasks/:id/feedback", AddFeedback)
	api.GET("/tasks/:id/feedback", ListFeedback)
	api.GET("/feedback/counts", GetFeedbackCounts)

	token, err := auth.GenerateToken("u-1", "alice", "Alice", "manager")
	require.NoError(t, err)
	return r, token
}

func doJSON(t *testing.T, r *gin.Engine, token, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateTask_Success(t *testing.T) {
	r, token := setupTaskRouter(t)

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
		"name":          "Prepare media plan",
		"description":   "for the autumn campaign",
		"assignedTo":    "u-2",
		"deadline":      "2026-09-15T18:00:00Z",
		"priority":      "high",
		"documentLinks": []string{"https://docs/brief", "https://docs/budget"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, models.StatusNotStarted, created.Status)
	require.Equal(t, models.PriorityHigh, created.Priority)
	require.Equal(t, []string{"https://docs/brief", "https://docs/budget"}, created.DocumentLinks)
	require.Empty(t, created.ReportLink)
}

func TestCreateTask_MissingDeadline(t *testing.T) {
	r, token := setupTaskRouter(t)

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
		"name": "No deadline",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateTask_RejectsStatusField(t *testing.T) {
	r, token := setupTaskRouter(t)

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
		"name":     "Edit me",
		"deadline": "2026-09-15T18:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// the generic edit path must not be a status bypass
	w = doJSON(t, r, token, http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
		"name":   "Edited",
		"status": "completed",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, token, http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
		"reportLink": "https://forged",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// a clean patch still works
	w = doJSON(t, r, token, http.MethodPut, "/api/tasks/"+created.ID, map[string]any{
		"name":     "Edited",
		"priority": "urgent",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, "Edited", updated.Name)
	require.Equal(t, models.StatusNotStarted, updated.Status)
}

func TestTaskLifecycleScenario(t *testing.T) {
	r, token := setupTaskRouter(t)

	// deadline today at 18:00 UTC
	now := time.Now().UTC()
	deadline := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, time.UTC)

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
		"name":     "Deliver launch report",
		"deadline": deadline.Format(time.RFC3339),
		"priority": "urgent",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	var listResp struct {
		Tasks []models.Task `json:"tasks"`
		Count int           `json:"count"`
	}

	// today's list includes the task
	w = doJSON(t, r, token, http.MethodGet, "/api/tasks?dateBucket=today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Equal(t, 1, listResp.Count)

	// narrowing to completed excludes it
	w = doJSON(t, r, token, http.MethodGet, "/api/tasks?dateBucket=today&status=completed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listResp))
	require.Equal(t, 0, listResp.Count)

	// start the work
	w = doJSON(t, r, token, http.MethodPatch, "/api/tasks/"+created.ID+"/status", map[string]any{
		"status": "in_progress",
	})
	require.Equal(t, http.StatusOK, w.Code)

	// completing without report evidence fails and changes nothing
	w = doJSON(t, r, token, http.MethodPatch, "/api/tasks/"+created.ID+"/status", map[string]any{
		"status": "completed",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, token, http.MethodGet, "/api/tasks/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var current models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &current))
	require.Equal(t, models.StatusInProgress, current.Status)

	// retry with the report link
	w = doJSON(t, r, token, http.MethodPatch, "/api/tasks/"+created.ID+"/status", map[string]any{
		"status":     "completed",
		"reportLink": "https://report",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &current))
	require.Equal(t, models.StatusCompleted, current.Status)
	require.Equal(t, "https://report", current.ReportLink)

	// the counters saw the transition
	w = doJSON(t, r, token, http.MethodGet, "/api/tasks/stats?dateBucket=today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var statsResp struct {
		Stats    models.StatisticsSnapshot `json:"stats"`
		Degraded bool                      `json:"degraded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statsResp))
	require.False(t, statsResp.Degraded)
	require.Equal(t, int64(1), statsResp.Stats.Completed)
	require.Equal(t, int64(1), statsResp.Stats.Total)
}

func TestTransition_InvalidEdgeReturnsConflict(t *testing.T) {
	r, token := setupTaskRouter(t)

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
		"name":     "Skip ahead",
		"deadline": "2026-09-15T18:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// not_started → completed is not a legal edge
	w = doJSON(t, r, token, http.MethodPatch, "/api/tasks/"+created.ID+"/status", map[string]any{
		"status":     "completed",
		"reportLink": "https://report",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	var errResp struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	require.Equal(t, "invalid_transition", errResp.Kind)
}

func TestBulkDeleteTasks_PartialResult(t *testing.T) {
	r, token := setupTaskRouter(t)

	ids := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
			"name":     fmt.Sprintf("Bulk victim %d", i),
			"deadline": "2026-09-15T18:00:00Z",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var created models.Task
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		ids = append(ids, created.ID)
	}

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks/bulk-delete", map[string]any{
		"ids": append(ids, "task-missing"),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var result tasks.BulkResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.ElementsMatch(t, ids, result.Succeeded)
	require.Equal(t, map[string]string{"task-missing": "NotFound"}, result.Failed)

	for _, id := range ids {
		w = doJSON(t, r, token, http.MethodGet, "/api/tasks/"+id, nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	}
}

func TestGetTasks_RejectsMalformedFilterParams(t *testing.T) {
	r, token := setupTaskRouter(t)

	var errResp struct {
		Kind string `json:"kind"`
	}

	w := doJSON(t, r, token, http.MethodGet, "/api/tasks?completedOnly=maybe", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	require.Equal(t, "validation", errResp.Kind)

	w = doJSON(t, r, token, http.MethodGet, "/api/tasks?tz=Atlantis/Nowhere", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, token, http.MethodGet, "/api/tasks/stats?tz=Atlantis/Nowhere", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	require.Equal(t, "validation", errResp.Kind)
}

func TestGetTasks_IncludesFeedbackCounts(t *testing.T) {
	r, token := setupTaskRouter(t)

	w := doJSON(t, r, token, http.MethodPost, "/api/tasks", map[string]any{
		"name":     "Discussed task",
		"deadline": "2026-09-15T18:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	for i := 0; i < 2; i++ {
		w = doJSON(t, r, token, http.MethodPost, "/api/tasks/"+created.ID+"/feedback", map[string]any{
			"message": "round of notes",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = doJSON(t, r, token, http.MethodGet, "/api/tasks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		FeedbackCounts map[string]int64 `json:"feedbackCounts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, int64(2), resp.FeedbackCounts[created.ID])
}
