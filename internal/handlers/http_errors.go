package handlers

import (
	"net/http"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/logging"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/tasks"

	"github.com/gin-gonic/gin"
)

// respondError maps the core error taxonomy onto HTTP statuses. Every
// payload carries the kind so API clients can branch without parsing
// message text.
func respondError(c *gin.Context, err error) {
	kind := tasks.ErrorKind(err)
	status := http.StatusInternalServerError
	switch kind {
	case tasks.KindValidation, tasks.KindEmptyFeedback, tasks.KindFeedbackTooLong, tasks.KindMissingReportEvidence:
		status = http.StatusBadRequest
	case tasks.KindInvalidTransition:
		status = http.StatusConflict
	case tasks.KindNotFound:
		status = http.StatusNotFound
	case tasks.KindRepositoryUnavailable:
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		logging.Logger.Errorf("request failed: %v", err)
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
		"kind":  string(kind),
	})
}
