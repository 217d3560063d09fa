package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dohigg1/advisory-hub/internal/http/response"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/services"
)

type AssessmentHandler struct {
	log           *logger.Logger
	notifications services.NotificationService
	exports       services.ExportService
}

func NewAssessmentHandler(log *logger.Logger, notifications services.NotificationService, exports services.ExportService) *AssessmentHandler {
	return &AssessmentHandler{
		log:           log.With("handler", "AssessmentHandler"),
		notifications: notifications,
		exports:       exports,
	}
}

// POST /api/assessments/:id/notify
func (h *AssessmentHandler) Notify(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	assessmentID, ok := uuidParam(c, "id", "invalid_assessment_id")
	if !ok {
		return
	}
	res, err := h.notifications.NotifyAssessmentPublished(dbcFrom(c), rd.OrgID, assessmentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notification": res})
}

// GET /api/assessments/:id/leads/export
func (h *AssessmentHandler) ExportLeads(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	assessmentID, ok := uuidParam(c, "id", "invalid_assessment_id")
	if !ok {
		return
	}
	exp, err := h.exports.ExportLeads(dbcFrom(c), rd.OrgID, rd.UserID, assessmentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	if exp.ObjectURI != "" {
		c.Header("X-Export-Object", exp.ObjectURI)
	}
	c.Data(http.StatusOK, exp.ContentType, exp.Data)
}
