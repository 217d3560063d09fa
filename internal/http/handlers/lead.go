package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dohigg1/advisory-hub/internal/http/response"
	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
	"github.com/dohigg1/advisory-hub/internal/services"
)

type LeadHandler struct {
	log     *logger.Logger
	capture services.LeadCaptureService
	scoring services.ScoringService
}

func NewLeadHandler(log *logger.Logger, capture services.LeadCaptureService, scoring services.ScoringService) *LeadHandler {
	return &LeadHandler{log: log.With("handler", "LeadHandler"), capture: capture, scoring: scoring}
}

type captureFailure struct {
	Error  response.APIError      `json:"error"`
	Result services.CaptureResult `json:"result"`
}

// POST /api/public/assessments/:id/leads
func (h *LeadHandler) Capture(c *gin.Context) {
	assessmentID, ok := uuidParam(c, "id", "invalid_assessment_id")
	if !ok {
		return
	}
	var req services.CaptureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	req.AssessmentID = assessmentID

	res, err := h.capture.Capture(dbcFrom(c), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	switch res.Outcome {
	case services.OutcomeCreated:
		c.JSON(http.StatusCreated, res)
	case services.OutcomeResumed, services.OutcomeAlreadyCompleted:
		c.JSON(http.StatusOK, res)
	case services.OutcomeLimitReached:
		c.JSON(http.StatusPaymentRequired, captureFailure{
			Error:  response.APIError{Message: res.Reason, Code: string(res.Outcome)},
			Result: res,
		})
	default:
		c.JSON(http.StatusUnprocessableEntity, captureFailure{
			Error:  response.APIError{Message: res.Reason, Code: string(res.Outcome)},
			Result: res,
		})
	}
}

// POST /api/public/leads/:id/complete
func (h *LeadHandler) Complete(c *gin.Context) {
	leadID, ok := uuidParam(c, "id", "invalid_lead_id")
	if !ok {
		return
	}
	score, err := h.scoring.CompleteLead(dbcFrom(c), leadID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"score": score})
}
