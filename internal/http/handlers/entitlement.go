package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dohigg1/advisory-hub/internal/http/response"
	"github.com/dohigg1/advisory-hub/internal/plans"
	"github.com/dohigg1/advisory-hub/internal/services"
)

type EntitlementHandler struct {
	entitlements services.EntitlementService
}

func NewEntitlementHandler(entitlements services.EntitlementService) *EntitlementHandler {
	return &EntitlementHandler{entitlements: entitlements}
}

// GET /api/entitlements
func (h *EntitlementHandler) List(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	usage, err := h.entitlements.Usage(dbcFrom(c), rd.OrgID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entitlements": usage})
}

// GET /api/entitlements/:resource
func (h *EntitlementHandler) Get(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	resource, known := plans.ParseResource(c.Param("resource"))
	if !known {
		response.RespondError(c, http.StatusBadRequest, "invalid_resource", fmt.Errorf("unknown resource %q", c.Param("resource")))
		return
	}
	ent, err := h.entitlements.Check(dbcFrom(c), rd.OrgID, resource)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"entitlement": ent})
}
