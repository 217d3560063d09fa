package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dohigg1/advisory-hub/internal/http/response"
	"github.com/dohigg1/advisory-hub/internal/services"
)

type FlagHandler struct {
	flags services.FeatureFlagService
}

func NewFlagHandler(flags services.FeatureFlagService) *FlagHandler {
	return &FlagHandler{flags: flags}
}

// GET /api/flags/:name
func (h *FlagHandler) Get(c *gin.Context) {
	rd, ok := caller(c)
	if !ok {
		return
	}
	name := strings.TrimSpace(c.Param("name"))
	if name == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_flag", errors.New("flag name is required"))
		return
	}
	d, err := h.flags.Evaluate(dbcFrom(c), rd.OrgID, name)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"name": name, "enabled": d.Enabled, "source": d.Source})
}
