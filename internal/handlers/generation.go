package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/brightpath-backend/internal/services"
)

type GenerationHandler struct {
	generationService services.GenerationService
}

func NewGenerationHandler(generationService services.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// POST /courses/:id/units/:unitID/blocks/generate
func (h *GenerationHandler) GenerateBlocks(c *gin.Context) {
	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_course_id", err)
		return
	}
	unitID, err := uuid.Parse(c.Param("unitID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_unit_id", err)
		return
	}
	var req struct {
		Capability string         `json:"capability"`
		Params     map[string]any `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if req.Capability == "" {
		RespondError(c, http.StatusBadRequest, "invalid_body", errMissingField("capability"))
		return
	}
	result, err := h.generationService.GenerateBlocks(c.Request.Context(), courseID, unitID, req.Capability, req.Params)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "generation_failed", err)
		return
	}
	if len(result.Errors) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"param_errors": result.Errors})
		return
	}
	RespondOK(c, result)
}
