package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/brightpath-backend/internal/services"
)

type UnitHandler struct {
	unitService services.UnitService
}

func NewUnitHandler(unitService services.UnitService) *UnitHandler {
	return &UnitHandler{unitService: unitService}
}

// GET /modules/:id/units
func (h *UnitHandler) ListUnitsForModule(c *gin.Context) {
	moduleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_module_id", err)
		return
	}
	units, err := h.unitService.ListUnitsForModule(c.Request.Context(), nil, moduleID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "units_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"units": units})
}

// GET /units/:id
func (h *UnitHandler) GetUnit(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_unit_id", err)
		return
	}
	unit, err := h.unitService.GetUnit(c.Request.Context(), nil, unitID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "unit_not_found", err)
		return
	}
	blocks, err := h.unitService.DecodeBlocks(unit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "unit_decode_failed", err)
		return
	}
	RespondOK(c, gin.H{"unit": unit, "activityBlocks": blocks})
}
