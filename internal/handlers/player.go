package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/brightpath/brightpath-backend/internal/player"
	"github.com/brightpath/brightpath-backend/internal/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(playerService services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: playerService}
}

// POST /player/sessions
func (h *PlayerHandler) StartSession(c *gin.Context) {
	var req struct {
		UnitID string `json:"unit_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	unitID, err := uuid.Parse(req.UnitID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_unit_id", err)
		return
	}
	session, err := h.playerService.StartSession(c.Request.Context(), unitID)
	if err != nil {
		respondPlayerError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// GET /player/sessions/:id
func (h *PlayerHandler) GetSession(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	session, err := h.playerService.GetSession(c.Request.Context(), sessionID)
	if err != nil {
		respondPlayerError(c, err)
		return
	}
	RespondOK(c, session)
}

// POST /player/sessions/:id/answer
func (h *PlayerHandler) SubmitAnswer(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	var answer player.Answer
	if err := c.ShouldBindJSON(&answer); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	session, err := h.playerService.SubmitAnswer(c.Request.Context(), sessionID, answer)
	if err != nil {
		respondPlayerError(c, err)
		return
	}
	RespondOK(c, session)
}

// POST /player/sessions/:id/advance
func (h *PlayerHandler) Advance(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	session, err := h.playerService.Advance(c.Request.Context(), sessionID)
	if err != nil {
		respondPlayerError(c, err)
		return
	}
	RespondOK(c, session)
}

func respondPlayerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, player.ErrSessionNotFound):
		RespondError(c, http.StatusNotFound, "session_not_found", err)
	case errors.Is(err, player.ErrSessionCompleted):
		RespondError(c, http.StatusConflict, "session_completed", err)
	case errors.Is(err, player.ErrAlreadyCorrect):
		RespondError(c, http.StatusConflict, "already_correct", err)
	case errors.Is(err, player.ErrAdvanceLocked):
		RespondError(c, http.StatusConflict, "advance_locked", err)
	case errors.Is(err, player.ErrNoBlocks):
		RespondError(c, http.StatusUnprocessableEntity, "no_playable_blocks", err)
	default:
		RespondError(c, http.StatusInternalServerError, "player_error", err)
	}
}
