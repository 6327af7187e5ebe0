package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/brightpath/brightpath-backend/internal/services"
)

type SearchHandler struct {
	searchService services.SearchService
}

func NewSearchHandler(searchService services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// POST /knowledge/search
func (h *SearchHandler) SearchKnowledge(c *gin.Context) {
	var req services.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	resp := h.searchService.SearchKnowledge(c.Request.Context(), req)
	RespondOK(c, resp)
}
