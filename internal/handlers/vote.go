package handlers

import (
	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	ideas *services.IdeaService
}

func NewVoteHandler(ideas *services.IdeaService) *VoteHandler {
	return &VoteHandler{ideas: ideas}
}

// Toggle POST /ideas/:id/vote adds the caller's vote, or removes it if present.
func (h *VoteHandler) Toggle(c *gin.Context) {
	res, err := h.ideas.ToggleVote(c.Request.Context(), c.Param("id"), currentUser(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
