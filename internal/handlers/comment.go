package handlers

import (
	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

type commentRequest struct {
	Content string `json:"content"`
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

// Create POST /ideas/:id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	var req commentRequest
	if !bindJSON(c, &req) {
		return
	}
	comment, err := h.comments.AddComment(c.Request.Context(), currentUser(c), c.Param("id"), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// ToggleReaction POST /comments/:id/reactions
func (h *CommentHandler) ToggleReaction(c *gin.Context) {
	var req reactionRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.comments.ToggleReaction(c.Request.Context(), c.Param("id"), currentUser(c).ID, req.Emoji)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
