package handlers

import (
	"context"

	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
)

type WorkshopHandler struct {
	workshop *services.WorkshopService
}

func NewWorkshopHandler(workshop *services.WorkshopService) *WorkshopHandler {
	return &WorkshopHandler{workshop: workshop}
}

// Develop POST /ai/develop. The completion request is not cancelled when the
// client goes away; the LLM client timeout bounds it.
func (h *WorkshopHandler) Develop(c *gin.Context) {
	var in services.DevelopInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.workshop.Develop(context.WithoutCancel(c.Request.Context()), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Summarize POST /ai/summarize
func (h *WorkshopHandler) Summarize(c *gin.Context) {
	var in services.SummarizeInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.workshop.Summarize(context.WithoutCancel(c.Request.Context()), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}
