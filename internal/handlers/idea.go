package handlers

import (
	"ideaboard/internal/middleware"
	"ideaboard/internal/response"
	"ideaboard/internal/services"

	"github.com/gin-gonic/gin"
)

type IdeaHandler struct {
	ideas *services.IdeaService
}

func NewIdeaHandler(ideas *services.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas}
}

// List GET /ideas?type&status&sort&search&authorId
func (h *IdeaHandler) List(c *gin.Context) {
	q := services.ListQuery{
		Type:     c.Query("type"),
		Status:   c.Query("status"),
		Search:   c.Query("search"),
		AuthorID: c.Query("authorId"),
		Sort:     c.Query("sort"),
	}
	res, err := h.ideas.List(c.Request.Context(), q, middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

func (h *IdeaHandler) Detail(c *gin.Context) {
	res, err := h.ideas.Get(c.Request.Context(), c.Param("id"), middleware.CallerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

func (h *IdeaHandler) Create(c *gin.Context) {
	var in services.CreateIdeaInput
	if !bindJSON(c, &in) {
		return
	}
	idea, err := h.ideas.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, idea)
}

// Update PATCH /ideas/:id. Only title, description, product, status and
// aiDevelopment may be sent.
func (h *IdeaHandler) Update(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	idea, err := h.ideas.Update(c.Request.Context(), c.Param("id"), currentUser(c).ID, body)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, idea)
}

func (h *IdeaHandler) Delete(c *gin.Context) {
	if err := h.ideas.Delete(c.Request.Context(), c.Param("id"), currentUser(c).ID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c)
}
