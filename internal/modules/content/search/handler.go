package search

import (
	"errors"

	"github.com/albedo-support/api/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/search/articles", h.articles)
}

func (h *Handler) articles(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	limit := DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	results, err := h.svc.Articles(c.Request.Context(), req.Query, limit)
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, results)
}
