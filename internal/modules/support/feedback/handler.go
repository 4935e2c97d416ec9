package feedback

import (

	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/pkg/pagination"
	"github.com/albedo-support/api/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const defaultListLimit = 100

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/feedback")
	g.POST("", h.create)

	admin := g.Group("", authMW, middleware.RequireAdmin())
	admin.GET("", h.list)
	admin.GET("/stats", h.stats)
	admin.DELETE("/ratings/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateFeedbackDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	fb, err := h.svc.Create(c.Request.Context(), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, fb)
}

func (h *Handler) list(c *gin.Context) {
	limit, err := pagination.LimitFromQuery(c, defaultListLimit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	list, err := h.svc.List(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, stats)
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !found {
		response.NotFoundMsg(c, "Feedback not found")
		return
	}
	response.NoContent(c)
}
