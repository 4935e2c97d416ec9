package ticket

import (
	"net/http"

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

// RegisterRoutes mounts the ticket routes under prefix. listPath is the
// admin listing route relative to prefix.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, prefix, listPath string, authMW gin.HandlerFunc) {
	g := rg.Group(prefix)
	g.POST("/submit", h.submit)

	admin := g.Group("", authMW, middleware.RequireAdmin())
	admin.GET(listPath, h.list)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)

	g.GET("/:token", h.getByToken)
}

func (h *Handler) submit(c *gin.Context) {
	var dto SubmitTicketDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, err := h.svc.Submit(c.Request.Context(), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	c.JSON(http.StatusOK, SubmitResponse{Success: true, Feedback: t})
}

func (h *Handler) getByToken(c *gin.Context) {
	t, err := h.svc.GetByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if t == nil {
		response.NotFoundMsg(c, h.svc.Variant().NotFoundMessage)
		return
	}
	response.OK(c, t)
}

func (h *Handler) list(c *gin.Context) {
	limit, err := pagination.LimitFromQuery(c, defaultListLimit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	list, err := h.svc.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateTicketDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	t, _, err := h.svc.Update(c.Request.Context(), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if t == nil {
		response.NotFoundMsg(c, h.svc.Variant().NotFoundMessage)
		return
	}
	response.OK(c, t)
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !found {
		response.NotFoundMsg(c, h.svc.Variant().NotFoundMessage)
		return
	}
	response.NoContent(c)
}
