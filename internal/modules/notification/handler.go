package notification

import (
	"fmt"

	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/pkg/pagination"
	"github.com/albedo-support/api/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

const defaultListLimit = 50

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/notifications", authMW, middleware.RequireAdmin())
	g.GET("", h.list)
	g.GET("/unread-count", h.unreadCount)
	g.PUT("/mark-all-read", h.markAllRead)
	g.GET("/settings", h.getSettings)
	g.PUT("/settings", h.updateSettings)
	g.GET("/:id", h.get)
	g.PUT("/:id", h.update)
}

func (h *Handler) list(c *gin.Context) {
	limit, err := pagination.LimitFromQuery(c, defaultListLimit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	unreadOnly, _ := pagination.ParseBool(c, "unread_only")

	list, err := h.svc.List(c.Request.Context(), middleware.CurrentUserID(c), unreadOnly, limit)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, list)
}

func (h *Handler) unreadCount(c *gin.Context) {
	count, err := h.svc.UnreadCount(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"unread_count": count})
}

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Message(c, fmt.Sprintf("Marked %d notifications as read", n))
}

func (h *Handler) getSettings(c *gin.Context) {
	pref, err := h.svc.Preference(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, pref)
}

func (h *Handler) updateSettings(c *gin.Context) {
	var dto UpdateSettingsDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	pref, err := h.svc.UpdatePreference(c.Request.Context(), middleware.CurrentUserID(c), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, pref)
}

func (h *Handler) get(c *gin.Context) {
	n, err := h.svc.Get(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if n == nil {
		response.NotFoundMsg(c, "Notification not found")
		return
	}
	response.OK(c, n)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateNotificationDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	n, err := h.svc.SetRead(c.Request.Context(), middleware.CurrentUserID(c), c.Param("id"), &dto)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if n == nil {
		response.NotFoundMsg(c, "Notification not found")
		return
	}
	response.OK(c, n)
}
