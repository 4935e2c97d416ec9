package article

import (
	"errors"
	"strings"

	"github.com/albedo-support/api/internal/middleware"
	"github.com/albedo-support/api/internal/pkg/pagination"
	"github.com/albedo-support/api/internal/pkg/response"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	articles := rg.Group("/articles")
	articles.GET("", h.list)
	// slugs may contain "/", e.g. docs/getting-started
	articles.GET("/slug/*slug", h.getBySlug)
	articles.GET("/:id", h.get)

	admin := articles.Group("", authMW, middleware.RequireAdmin())
	admin.POST("", h.create)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	filter := ListFilter{CategoryID: c.Query("category_id")}
	if v, ok := pagination.ParseBool(c, "is_published"); ok {
		filter.IsPublished = &v
	}
	if v, ok := pagination.ParseBool(c, "is_featured"); ok {
		filter.IsFeatured = &v
	}
	articles, err := h.svc.List(filter, pagination.FromContext(c, 100))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, articles)
}

func (h *Handler) get(c *gin.Context) {
	a, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if a == nil {
		response.NotFoundMsg(c, "Article not found")
		return
	}
	response.OK(c, a)
}

func (h *Handler) getBySlug(c *gin.Context) {
	slug := strings.TrimPrefix(c.Param("slug"), "/")
	if slug == "" {
		response.NotFoundMsg(c, "Article not found")
		return
	}
	a, err := h.svc.GetBySlug(slug)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if a == nil {
		response.NotFoundMsg(c, "Article not found")
		return
	}
	response.OK(c, a)
}

func (h *Handler) create(c *gin.Context) {
	var dto CreateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Create(&dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, a)
}

func (h *Handler) update(c *gin.Context) {
	var dto UpdateArticleDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	a, err := h.svc.Update(c.Param("id"), &dto)
	if err != nil {
		h.fail(c, err)
		return
	}
	if a == nil {
		response.NotFoundMsg(c, "Article not found")
		return
	}
	response.OK(c, a)
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !found {
		response.NotFoundMsg(c, "Article not found")
		return
	}
	response.NoContent(c)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrCategoryNotFound) || errors.Is(err, ErrSlugTaken) {
		response.BadRequest(c, err.Error())
		return
	}
	response.InternalError(c, err)
}
