package upload

import (
	"errors"

	"github.com/albedo-support/api/internal/middleware"
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
	g := rg.Group("/upload", authMW, middleware.RequireAdmin())
	g.POST("", h.upload)
	g.DELETE("", h.delete)
}

func (h *Handler) upload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	f, err := header.Open()
	if err != nil {
		response.InternalError(c, err)
		return
	}
	defer f.Close()

	res, err := h.svc.Save(c.Request.Context(), c.DefaultQuery("file_type", TypeImage), header.Filename, f, header.Size)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, res)
}

func (h *Handler) delete(c *gin.Context) {
	found, err := h.svc.Delete(c.Request.Context(), c.Query("file_url"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !found {
		response.NotFoundMsg(c, "File not found")
		return
	}
	response.Message(c, "File deleted successfully")
}

func (h *Handler) fail(c *gin.Context, err error) {
	var extErr *ExtensionError
	switch {
	case errors.Is(err, ErrInvalidType), errors.Is(err, ErrInvalidURL), errors.Is(err, ErrTooLarge):
		response.BadRequest(c, err.Error())
	case errors.As(err, &extErr):
		response.BadRequest(c, extErr.Error())
	default:
		response.InternalError(c, err)
	}
}
