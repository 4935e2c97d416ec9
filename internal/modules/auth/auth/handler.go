package auth

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
	a := rg.Group("/auth")
	a.POST("/login", h.login)
	a.GET("/me", authMW, h.me)
	// tokens are stateless; the client discards its copy
	a.POST("/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	var dto LoginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	token, user, err := h.svc.Login(c.Request.Context(), dto.Username, dto.Password)
	if err != nil {
		switch {
		case errors.Is(err, errBadCredentials):
			response.UnauthorizedMsg(c, err.Error())
		case errors.Is(err, errInactive):
			response.ForbiddenMsg(c, err.Error())
		default:
			response.InternalError(c, err)
		}
		return
	}
	response.OK(c, loginResponse{AccessToken: token, TokenType: "bearer", User: user})
}

func (h *Handler) me(c *gin.Context) {
	response.OK(c, middleware.CurrentUser(c))
}

func (h *Handler) logout(c *gin.Context) {
	response.Message(c, "Logged out successfully")
}
