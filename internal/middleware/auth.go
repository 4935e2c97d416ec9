package middleware

import (
	"errors"
	"strings"

	"github.com/albedo-support/api/internal/models"
	"github.com/albedo-support/api/internal/pkg/jwt"
	"github.com/albedo-support/api/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "user"
)

var (
	ErrMissingToken    = errors.New("token is required")
	ErrUnknownAccount  = errors.New("account not found")
	ErrInactiveAccount = errors.New("User account is not active")
)

// Auth returns a middleware that enforces bearer-token authentication. The
// account is re-loaded on every request so deactivation takes effect before
// the token expires.
func Auth(db *gorm.DB, tokens *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := ResolveUser(db, tokens, extractToken(c))
		switch {
		case errors.Is(err, ErrInactiveAccount):
			response.ForbiddenMsg(c, ErrInactiveAccount.Error())
			return
		case err != nil:
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyUser, user)
		c.Next()
	}
}

// RequireAdmin must run after Auth. It is the single role gate used by every
// privileged route.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.Unauthorized(c)
			return
		}
		if !user.IsAdmin() {
			response.ForbiddenMsg(c, "Admin access required")
			return
		}
		c.Next()
	}
}

// ResolveUser validates a raw token and loads the active account it names.
func ResolveUser(db *gorm.DB, tokens *jwt.Manager, rawToken string) (*models.UserModel, error) {
	token := NormalizeToken(rawToken)
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	var user models.UserModel
	err = db.Where("id = ?", claims.UserID()).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, ErrInactiveAccount
	}
	return &user, nil
}

// CurrentUserID extracts the authenticated user ID from context.
func CurrentUserID(c *gin.Context) string {
	v, _ := c.Get(ContextKeyUserID)
	id, _ := v.(string)
	return id
}

// CurrentUser returns the account loaded by Auth, or nil.
func CurrentUser(c *gin.Context) *models.UserModel {
	v, _ := c.Get(ContextKeyUser)
	user, _ := v.(*models.UserModel)
	return user
}

func extractToken(c *gin.Context) string {
	return NormalizeToken(c.GetHeader("Authorization"))
}

// NormalizeToken trims spaces and strips optional Bearer prefix.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if token == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
