package auth

import (
	"errors"

	"github.com/albedo-support/api/internal/models"
)

type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	AccessToken string            `json:"access_token"`
	TokenType   string            `json:"token_type"`
	User        *models.UserModel `json:"user"`
}

var (
	errBadCredentials = errors.New("Incorrect username or password")
	errInactive       = errors.New("User account is not active")
)
