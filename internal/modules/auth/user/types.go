package user

import "errors"

type CreateUserDTO struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email"    binding:"required,email,max=191"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Role     string `json:"role"     binding:"omitempty,oneof=admin moderator user"`
	Status   string `json:"status"   binding:"omitempty,oneof=active inactive"`
}

type UpdateUserDTO struct {
	Email    *string `json:"email"    binding:"omitnil,email,max=191"`
	Password *string `json:"password" binding:"omitnil,min=6,max=72"`
	Role     *string `json:"role"     binding:"omitnil,oneof=admin moderator user"`
	Status   *string `json:"status"   binding:"omitnil,oneof=active inactive"`
}

var (
	ErrUsernameTaken = errors.New("Username already exists")
	ErrEmailTaken    = errors.New("Email already exists")
	ErrEmailInUse    = errors.New("Email already in use by another user")
	ErrAdminExists   = errors.New("An admin account already exists")
)
