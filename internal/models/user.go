package models

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserModel is an account that can sign in to the admin console.
type UserModel struct {
	Base
	Username string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email    string `json:"email"    gorm:"uniqueIndex;size:191;not null"`
	Password string `json:"-"        gorm:"not null"`
	Role     string `json:"role"     gorm:"size:20;not null;index"`
	Status   string `json:"status"   gorm:"size:20;not null;index"`
}

func (UserModel) TableName() string { return "users" }

func (u *UserModel) IsAdmin() bool  { return u.Role == RoleAdmin }
func (u *UserModel) IsActive() bool { return u.Status == StatusActive }
