package models

import "gorm.io/datatypes"

const (
	NotificationTypeSupportRequest = "support_request"
	NotificationTypeUserCreated    = "user_created"
)

// NotificationModel is an in-app message for one account. Only IsRead
// changes after creation.
type NotificationModel struct {
	Base
	UserID  string            `json:"user_id" gorm:"type:char(36);not null;index"`
	Type    string            `json:"type"    gorm:"size:50;not null"`
	Title   string            `json:"title"   gorm:"size:200;not null"`
	Message string            `json:"message" gorm:"type:text;not null"`
	IsRead  bool              `json:"is_read" gorm:"not null;index"`
	Data    datatypes.JSONMap `json:"data"`

	User *UserModel `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (NotificationModel) TableName() string { return "notifications" }

// NotificationPreferenceModel holds per-account delivery toggles. Rows are
// created lazily with every toggle on.
type NotificationPreferenceModel struct {
	Base
	UserID                 string `json:"user_id"                  gorm:"type:char(36);uniqueIndex;not null"`
	EmailSupportRequests   bool   `json:"email_support_requests"   gorm:"not null"`
	EmailUserCreated       bool   `json:"email_user_created"       gorm:"not null"`
	SystemSupportRequests  bool   `json:"system_support_requests"  gorm:"not null"`
	SystemUserCreated      bool   `json:"system_user_created"      gorm:"not null"`
	BrowserSupportRequests bool   `json:"browser_support_requests" gorm:"not null"`
	BrowserUserCreated     bool   `json:"browser_user_created"     gorm:"not null"`

	User *UserModel `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (NotificationPreferenceModel) TableName() string { return "notification_preferences" }

// DefaultPreference returns the preference row used when an account has none.
func DefaultPreference(userID string) NotificationPreferenceModel {
	return NotificationPreferenceModel{
		UserID:                 userID,
		EmailSupportRequests:   true,
		EmailUserCreated:       true,
		SystemSupportRequests:  true,
		SystemUserCreated:      true,
		BrowserSupportRequests: true,
		BrowserUserCreated:     true,
	}
}

// Allows reports the (email, system, browser) toggles for a notification type.
func (p *NotificationPreferenceModel) Allows(notificationType string) (email, system, browser bool) {
	switch notificationType {
	case NotificationTypeSupportRequest:
		return p.EmailSupportRequests, p.SystemSupportRequests, p.BrowserSupportRequests
	case NotificationTypeUserCreated:
		return p.EmailUserCreated, p.SystemUserCreated, p.BrowserUserCreated
	}
	return false, false, false
}
