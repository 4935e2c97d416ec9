package notification

type UpdateNotificationDTO struct {
	IsRead *bool `json:"is_read"`
}

type UpdateSettingsDTO struct {
	EmailSupportRequests   *bool `json:"email_support_requests"`
	EmailUserCreated       *bool `json:"email_user_created"`
	SystemSupportRequests  *bool `json:"system_support_requests"`
	SystemUserCreated      *bool `json:"system_user_created"`
	BrowserSupportRequests *bool `json:"browser_support_requests"`
	BrowserUserCreated     *bool `json:"browser_user_created"`
}

func (d *UpdateSettingsDTO) updates() map[string]interface{} {
	out := map[string]interface{}{}
	set := func(col string, v *bool) {
		if v != nil {
			out[col] = *v
		}
	}
	set("email_support_requests", d.EmailSupportRequests)
	set("email_user_created", d.EmailUserCreated)
	set("system_support_requests", d.SystemSupportRequests)
	set("system_user_created", d.SystemUserCreated)
	set("browser_support_requests", d.BrowserSupportRequests)
	set("browser_user_created", d.BrowserUserCreated)
	return out
}
