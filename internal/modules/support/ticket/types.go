package ticket

import (
	"strings"

	"github.com/albedo-support/api/internal/models"
)

type SubmitTicketDTO struct {
	Email      string  `json:"email"       binding:"required,email,max=191"`
	Name       *string `json:"name"        binding:"omitempty,max=100"`
	Subject    string  `json:"subject"     binding:"required,max=200"`
	Message    string  `json:"message"     binding:"required"`
	CategoryID *string `json:"categoryId"`
	// snake_case alias accepted for API clients
	CategoryIDAlt *string `json:"category_id"`
}

func (d *SubmitTicketDTO) categoryID() string {
	for _, v := range []*string{d.CategoryID, d.CategoryIDAlt} {
		if v != nil && strings.TrimSpace(*v) != "" {
			return strings.TrimSpace(*v)
		}
	}
	return ""
}

type UpdateTicketDTO struct {
	Status        *string `json:"status"         binding:"omitnil,oneof=pending in_progress resolved closed"`
	AdminResponse *string `json:"admin_response"`
}

type SubmitResponse struct {
	Success  bool                `json:"success"`
	Feedback *models.TicketModel `json:"feedback"`
}

// Email is the class of message sent to the submitter after an update.
type Email string

const (
	EmailNone     Email = ""
	EmailResponse Email = "response"
	EmailStatus   Email = "status"
	EmailCombined Email = "combined"
)

// Variant configures one ticket flavour. Both flavours share the tickets
// table and differ only in kind and side effects.
type Variant struct {
	Kind            string
	NotFoundMessage string
	// NotifyAdmins fans out a notification to admins on submit.
	NotifyAdmins bool
	// StatusEmails tells the submitter about status changes, not only
	// responses.
	StatusEmails bool
}

var (
	SupportRequest = Variant{
		Kind:            models.TicketKindSupportRequest,
		NotFoundMessage: "SupportRequest not found",
		NotifyAdmins:    true,
		StatusEmails:    true,
	}
	LegacyFeedback = Variant{
		Kind:            models.TicketKindFeedback,
		NotFoundMessage: "Feedback not found",
	}
)

// classify picks the submitter email for an update. A blank response does
// not count as a response.
func (v Variant) classify(dto *UpdateTicketDTO) Email {
	hasResponse := dto.AdminResponse != nil && strings.TrimSpace(*dto.AdminResponse) != ""
	hasStatus := dto.Status != nil
	if !v.StatusEmails {
		if hasResponse {
			return EmailResponse
		}
		return EmailNone
	}
	switch {
	case hasResponse && hasStatus:
		return EmailCombined
	case hasStatus:
		return EmailStatus
	case hasResponse:
		return EmailResponse
	}
	return EmailNone
}
