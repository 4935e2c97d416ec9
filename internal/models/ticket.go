package models

const (
	TicketKindSupportRequest = "support_request"
	TicketKindFeedback       = "feedback"

	TicketStatusPending    = "pending"
	TicketStatusInProgress = "in_progress"
	TicketStatusResolved   = "resolved"
	TicketStatusClosed     = "closed"
)

// TicketStatuses lists every accepted ticket status. Any status may follow
// any other.
var TicketStatuses = []string{TicketStatusPending, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}

// TicketModel stores both support requests and legacy feedback tickets,
// discriminated by Kind. Token is issued once at submission.
type TicketModel struct {
	Base
	Kind          string  `json:"-"              gorm:"size:20;not null;index:idx_tickets_kind_status"`
	Email         string  `json:"email"          gorm:"size:191;not null;index"`
	Name          *string `json:"name"           gorm:"size:100"`
	Subject       string  `json:"subject"        gorm:"size:200;not null"`
	Message       string  `json:"message"        gorm:"type:text;not null"`
	CategoryID    *string `json:"category_id"    gorm:"type:char(36);index"`
	Token         string  `json:"token"          gorm:"uniqueIndex;size:64;not null;<-:create"`
	Status        string  `json:"status"         gorm:"size:20;not null;index:idx_tickets_kind_status"`
	AdminResponse *string `json:"admin_response" gorm:"type:text"`
}

func (TicketModel) TableName() string { return "tickets" }
