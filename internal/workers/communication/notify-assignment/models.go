// internal/workers/communication/notify-assignment/models.go
package notifyassignment

type Input struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	TenantID    string `json:"tenantId"`
	LeadID      string `json:"leadId"`
	CompanyName string `json:"companyName"`
	Explanation string `json:"explanation,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	EmailStatus    string `json:"emailStatus"` // "sent", "failed", "disabled"
	SMSStatus      string `json:"smsStatus"`   // "sent", "failed", "disabled"
	SentAt         string `json:"sentAt"`      // ISO 8601
}

// Notification types
const (
	TypeLeadAssigned = "lead_assigned"
)

// Channel statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
