// internal/models/notification.go
package models

type NotificationSettings struct {
	UserID       string `json:"userId"`
	EmailEnabled bool   `json:"emailEnabled"`
	SMSEnabled   bool   `json:"smsEnabled"`
	Phone        string `json:"phone,omitempty"`
}
