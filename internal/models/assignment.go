// internal/models/assignment.go
package models

type Assignment struct {
	ID          string  `json:"id"`
	TenantID    string  `json:"tenantId"`
	LeadID      string  `json:"leadId"`
	UserID      string  `json:"userId"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
	AssignedAt  string  `json:"assignedAt"`
}
