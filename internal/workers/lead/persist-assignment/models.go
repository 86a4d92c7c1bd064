// internal/workers/lead/persist-assignment/models.go
package persistassignment

type Input struct {
	TenantID    string  `json:"tenantId"`
	LeadID      string  `json:"leadId"`
	UserID      string  `json:"userId"`
	TotalScore  float64 `json:"totalScore"`
	Explanation string  `json:"explanation"`
}

type Output struct {
	AssignmentID string `json:"assignmentId"`
	CurrentLoad  int    `json:"currentLoad"`
	AssignedAt   string `json:"assignedAt"`
}
