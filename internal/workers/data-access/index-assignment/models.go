// internal/workers/data-access/index-assignment/models.go
package indexassignment

import "lead-distribution-workers/internal/distribution"

// Input is the assignment record plus the scoring breakdown that made it.
// AssignmentID doubles as the document id so replays overwrite instead of
// duplicating.
type Input struct {
	AssignmentID string                `json:"assignmentId"`
	TenantID     string                `json:"tenantId"`
	LeadID       string                `json:"leadId"`
	UserID       string                `json:"userId"`
	CompanyName  string                `json:"companyName,omitempty"`
	TotalScore   float64               `json:"totalScore"`
	Explanation  string                `json:"explanation"`
	Factors      []distribution.Factor `json:"factors,omitempty"`
	AssignedAt   string                `json:"assignedAt"`
}

type Output struct {
	Indexed    bool   `json:"indexed"`
	DocumentID string `json:"documentId"`
	IndexName  string `json:"indexName"`
}
