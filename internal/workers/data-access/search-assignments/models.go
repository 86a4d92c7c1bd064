// internal/workers/data-access/search-assignments/models.go
package searchassignments

type Input struct {
	QueryType  string     `json:"queryType"`
	TenantID   string     `json:"tenantId"`
	UserID     string     `json:"userId,omitempty"`
	LeadID     string     `json:"leadId,omitempty"`
	DateFrom   string     `json:"dateFrom,omitempty"`
	DateTo     string     `json:"dateTo,omitempty"`
	Pagination Pagination `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Data      []map[string]interface{} `json:"data"`
	TotalHits int64                    `json:"totalHits"`
	MaxScore  float64                  `json:"maxScore"`
	Took      int64                    `json:"took"` // milliseconds
}
