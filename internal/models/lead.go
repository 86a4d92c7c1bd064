// internal/models/lead.go
package models

type Lead struct {
	ID          string  `json:"id"`
	CompanyID   string  `json:"companyId"`
	CompanyName string  `json:"companyName"`
	Region      string  `json:"region"`
	Vertical    string  `json:"vertical"`
	SubVertical string  `json:"subVertical"`
	Score       float64 `json:"score"` // intake quality score, 0-100
}
