// internal/models/team_member.go
package models

import "time"

// TeamMember is a point-in-time snapshot of a sales team member loaded for
// one distribution call. LastAssignedAt is nil for members who have never
// received a lead.
type TeamMember struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Territories    []string   `json:"territories"`
	Verticals      []string   `json:"verticals"`
	SubVerticals   []string   `json:"subVerticals"`
	MaxCapacity    int        `json:"maxCapacity"`
	CurrentLoad    int        `json:"currentLoad"`
	ConversionRate float64    `json:"conversionRate"` // 0-1
	IsActive       bool       `json:"isActive"`
	LastAssignedAt *time.Time `json:"lastAssignedAt,omitempty"`
}
