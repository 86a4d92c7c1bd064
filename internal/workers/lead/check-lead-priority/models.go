// internal/workers/lead/check-lead-priority/models.go
package checkleadpriority

import "lead-distribution-workers/internal/models"

type Input struct {
	TenantID  string  `json:"tenantId"`
	LeadScore float64 `json:"leadScore"`
}

type Output struct {
	IsPremiumTenant bool   `json:"isPremiumTenant"`
	RoutingPriority string `json:"routingPriority"`
	SLAMinutes      int    `json:"slaMinutes"`
}

// Plan tiers mirror models.TenantPlan as plain strings for SQL and cache
// round-trips.
const (
	PlanTierPremium = string(models.TenantPlanPremium)
	PlanTierGrowth  = string(models.TenantPlanGrowth)
	PlanTierStarter = string(models.TenantPlanStarter)
)

// Priority levels
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// First-response targets per priority, in minutes
const (
	SLAHighMinutes   = 15
	SLAMediumMinutes = 60
	SLALowMinutes    = 240
)

// Leads scoring at or above this are bumped one priority level
const HighValueScoreThreshold = 80.0
