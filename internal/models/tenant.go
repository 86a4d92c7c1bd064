// internal/models/tenant.go
package models

// TenantPlan is the subscription tier a tenant is on. Priority routing maps
// the tier to a routing priority and a first-response SLA.
type TenantPlan string

const (
	TenantPlanPremium TenantPlan = "premium"
	TenantPlanGrowth  TenantPlan = "growth"
	TenantPlanStarter TenantPlan = "starter"
)
