// internal/workers/lead/distribute-lead/models.go
package distributelead

import (
	"lead-distribution-workers/internal/distribution"
	"lead-distribution-workers/internal/models"
)

// Input carries one distribution request. DistributionConfig is optional
// per-process tuning; a missing override selects the handler's startup
// configuration.
type Input struct {
	TenantID           string          `json:"tenantId"`
	Lead               models.Lead     `json:"lead"`
	DistributionConfig *ConfigOverride `json:"distributionConfig,omitempty"`
}

// ConfigOverride is the wire form of per-process tuning. A present override
// replaces the startup tuning as a whole; fields it leaves nil fall back to
// the engine defaults.
type ConfigOverride struct {
	Weights         *distribution.Weights `json:"weights,omitempty"`
	MaxLeadsPerUser *int                  `json:"maxLeadsPerUser,omitempty"`
}

type Output struct {
	Success       bool                         `json:"success"`
	LeadID        string                       `json:"leadId"`
	AssignedTo    *distribution.AssignedMember `json:"assignedTo"`
	Explanation   string                       `json:"explanation"`
	Factors       []distribution.Factor        `json:"factors"`
	Alternatives  []distribution.Alternative   `json:"alternativeCandidates"`
	DistributedAt string                       `json:"distributedAt"`
}
