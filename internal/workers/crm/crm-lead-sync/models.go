package crmleadsync

import (
	"lead-distribution-workers/internal/common/logger"
	"time"
)

// Input identifies the assignment to mirror: the internal lead plus the
// member who now owns it. Name and Email describe the assignee, not the
// lead contact. CRMLeadID short-circuits the search when the process
// already knows the Zoho record.
type Input struct {
	LeadID      string `json:"leadId"`
	CRMLeadID   string `json:"crmLeadId,omitempty"`
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
}

type Output struct {
	Success     bool      `json:"success"`
	Message     string    `json:"message"`
	CRMLeadID   string    `json:"crmLeadId,omitempty"`
	OwnerEmail  string    `json:"ownerEmail,omitempty"`
	CRMProvider string    `json:"crmProvider,omitempty"`
	SyncedAt    time.Time `json:"syncedAt,omitempty"`
}

type ServiceDependencies struct {
	Logger logger.Logger
}
