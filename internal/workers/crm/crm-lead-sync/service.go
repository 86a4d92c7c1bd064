package crmleadsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lead-distribution-workers/internal/common/errors"
	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/common/validation"
	"lead-distribution-workers/internal/common/zoho"
)

// crmAPI is the slice of the Zoho client the sync needs. Tests substitute
// a mock; production wires the real client in NewService.
type crmAPI interface {
	SearchLeads(ctx context.Context, criteria string) ([]zoho.LeadRecord, error)
	SearchLeadsByEmail(ctx context.Context, email string) ([]zoho.LeadRecord, error)
	CreateLead(ctx context.Context, lead *zoho.LeadRecord) (string, error)
	UpdateLead(ctx context.Context, leadID string, lead *zoho.LeadRecord) error
}

type Service struct {
	config *Config
	logger logger.Logger
	crm    crmAPI
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	s := &Service{
		config: config,
		logger: deps.Logger,
	}

	if config.ZohoAPIKey != "" && config.ZohoOAuthToken != "" {
		s.crm = zoho.NewCRMClient(config.ZohoAPIKey, config.ZohoOAuthToken)
	}

	return s
}

func (s *Service) Execute(ctx context.Context, input *Input) (*Output, error) {
	s.logger.Info("Executing CRM lead sync", map[string]interface{}{
		"leadId":      input.LeadID,
		"userId":      input.UserID,
		"companyName": input.CompanyName,
	})

	if !validation.ValidateEmail(input.Email) {
		return nil, &errors.StandardError{
			Code:      "VALIDATION_FAILED",
			Message:   "Invalid assignee email address",
			Details:   fmt.Sprintf("email: %s", input.Email),
			Retryable: false,
			Timestamp: time.Now(),
		}
	}

	if s.crm == nil {
		return nil, errors.NewCRMNotConfiguredError("Missing API key or OAuth token")
	}

	owner := &zoho.RecordOwner{
		Name:  input.Name,
		Email: input.Email,
	}

	// A known record id skips the search entirely
	if input.CRMLeadID != "" {
		if err := s.crm.UpdateLead(ctx, input.CRMLeadID, &zoho.LeadRecord{Owner: owner}); err != nil {
			return nil, errors.NewCRMAPIError(err)
		}
		return s.syncedOutput(input.CRMLeadID, input.Email, "Lead owner updated in CRM"), nil
	}

	criteria := fmt.Sprintf("((Company:equals:%s)and(Lead_Reference:equals:%s))",
		input.CompanyName, input.LeadID)

	existing, err := s.crm.SearchLeads(ctx, criteria)
	if err != nil {
		// Creating blindly here would duplicate the record on retry
		return nil, errors.NewCRMAPIError(err)
	}

	if len(existing) > 0 {
		record := existing[0]
		if err := s.crm.UpdateLead(ctx, record.ID, &zoho.LeadRecord{Owner: owner}); err != nil {
			return nil, errors.NewCRMAPIError(err)
		}

		s.logger.Info("Existing CRM lead reassigned", map[string]interface{}{
			"crmLeadId": record.ID,
			"leadId":    input.LeadID,
			"owner":     input.Email,
		})
		return s.syncedOutput(record.ID, input.Email, "Lead owner updated in CRM"), nil
	}

	// Zoho requires Last_Name; the lead contact's name is not part of the
	// assignment, so the company stands in.
	lead := &zoho.LeadRecord{
		Company:   input.CompanyName,
		LastName:  input.CompanyName,
		Reference: input.LeadID,
		Source:    "lead-distribution",
		Owner:     owner,
	}

	crmLeadID, err := s.crm.CreateLead(ctx, lead)
	if err != nil {
		return nil, errors.NewCRMAPIError(err)
	}

	s.logger.Info("CRM lead created", map[string]interface{}{
		"crmLeadId": crmLeadID,
		"leadId":    input.LeadID,
		"owner":     input.Email,
	})

	return s.syncedOutput(crmLeadID, input.Email, "Lead created in CRM"), nil
}

func (s *Service) syncedOutput(crmLeadID, ownerEmail, message string) *Output {
	return &Output{
		Success:     true,
		Message:     message,
		CRMLeadID:   crmLeadID,
		OwnerEmail:  ownerEmail,
		CRMProvider: "zoho",
		SyncedAt:    time.Now(),
	}
}

func (s *Service) TestConnection(ctx context.Context) error {
	s.logger.Info("Testing CRM connection", map[string]interface{}{
		"provider": "zoho",
	})

	if s.crm == nil {
		return fmt.Errorf("zoho CRM client not configured")
	}

	// A lightweight search verifies authentication without touching data
	_, err := s.crm.SearchLeadsByEmail(ctx, "test@healthcheck.com")
	if err != nil {
		// If error is not authentication-related, connection might still be OK
		if !strings.Contains(err.Error(), "401") && !strings.Contains(err.Error(), "403") {
			return nil
		}
		return fmt.Errorf("zoho CRM authentication failed: %w", err)
	}

	return nil
}
