package crmleadsync

import "lead-distribution-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"leadId", "userId", "name", "email", "companyName"},
		Properties: map[string]validation.Property{
			"leadId": {
				Type:        "string",
				Description: "Internal lead identifier",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"crmLeadId": {
				Type:        "string",
				Description: "Zoho lead record id, when already known",
				MaxLength:   intPtr(100),
			},
			"userId": {
				Type:        "string",
				Description: "Assigned team member identifier",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"name": {
				Type:        "string",
				Description: "Display name of the assigned team member",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
			"email": {
				Type:        "string",
				Description: "Email of the assigned team member",
				MinLength:   intPtr(5),
				MaxLength:   intPtr(255),
			},
			"companyName": {
				Type:        "string",
				Description: "Company name of the lead",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"crmLeadSynced": {
				Type:        "boolean",
				Description: "Whether the assignment reached the CRM",
			},
			"crmMessage": {
				Type:        "string",
				Description: "Result message",
			},
			"crmLeadId": {
				Type:        "string",
				Description: "Zoho lead record identifier",
			},
			"crmOwnerEmail": {
				Type:        "string",
				Description: "Email of the record owner after the sync",
			},
			"crmProvider": {
				Type:        "string",
				Description: "CRM provider used",
			},
		},
		AdditionalProperties: false,
	}
}

func intPtr(i int) *int {
	return &i
}
