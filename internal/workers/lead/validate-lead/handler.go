// internal/workers/lead/validate-lead/handler.go
package validatelead

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"lead-distribution-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "validate-lead"
)

var (
	ErrLeadValidationFailed = errors.New("LEAD_VALIDATION_FAILED")
)

type Handler struct {
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "LEAD_VALIDATION_FAILED", err.Error())
		return
	}

	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

// A lead that fails validation is a business outcome, not a job failure.
// The process routes on isValid; only schema faults throw.
func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.Lead == nil {
		return &Output{
			IsValid: false,
			ValidationErrors: []ValidationError{
				{Field: "lead", Message: "lead is required"},
			},
		}, nil
	}

	schemaLoader := gojsonschema.NewGoLoader(leadSchema)
	documentLoader := gojsonschema.NewGoLoader(input.Lead)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLeadValidationFailed, err)
	}

	if !result.Valid() {
		validationErrors := make([]ValidationError, len(result.Errors()))
		for i, desc := range result.Errors() {
			validationErrors[i] = ValidationError{
				Field:   desc.Field(),
				Message: desc.Description(),
			}
		}

		h.logger.Info("lead rejected", map[string]interface{}{
			"errorCount": len(validationErrors),
		})

		return &Output{
			IsValid:          false,
			ValidationErrors: validationErrors,
		}, nil
	}

	normalized := h.normalizeLead(input.Lead)
	h.logger.Info("lead validated", map[string]interface{}{
		"leadId": normalized["id"],
	})

	return &Output{
		IsValid:          true,
		NormalizedLead:   normalized,
		ValidationErrors: []ValidationError{},
	}, nil
}

// normalizeLead trims every string field and lower-cases the matching
// dimensions so downstream scoring compares like with like.
func (h *Handler) normalizeLead(lead map[string]interface{}) map[string]interface{} {
	normalized := make(map[string]interface{}, len(lead))
	for k, v := range lead {
		s, ok := v.(string)
		if !ok {
			normalized[k] = v
			continue
		}

		s = strings.TrimSpace(s)
		switch k {
		case "region", "vertical", "subVertical":
			s = strings.ToLower(s)
		}
		normalized[k] = s
	}
	return normalized
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
