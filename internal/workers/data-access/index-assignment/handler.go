// internal/workers/data-access/index-assignment/handler.go
package indexassignment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lead-distribution-workers/internal/common/logger"
)

const (
	TaskType = "index-assignment"
)

var (
	ErrIndexWriteFailed = errors.New("INDEX_WRITE_FAILED")
	ErrIndexTimeout     = errors.New("INDEX_TIMEOUT")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := h.mapErrorToCode(err)
		retries := h.getRetryCount(err)
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}
	if input.AssignmentID == "" {
		return nil, errors.New("assignmentId is required")
	}

	// Field names follow the index mapping, not the process variables
	doc := map[string]interface{}{
		"assignment_id": input.AssignmentID,
		"tenant_id":     input.TenantID,
		"lead_id":       input.LeadID,
		"user_id":       input.UserID,
		"total_score":   input.TotalScore,
		"explanation":   input.Explanation,
		"assigned_at":   input.AssignedAt,
	}
	if input.CompanyName != "" {
		doc["company_name"] = input.CompanyName
	}
	if len(input.Factors) > 0 {
		doc["factors"] = input.Factors
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document: %v", ErrIndexWriteFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.IndexName,
		DocumentID: input.AssignmentID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrIndexTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrIndexWriteFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrIndexWriteFailed, res.String())
	}

	h.logger.Info("assignment indexed", map[string]interface{}{
		"documentId": input.AssignmentID,
		"indexName":  h.config.IndexName,
		"tenantId":   input.TenantID,
	})

	return &Output{
		Indexed:    true,
		DocumentID: input.AssignmentID,
		IndexName:  h.config.IndexName,
	}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
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
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) mapErrorToCode(err error) string {
	if errors.Is(err, ErrIndexTimeout) {
		return "INDEX_TIMEOUT"
	} else if errors.Is(err, ErrIndexWriteFailed) {
		return "INDEX_WRITE_FAILED"
	}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
	if errors.Is(err, ErrIndexWriteFailed) {
		return 3
	} else if errors.Is(err, ErrIndexTimeout) {
		return 2
	}
	return 0
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
