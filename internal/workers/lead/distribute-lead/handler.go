// internal/workers/lead/distribute-lead/handler.go
package distributelead

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"

	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/common/metrics"
	"lead-distribution-workers/internal/distribution"
)

const (
	TaskType = "distribute-lead"
)

var (
	ErrInvalidDistributionConfig = errors.New("INVALID_DISTRIBUTION_CONFIG")
	ErrPoolLoadFailed            = errors.New("POOL_LOAD_FAILED")
)

type Handler struct {
	config *Config
	base   *distribution.Config
	engine *distribution.Engine
	logger logger.Logger
}

// NewHandler validates the startup distribution tuning once; a broken
// deployment fails here instead of on its first job.
func NewHandler(config *Config, db *sql.DB, rdb *redis.Client, log logger.Logger) (*Handler, error) {
	base, err := distribution.NewConfig(config.Overrides)
	if err != nil {
		return nil, fmt.Errorf("invalid distribution config: %w", err)
	}

	workerLog := log.WithFields(map[string]interface{}{"taskType": TaskType})
	pool := NewPostgresPoolLoader(db, rdb, config.PoolCacheTTL, workerLog)

	return &Handler{
		config: config,
		base:   base,
		engine: distribution.NewEngine(pool, workerLog),
		logger: workerLog,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, "PARSE_ERROR").Inc()
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "DISTRIBUTION_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrInvalidDistributionConfig) {
			errorCode = "INVALID_DISTRIBUTION_CONFIG"
		} else if errors.Is(err, ErrPoolLoadFailed) {
			errorCode = "POOL_LOAD_FAILED"
			retries = 3
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, fmt.Errorf("input cannot be nil")
	}
	if input.TenantID == "" {
		return nil, fmt.Errorf("tenantId is required")
	}

	cfg, err := h.resolveConfig(input.DistributionConfig)
	if err != nil {
		return nil, err
	}

	result, err := h.engine.Distribute(ctx, input.TenantID, input.Lead, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolLoadFailed, err)
	}

	if result.Success {
		metrics.LeadsDistributed.WithLabelValues(input.TenantID).Inc()
		metrics.DistributionScore.WithLabelValues(input.TenantID).Observe(totalScore(result.Factors))
	} else {
		metrics.LeadsUnassigned.WithLabelValues(input.TenantID).Inc()
	}

	return &Output{
		Success:       result.Success,
		LeadID:        input.Lead.ID,
		AssignedTo:    result.AssignedTo,
		Explanation:   result.Explanation,
		Factors:       result.Factors,
		Alternatives:  result.Alternatives,
		DistributedAt: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// resolveConfig picks the tuning for one job. A job-level override replaces
// the startup tuning as a whole rather than layering on top of it.
func (h *Handler) resolveConfig(override *ConfigOverride) (*distribution.Config, error) {
	if override == nil {
		return h.base, nil
	}

	cfg, err := distribution.NewConfig(distribution.Overrides{
		Weights:         override.Weights,
		MaxLeadsPerUser: override.MaxLeadsPerUser,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDistributionConfig, err)
	}
	return cfg, nil
}

func totalScore(factors []distribution.Factor) float64 {
	total := 0.0
	for _, f := range factors {
		total += f.Contribution
	}
	return total
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

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
