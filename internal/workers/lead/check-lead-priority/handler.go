// internal/workers/lead/check-lead-priority/handler.go
package checkleadpriority

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"lead-distribution-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "check-lead-priority"
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
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
		h.failJob(client, job, "PRIORITY_CHECK_FAILED", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "PRIORITY_CHECK_FAILED", err.Error(), 0)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	planTier, err := h.getTenantPlanTier(ctx, input.TenantID)
	if err != nil {
		// Routing must not block intake
		h.logger.Warn("failed to fetch tenant plan tier, defaulting to starter", map[string]interface{}{
			"tenantId": input.TenantID,
			"error":    err,
		})
		planTier = PlanTierStarter
	}

	isPremium := planTier == PlanTierPremium
	priority := h.determinePriority(planTier, input.LeadScore)

	h.logger.Info("routing priority determined", map[string]interface{}{
		"tenantId":  input.TenantID,
		"planTier":  planTier,
		"leadScore": input.LeadScore,
		"isPremium": isPremium,
		"priority":  priority,
	})

	return &Output{
		IsPremiumTenant: isPremium,
		RoutingPriority: priority,
		SLAMinutes:      slaForPriority(priority),
	}, nil
}

func (h *Handler) getTenantPlanTier(ctx context.Context, tenantID string) (string, error) {
	cacheKey := "tenant:plan:" + tenantID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		return val, nil
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT plan_tier
		FROM tenants
		WHERE tenant_id = $1`, tenantID)

	var planTier string
	err := row.Scan(&planTier)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("tenant not found for tenant %s", tenantID)
		}
		return "", fmt.Errorf("database error: %w", err)
	}

	switch planTier {
	case PlanTierPremium, PlanTierGrowth, PlanTierStarter:
		// valid
	default:
		planTier = PlanTierStarter
	}

	h.redis.Set(ctx, cacheKey, planTier, h.config.CacheTTL)
	return planTier, nil
}

func (h *Handler) determinePriority(planTier string, leadScore float64) string {
	var priority string
	switch planTier {
	case PlanTierPremium:
		priority = PriorityHigh
	case PlanTierGrowth:
		priority = PriorityMedium
	default:
		priority = PriorityLow
	}

	if leadScore >= HighValueScoreThreshold {
		priority = bumpPriority(priority)
	}

	return priority
}

func bumpPriority(priority string) string {
	switch priority {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	default:
		return PriorityHigh
	}
}

func slaForPriority(priority string) int {
	switch priority {
	case PriorityHigh:
		return SLAHighMinutes
	case PriorityMedium:
		return SLAMediumMinutes
	default:
		return SLALowMinutes
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, _ int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
