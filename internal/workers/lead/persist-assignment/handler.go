// internal/workers/lead/persist-assignment/handler.go
package persistassignment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "persist-assignment"

	poolCacheKeyPrefix = "lead_pool:"
)

var (
	ErrDuplicateAssignment = errors.New("DUPLICATE_ASSIGNMENT")
	ErrCapacityConflict    = errors.New("CAPACITY_CONFLICT")
	ErrPersistFailed       = errors.New("ASSIGNMENT_PERSIST_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		db:     db,
		redis:  redisClient,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
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
		errorCode := "ASSIGNMENT_PERSIST_FAILED"
		retries := int32(3)
		if errors.Is(err, ErrDuplicateAssignment) {
			errorCode = "DUPLICATE_ASSIGNMENT"
			retries = 0
		} else if errors.Is(err, ErrCapacityConflict) {
			errorCode = "CAPACITY_CONFLICT"
			retries = 0
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, errorCode).Inc()
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// The capacity claim and the assignment row must commit together: a
	// failed insert would otherwise leave the member's load incremented
	// with no assignment behind it.
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin transaction: %v", ErrPersistFailed, err)
	}
	defer tx.Rollback()

	// Reject replays before touching capacity
	var exists bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM lead_assignments
			WHERE tenant_id = $1 AND lead_id = $2
		)`, input.TenantID, input.LeadID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrPersistFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: lead %s already assigned for tenant %s",
			ErrDuplicateAssignment, input.LeadID, input.TenantID)
	}

	// Claim a capacity slot. The WHERE clause re-checks eligibility so a
	// stale scoring decision cannot push a member past max_capacity.
	var currentLoad int
	err = tx.QueryRowContext(ctx, `
		UPDATE team_members
		SET current_load = current_load + 1, last_assigned_at = NOW()
		WHERE tenant_id = $1 AND user_id = $2
		  AND is_active = true AND current_load < max_capacity
		RETURNING current_load`, input.TenantID, input.UserID).Scan(&currentLoad)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: member %s is inactive or at capacity for tenant %s",
				ErrCapacityConflict, input.UserID, input.TenantID)
		}
		return nil, fmt.Errorf("%w: capacity update failed: %v", ErrPersistFailed, err)
	}

	assignmentID := uuid.New().String()
	assignedAt := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.ExecContext(ctx, `
		INSERT INTO lead_assignments (
			id, tenant_id, lead_id, user_id, total_score, explanation, assigned_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		assignmentID,
		input.TenantID,
		input.LeadID,
		input.UserID,
		input.TotalScore,
		input.Explanation,
		assignedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrPersistFailed, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit failed: %v", ErrPersistFailed, err)
	}

	// Audit stays outside the transaction: it must not be able to roll
	// back a committed assignment.
	h.recordAudit(ctx, assignmentID, input, assignedAt)
	h.invalidatePoolCache(ctx, input.TenantID)

	h.logger.Info("assignment persisted", map[string]interface{}{
		"assignmentId": assignmentID,
		"tenantId":     input.TenantID,
		"leadId":       input.LeadID,
		"userId":       input.UserID,
		"currentLoad":  currentLoad,
	})

	return &Output{
		AssignmentID: assignmentID,
		CurrentLoad:  currentLoad,
		AssignedAt:   assignedAt,
	}, nil
}

// recordAudit writes the audit trail entry (non-critical, log error but don't fail)
func (h *Handler) recordAudit(ctx context.Context, assignmentID string, input *Input, assignedAt string) {
	detailsJSON, err := json.Marshal(map[string]interface{}{
		"tenantId":   input.TenantID,
		"leadId":     input.LeadID,
		"userId":     input.UserID,
		"totalScore": input.TotalScore,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		detailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"lead_assigned",
		"lead_assignment",
		assignmentID,
		detailsJSON,
		assignedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"assignmentId": assignmentID,
		})
	}
}

// invalidatePoolCache drops the cached candidate pool so the next distribution
// for this tenant sees the updated load (non-critical, log error but don't fail)
func (h *Handler) invalidatePoolCache(ctx context.Context, tenantID string) {
	if err := h.redis.Del(ctx, poolCacheKeyPrefix+tenantID).Err(); err != nil {
		h.logger.Warn("pool cache invalidation failed", map[string]interface{}{
			"error":    err,
			"tenantId": tenantID,
		})
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
