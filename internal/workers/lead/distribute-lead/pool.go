// internal/workers/lead/distribute-lead/pool.go
package distributelead

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/models"
)

const poolCacheKeyPrefix = "lead_pool:"

// PostgresPoolLoader loads the candidate pool for a tenant, cache-aside over
// Redis. persist-assignment invalidates the cached pool after every write, so
// the TTL only bounds staleness when an invalidation is missed.
type PostgresPoolLoader struct {
	db       *sql.DB
	redis    *redis.Client
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewPostgresPoolLoader(db *sql.DB, rdb *redis.Client, cacheTTL time.Duration, log logger.Logger) *PostgresPoolLoader {
	return &PostgresPoolLoader{
		db:       db,
		redis:    rdb,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

func (l *PostgresPoolLoader) LoadActiveCandidates(ctx context.Context, tenantID string) ([]models.TeamMember, error) {
	cacheKey := poolCacheKeyPrefix + tenantID
	if cached, err := l.redis.Get(ctx, cacheKey).Result(); err == nil {
		var pool []models.TeamMember
		if err := json.Unmarshal([]byte(cached), &pool); err == nil {
			return pool, nil
		}
		// A corrupt entry falls through to the database
		l.logger.Warn("discarding malformed pool cache entry", map[string]interface{}{
			"tenantId": tenantID,
		})
	}

	pool, err := l.queryPool(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(pool); err == nil {
		if err := l.redis.Set(ctx, cacheKey, data, l.cacheTTL).Err(); err != nil {
			l.logger.Warn("failed to cache lead pool", map[string]interface{}{
				"tenantId": tenantID,
				"error":    err.Error(),
			})
		}
	}

	return pool, nil
}

func (l *PostgresPoolLoader) queryPool(ctx context.Context, tenantID string) ([]models.TeamMember, error) {
	query := `
		SELECT id, user_id, name, email, territories, verticals, sub_verticals,
		       max_capacity, current_load, conversion_rate, last_assigned_at
		FROM team_members
		WHERE tenant_id = $1 AND is_active = true
		ORDER BY id`

	rows, err := l.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("query team members: %w", err)
	}
	defer rows.Close()

	pool := []models.TeamMember{}
	for rows.Next() {
		var m models.TeamMember
		var lastAssigned sql.NullTime
		if err := rows.Scan(
			&m.ID,
			&m.UserID,
			&m.Name,
			&m.Email,
			pq.Array(&m.Territories),
			pq.Array(&m.Verticals),
			pq.Array(&m.SubVerticals),
			&m.MaxCapacity,
			&m.CurrentLoad,
			&m.ConversionRate,
			&lastAssigned,
		); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		// The query already filtered on is_active
		m.IsActive = true
		if lastAssigned.Valid {
			t := lastAssigned.Time
			m.LastAssignedAt = &t
		}
		pool = append(pool, m)
	}

	return pool, rows.Err()
}
