// internal/distribution/repository.go
package distribution

import (
	"context"

	"lead-distribution-workers/internal/models"
)

// PoolLoader supplies the authoritative candidate snapshot for one
// distribution call. Errors propagate to the caller unchanged; the engine
// never retries.
type PoolLoader interface {
	LoadActiveCandidates(ctx context.Context, tenantID string) ([]models.TeamMember, error)
}

// AssignmentPersister records a successful decision: it must increment the
// winner's current load and stamp lastAssignedAt atomically with respect to
// concurrent assignments, and report the resulting load. The engine never
// calls it; persistence is the caller's step after a successful result.
type AssignmentPersister interface {
	RecordAssignment(ctx context.Context, a models.Assignment) (int, error)
}
