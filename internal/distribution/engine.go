// internal/distribution/engine.go
package distribution

import (
	"context"
	"math"
	"sort"
	"time"

	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/models"
)

const (
	// scoreEpsilon is the band within which two totals count as tied and
	// the candidate ID decides their order.
	scoreEpsilon = 1e-9

	// maxAlternatives caps how many runner-up candidates a result reports.
	maxAlternatives = 3
)

// Engine ranks eligible team members for a lead and picks a winner. It is a
// synchronous, stateless computation over the pool snapshot its loader
// returns: no retries, no persistence, no state shared between calls.
type Engine struct {
	pool   PoolLoader
	logger logger.Logger
}

func NewEngine(pool PoolLoader, log logger.Logger) *Engine {
	return &Engine{
		pool:   pool,
		logger: log.WithFields(map[string]interface{}{"component": "distribution-engine"}),
	}
}

// Distribute decides which team member receives the lead. A nil cfg selects
// DefaultConfig. An empty eligible pool is a normal outcome reported with
// Success=false; only loader I/O failures return an error, unchanged.
func (e *Engine) Distribute(ctx context.Context, tenantID string, lead models.Lead, cfg *Config) (*Result, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	pool, err := e.pool.LoadActiveCandidates(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	eligible := filterEligible(pool)
	if len(eligible) == 0 {
		e.logger.Info("no eligible members for lead", map[string]interface{}{
			"tenantId": tenantID,
			"leadId":   lead.ID,
			"poolSize": len(pool),
		})
		return &Result{
			Success:      false,
			AssignedTo:   nil,
			Explanation:  emptyPoolExplanation,
			Factors:      []Factor{},
			Alternatives: []Alternative{},
		}, nil
	}

	ranked := rankCandidates(lead, eligible, cfg, time.Now())
	winner := ranked[0]

	e.logger.Info("lead distributed", map[string]interface{}{
		"tenantId":      tenantID,
		"leadId":        lead.ID,
		"assignedTo":    winner.Member.UserID,
		"totalScore":    winner.Total,
		"eligibleCount": len(eligible),
	})

	return &Result{
		Success: true,
		AssignedTo: &AssignedMember{
			UserID: winner.Member.UserID,
			Name:   winner.Member.Name,
			Email:  winner.Member.Email,
		},
		Explanation:  buildExplanation(winner),
		Factors:      winner.Factors,
		Alternatives: buildAlternatives(ranked),
	}, nil
}

// rankedCandidate pairs a member with its factor breakdown and total score.
type rankedCandidate struct {
	Member  models.TeamMember
	Factors []Factor
	Total   float64
}

// filterEligible keeps active members with strictly positive headroom. A
// member at or over capacity is excluded outright; the capacity factor only
// grades members that already passed this hard ceiling.
func filterEligible(pool []models.TeamMember) []models.TeamMember {
	eligible := make([]models.TeamMember, 0, len(pool))
	for _, m := range pool {
		if m.IsActive && m.CurrentLoad < m.MaxCapacity {
			eligible = append(eligible, m)
		}
	}
	return eligible
}

// scoreFactors runs the five scorers in canonical order. The same now is
// used for the whole pool so fairness compares members consistently.
func scoreFactors(lead models.Lead, m models.TeamMember, cfg *Config, now time.Time) []Factor {
	factors := make([]Factor, 0, len(scorers))
	for _, s := range scorers {
		score := s.score(lead, m, cfg, now)
		weight := s.weight(cfg.Weights)
		factors = append(factors, Factor{
			Name:         s.name(),
			Score:        score,
			Weight:       weight,
			Contribution: weight * score,
		})
	}
	return factors
}

// rankCandidates scores every eligible member and sorts descending by total
// score. Totals within scoreEpsilon tie-break on the candidate ID,
// ascending, so an identical snapshot always yields an identical ranking.
func rankCandidates(lead models.Lead, eligible []models.TeamMember, cfg *Config, now time.Time) []rankedCandidate {
	ranked := make([]rankedCandidate, 0, len(eligible))
	for _, m := range eligible {
		factors := scoreFactors(lead, m, cfg, now)
		total := 0.0
		for _, f := range factors {
			total += f.Contribution
		}
		ranked = append(ranked, rankedCandidate{Member: m, Factors: factors, Total: total})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if math.Abs(ranked[i].Total-ranked[j].Total) <= scoreEpsilon {
			return ranked[i].Member.ID < ranked[j].Member.ID
		}
		return ranked[i].Total > ranked[j].Total
	})
	return ranked
}

// buildAlternatives reports the runners-up in rank order, never the winner.
// Small pools simply yield fewer entries; the list is not re-filtered by
// territory or vertical.
func buildAlternatives(ranked []rankedCandidate) []Alternative {
	alternatives := make([]Alternative, 0, maxAlternatives)
	for _, c := range ranked[1:] {
		if len(alternatives) == maxAlternatives {
			break
		}
		alternatives = append(alternatives, Alternative{
			UserID: c.Member.UserID,
			Name:   c.Member.Name,
			Score:  c.Total,
		})
	}
	return alternatives
}
