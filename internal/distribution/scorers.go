// internal/distribution/scorers.go
package distribution

import (
	"math"
	"time"

	"lead-distribution-workers/internal/models"
)

// scorer is one of the five fixed decision dimensions. Scores are pure
// functions of the (lead, member) pair and always fall in [0,1].
type scorer interface {
	name() string
	weight(w Weights) float64
	score(lead models.Lead, m models.TeamMember, cfg *Config, now time.Time) float64
}

// scorers lists the five factors in the canonical result order.
var scorers = []scorer{
	territoryScorer{},
	capacityScorer{},
	expertiseScorer{},
	performanceScorer{},
	fairnessScorer{},
}

type territoryScorer struct{}

func (territoryScorer) name() string             { return FactorTerritory }
func (territoryScorer) weight(w Weights) float64 { return w.Territory }

// score is 1.0 when the lead's region is one of the member's territories,
// 0.0 otherwise.
func (territoryScorer) score(lead models.Lead, m models.TeamMember, _ *Config, _ time.Time) float64 {
	if contains(m.Territories, lead.Region) {
		return 1.0
	}
	return 0.0
}

type capacityScorer struct{}

func (capacityScorer) name() string             { return FactorCapacity }
func (capacityScorer) weight(w Weights) float64 { return w.Capacity }

// score is the headroom ratio (max - load) / max, clamped to [0,1] for
// snapshots that arrive at or over capacity.
func (capacityScorer) score(_ models.Lead, m models.TeamMember, _ *Config, _ time.Time) float64 {
	if m.MaxCapacity <= 0 {
		return 0.0
	}
	return clamp01(float64(m.MaxCapacity-m.CurrentLoad) / float64(m.MaxCapacity))
}

type expertiseScorer struct{}

func (expertiseScorer) name() string             { return FactorExpertise }
func (expertiseScorer) weight(w Weights) float64 { return w.Expertise }

// score is 0.6 for a vertical match plus 0.4 for a sub-vertical match,
// capped at 1.0. The two matches are independent of each other.
func (expertiseScorer) score(lead models.Lead, m models.TeamMember, _ *Config, _ time.Time) float64 {
	score := 0.0
	if contains(m.Verticals, lead.Vertical) {
		score += 0.6
	}
	if contains(m.SubVerticals, lead.SubVertical) {
		score += 0.4
	}
	return clamp01(score)
}

type performanceScorer struct{}

func (performanceScorer) name() string             { return FactorPerformance }
func (performanceScorer) weight(w Weights) float64 { return w.Performance }

// score is the member's historical conversion rate, already on a 0-1 scale.
func (performanceScorer) score(_ models.Lead, m models.TeamMember, _ *Config, _ time.Time) float64 {
	return clamp01(m.ConversionRate)
}

type fairnessScorer struct{}

func (fairnessScorer) name() string             { return FactorFairness }
func (fairnessScorer) weight(w Weights) float64 { return w.Fairness }

// score rewards members who have waited longest for a lead. A member never
// assigned scores 1.0, a member assigned this instant scores 0.0, and the
// score ramps linearly until it saturates at 1.0 once the elapsed time
// reaches cfg.FairnessSaturation. Timestamps in the future clamp to 0.0.
func (fairnessScorer) score(_ models.Lead, m models.TeamMember, cfg *Config, now time.Time) float64 {
	if m.LastAssignedAt == nil {
		return 1.0
	}
	elapsed := now.Sub(*m.LastAssignedAt)
	if elapsed <= 0 {
		return 0.0
	}
	return clamp01(float64(elapsed) / float64(cfg.FairnessSaturation))
}

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0.0), 1.0)
}
