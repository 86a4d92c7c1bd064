// internal/distribution/scorers_test.go
package distribution

import (
	"testing"
	"time"

	"lead-distribution-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Helper Functions
// ==========================

var scorerNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func createScorerLead() models.Lead {
	return models.Lead{
		ID:          "lead-001",
		CompanyName: "Acme Logistics",
		Region:      "west",
		Vertical:    "logistics",
		SubVertical: "freight",
		Score:       72,
	}
}

func createScorerMember() models.TeamMember {
	return models.TeamMember{
		ID:             "tm-001",
		UserID:         "user-001",
		Name:           "Alice Nguyen",
		Email:          "alice@example.com",
		Territories:    []string{"west", "southwest"},
		Verticals:      []string{"logistics"},
		SubVerticals:   []string{"freight"},
		MaxCapacity:    10,
		CurrentLoad:    2,
		ConversionRate: 0.35,
		IsActive:       true,
	}
}

// ==========================
// Territory Factor Tests
// ==========================

func TestTerritoryScorer(t *testing.T) {
	tests := []struct {
		name        string
		region      string
		territories []string
		expected    float64
	}{
		{"region in territories", "west", []string{"west", "east"}, 1.0},
		{"region not covered", "north", []string{"west", "east"}, 0.0},
		{"empty territories", "west", []string{}, 0.0},
		{"nil territories", "west", nil, 0.0},
		{"case sensitive", "West", []string{"west"}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lead := createScorerLead()
			lead.Region = tt.region
			m := createScorerMember()
			m.Territories = tt.territories

			score := territoryScorer{}.score(lead, m, DefaultConfig(), scorerNow)
			assert.Equal(t, tt.expected, score)
		})
	}
}

// ==========================
// Capacity Factor Tests
// ==========================

func TestCapacityScorer(t *testing.T) {
	tests := []struct {
		name     string
		max      int
		load     int
		expected float64
	}{
		{"idle member", 10, 0, 1.0},
		{"lightly loaded", 10, 2, 0.8},
		{"half loaded", 10, 5, 0.5},
		{"nearly full", 25, 24, 0.04},
		{"full", 10, 10, 0.0},
		{"over capacity snapshot", 10, 12, 0.0},
		{"zero max capacity", 0, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createScorerMember()
			m.MaxCapacity = tt.max
			m.CurrentLoad = tt.load

			score := capacityScorer{}.score(createScorerLead(), m, DefaultConfig(), scorerNow)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

// ==========================
// Expertise Factor Tests
// ==========================

func TestExpertiseScorer(t *testing.T) {
	tests := []struct {
		name         string
		verticals    []string
		subVerticals []string
		expected     float64
	}{
		{"vertical and sub-vertical match", []string{"logistics"}, []string{"freight"}, 1.0},
		{"vertical only", []string{"logistics"}, []string{"parcel"}, 0.6},
		{"sub-vertical only", []string{"retail"}, []string{"freight"}, 0.4},
		{"no overlap", []string{"retail"}, []string{"parcel"}, 0.0},
		{"empty expertise", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createScorerMember()
			m.Verticals = tt.verticals
			m.SubVerticals = tt.subVerticals

			score := expertiseScorer{}.score(createScorerLead(), m, DefaultConfig(), scorerNow)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

// ==========================
// Performance Factor Tests
// ==========================

func TestPerformanceScorer(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{"typical rate", 0.35, 0.35},
		{"never converted", 0.0, 0.0},
		{"always converted", 1.0, 1.0},
		{"bad upstream data above one", 1.4, 1.0},
		{"bad upstream data negative", -0.2, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createScorerMember()
			m.ConversionRate = tt.rate

			score := performanceScorer{}.score(createScorerLead(), m, DefaultConfig(), scorerNow)
			assert.Equal(t, tt.expected, score)
		})
	}
}

// ==========================
// Fairness Factor Tests
// ==========================

func TestFairnessScorer(t *testing.T) {
	saturation := DefaultConfig().FairnessSaturation // 24h

	tests := []struct {
		name     string
		lastAt   *time.Time
		expected float64
	}{
		{"never assigned", nil, 1.0},
		{"assigned this instant", timePtr(scorerNow), 0.0},
		{"quarter of saturation", timePtr(scorerNow.Add(-6 * time.Hour)), 0.25},
		{"half of saturation", timePtr(scorerNow.Add(-12 * time.Hour)), 0.5},
		{"exactly at saturation", timePtr(scorerNow.Add(-saturation)), 1.0},
		{"long past saturation", timePtr(scorerNow.Add(-72 * time.Hour)), 1.0},
		{"clock skew in the future", timePtr(scorerNow.Add(30 * time.Minute)), 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := createScorerMember()
			m.LastAssignedAt = tt.lastAt

			score := fairnessScorer{}.score(createScorerLead(), m, DefaultConfig(), scorerNow)
			assert.InDelta(t, tt.expected, score, 1e-9)
		})
	}
}

func TestFairnessScorer_CustomSaturation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FairnessSaturation = 4 * time.Hour

	m := createScorerMember()
	m.LastAssignedAt = timePtr(scorerNow.Add(-2 * time.Hour))

	// 2h elapsed against a 4h window scores 0.5 instead of 2/24.
	score := fairnessScorer{}.score(createScorerLead(), m, cfg, scorerNow)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func timePtr(v time.Time) *time.Time {
	return &v
}

// ==========================
// Scorer Registry Tests
// ==========================

func TestScorers_CanonicalOrder(t *testing.T) {
	names := make([]string, 0, len(scorers))
	for _, s := range scorers {
		names = append(names, s.name())
	}
	assert.Equal(t, []string{
		FactorTerritory,
		FactorCapacity,
		FactorExpertise,
		FactorPerformance,
		FactorFairness,
	}, names)
}

func TestScorers_WeightsFollowConfig(t *testing.T) {
	w := Weights{Territory: 0.1, Capacity: 0.2, Expertise: 0.3, Performance: 0.25, Fairness: 0.15}

	assert.Equal(t, 0.1, territoryScorer{}.weight(w))
	assert.Equal(t, 0.2, capacityScorer{}.weight(w))
	assert.Equal(t, 0.3, expertiseScorer{}.weight(w))
	assert.Equal(t, 0.25, performanceScorer{}.weight(w))
	assert.Equal(t, 0.15, fairnessScorer{}.weight(w))
}

func TestScorers_RangeBound(t *testing.T) {
	// Every factor stays in [0,1] even for hostile snapshots.
	m := createScorerMember()
	m.CurrentLoad = -3
	m.ConversionRate = 7.5
	m.LastAssignedAt = timePtr(scorerNow.Add(-1000 * time.Hour))

	for _, s := range scorers {
		score := s.score(createScorerLead(), m, DefaultConfig(), scorerNow)
		assert.GreaterOrEqual(t, score, 0.0, s.name())
		assert.LessOrEqual(t, score, 1.0, s.name())
	}
}
