// internal/distribution/config_test.go
package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func intPtr(v int) *int {
	return &v
}

func durationPtr(v time.Duration) *time.Duration {
	return &v
}

func weightsPtr(w Weights) *Weights {
	return &w
}

// ==========================
// Default Configuration Tests
// ==========================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 0.30, cfg.Weights.Territory)
	assert.Equal(t, 0.25, cfg.Weights.Capacity)
	assert.Equal(t, 0.20, cfg.Weights.Expertise)
	assert.Equal(t, 0.15, cfg.Weights.Performance)
	assert.Equal(t, 0.10, cfg.Weights.Fairness)
	assert.Equal(t, 50, cfg.MaxLeadsPerUser)
	assert.Equal(t, 24*time.Hour, cfg.FairnessSaturation)

	assert.NoError(t, cfg.Validate())
	assert.InDelta(t, 1.0, cfg.Weights.Sum(), 1e-12)
}

// ==========================
// Merge Tests
// ==========================

func TestNewConfig_NoOverrides(t *testing.T) {
	cfg, err := NewConfig(Overrides{})

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestNewConfig_Overrides(t *testing.T) {
	custom := Weights{
		Territory:   0.50,
		Capacity:    0.20,
		Expertise:   0.10,
		Performance: 0.10,
		Fairness:    0.10,
	}

	cfg, err := NewConfig(Overrides{
		Weights:            weightsPtr(custom),
		MaxLeadsPerUser:    intPtr(10),
		FairnessSaturation: durationPtr(8 * time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, custom, cfg.Weights)
	assert.Equal(t, 10, cfg.MaxLeadsPerUser)
	assert.Equal(t, 8*time.Hour, cfg.FairnessSaturation)
}

func TestNewConfig_PartialOverrideKeepsDefaults(t *testing.T) {
	cfg, err := NewConfig(Overrides{MaxLeadsPerUser: intPtr(5)})

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.MaxLeadsPerUser)
	assert.Equal(t, DefaultConfig().Weights, cfg.Weights)
	assert.Equal(t, DefaultConfig().FairnessSaturation, cfg.FairnessSaturation)
}

func TestNewConfig_DoesNotMutateDefaults(t *testing.T) {
	_, err := NewConfig(Overrides{MaxLeadsPerUser: intPtr(3)})
	require.NoError(t, err)

	assert.Equal(t, 50, DefaultConfig().MaxLeadsPerUser)
}

// ==========================
// Validation Tests
// ==========================

func TestNewConfig_InvalidWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights Weights
		errText string
	}{
		{
			name:    "sum too low",
			weights: Weights{Territory: 0.30, Capacity: 0.25, Expertise: 0.20, Performance: 0.15, Fairness: 0.05}, // sum 0.95
			errText: "sum to 1.0",
		},
		{
			name:    "sum too high",
			weights: Weights{Territory: 0.40, Capacity: 0.25, Expertise: 0.20, Performance: 0.15, Fairness: 0.10}, // sum 1.10
			errText: "sum to 1.0",
		},
		{
			name:    "negative weight",
			weights: Weights{Territory: -0.10, Capacity: 0.45, Expertise: 0.30, Performance: 0.25, Fairness: 0.10},
			errText: "territory",
		},
		{
			name:    "weight above one",
			weights: Weights{Territory: 0.0, Capacity: 1.10, Expertise: 0.0, Performance: 0.0, Fairness: -0.10},
			errText: "capacity",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(Overrides{Weights: weightsPtr(tt.weights)})
			assert.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestNewConfig_WeightSumTolerance(t *testing.T) {
	// 0.30+0.25+0.20+0.15+0.105 = 1.005, inside the 0.01 band.
	inside := Weights{Territory: 0.30, Capacity: 0.25, Expertise: 0.20, Performance: 0.15, Fairness: 0.105}
	cfg, err := NewConfig(Overrides{Weights: weightsPtr(inside)})
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// 0.30+0.25+0.20+0.15+0.12 = 1.02, outside the band.
	outside := Weights{Territory: 0.30, Capacity: 0.25, Expertise: 0.20, Performance: 0.15, Fairness: 0.12}
	cfg, err = NewConfig(Overrides{Weights: weightsPtr(outside)})
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestNewConfig_MaxLeadsPerUserBounds(t *testing.T) {
	tests := []struct {
		value   int
		wantErr bool
	}{
		{0, true},
		{1, false},
		{50, false},
		{100, false},
		{101, true},
		{-5, true},
	}

	for _, tt := range tests {
		cfg, err := NewConfig(Overrides{MaxLeadsPerUser: intPtr(tt.value)})
		if tt.wantErr {
			assert.Error(t, err, "maxLeadsPerUser=%d", tt.value)
			assert.Nil(t, cfg)
		} else {
			assert.NoError(t, err, "maxLeadsPerUser=%d", tt.value)
			assert.Equal(t, tt.value, cfg.MaxLeadsPerUser)
		}
	}
}

func TestNewConfig_FairnessSaturation(t *testing.T) {
	cfg, err := NewConfig(Overrides{FairnessSaturation: durationPtr(0)})
	assert.Error(t, err)
	assert.Nil(t, cfg)

	cfg, err = NewConfig(Overrides{FairnessSaturation: durationPtr(-time.Hour)})
	assert.Error(t, err)
	assert.Nil(t, cfg)

	cfg, err = NewConfig(Overrides{FairnessSaturation: durationPtr(time.Minute)})
	assert.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.FairnessSaturation)
}
