// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkedInRegistry = "../../configs/activity-registry.json"

func TestLoadRegistry_CheckedInFile(t *testing.T) {
	reg, err := LoadRegistry(checkedInRegistry)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	assert.NotEmpty(t, reg.LastUpdated)
	require.Len(t, reg.Activities, 8)

	assert.NoError(t, reg.Validate())

	byCategory := make(map[string]int)
	for _, activity := range reg.Activities {
		byCategory[activity.Category]++
		assert.Equal(t, StatusCompleted, activity.ImplementationStatus, activity.ID)
		assert.NotEmpty(t, activity.ErrorCodes, activity.ID)
		assert.Contains(t, activity.Workflows, "lead-distribution-process", activity.ID)
	}

	assert.Equal(t, 4, byCategory["lead"])
	assert.Equal(t, 1, byCategory["communication"])
	assert.Equal(t, 2, byCategory["data-access"])
	assert.Equal(t, 1, byCategory["crm"])
}

func TestLoadRegistry_TaskTypes(t *testing.T) {
	reg, err := LoadRegistry(checkedInRegistry)
	require.NoError(t, err)

	tests := []struct {
		id       string
		taskType string
	}{
		{"validate-lead", "validate-lead"},
		{"check-lead-priority", "check-lead-priority"},
		{"distribute-lead", "distribute-lead"},
		{"persist-assignment", "persist-assignment"},
		{"notify-assignment", "notify-assignment"},
		{"index-assignment", "index-assignment"},
		{"search-assignments", "search-assignments"},
		// The CRM worker subscribes to a dotted job type; its registry id
		// stays directory-shaped.
		{"crm-lead-sync", "crm.lead.sync"},
	}

	for _, tt := range tests {
		activity := reg.Find(tt.id)
		require.NotNil(t, activity, "missing activity %s", tt.id)
		assert.Equal(t, tt.taskType, activity.TaskType)
	}
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	reg, err := LoadRegistry("does-not-exist.json")
	assert.Error(t, err)
	assert.Nil(t, reg)
}

func TestSaveRegistry_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "registry.json")

	original := &ActivityRegistry{
		Version:     "1.0.0",
		LastUpdated: "2026-08-20T09:30:00Z",
		Activities: []Activity{
			{
				ID:                   "validate-lead",
				DisplayName:          "Validate Lead",
				Description:          "Validates an incoming raw lead",
				Category:             "lead",
				Version:              "1.0.0",
				TaskType:             "validate-lead",
				ImplementationStatus: "completed",
				ErrorCodes:           []string{"LEAD_VALIDATION_FAILED"},
				Timeout:              "10s",
			},
		},
	}

	require.NoError(t, SaveRegistry(original, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, original.Version, loaded.Version)
	require.Len(t, loaded.Activities, 1)
	assert.Equal(t, original.Activities[0], loaded.Activities[0])
}

func TestActivityRegistry_Validate(t *testing.T) {
	valid := func() *ActivityRegistry {
		return &ActivityRegistry{
			Version: "1.0.0",
			Activities: []Activity{
				{ID: "a", DisplayName: "A", TaskType: "a", Category: "lead"},
				{ID: "b", DisplayName: "B", TaskType: "b", Category: "crm"},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ActivityRegistry)
		wantErr string
	}{
		{
			name:   "valid registry",
			mutate: func(r *ActivityRegistry) {},
		},
		{
			name:    "no activities",
			mutate:  func(r *ActivityRegistry) { r.Activities = nil },
			wantErr: "no activities",
		},
		{
			name:    "duplicate id",
			mutate:  func(r *ActivityRegistry) { r.Activities[1].ID = "a" },
			wantErr: "duplicate activity ID",
		},
		{
			name:    "missing id",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].ID = "" },
			wantErr: "missing required field: ID",
		},
		{
			name:    "missing display name",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].DisplayName = "" },
			wantErr: "missing required field: DisplayName",
		},
		{
			name:    "missing task type",
			mutate:  func(r *ActivityRegistry) { r.Activities[1].TaskType = "" },
			wantErr: "missing required field: TaskType",
		},
		{
			name:    "missing category",
			mutate:  func(r *ActivityRegistry) { r.Activities[1].Category = "" },
			wantErr: "missing required field: Category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := valid()
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestActivityRegistry_Find(t *testing.T) {
	reg := &ActivityRegistry{
		Activities: []Activity{
			{ID: "distribute-lead", DisplayName: "Distribute Lead"},
		},
	}

	found := reg.Find("distribute-lead")
	require.NotNil(t, found)
	assert.Equal(t, "Distribute Lead", found.DisplayName)

	assert.Nil(t, reg.Find("unknown"))
}
