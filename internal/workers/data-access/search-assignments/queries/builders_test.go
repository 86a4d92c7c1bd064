// internal/workers/data-access/search-assignments/queries/builders_test.go
package queries

import (
	"errors"
	"io"
	"testing"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseQuery(queryType string) AssignmentQuery {
	eq := AssignmentQuery{
		Index:     "lead-assignments",
		QueryType: queryType,
		TenantID:  "tenant-001",
	}
	eq.Pagination.From = 0
	eq.Pagination.Size = 20
	return eq
}

// readBody drains the request body; map keys marshal in sorted order so the
// resulting string is deterministic.
func readBody(t *testing.T, req *esapi.SearchRequest) string {
	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	return string(raw)
}

func TestBuildQuery_ByTenant(t *testing.T) {
	req, err := BuildQuery(baseQuery("by_tenant"))

	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, []string{"lead-assignments"}, req.Index)

	body := readBody(t, req)
	assert.Contains(t, body, `"term":{"tenant_id":"tenant-001"}`)
	assert.Contains(t, body, `"sort":[{"assigned_at":"desc"}]`)
	assert.NotContains(t, body, `"user_id"`)
	assert.NotContains(t, body, `"lead_id"`)
}

func TestBuildQuery_ByUser(t *testing.T) {
	eq := baseQuery("by_user")
	eq.UserID = "user-1"

	req, err := BuildQuery(eq)

	require.NoError(t, err)
	body := readBody(t, req)
	assert.Contains(t, body, `"term":{"tenant_id":"tenant-001"}`)
	assert.Contains(t, body, `"term":{"user_id":"user-1"}`)
}

func TestBuildQuery_ByLead(t *testing.T) {
	eq := baseQuery("by_lead")
	eq.LeadID = "lead-123"

	req, err := BuildQuery(eq)

	require.NoError(t, err)
	body := readBody(t, req)
	assert.Contains(t, body, `"term":{"tenant_id":"tenant-001"}`)
	assert.Contains(t, body, `"term":{"lead_id":"lead-123"}`)
}

func TestBuildQuery_DateWindow(t *testing.T) {
	tests := []struct {
		name        string
		dateFrom    string
		dateTo      string
		contains    []string
		notContains []string
	}{
		{
			name:     "both bounds",
			dateFrom: "2026-08-01T00:00:00Z",
			dateTo:   "2026-08-31T23:59:59Z",
			contains: []string{
				`"range":{"assigned_at":{"gte":"2026-08-01T00:00:00Z","lte":"2026-08-31T23:59:59Z"}}`,
			},
		},
		{
			name:        "open upper bound",
			dateFrom:    "2026-08-01T00:00:00Z",
			contains:    []string{`"range":{"assigned_at":{"gte":"2026-08-01T00:00:00Z"}}`},
			notContains: []string{`"lte"`},
		},
		{
			name:        "open lower bound",
			dateTo:      "2026-08-31T23:59:59Z",
			contains:    []string{`"range":{"assigned_at":{"lte":"2026-08-31T23:59:59Z"}}`},
			notContains: []string{`"gte"`},
		},
		{
			name:        "no window",
			notContains: []string{`"range"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eq := baseQuery("by_tenant")
			eq.DateFrom = tt.dateFrom
			eq.DateTo = tt.dateTo

			req, err := BuildQuery(eq)
			require.NoError(t, err)

			body := readBody(t, req)
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestBuildQuery_UnknownType(t *testing.T) {
	req, err := BuildQuery(baseQuery("by_moon_phase"))

	assert.Nil(t, req)
	assert.True(t, errors.Is(err, ErrUnknownQueryType))
	assert.Contains(t, err.Error(), "by_moon_phase")
}

func TestBuildQuery_MissingTenant(t *testing.T) {
	eq := baseQuery("by_tenant")
	eq.TenantID = ""

	req, err := BuildQuery(eq)

	assert.Nil(t, req)
	assert.True(t, errors.Is(err, ErrMissingTenant))
}

func TestBuildQuery_PaginationPassThrough(t *testing.T) {
	eq := baseQuery("by_tenant")
	eq.Pagination.From = 40
	eq.Pagination.Size = 25

	req, err := BuildQuery(eq)

	require.NoError(t, err)
	require.NotNil(t, req.From)
	require.NotNil(t, req.Size)
	assert.Equal(t, 40, *req.From)
	assert.Equal(t, 25, *req.Size)
}
