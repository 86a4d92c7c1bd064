package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingTenant    = errors.New("tenantId is required")
)

// AssignmentQuery defines the structure of a query request
type AssignmentQuery struct {
	Index      string
	QueryType  string
	TenantID   string
	UserID     string
	LeadID     string
	DateFrom   string
	DateTo     string
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request based on query type.
// Every query is scoped to one tenant; by_user and by_lead narrow further
// with one more term filter.
func BuildQuery(eq AssignmentQuery) (*esapi.SearchRequest, error) {
	if eq.TenantID == "" {
		return nil, ErrMissingTenant
	}

	var queryBody map[string]interface{}

	switch eq.QueryType {
	case "by_tenant":
		queryBody = buildAssignmentQuery(eq)
	case "by_user":
		queryBody = buildAssignmentQuery(eq, termFilter("user_id", eq.UserID))
	case "by_lead":
		queryBody = buildAssignmentQuery(eq, termFilter("lead_id", eq.LeadID))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index:  []string{eq.Index},
		Body:   strings.NewReader(string(body)),
		From:   &eq.Pagination.From,
		Size:   &eq.Pagination.Size,
		Pretty: true,
	}

	return &req, nil
}

// buildAssignmentQuery assembles the shared bool-filter body: tenant scope,
// optional extra term filters, optional assigned_at window, newest first.
func buildAssignmentQuery(eq AssignmentQuery, extraFilters ...map[string]interface{}) map[string]interface{} {
	filterClauses := []interface{}{
		termFilter("tenant_id", eq.TenantID),
	}
	for _, f := range extraFilters {
		filterClauses = append(filterClauses, f)
	}

	if eq.DateFrom != "" || eq.DateTo != "" {
		bounds := map[string]interface{}{}
		if eq.DateFrom != "" {
			bounds["gte"] = eq.DateFrom
		}
		if eq.DateTo != "" {
			bounds["lte"] = eq.DateTo
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"assigned_at": bounds},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}},
				"filter": filterClauses,
			},
		},
		"sort": []map[string]interface{}{{"assigned_at": "desc"}},
	}
}

func termFilter(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{field: value},
	}
}
