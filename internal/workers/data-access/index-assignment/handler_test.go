// internal/workers/data-access/index-assignment/handler_test.go
package indexassignment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"lead-distribution-workers/internal/common/logger"
	"lead-distribution-workers/internal/distribution"
)

func createTestConfig() *Config {
	return &Config{
		IndexName: "lead-assignments-test",
		Timeout:   30 * time.Second,
	}
}

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

func createRealElasticsearchClient(t *testing.T) *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{"http://localhost:9200"},
	}

	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		t.Skipf("Skipping test: Failed to create Elasticsearch client: %v", err)
		return nil
	}

	res, err := esClient.Info()
	if err != nil {
		t.Skipf("Skipping test: Elasticsearch container not responding: %v", err)
		return nil
	}
	defer res.Body.Close()

	if res.IsError() {
		t.Skipf("Skipping test: Elasticsearch error: %s", res.String())
		return nil
	}

	return esClient
}

func resetTestIndex(t *testing.T, esClient *elasticsearch.Client) {
	esClient.Indices.Delete([]string{"lead-assignments-test"}, esClient.Indices.Delete.WithIgnoreUnavailable(true))

	indexBody := `{
		"mappings": {
			"properties": {
				"assignment_id": {"type": "keyword"},
				"tenant_id": {"type": "keyword"},
				"lead_id": {"type": "keyword"},
				"user_id": {"type": "keyword"},
				"company_name": {"type": "text"},
				"total_score": {"type": "float"},
				"explanation": {"type": "text"},
				"assigned_at": {"type": "date"}
			}
		}
	}`

	res, err := esClient.Indices.Create(
		"lead-assignments-test",
		esClient.Indices.Create.WithBody(strings.NewReader(indexBody)),
	)
	require.NoError(t, err, "Failed to create index")
	res.Body.Close()
}

func createTestInput() *Input {
	return &Input{
		AssignmentID: "assignment-001",
		TenantID:     "tenant-001",
		LeadID:       "lead-123",
		UserID:       "user-1",
		CompanyName:  "Acme Corp",
		TotalScore:   0.82,
		Explanation:  "Assigned to Dana Lee based on territory match (total score 0.82)",
		Factors: []distribution.Factor{
			{Name: distribution.FactorTerritory, Score: 1.0, Weight: 0.3, Contribution: 0.3},
			{Name: distribution.FactorCapacity, Score: 0.6, Weight: 0.25, Contribution: 0.15},
		},
		AssignedAt: "2026-08-25T10:00:00Z",
	}
}

func getDocument(t *testing.T, esClient *elasticsearch.Client, id string) map[string]interface{} {
	res, err := esClient.Get("lead-assignments-test", id)
	require.NoError(t, err)
	defer res.Body.Close()
	require.False(t, res.IsError(), "document %s should exist: %s", id, res.String())

	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&payload))

	source, ok := payload["_source"].(map[string]interface{})
	require.True(t, ok, "response should carry _source")
	return source
}

func TestHandler_Execute_Success_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	resetTestIndex(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))
	input := createTestInput()

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.True(t, output.Indexed)
	assert.Equal(t, input.AssignmentID, output.DocumentID)
	assert.Equal(t, "lead-assignments-test", output.IndexName)

	source := getDocument(t, esClient, input.AssignmentID)
	assert.Equal(t, input.TenantID, source["tenant_id"])
	assert.Equal(t, input.UserID, source["user_id"])
	assert.Equal(t, input.LeadID, source["lead_id"])
	assert.Equal(t, input.Explanation, source["explanation"])
	assert.Equal(t, input.AssignedAt, source["assigned_at"])

	factors, ok := source["factors"].([]interface{})
	require.True(t, ok, "factors should be indexed alongside the assignment")
	assert.Equal(t, 2, len(factors))
}

func TestHandler_Execute_Reindex_RealElasticsearch(t *testing.T) {
	esClient := createRealElasticsearchClient(t)
	if esClient == nil {
		return
	}
	resetTestIndex(t, esClient)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))
	input := createTestInput()

	_, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)

	// A replayed job must overwrite, not duplicate
	input.TotalScore = 0.91
	output, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, input.AssignmentID, output.DocumentID)

	source := getDocument(t, esClient, input.AssignmentID)
	assert.InDelta(t, 0.91, source["total_score"].(float64), 0.0001)
}

func TestHandler_Execute_ConnectionFailure(t *testing.T) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://127.0.0.1:1"},
	})
	require.NoError(t, err)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	output, err := handler.Execute(context.Background(), createTestInput())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexWriteFailed))
	assert.Nil(t, output)
}

func TestHandler_Execute_Timeout(t *testing.T) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://127.0.0.1:1"},
	})
	require.NoError(t, err)

	handler := NewHandler(createTestConfig(), esClient, createTestLogger(t))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	output, err := handler.Execute(ctx, createTestInput())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrIndexTimeout))
	assert.Nil(t, output)
}

func TestHandler_ErrorMapping(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"index write failed", ErrIndexWriteFailed, "INDEX_WRITE_FAILED"},
		{"wrapped write failure", fmt.Errorf("%w: es rejected document", ErrIndexWriteFailed), "INDEX_WRITE_FAILED"},
		{"index timeout", ErrIndexTimeout, "INDEX_TIMEOUT"},
		{"unknown error", errors.New("random error"), "UNKNOWN_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := handler.mapErrorToCode(tt.err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestHandler_RetryCounts(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	assert.Equal(t, int32(3), handler.getRetryCount(ErrIndexWriteFailed))
	assert.Equal(t, int32(2), handler.getRetryCount(ErrIndexTimeout))
	assert.Equal(t, int32(0), handler.getRetryCount(errors.New("random error")))
}

func TestHandler_EdgeCases(t *testing.T) {
	handler := NewHandler(createTestConfig(), nil, createTestLogger(t))

	t.Run("nil input", func(t *testing.T) {
		output, err := handler.Execute(context.Background(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be nil")
		assert.Nil(t, output)
	})

	t.Run("missing assignment id", func(t *testing.T) {
		input := createTestInput()
		input.AssignmentID = ""
		output, err := handler.Execute(context.Background(), input)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "assignmentId")
		assert.Nil(t, output)
	})
}
