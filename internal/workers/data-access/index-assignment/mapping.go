// internal/workers/data-access/index-assignment/mapping.go
package indexassignment

// IndexMapping is the explicit mapping for the assignment search index.
// The search worker filters with term queries, which only behave on
// keyword fields; dynamic mapping would analyze the ids as text.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "assignment_id": {"type": "keyword"},
      "tenant_id":     {"type": "keyword"},
      "lead_id":       {"type": "keyword"},
      "user_id":       {"type": "keyword"},
      "company_name":  {"type": "text"},
      "total_score":   {"type": "float"},
      "explanation":   {"type": "text"},
      "assigned_at":   {"type": "date"}
    }
  }
}`
