// internal/workers/lead/validate-lead/models.go
package validatelead

type Input struct {
	Lead map[string]interface{} `json:"lead"`
}

type Output struct {
	IsValid          bool                   `json:"isValid"`
	NormalizedLead   map[string]interface{} `json:"normalizedLead,omitempty"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Intake contract for raw leads. Kept as a Go map so gojsonschema can
// load it without file I/O.
var leadSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"id", "companyName", "region", "vertical"},
	"properties": map[string]interface{}{
		"id":          map[string]interface{}{"type": "string", "minLength": 1},
		"companyId":   map[string]interface{}{"type": "string"},
		"companyName": map[string]interface{}{"type": "string", "minLength": 1},
		"region":      map[string]interface{}{"type": "string", "minLength": 1},
		"vertical":    map[string]interface{}{"type": "string", "minLength": 1},
		"subVertical": map[string]interface{}{"type": "string"},
		"score":       map[string]interface{}{"type": "number", "minimum": 0, "maximum": 100},
	},
}
