// Package validation implements the JSON-schema subset the workers use to
// gate job inputs before touching external systems.
package validation

import (
	"fmt"
	"math"
	"regexp"
)

// JSONSchema describes an object payload: its properties, which of them are
// required, and whether unknown fields are tolerated.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
}

// Property constrains a single field. Items applies to array elements,
// Properties/Required to nested objects.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// GetErrorMessages flattens the errors to "field: message" strings.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, e := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return messages
}

// ValidateInput checks input against schema and reports every violation, not
// just the first one.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	var errs []ValidationError

	for _, name := range schema.Required {
		if _, ok := input[name]; !ok {
			errs = append(errs, ValidationError{
				Field:   name,
				Message: "required field missing",
				Code:    "REQUIRED_FIELD_MISSING",
			})
		}
	}

	for name, value := range input {
		prop, known := schema.Properties[name]
		if !known {
			if !schema.AdditionalProperties {
				errs = append(errs, ValidationError{
					Field:   name,
					Message: "field not allowed in schema",
					Code:    "EXTRA_FIELD",
				})
			}
			continue
		}
		errs = append(errs, checkValue(name, value, prop)...)
	}

	return &ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// checkValue applies the property's constraints to one value. A wrong type
// short-circuits; the remaining constraints assume the type matched.
func checkValue(field string, value interface{}, prop Property) []ValidationError {
	if err := typeError(value, prop.Type); err != nil {
		return []ValidationError{{Field: field, Message: err.Error(), Code: "INVALID_TYPE"}}
	}

	var errs []ValidationError
	switch v := value.(type) {
	case string:
		errs = stringErrors(field, v, prop)
	case float64:
		errs = rangeErrors(field, v, prop)
	case []interface{}:
		if prop.Items != nil {
			for i, item := range v {
				errs = append(errs, checkValue(fmt.Sprintf("%s[%d]", field, i), item, *prop.Items)...)
			}
		}
	case map[string]interface{}:
		if prop.Properties != nil {
			nested := ValidateInput(v, JSONSchema{
				Type:       "object",
				Properties: prop.Properties,
				Required:   prop.Required,
				// Nested payloads often carry passthrough fields the schema
				// does not care about.
				AdditionalProperties: true,
			})
			for _, ne := range nested.Errors {
				errs = append(errs, ValidationError{
					Field:   field + "." + ne.Field,
					Message: ne.Message,
					Code:    ne.Code,
				})
			}
		}
	}
	return errs
}

func stringErrors(field, v string, prop Property) []ValidationError {
	var errs []ValidationError

	if prop.MinLength != nil && len(v) < *prop.MinLength {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be at least %d characters", *prop.MinLength),
			Code:    "MIN_LENGTH_VIOLATION",
		})
	}
	if prop.MaxLength != nil && len(v) > *prop.MaxLength {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be at most %d characters", *prop.MaxLength),
			Code:    "MAX_LENGTH_VIOLATION",
		})
	}

	if prop.Pattern != nil {
		// An uncompilable pattern counts as a mismatch rather than a panic.
		if ok, err := regexp.MatchString(*prop.Pattern, v); err != nil || !ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("value must match pattern %s", *prop.Pattern),
				Code:    "PATTERN_MISMATCH",
			})
		}
	}

	if len(prop.Enum) > 0 && !containsString(prop.Enum, v) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be one of %v", prop.Enum),
			Code:    "INVALID_ENUM_VALUE",
		})
	}

	return errs
}

func rangeErrors(field string, v float64, prop Property) []ValidationError {
	var errs []ValidationError
	if prop.Minimum != nil && v < *prop.Minimum {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be >= %f", *prop.Minimum),
			Code:    "MINIMUM_VIOLATION",
		})
	}
	if prop.Maximum != nil && v > *prop.Maximum {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value must be <= %f", *prop.Maximum),
			Code:    "MAXIMUM_VIOLATION",
		})
	}
	return errs
}

func typeError(value interface{}, want string) error {
	var ok bool
	switch want {
	case "string":
		_, ok = value.(string)
	case "boolean":
		_, ok = value.(bool)
	case "object":
		_, ok = value.(map[string]interface{})
	case "array":
		_, ok = value.([]interface{})
	case "number":
		ok = isNumber(value)
	case "integer":
		ok = isInteger(value)
	case "null":
		ok = value == nil
	default:
		return nil
	}
	if !ok {
		return fmt.Errorf("expected %s, got %T", want, value)
	}
	return nil
}

func isNumber(v interface{}) bool {
	switch v.(type) {
	case float64, int, int32, int64:
		return true
	}
	return false
}

// JSON numbers always decode to float64, so whole floats count as integers.
func isInteger(v interface{}) bool {
	switch n := v.(type) {
	case int, int32, int64:
		return true
	case float64:
		return n == math.Trunc(n)
	}
	return false
}

func containsString(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
)

// ValidateEmail reports whether s looks like a deliverable address.
func ValidateEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidatePhone reports whether s looks like a dialable number.
func ValidatePhone(s string) bool {
	return phonePattern.MatchString(s)
}
