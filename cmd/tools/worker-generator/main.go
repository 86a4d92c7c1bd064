// cmd/tools/worker-generator/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"lead-distribution-workers/pkg/registry"
)

// WorkerData is the template context assembled from one registry entry.
type WorkerData struct {
	Name                 string
	PackageName          string
	DirName              string
	CategoryDir          string
	TaskType             string
	InputSchema          map[string]interface{}
	OutputSchema         map[string]interface{}
	ErrorCodes           []string
	Description          string
	Category             string
	Timeout              string
	Retries              int
	ImplementationStatus string
}

// schemaProperties pulls the properties map out of a JSON schema object.
// Registry entries without a schema yield an empty map, which the templates
// turn into a TODO stub.
func schemaProperties(schema interface{}) map[string]interface{} {
	m, ok := schema.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	props, ok := m["properties"].(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return props
}

// goType maps a JSON schema type to the Go type used in generated models.
// The format argument is accepted for schema fidelity but does not refine
// the mapping yet.
func goType(jsonType, format interface{}) string {
	jt, ok := jsonType.(string)
	if !ok {
		return "interface{}"
	}
	switch jt {
	case "string":
		return "string"
	case "number":
		return "float64"
	case "integer":
		return "int"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		return "[]interface{}"
	}
	return "interface{}"
}

// structFields renders schema properties as Go struct fields, one per line,
// carrying the schema description over as a trailing comment.
func structFields(properties map[string]interface{}) string {
	var b strings.Builder
	first := true
	for prop, details := range properties {
		propDetails, ok := details.(map[string]interface{})
		if !ok {
			continue
		}
		if !first {
			b.WriteString("\n")
		}
		first = false

		fmt.Fprintf(&b, "\t%s %s `json:%q`",
			upperFirst(prop),
			goType(propDetails["type"], propDetails["format"]),
			prop,
		)
		if desc, _ := propDetails["description"].(string); desc != "" {
			fmt.Fprintf(&b, " // %s", desc)
		}
	}
	return b.String()
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// sentinelName turns an error code into a sentinel variable name,
// e.g. INDEX_WRITE_FAILED -> ErrIndexWriteFailed.
func sentinelName(code string) string {
	parts := strings.Split(strings.ToLower(code), "_")
	for i, part := range parts {
		parts[i] = upperFirst(part)
	}
	return "Err" + strings.Join(parts, "")
}

// workerErrorCodes filters out the codes every handler produces inline so
// templates only generate sentinels for worker-specific failures.
func workerErrorCodes(codes []string) []string {
	var out []string
	for _, code := range codes {
		if code == "PARSE_ERROR" || code == "UNKNOWN_ERROR" {
			continue
		}
		out = append(out, code)
	}
	return out
}

const handlerTemplate = `package {{ .PackageName }}

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"lead-distribution-workers/internal/common/logger"
)

const (
	TaskType = "{{ .TaskType }}"
)
{{ $codes := workerErrorCodes .ErrorCodes }}
{{- if $codes }}
var (
{{- range $codes }}
	{{ sentinelName . }} = errors.New("{{ . }}")
{{- end }}
)
{{ end }}
type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := h.mapErrorToCode(err)
		retries := h.getRetryCount(err)
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, errors.New("input cannot be nil")
	}

	// TODO: implement the '{{ .Name }}' business logic.

	return &Output{}, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) mapErrorToCode(err error) string {
{{- range $codes }}
	if errors.Is(err, {{ sentinelName . }}) {
		return "{{ . }}"
	}
{{- end }}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
{{- range $codes }}
	if errors.Is(err, {{ sentinelName . }}) {
		return {{ $.Retries }}
	}
{{- end }}
	return 0
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
`

const configTemplate = `package {{ .PackageName }}

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
`

const modelsTemplate = `package {{ .PackageName }}

type Input struct {
{{- $inputProps := schemaProperties .InputSchema }}
{{- if $inputProps }}
{{ structFields $inputProps }}
{{- else }}
	// TODO: add input fields from the registry schema
{{- end }}
}

type Output struct {
{{- $outputProps := schemaProperties .OutputSchema }}
{{- if $outputProps }}
{{ structFields $outputProps }}
{{- else }}
	// TODO: add output fields from the registry schema
{{- end }}
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"lead-distribution-workers/internal/common/logger"
)

func createTestConfig() *Config {
	return LoadConfig()
}

func TestHandler_Execute(t *testing.T) {
	handler := NewHandler(createTestConfig(), logger.NewTestLogger(t))

	tests := []struct {
		name    string
		input   *Input
		wantErr bool
	}{
		{
			name:    "nil input",
			input:   nil,
			wantErr: true,
		},
		// TODO: cover the '{{ .Name }}' business logic.
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output, err := handler.Execute(context.Background(), tt.input)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, output)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, output)
			}
		})
	}
}
`

const readmeTemplate = `# {{ .Name }} Worker

## Description
{{ .Description }}

## Category
{{ .Category }}

## Task Type
{{ .TaskType }}

## Implementation Status
{{ .ImplementationStatus }}

## Configuration
- **Timeout**: {{ .Timeout }}
- **Retries**: {{ .Retries }}

## Input Schema
{{- $inputProps := schemaProperties .InputSchema }}
{{- if $inputProps }}
The worker expects the following input variables:

{{ range $prop, $details := $inputProps }}
- **{{ $prop }}** ({{ goType (index $details "type") (index $details "format") }}){{ if index $details "description" }}: {{ index $details "description" }}{{ end }}
{{ end }}
{{- else }}
No input schema defined in registry.
{{- end }}

## Output Schema
{{- $outputProps := schemaProperties .OutputSchema }}
{{- if $outputProps }}
The worker produces the following output variables:

{{ range $prop, $details := $outputProps }}
- **{{ $prop }}** ({{ goType (index $details "type") (index $details "format") }}){{ if index $details "description" }}: {{ index $details "description" }}{{ end }}
{{ end }}
{{- else }}
No output schema defined in registry.
{{- end }}

## Error Codes
{{- if .ErrorCodes }}
{{ range .ErrorCodes }}
- {{ . }}
{{ end }}
{{- else }}
No specific error codes defined.
{{- end }}

## Usage

### Register in Worker Manager

` + "```go" + `
import {{ .PackageName }} "lead-distribution-workers/internal/workers/{{ .CategoryDir }}/{{ .DirName }}"

// In main:
if wcfg := config.GetWorkerConfig(cfg, {{ .PackageName }}.TaskType); wcfg.Enabled {
    handler := {{ .PackageName }}.NewHandler({{ .PackageName }}.LoadConfig(), log)
    startWorker(zeebeClient, {{ .PackageName }}.TaskType, wcfg, handler.Handle, zapLog)
}
` + "```" + `

### Configuration in config.yaml

` + "```yaml" + `
workers:
  {{ .TaskType }}:
    enabled: true
    max_jobs_active: 5
    timeout: 10000
` + "```" + `

## Development

### Run Tests
` + "```bash" + `
go test ./internal/workers/{{ .CategoryDir }}/{{ .DirName }}/...
` + "```" + `
`

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., validate-lead)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> --output <dir> [--registry <path>]")
		fmt.Println("\nExample:")
		fmt.Println("  go run cmd/tools/worker-generator/main.go --activity validate-lead")
		os.Exit(1)
	}

	// Load the registry
	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	foundActivity := reg.Find(*activity)
	if foundActivity == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	// Prepare data for templates
	data := WorkerData{
		Name:                 foundActivity.DisplayName,
		PackageName:          strings.ReplaceAll(foundActivity.ID, "-", ""),
		DirName:              foundActivity.ID,
		CategoryDir:          mapCategoryToDirectory(foundActivity.Category),
		TaskType:             foundActivity.TaskType,
		InputSchema:          foundActivity.InputSchema,
		OutputSchema:         foundActivity.OutputSchema,
		ErrorCodes:           foundActivity.ErrorCodes,
		Description:          foundActivity.Description,
		Category:             foundActivity.Category,
		Timeout:              foundActivity.Timeout,
		Retries:              foundActivity.Retries,
		ImplementationStatus: foundActivity.ImplementationStatus,
	}

	workerDir := filepath.Join(*outputDir, data.CategoryDir, data.DirName)

	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	funcMap := template.FuncMap{
		"schemaProperties": schemaProperties,
		"goType":           goType,
		"structFields":     structFields,
		"sentinelName":     sentinelName,
		"workerErrorCodes": workerErrorCodes,
	}

	// Generate files
	templates := map[string]string{
		"handler.go":      handlerTemplate,
		"config.go":       configTemplate,
		"models.go":       modelsTemplate,
		"handler_test.go": testTemplate,
		"README.md":       readmeTemplate,
	}

	for filename, tmplStr := range templates {
		tmpl, err := template.New(filename).Funcs(funcMap).Parse(tmplStr)
		if err != nil {
			fmt.Printf("Error parsing template %s: %v\n", filename, err)
			continue
		}

		filePath := filepath.Join(workerDir, filename)
		file, err := os.Create(filePath)
		if err != nil {
			fmt.Printf("Error creating file %s: %v\n", filePath, err)
			continue
		}

		if err := tmpl.Execute(file, data); err != nil {
			fmt.Printf("Error executing template for %s: %v\n", filename, err)
		}
		file.Close()

		fmt.Printf("✓ Generated %s\n", filePath)
	}

	fmt.Printf("\n✅ Worker scaffold generated successfully at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement the business logic in handler.go\n")
	fmt.Printf("  2. Fill in the Input/Output models in models.go\n")
	fmt.Printf("  3. Extend the tests in handler_test.go\n")
	fmt.Printf("  4. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  5. Add its entry to configs/activity-registry.json\n")
}

// mapCategoryToDirectory maps registry categories to directory names
func mapCategoryToDirectory(category string) string {
	switch category {
	case "lead":
		return "lead"
	case "communication":
		return "communication"
	case "data-access":
		return "data-access"
	case "crm", "crm-integration":
		return "crm"
	default:
		return strings.ToLower(category)
	}
}
