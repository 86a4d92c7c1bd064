// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"lead-distribution-workers/pkg/registry"
)

// Shared by all subcommands; only validate exposes a -path flag.
var registryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		runAdd(os.Args[2:])
	case "update":
		runUpdate(os.Args[2:])
	case "validate":
		runValidate(os.Args[2:])
	case "help":
		fallthrough
	default:
		help()
	}
}

func runAdd(args []string) {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	id := cmd.String("id", "", "activity id, doubles as the worker directory name")
	displayName := cmd.String("displayName", "", "human-readable name")
	description := cmd.String("description", "", "what the worker does")
	category := cmd.String("category", "", "one of: lead, communication, data-access, crm")
	taskType := cmd.String("taskType", "", "Zeebe task type the worker subscribes to")
	version := cmd.String("version", "1.0.0", "activity version")
	status := cmd.String("status", registry.StatusPlanned, "implementation status")
	cmd.Parse(args)

	if *id == "" || *displayName == "" || *description == "" || *category == "" || *taskType == "" {
		fmt.Println("add needs -id, -displayName, -description, -category and -taskType")
		cmd.Usage()
		os.Exit(1)
	}
	if !validStatus(*status) {
		fmt.Printf("unknown status %q, want one of planned, in-progress, completed, verified\n", *status)
		os.Exit(1)
	}

	// Schemas, error codes and tags start empty; they get filled in by hand
	// once the worker's contract settles.
	activity := registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{},
		OutputSchema:         map[string]interface{}{},
		ErrorCodes:           []string{},
		Timeout:              "10s",
		Retries:              0,
		Workflows:            []string{},
		Tags:                 []string{},
	}
	if err := addActivity(&activity); err != nil {
		fmt.Printf("add failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("added %s\n", *id)
}

func runUpdate(args []string) {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	id := cmd.String("id", "", "activity id to update")
	field := cmd.String("field", "", "field to change (status, version, timeout, retries, ...)")
	value := cmd.String("value", "", "new value")
	cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		fmt.Println("update needs -id, -field and -value")
		cmd.Usage()
		os.Exit(1)
	}
	if err := updateActivity(*id, *field, *value); err != nil {
		fmt.Printf("update failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated %s: %s = %s\n", *id, *field, *value)
}

func runValidate(args []string) {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	cmd.StringVar(&registryPath, "path", registryPath, "registry file to check")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		fmt.Printf("validate failed: load registry: %v\n", err)
		os.Exit(1)
	}
	if err := reg.Validate(); err != nil {
		fmt.Printf("validate failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("registry ok, %d activities\n", len(reg.Activities))
}

func addActivity(activity *registry.Activity) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("load registry: %w", err)
		}
		// First activity ever: start a fresh registry file.
		reg = &registry.ActivityRegistry{
			Version:     "1.0.0",
			LastUpdated: time.Now().Format(time.RFC3339),
			Activities:  []registry.Activity{},
		}
	}

	if reg.Find(activity.ID) != nil {
		return fmt.Errorf("activity %s already exists", activity.ID)
	}

	reg.Activities = append(reg.Activities, *activity)
	reg.LastUpdated = time.Now().Format(time.RFC3339)

	return registry.SaveRegistry(reg, registryPath)
}

func updateActivity(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	activity := reg.Find(id)
	if activity == nil {
		return fmt.Errorf("no activity %s in registry", id)
	}

	switch field {
	case "status":
		if !validStatus(value) {
			return fmt.Errorf("unknown status %q, want one of planned, in-progress, completed, verified", value)
		}
		activity.ImplementationStatus = value
	case "version":
		activity.Version = value
	case "displayName":
		activity.DisplayName = value
	case "description":
		activity.Description = value
	case "category":
		activity.Category = value
	case "taskType":
		activity.TaskType = value
	case "timeout":
		activity.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("retries must be a number: %w", err)
		}
		activity.Retries = retries
	default:
		return fmt.Errorf("field %s is not updatable", field)
	}

	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(reg, registryPath)
}

func validStatus(s string) bool {
	switch s {
	case registry.StatusPlanned, registry.StatusInProgress, registry.StatusCompleted, registry.StatusVerified:
		return true
	}
	return false
}

func help() {
	fmt.Println(`registry-updater maintains configs/activity-registry.json.

Usage: registry-updater <command> [flags]

Commands:
  add       register a new activity
  update    change one field of an existing activity
  validate  check the registry file for missing fields and duplicate ids
  help      show this message

Examples:
  registry-updater add -id validate-lead -displayName "Validate Lead" -description "Validates an incoming raw lead" -category lead -taskType validate-lead
  registry-updater update -id distribute-lead -field status -value verified
  registry-updater validate -path configs/activity-registry.json

Run 'registry-updater <command> -h' for the command's flags.`)
}
