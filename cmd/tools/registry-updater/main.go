// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"grantmatch-workers/internal/common/validation"
	"grantmatch-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

var registryPath string

// fieldSetters maps the -field flag of the update command onto the
// catalog entry. Parsing failures reject the update before anything
// is written.
var fieldSetters = map[string]func(*registry.Activity, string) error{
	"status": func(a *registry.Activity, v string) error {
		a.ImplementationStatus = v
		return nil
	},
	"version": func(a *registry.Activity, v string) error {
		a.Version = v
		return nil
	},
	"displayName": func(a *registry.Activity, v string) error {
		a.DisplayName = v
		return nil
	},
	"description": func(a *registry.Activity, v string) error {
		a.Description = v
		return nil
	},
	"category": func(a *registry.Activity, v string) error {
		a.Category = v
		return nil
	},
	"taskType": func(a *registry.Activity, v string) error {
		a.TaskType = v
		return nil
	},
	"timeout": func(a *registry.Activity, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		a.Timeout = v
		return nil
	},
	"retries": func(a *registry.Activity, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = n
		return nil
	},
}

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Activity ID (e.g., find-matching-programs)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., Find Matching Programs)")
	description := addCmd.String("description", "", "Description")
	category := addCmd.String("category", "", "Category (matching, data-access, profile, communication)")
	taskType := addCmd.String("taskType", "", "Zeebe task type (defaults to the activity ID)")
	version := addCmd.String("version", "1.0.0", "Version")
	implStatus := addCmd.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
	addCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	// Update command flags
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	field := updateCmd.String("field", "", "Field to update (status, version, timeout, ...)")
	value := updateCmd.String("value", "", "New value for the field")
	updateCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	validateCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")
	listCmd.StringVar(&registryPath, "path", defaultRegistryPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *displayName == "" || *description == "" || *category == "" {
			fmt.Println("Error: id, displayName, description, and category are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		if *taskType == "" {
			*taskType = *idAdd
		}
		activity := registry.Activity{
			ID:                   *idAdd,
			DisplayName:          *displayName,
			Description:          *description,
			Category:             *category,
			Version:              *version,
			TaskType:             *taskType,
			ImplementationStatus: *implStatus,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           []string{},
			Timeout:              "10s",
			Retries:              3,
			Workflows:            []string{},
			Tags:                 []string{},
		}
		if err := addActivity(&activity); err != nil {
			fmt.Printf("Error adding activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added activity: %s\n", *idAdd)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: id, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(*idUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *idUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		if err := validateRegistry(); err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}

	case "list":
		listCmd.Parse(os.Args[2:])
		if err := listActivities(); err != nil {
			fmt.Printf("Error listing activities: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func addActivity(activity *registry.Activity) error {
	if err := validation.ValidateActivityNaming(activity.ID); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	if existing := reg.FindByID(activity.ID); existing != nil {
		return fmt.Errorf("activity with ID %s already exists", activity.ID)
	}

	reg.Activities = append(reg.Activities, *activity)
	if err := reg.Validate(); err != nil {
		return err
	}
	return reg.Save(registryPath)
}

func updateActivity(id, field, value string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	activity := reg.FindByID(id)
	if activity == nil {
		return fmt.Errorf("activity with ID %s not found", id)
	}

	setter, ok := fieldSetters[field]
	if !ok {
		return fmt.Errorf("unknown field: %s", field)
	}
	if err := setter(activity, value); err != nil {
		return err
	}

	if err := reg.Validate(); err != nil {
		return err
	}
	return reg.Save(registryPath)
}

func validateRegistry() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	for _, activity := range reg.Activities {
		if err := validation.ValidateActivityNaming(activity.ID); err != nil {
			return err
		}
	}

	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func listActivities() error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	grouped := reg.ByCategory()
	categories := make([]string, 0, len(grouped))
	for category := range grouped {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		fmt.Printf("%s:\n", category)
		for _, activity := range grouped[category] {
			fmt.Printf("  %-32s %-12s %s\n", activity.ID, activity.ImplementationStatus, activity.DisplayName)
		}
	}
	return nil
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  list     List activities grouped by category
  help     Show this help message

Examples:
  registry-updater add -id find-matching-programs -displayName "Find Matching Programs" -description "Scores funding programs against an organization profile" -category matching
  registry-updater update -id find-matching-programs -field status -value completed
  registry-updater validate -path configs/activity-registry.json
  registry-updater list

Use 'registry-updater <command> -h' for more information about a command.`)
}
