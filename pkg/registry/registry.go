// pkg/registry/registry.go

// Package registry reads and maintains the activity catalog behind the
// registry-updater and worker-generator tools.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// LoadRegistry reads the catalog at path. A missing file surfaces as
// the unwrapped os error so callers can bootstrap an empty catalog.
func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// Save writes the catalog back to path, stamping LastUpdated.
func (r *ActivityRegistry) Save(path string) error {
	r.LastUpdated = time.Now().Format(time.RFC3339)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// FindByID returns a pointer into the catalog for the given id, or nil.
func (r *ActivityRegistry) FindByID(id string) *Activity {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i]
		}
	}
	return nil
}

// ByCategory groups activities by category, each group sorted by id.
func (r *ActivityRegistry) ByCategory() map[string][]Activity {
	grouped := make(map[string][]Activity)
	for _, activity := range r.Activities {
		grouped[activity.Category] = append(grouped[activity.Category], activity)
	}
	for _, group := range grouped {
		sort.Slice(group, func(i, j int) bool { return group[i].ID < group[j].ID })
	}
	return grouped
}

// Validate checks catalog integrity: unique ids, the required fields,
// a known implementation status, and a parseable timeout.
func (r *ActivityRegistry) Validate() error {
	seen := make(map[string]bool, len(r.Activities))
	for _, activity := range r.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: id")
		}
		if seen[activity.ID] {
			return fmt.Errorf("duplicate activity id: %s", activity.ID)
		}
		seen[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: displayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: taskType", activity.ID)
		}
		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: category", activity.ID)
		}
		if !knownStatuses[activity.ImplementationStatus] {
			return fmt.Errorf("activity %s has unknown status %q", activity.ID, activity.ImplementationStatus)
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has unparseable timeout %q", activity.ID, activity.Timeout)
			}
		}
	}
	return nil
}
