// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleActivity(id string) Activity {
	return Activity{
		ID:                   id,
		DisplayName:          "Find Matching Programs",
		Description:          "Scores funding programs against an organization profile",
		Category:             "matching",
		Version:              "1.0.0",
		TaskType:             "find-matching-programs",
		ImplementationStatus: StatusCompleted,
		ErrorCodes:           []string{"PROFILE_NOT_FOUND", "SEARCH_QUERY_FAILED"},
		Timeout:              "60s",
		Retries:              3,
	}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")

	reg := &ActivityRegistry{
		Version:    "1.0",
		Activities: []Activity{sampleActivity("find-matching-programs")},
	}
	require.NoError(t, reg.Save(path))
	assert.NotEmpty(t, reg.LastUpdated)

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, loaded.Activities, 1)
	assert.Equal(t, "find-matching-programs", loaded.Activities[0].ID)
	assert.Equal(t, "matching", loaded.Activities[0].Category)
	assert.Equal(t, reg.LastUpdated, loaded.LastUpdated)
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ActivityRegistry)
		wantErr string
	}{
		{
			name:   "valid catalog",
			mutate: func(r *ActivityRegistry) {},
		},
		{
			name: "missing id",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].ID = ""
			},
			wantErr: "missing required field: id",
		},
		{
			name: "duplicate id",
			mutate: func(r *ActivityRegistry) {
				r.Activities = append(r.Activities, sampleActivity("find-matching-programs"))
			},
			wantErr: "duplicate activity id",
		},
		{
			name: "missing display name",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].DisplayName = ""
			},
			wantErr: "missing required field: displayName",
		},
		{
			name: "missing task type",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].TaskType = ""
			},
			wantErr: "missing required field: taskType",
		},
		{
			name: "unknown status",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].ImplementationStatus = "shipped"
			},
			wantErr: "unknown status",
		},
		{
			name: "unparseable timeout",
			mutate: func(r *ActivityRegistry) {
				r.Activities[0].Timeout = "60000"
			},
			wantErr: "unparseable timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{
				Version:    "1.0",
				Activities: []Activity{sampleActivity("find-matching-programs")},
			}
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestFindByID(t *testing.T) {
	reg := &ActivityRegistry{
		Activities: []Activity{
			sampleActivity("find-matching-programs"),
			sampleActivity("check-eligibility"),
		},
	}

	found := reg.FindByID("check-eligibility")
	require.NotNil(t, found)

	// FindByID hands back a pointer into the catalog so updaters can
	// edit entries in place.
	found.ImplementationStatus = StatusVerified
	assert.Equal(t, StatusVerified, reg.Activities[1].ImplementationStatus)

	assert.Nil(t, reg.FindByID("does-not-exist"))
}

func TestByCategory(t *testing.T) {
	matching := sampleActivity("find-matching-programs")
	eligibility := sampleActivity("check-eligibility")
	query := sampleActivity("query-postgresql")
	query.Category = "data-access"

	reg := &ActivityRegistry{Activities: []Activity{query, matching, eligibility}}

	grouped := reg.ByCategory()
	require.Len(t, grouped, 2)
	require.Len(t, grouped["matching"], 2)
	assert.Equal(t, "check-eligibility", grouped["matching"][0].ID)
	assert.Equal(t, "find-matching-programs", grouped["matching"][1].ID)
	require.Len(t, grouped["data-access"], 1)
	assert.Equal(t, "query-postgresql", grouped["data-access"][0].ID)
}
