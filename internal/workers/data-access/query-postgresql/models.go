// internal/workers/data-access/query-postgresql/models.go
package querypostgresql

import "grantmatch-workers/internal/models"

type Input struct {
	QueryType      string                 `json:"queryType"`
	OrganizationID string                 `json:"organizationId,omitempty"`
	ProgramID      string                 `json:"programId,omitempty"`
	ProgramIDs     []string               `json:"programIds,omitempty"`
	Limit          int                    `json:"limit,omitempty"`
	Filters        map[string]interface{} `json:"filters,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}

type QueryType = models.QueryType

// Export constants for external use
var (
	QueryTypeOrganizationProfile = models.QueryTypeOrganizationProfile
	QueryTypePartnerCandidates   = models.QueryTypePartnerCandidates
	QueryTypeProgramDetails      = models.QueryTypeProgramDetails
	QueryTypeActivePrograms      = models.QueryTypeActivePrograms
	QueryTypeProgramsByIDs       = models.QueryTypeProgramsByIDs
)
