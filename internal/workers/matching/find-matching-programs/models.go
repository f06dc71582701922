// internal/workers/matching/find-matching-programs/models.go
package findmatchingprograms

import "grantmatch-workers/internal/models"

type Input struct {
	OrganizationID string               `json:"organizationId,omitempty"`
	Organization   *models.Organization `json:"organization,omitempty"`

	// Candidate sources, in priority order: inline programs, program ids
	// to look up, otherwise the active-program pool from Postgres.
	Programs   []models.FundingProgram `json:"programs,omitempty"`
	ProgramIDs []string                `json:"programIds,omitempty"`

	Limit          int  `json:"limit,omitempty"`
	MinimumScore   int  `json:"minimumScore,omitempty"`
	IncludeExpired bool `json:"includeExpired,omitempty"`
}

type Output struct {
	OrganizationID  string              `json:"organizationId"`
	Matches         []models.MatchScore `json:"matches"`
	TotalCandidates int                 `json:"totalCandidates"`
}
