// internal/workers/matching/match-partner-organizations/models.go
package matchpartnerorganizations

import "grantmatch-workers/internal/models"

// Input identifies the seeker and optionally pins the candidate set.
// Without inline candidates the worker pulls completed, active profiles
// from Postgres.
type Input struct {
	OrganizationID string                `json:"organizationId,omitempty"`
	Organization   *models.Organization  `json:"organization,omitempty"`
	Candidates     []models.Organization `json:"candidates,omitempty"`
	Limit          int                   `json:"limit,omitempty"`
	MinimumScore   int                   `json:"minimumScore,omitempty"`
}

type Output struct {
	OrganizationID  string                `json:"organizationId"`
	Partners        []models.PartnerMatch `json:"partners"`
	TotalCandidates int                   `json:"totalCandidates"`
}
