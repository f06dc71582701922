// internal/workers/matching/explain-match/models.go
package explainmatch

import "grantmatch-workers/internal/models"

// Input carries the scored matches a caller wants rendered. Programs
// may ride along inline; otherwise the worker looks them up by the
// program ids on the matches. The organization is optional, the
// generator degrades to generic phrasing without it.
type Input struct {
	OrganizationID string                  `json:"organizationId,omitempty"`
	Organization   *models.Organization    `json:"organization,omitempty"`
	Matches        []models.MatchScore     `json:"matches"`
	Programs       []models.FundingProgram `json:"programs,omitempty"`
}

type MatchExplanation struct {
	ProgramID   string             `json:"programId"`
	Score       int                `json:"score"`
	Explanation models.Explanation `json:"explanation"`
}

type Output struct {
	OrganizationID string             `json:"organizationId,omitempty"`
	Explanations   []MatchExplanation `json:"explanations"`
}
