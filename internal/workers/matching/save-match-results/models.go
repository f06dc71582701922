// internal/workers/matching/save-match-results/models.go
package savematchresults

import "grantmatch-workers/internal/models"

type Input struct {
	OrganizationID string              `json:"organizationId"`
	Matches        []models.MatchScore `json:"matches"`
	// Historical marks results computed against expired programs so
	// readers can tell a study run from an application shortlist.
	Historical bool `json:"historical,omitempty"`
}

// Output reports the row ids in match order. On an upsert the id of
// the existing row comes back, so repeated runs stay stable.
type Output struct {
	OrganizationID string   `json:"organizationId"`
	SavedCount     int      `json:"savedCount"`
	ResultIDs      []string `json:"resultIds"`
}
