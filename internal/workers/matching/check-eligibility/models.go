// internal/workers/matching/check-eligibility/models.go
package checkeligibility

import "grantmatch-workers/internal/models"

// Input carries the pair to classify. Records may arrive inline from
// the process payload or as ids to look up.
type Input struct {
	OrganizationID string                 `json:"organizationId,omitempty"`
	Organization   *models.Organization   `json:"organization,omitempty"`
	ProgramID      string                 `json:"programId,omitempty"`
	Program        *models.FundingProgram `json:"program,omitempty"`
}

// Output exposes Level as a top-level variable so BPMN gateways can
// branch on it without digging into the detail document.
type Output struct {
	OrganizationID string                    `json:"organizationId"`
	ProgramID      string                    `json:"programId"`
	Level          models.EligibilityLevel   `json:"level"`
	Eligibility    *models.EligibilityDetail `json:"eligibility"`
}
