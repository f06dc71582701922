// internal/models/query_types.go
package models

type QueryType string

const (
	QueryTypeOrganizationProfile QueryType = "organization_profile"
	QueryTypePartnerCandidates   QueryType = "partner_candidates"
	QueryTypeProgramDetails      QueryType = "program_details"
	QueryTypeActivePrograms      QueryType = "active_programs"
	QueryTypeProgramsByIDs       QueryType = "programs_by_ids"
)
