// internal/models/match.go
package models

import "strings"

// ReasonCode is a stable machine-readable label attached to a match.
// Codes appear in priority order on a result; the explanation layer maps
// them to user-facing text.
type ReasonCode string

const (
	// industry fit
	ReasonExactCategoryMatch     ReasonCode = "EXACT_CATEGORY_MATCH"
	ReasonTechnologyKeywordMatch ReasonCode = "TECHNOLOGY_KEYWORD_MATCH"
	ReasonResearchFocusMatch     ReasonCode = "RESEARCH_FOCUS_MATCH"
	ReasonSectorKeywordMatch     ReasonCode = "SECTOR_KEYWORD_MATCH"
	ReasonSectorMatch            ReasonCode = "SECTOR_MATCH"
	ReasonSubSectorMatch         ReasonCode = "SUB_SECTOR_MATCH"
	ReasonCrossIndustryRelevance ReasonCode = "CROSS_INDUSTRY_RELEVANCE"
	ReasonTechDomainMatch        ReasonCode = "TECH_DOMAIN_MATCH"

	// TRL fit
	ReasonTRLRangeFit     ReasonCode = "TRL_RANGE_FIT"
	ReasonTRLNearRange    ReasonCode = "TRL_NEAR_RANGE"
	ReasonTRLFarFromRange ReasonCode = "TRL_FAR_FROM_RANGE"
	ReasonTRLInferred     ReasonCode = "TRL_INFERRED"
	ReasonTRLDataMissing  ReasonCode = "TRL_DATA_MISSING"

	// organization type
	ReasonTargetTypeMatch    ReasonCode = "TARGET_TYPE_MATCH"
	ReasonTargetTypeOpen     ReasonCode = "TARGET_TYPE_OPEN"
	ReasonTargetTypeMismatch ReasonCode = "TARGET_TYPE_MISMATCH"

	// R&D capability
	ReasonRnDExperience        ReasonCode = "RND_EXPERIENCE"
	ReasonCollaborationHistory ReasonCode = "COLLABORATION_HISTORY"

	// deadline proximity
	ReasonDeadlineUrgent      ReasonCode = "DEADLINE_URGENT"
	ReasonDeadlineSoon        ReasonCode = "DEADLINE_SOON"
	ReasonDeadlineComfortable ReasonCode = "DEADLINE_COMFORTABLE"
	ReasonDeadlineDistant     ReasonCode = "DEADLINE_DISTANT"
	ReasonDeadlinePassed      ReasonCode = "DEADLINE_PASSED"
	ReasonDeadlineInfoMissing ReasonCode = "DEADLINE_INFO_MISSING"
	ReasonBudgetInfoMissing   ReasonCode = "BUDGET_INFO_MISSING"

	// partner compatibility
	ReasonComplementaryTRLFit     ReasonCode = "COMPLEMENTARY_TRL_FIT"
	ReasonTRLGapMismatch          ReasonCode = "TRL_GAP_MISMATCH"
	ReasonDesiredFieldMatch       ReasonCode = "DESIRED_FIELD_MATCH"
	ReasonDesiredTechnologyMatch  ReasonCode = "DESIRED_TECHNOLOGY_MATCH"
	ReasonOrgScaleCompatible      ReasonCode = "ORG_SCALE_COMPATIBLE"
	ReasonOrgScaleFar             ReasonCode = "ORG_SCALE_FAR"
	ReasonPartnerRnDTrackRecord   ReasonCode = "PARTNER_RND_TRACK_RECORD"
)

// IsWarning reports whether the code describes a deficiency rather than
// a strength. Warning codes carry MISMATCH or FAR markers.
func (c ReasonCode) IsWarning() bool {
	s := string(c)
	return strings.Contains(s, "MISMATCH") || strings.Contains(s, "FAR")
}

type EligibilityLevel string

const (
	FullyEligible         EligibilityLevel = "FULLY_ELIGIBLE"
	ConditionallyEligible EligibilityLevel = "CONDITIONALLY_ELIGIBLE"
	Ineligible            EligibilityLevel = "INELIGIBLE"
)

// Rank orders levels for sorting, best first.
func (l EligibilityLevel) Rank() int {
	switch l {
	case FullyEligible:
		return 0
	case ConditionallyEligible:
		return 1
	default:
		return 2
	}
}

type EligibilityDetail struct {
	Level                EligibilityLevel `json:"level"`
	PassedRequirements   []string         `json:"passedRequirements,omitempty"`
	FailedRequirements   []string         `json:"failedRequirements,omitempty"`
	SatisfiedPreferences []string         `json:"satisfiedPreferences,omitempty"`
	NeedsManualReview    bool             `json:"needsManualReview"`
	ReviewReasons        []string         `json:"reviewReasons,omitempty"`
}

type ScoreBreakdown struct {
	IndustryScore int `json:"industryScore"`
	TRLScore      int `json:"trlScore"`
	TypeScore     int `json:"typeScore"`
	RnDScore      int `json:"rndScore"`
	DeadlineScore int `json:"deadlineScore"`
}

func (b ScoreBreakdown) Total() int {
	return b.IndustryScore + b.TRLScore + b.TypeScore + b.RnDScore + b.DeadlineScore
}

type MatchScore struct {
	ProgramID   string             `json:"programId"`
	Score       int                `json:"score"`
	Breakdown   ScoreBreakdown     `json:"breakdown"`
	Reasons     []ReasonCode       `json:"reasons"`
	Eligibility *EligibilityDetail `json:"eligibility,omitempty"`
}

type PartnerBreakdown struct {
	TRLFitScore      int `json:"trlFitScore"`
	AlignmentScore   int `json:"alignmentScore"`
	ScaleScore       int `json:"scaleScore"`
	TrackRecordScore int `json:"trackRecordScore"`
}

func (b PartnerBreakdown) Total() int {
	return b.TRLFitScore + b.AlignmentScore + b.ScaleScore + b.TrackRecordScore
}

type PartnerMatch struct {
	OrganizationID string           `json:"organizationId"`
	Score          int              `json:"score"`
	Breakdown      PartnerBreakdown `json:"breakdown"`
	Reasons        []ReasonCode     `json:"reasons"`
	Summary        string           `json:"summary,omitempty"`
}

// Explanation is the presentation-ready rendering of a match.
type Explanation struct {
	Summary         string   `json:"summary"`
	Reasons         []string `json:"reasons"`
	Warnings        []string `json:"warnings,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
}
