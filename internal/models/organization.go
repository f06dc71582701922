// internal/models/organization.go
package models

import "time"

type OrgType string

const (
	OrgTypeCompany           OrgType = "COMPANY"
	OrgTypeResearchInstitute OrgType = "RESEARCH_INSTITUTE"
	OrgTypeUniversity        OrgType = "UNIVERSITY"
	OrgTypePublicInstitution OrgType = "PUBLIC_INSTITUTION"
)

type OrgStatus string

const (
	OrgStatusActive   OrgStatus = "ACTIVE"
	OrgStatusInactive OrgStatus = "INACTIVE"
	OrgStatusPending  OrgStatus = "PENDING"
)

type BusinessStructure string

const (
	BusinessStructureCorporation    BusinessStructure = "CORPORATION"
	BusinessStructureSoleProprietor BusinessStructure = "SOLE_PROPRIETOR"
	BusinessStructureNonprofit      BusinessStructure = "NONPROFIT"
)

// EmployeeBucket is an ordered headcount range. Comparisons between
// buckets and against numeric program bounds go through Index and
// Midpoint rather than string values.
type EmployeeBucket string

const (
	EmployeesUnder10  EmployeeBucket = "UNDER_10"
	Employees10To49   EmployeeBucket = "FROM_10_TO_49"
	Employees50To99   EmployeeBucket = "FROM_50_TO_99"
	Employees100To299 EmployeeBucket = "FROM_100_TO_299"
	EmployeesOver300  EmployeeBucket = "OVER_300"
)

var employeeBucketIndex = map[EmployeeBucket]int{
	EmployeesUnder10:  0,
	Employees10To49:   1,
	Employees50To99:   2,
	Employees100To299: 3,
	EmployeesOver300:  4,
}

var employeeBucketMidpoint = map[EmployeeBucket]int{
	EmployeesUnder10:  5,
	Employees10To49:   30,
	Employees50To99:   75,
	Employees100To299: 200,
	EmployeesOver300:  500,
}

// Index returns the bucket's position in ascending order, or -1 for an
// unknown value.
func (b EmployeeBucket) Index() int {
	if i, ok := employeeBucketIndex[b]; ok {
		return i
	}
	return -1
}

// Midpoint returns the representative headcount used when a program
// states numeric employee bounds.
func (b EmployeeBucket) Midpoint() int {
	return employeeBucketMidpoint[b]
}

func (b EmployeeBucket) Valid() bool {
	_, ok := employeeBucketIndex[b]
	return ok
}

// RevenueBucket is an ordered annual-revenue range in KRW.
type RevenueBucket string

const (
	RevenueUnder1B  RevenueBucket = "UNDER_1B"
	Revenue1BTo5B   RevenueBucket = "FROM_1B_TO_5B"
	Revenue5BTo10B  RevenueBucket = "FROM_5B_TO_10B"
	Revenue10BTo50B RevenueBucket = "FROM_10B_TO_50B"
	RevenueOver50B  RevenueBucket = "OVER_50B"
)

var revenueBucketIndex = map[RevenueBucket]int{
	RevenueUnder1B:  0,
	Revenue1BTo5B:   1,
	Revenue5BTo10B:  2,
	Revenue10BTo50B: 3,
	RevenueOver50B:  4,
}

var revenueBucketMidpoint = map[RevenueBucket]int64{
	RevenueUnder1B:  500_000_000,
	Revenue1BTo5B:   3_000_000_000,
	Revenue5BTo10B:  7_500_000_000,
	Revenue10BTo50B: 30_000_000_000,
	RevenueOver50B:  75_000_000_000,
}

func (b RevenueBucket) Index() int {
	if i, ok := revenueBucketIndex[b]; ok {
		return i
	}
	return -1
}

func (b RevenueBucket) Midpoint() int64 {
	return revenueBucketMidpoint[b]
}

func (b RevenueBucket) Valid() bool {
	_, ok := revenueBucketIndex[b]
	return ok
}

type InvestmentEvent struct {
	Round      string     `json:"round,omitempty"`
	Amount     int64      `json:"amount"`
	Verified   bool       `json:"verified"`
	OccurredAt *time.Time `json:"occurredAt,omitempty"`
}

type Organization struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Type             OrgType   `json:"type"`
	Status           OrgStatus `json:"status"`
	ProfileCompleted bool      `json:"profileCompleted"`

	IndustrySector    string             `json:"industrySector,omitempty"`
	BusinessStructure *BusinessStructure `json:"businessStructure,omitempty"`
	EstablishedAt     *time.Time         `json:"establishedAt,omitempty"`

	TechnologyReadinessLevel *int `json:"technologyReadinessLevel,omitempty"`
	TargetResearchTRL        *int `json:"targetResearchTrl,omitempty"`
	RnDExperience            bool `json:"rndExperience"`
	CollaborationCount       int  `json:"collaborationCount"`

	KeyTechnologies    []string `json:"keyTechnologies,omitempty"`
	ResearchFocusAreas []string `json:"researchFocusAreas,omitempty"`

	EmployeeCount  *EmployeeBucket `json:"employeeCount,omitempty"`
	RevenueRange   *RevenueBucket  `json:"revenueRange,omitempty"`
	Certifications []string        `json:"certifications,omitempty"`
	PriorGrantWins []string        `json:"priorGrantWins,omitempty"`
	IndustryAwards []string        `json:"industryAwards,omitempty"`
	// InvestmentHistory nil means the organization never reported
	// investments; an empty slice means it reported having none.
	InvestmentHistory []InvestmentEvent `json:"investmentHistory,omitempty"`

	DesiredConsortiumFields []string        `json:"desiredConsortiumFields,omitempty"`
	DesiredTechnologies     []string        `json:"desiredTechnologies,omitempty"`
	TargetPartnerTRL        *int            `json:"targetPartnerTrl,omitempty"`
	ExpectedTRLLevel        *int            `json:"expectedTrlLevel,omitempty"`
	TargetOrgScale          *EmployeeBucket `json:"targetOrgScale,omitempty"`
	TargetOrgRevenue        *RevenueBucket  `json:"targetOrgRevenue,omitempty"`

	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// MatchingTRL returns the TRL used against program ranges: the research
// target when stated, otherwise the current readiness level.
func (o *Organization) MatchingTRL() *int {
	if o.TargetResearchTRL != nil {
		return o.TargetResearchTRL
	}
	return o.TechnologyReadinessLevel
}

// PartnerTargetTRL returns the TRL the organization wants a consortium
// partner to hold.
func (o *Organization) PartnerTargetTRL() *int {
	if o.TargetPartnerTRL != nil {
		return o.TargetPartnerTRL
	}
	return o.ExpectedTRLLevel
}

// OperatingYears returns whole years since establishment, or nil when
// the establishment date is unknown.
func (o *Organization) OperatingYears(now time.Time) *int {
	if o.EstablishedAt == nil {
		return nil
	}
	years := now.Year() - o.EstablishedAt.Year()
	anniversary := o.EstablishedAt.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return &years
}

// VerifiedInvestmentTotal sums verified investment events. The caller
// distinguishes a nil history from a zero total.
func (o *Organization) VerifiedInvestmentTotal() int64 {
	var total int64
	for _, ev := range o.InvestmentHistory {
		if ev.Verified {
			total += ev.Amount
		}
	}
	return total
}
