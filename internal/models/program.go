// internal/models/program.go
package models

import "time"

type ProgramStatus string

const (
	ProgramStatusActive    ProgramStatus = "ACTIVE"
	ProgramStatusExpired   ProgramStatus = "EXPIRED"
	ProgramStatusDraft     ProgramStatus = "DRAFT"
	ProgramStatusSuspended ProgramStatus = "SUSPENDED"
)

type FundingProgram struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Keywords    []string      `json:"keywords,omitempty"`
	Status      ProgramStatus `json:"status"`

	Deadline         *time.Time `json:"deadline,omitempty"`
	ApplicationStart *time.Time `json:"applicationStart,omitempty"`
	BudgetAmount     *int64     `json:"budgetAmount,omitempty"`

	TargetTypes               []OrgType           `json:"targetTypes,omitempty"`
	AllowedBusinessStructures []BusinessStructure `json:"allowedBusinessStructures,omitempty"`

	MinTRL *int `json:"minTrl,omitempty"`
	MaxTRL *int `json:"maxTrl,omitempty"`
	// TRLInferred marks ranges recovered from announcement text rather
	// than stated by the agency.
	TRLInferred   bool     `json:"trlInferred,omitempty"`
	TRLConfidence *float64 `json:"trlConfidence,omitempty"`

	RequiredCertifications   []string `json:"requiredCertifications,omitempty"`
	PreferredCertifications  []string `json:"preferredCertifications,omitempty"`
	RequiredMinEmployees     *int     `json:"requiredMinEmployees,omitempty"`
	RequiredMaxEmployees     *int     `json:"requiredMaxEmployees,omitempty"`
	RequiredMinRevenue       *int64   `json:"requiredMinRevenue,omitempty"`
	RequiredMaxRevenue       *int64   `json:"requiredMaxRevenue,omitempty"`
	RequiredInvestmentAmount *int64   `json:"requiredInvestmentAmount,omitempty"`
	RequiredOperatingYears   *int     `json:"requiredOperatingYears,omitempty"`
	MaxOperatingYears        *int     `json:"maxOperatingYears,omitempty"`
}

// IsConsolidatedAnnouncement reports whether the record is an umbrella
// announcement (통합공고) that aggregates many calls: no deadline, no
// application window and no budget of its own. These are never directly
// applicable.
func (p *FundingProgram) IsConsolidatedAnnouncement() bool {
	return p.Deadline == nil && p.ApplicationStart == nil && p.BudgetAmount == nil
}

// DeadlinePassed reports whether the application deadline lies before
// now. A missing deadline never counts as passed.
func (p *FundingProgram) DeadlinePassed(now time.Time) bool {
	return p.Deadline != nil && p.Deadline.Before(now)
}

// HasTRLRange reports whether the program states both TRL bounds.
func (p *FundingProgram) HasTRLRange() bool {
	return p.MinTRL != nil && p.MaxTRL != nil
}
