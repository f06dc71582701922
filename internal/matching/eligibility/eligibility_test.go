// internal/matching/eligibility/eligibility_test.go
package eligibility

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-workers/internal/models"
)

// ==========================
// Test Helpers
// ==========================

var testNow = time.Date(2025, 8, 23, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int          { return &v }
func int64Ptr(v int64) *int64    { return &v }
func timePtr(v time.Time) *time.Time { return &v }

func createTestOrganization() *models.Organization {
	bucket := models.Employees10To49
	revenue := models.Revenue1BTo5B
	return &models.Organization{
		ID:             "org-001",
		Name:           "테크노바",
		Type:           models.OrgTypeCompany,
		Status:         models.OrgStatusActive,
		IndustrySector: "제조업",
		Certifications: []string{"ISO 9001", "벤처기업확인"},
		EmployeeCount:  &bucket,
		RevenueRange:   &revenue,
		EstablishedAt:  timePtr(time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)),
		InvestmentHistory: []models.InvestmentEvent{
			{Round: "Series A", Amount: 600_000_000, Verified: true},
		},
	}
}

func createTestProgram() *models.FundingProgram {
	return &models.FundingProgram{
		ID:     "prog-001",
		Title:  "중소기업 기술혁신 지원사업",
		Status: models.ProgramStatusActive,
	}
}

// ==========================
// Tier Classification Tests
// ==========================

func TestEvaluate_TierClassification(t *testing.T) {
	tests := []struct {
		name          string
		setupOrg      func(*models.Organization)
		setupProg     func(*models.FundingProgram)
		expectedLevel models.EligibilityLevel
		expectReview  bool
	}{
		{
			name:          "no requirements and no preferences is conditional",
			setupOrg:      func(o *models.Organization) {},
			setupProg:     func(p *models.FundingProgram) {},
			expectedLevel: models.ConditionallyEligible,
		},
		{
			name: "prior grant win lifts to fully eligible",
			setupOrg: func(o *models.Organization) {
				o.PriorGrantWins = []string{"창업성장기술개발사업"}
			},
			setupProg:     func(p *models.FundingProgram) {},
			expectedLevel: models.FullyEligible,
		},
		{
			name: "industry award lifts to fully eligible",
			setupOrg: func(o *models.Organization) {
				o.IndustryAwards = []string{"중소벤처기업부 장관상"}
			},
			setupProg:     func(p *models.FundingProgram) {},
			expectedLevel: models.FullyEligible,
		},
		{
			name:     "preferred certification lifts to fully eligible",
			setupOrg: func(o *models.Organization) {},
			setupProg: func(p *models.FundingProgram) {
				p.PreferredCertifications = []string{"벤처기업 확인"}
			},
			expectedLevel: models.FullyEligible,
		},
		{
			name:     "missing required certification is ineligible without review",
			setupOrg: func(o *models.Organization) {},
			setupProg: func(p *models.FundingProgram) {
				p.RequiredCertifications = []string{"ISO 14001"}
			},
			expectedLevel: models.Ineligible,
		},
		{
			name: "hard failure wins over satisfied preferences",
			setupOrg: func(o *models.Organization) {
				o.PriorGrantWins = []string{"이전 과제"}
				o.IndustryAwards = []string{"수상"}
			},
			setupProg: func(p *models.FundingProgram) {
				p.RequiredMinEmployees = intPtr(100)
			},
			expectedLevel: models.Ineligible,
		},
		{
			name: "missing profile field required by program fails with review",
			setupOrg: func(o *models.Organization) {
				o.EmployeeCount = nil
			},
			setupProg: func(p *models.FundingProgram) {
				p.RequiredMinEmployees = intPtr(10)
			},
			expectedLevel: models.Ineligible,
			expectReview:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := createTestOrganization()
			prog := createTestProgram()
			tt.setupOrg(org)
			tt.setupProg(prog)

			det := Evaluate(org, prog, testNow)

			assert.Equal(t, tt.expectedLevel, det.Level)
			assert.Equal(t, tt.expectReview, det.NeedsManualReview)
		})
	}
}

func TestEvaluate_NilRecords(t *testing.T) {
	det := Evaluate(nil, createTestProgram(), testNow)
	assert.Equal(t, models.Ineligible, det.Level)
	assert.True(t, det.NeedsManualReview)
}

// ==========================
// Certification Requirement Tests
// ==========================

func TestEvaluate_RequiredCertifications(t *testing.T) {
	t.Run("spacing variants count as held", func(t *testing.T) {
		org := createTestOrganization()
		org.Certifications = []string{"ISO9001"}
		prog := createTestProgram()
		prog.RequiredCertifications = []string{"ISO 9001"}

		det := Evaluate(org, prog, testNow)

		assert.NotEqual(t, models.Ineligible, det.Level)
		require.Len(t, det.PassedRequirements, 1)
		assert.Contains(t, det.PassedRequirements[0], "ISO 9001")
	})

	t.Run("unregistered certification list needs manual review", func(t *testing.T) {
		org := createTestOrganization()
		org.Certifications = nil
		prog := createTestProgram()
		prog.RequiredCertifications = []string{"ISO 9001"}

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
		assert.True(t, det.NeedsManualReview)
		assert.NotEmpty(t, det.ReviewReasons)
	})

	t.Run("partially missing certifications name the gap", func(t *testing.T) {
		org := createTestOrganization()
		prog := createTestProgram()
		prog.RequiredCertifications = []string{"ISO 9001", "ISO 14001", "KC 인증"}

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
		assert.False(t, det.NeedsManualReview, "provable failure must not escalate to review")
		require.Len(t, det.FailedRequirements, 1)
		assert.Contains(t, det.FailedRequirements[0], "ISO 14001")
		assert.Contains(t, det.FailedRequirements[0], "KC 인증")
		assert.NotContains(t, det.FailedRequirements[0], "9001")
	})
}

// ==========================
// Investment Requirement Tests
// ==========================

func TestEvaluate_InvestmentRequirement(t *testing.T) {
	t.Run("nil history with required amount is ineligible with review", func(t *testing.T) {
		org := createTestOrganization()
		org.InvestmentHistory = nil
		prog := createTestProgram()
		prog.RequiredInvestmentAmount = int64Ptr(500_000_000)

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
		assert.True(t, det.NeedsManualReview)
	})

	t.Run("only verified events count toward the sum", func(t *testing.T) {
		org := createTestOrganization()
		org.InvestmentHistory = []models.InvestmentEvent{
			{Amount: 300_000_000, Verified: true},
			{Amount: 900_000_000, Verified: false},
		}
		prog := createTestProgram()
		prog.RequiredInvestmentAmount = int64Ptr(500_000_000)

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
		assert.False(t, det.NeedsManualReview, "a recorded but insufficient history is provable")
	})

	t.Run("sum across verified rounds satisfies the requirement", func(t *testing.T) {
		org := createTestOrganization()
		org.InvestmentHistory = []models.InvestmentEvent{
			{Amount: 300_000_000, Verified: true},
			{Amount: 250_000_000, Verified: true},
		}
		prog := createTestProgram()
		prog.RequiredInvestmentAmount = int64Ptr(500_000_000)

		det := Evaluate(org, prog, testNow)

		assert.NotEqual(t, models.Ineligible, det.Level)
	})

	t.Run("empty history is provably zero", func(t *testing.T) {
		org := createTestOrganization()
		org.InvestmentHistory = []models.InvestmentEvent{}
		prog := createTestProgram()
		prog.RequiredInvestmentAmount = int64Ptr(500_000_000)

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
		assert.False(t, det.NeedsManualReview)
	})
}

// ==========================
// Scale and Operating-Year Tests
// ==========================

func TestEvaluate_BucketMidpoints(t *testing.T) {
	tests := []struct {
		name          string
		setupOrg      func(*models.Organization)
		setupProg     func(*models.FundingProgram)
		expectedLevel models.EligibilityLevel
	}{
		{
			name:     "employee midpoint inside bounds passes",
			setupOrg: func(o *models.Organization) {},
			setupProg: func(p *models.FundingProgram) {
				// FROM_10_TO_49 midpoint 30
				p.RequiredMinEmployees = intPtr(10)
				p.RequiredMaxEmployees = intPtr(50)
			},
			expectedLevel: models.ConditionallyEligible,
		},
		{
			name:     "employee midpoint below minimum fails",
			setupOrg: func(o *models.Organization) {},
			setupProg: func(p *models.FundingProgram) {
				p.RequiredMinEmployees = intPtr(50)
			},
			expectedLevel: models.Ineligible,
		},
		{
			name:     "revenue midpoint below minimum fails",
			setupOrg: func(o *models.Organization) {},
			setupProg: func(p *models.FundingProgram) {
				// FROM_1B_TO_5B midpoint 3,000,000,000
				p.RequiredMinRevenue = int64Ptr(5_000_000_000)
			},
			expectedLevel: models.Ineligible,
		},
		{
			name:     "revenue midpoint inside bounds passes",
			setupOrg: func(o *models.Organization) {},
			setupProg: func(p *models.FundingProgram) {
				p.RequiredMinRevenue = int64Ptr(1_000_000_000)
				p.RequiredMaxRevenue = int64Ptr(10_000_000_000)
			},
			expectedLevel: models.ConditionallyEligible,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			org := createTestOrganization()
			prog := createTestProgram()
			tt.setupOrg(org)
			tt.setupProg(prog)

			det := Evaluate(org, prog, testNow)
			assert.Equal(t, tt.expectedLevel, det.Level)
		})
	}
}

func TestEvaluate_OperatingYears(t *testing.T) {
	t.Run("established 2015 satisfies a 7 year minimum in 2025", func(t *testing.T) {
		org := createTestOrganization()
		prog := createTestProgram()
		prog.RequiredOperatingYears = intPtr(7)

		det := Evaluate(org, prog, testNow)

		assert.NotEqual(t, models.Ineligible, det.Level)
		require.NotEmpty(t, det.PassedRequirements)
		assert.Contains(t, det.PassedRequirements[0], "10년")
	})

	t.Run("startup-only program rejects a 10 year old company", func(t *testing.T) {
		org := createTestOrganization()
		prog := createTestProgram()
		prog.MaxOperatingYears = intPtr(7)

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
	})

	t.Run("missing establishment date needs manual review", func(t *testing.T) {
		org := createTestOrganization()
		org.EstablishedAt = nil
		prog := createTestProgram()
		prog.RequiredOperatingYears = intPtr(3)

		det := Evaluate(org, prog, testNow)

		assert.Equal(t, models.Ineligible, det.Level)
		assert.True(t, det.NeedsManualReview)
	})
}

// ==========================
// Accumulation and Monotonicity Tests
// ==========================

func TestEvaluate_AccumulatesPassedAndFailed(t *testing.T) {
	org := createTestOrganization()
	prog := createTestProgram()
	prog.RequiredCertifications = []string{"ISO 9001"}
	prog.RequiredMinEmployees = intPtr(100)
	prog.RequiredOperatingYears = intPtr(5)

	det := Evaluate(org, prog, testNow)

	assert.Equal(t, models.Ineligible, det.Level)
	assert.Len(t, det.PassedRequirements, 2, "certification and operating years passed")
	assert.Len(t, det.FailedRequirements, 1, "employee bound failed")
}

func TestEvaluate_SoftRequirementMonotonicity(t *testing.T) {
	org := createTestOrganization()
	prog := createTestProgram()
	prog.RequiredMinEmployees = intPtr(10)

	before := Evaluate(org, prog, testNow)
	require.Equal(t, models.ConditionallyEligible, before.Level)

	org.IndustryAwards = []string{"혁신상"}
	after := Evaluate(org, prog, testNow)
	assert.Equal(t, models.FullyEligible, after.Level)
}
