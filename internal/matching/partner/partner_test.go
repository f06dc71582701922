// internal/matching/partner/partner_test.go
package partner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grantmatch-workers/internal/models"
)

// ==========================
// Test Helpers
// ==========================

func intPtr(v int) *int { return &v }

func newTestScorer() *Scorer {
	return New(nil, DefaultConfig())
}

func createTestSeeker() *models.Organization {
	scale := models.Employees10To49
	return &models.Organization{
		ID:                      "org-seeker",
		Name:                    "한빛정밀",
		Type:                    models.OrgTypeCompany,
		Status:                  models.OrgStatusActive,
		ProfileCompleted:        true,
		IndustrySector:          "제조업",
		TargetPartnerTRL:        intPtr(3),
		DesiredConsortiumFields: []string{"로봇"},
		DesiredTechnologies:     []string{"협동로봇"},
		TargetOrgScale:          &scale,
	}
}

func createTestCandidate() models.Organization {
	employees := models.Employees10To49
	return models.Organization{
		ID:                       "org-lab",
		Name:                     "로봇융합연구원",
		Type:                     models.OrgTypeResearchInstitute,
		Status:                   models.OrgStatusActive,
		ProfileCompleted:         true,
		IndustrySector:           "로봇",
		TechnologyReadinessLevel: intPtr(3),
		ResearchFocusAreas:       []string{"로봇 제어"},
		KeyTechnologies:          []string{"협동로봇"},
		EmployeeCount:            &employees,
		RnDExperience:            true,
		CollaborationCount:       2,
	}
}

// ==========================
// Complementary TRL Tests
// ==========================

func TestScoreComplementaryTRL(t *testing.T) {
	tests := []struct {
		name              string
		targetPartnerTRL  *int
		candidateTRL      *int
		candidateTarget   *int
		expectedScore     int
		expectedReason    models.ReasonCode
		expectNoReason    bool
	}{
		{
			name:             "early-stage seeker with low TRL researcher scores maximum",
			targetPartnerTRL: intPtr(3),
			candidateTRL:     intPtr(3),
			expectedScore:    40,
			expectedReason:   models.ReasonComplementaryTRLFit,
		},
		{
			name:             "commercialization seeker with high-reach partner scores maximum",
			targetPartnerTRL: intPtr(8),
			candidateTRL:     intPtr(6),
			candidateTarget:  intPtr(8),
			expectedScore:    40,
			expectedReason:   models.ReasonComplementaryTRLFit,
		},
		{
			name:             "early-stage seeker with commercialization partner mismatches",
			targetPartnerTRL: intPtr(3),
			candidateTRL:     intPtr(8),
			expectedScore:    12,
			expectedReason:   models.ReasonTRLGapMismatch,
		},
		{
			name:             "commercialization seeker with low-reach lab mismatches",
			targetPartnerTRL: intPtr(8),
			candidateTRL:     intPtr(3),
			expectedScore:    12,
			expectedReason:   models.ReasonTRLGapMismatch,
		},
		{
			name:             "mid-stage target close to candidate fits",
			targetPartnerTRL: intPtr(5),
			candidateTRL:     intPtr(6),
			expectedScore:    28,
			expectedReason:   models.ReasonComplementaryTRLFit,
		},
		{
			name:             "mid-stage target two away earns partial credit",
			targetPartnerTRL: intPtr(5),
			candidateTRL:     intPtr(7),
			expectedScore:    22,
			expectNoReason:   true,
		},
		{
			name:           "no partner target is neutral",
			candidateTRL:   intPtr(5),
			expectedScore:  20,
			expectNoReason: true,
		},
		{
			name:             "candidate without TRL data earns reduced neutral credit",
			targetPartnerTRL: intPtr(3),
			candidateTRL:     nil,
			expectedScore:    15,
			expectedReason:   models.ReasonTRLDataMissing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeker := createTestSeeker()
			seeker.TargetPartnerTRL = tt.targetPartnerTRL

			candidate := createTestCandidate()
			candidate.TechnologyReadinessLevel = tt.candidateTRL
			candidate.TargetResearchTRL = tt.candidateTarget

			score, reasons := scoreComplementaryTRL(seeker, &candidate)

			assert.Equal(t, tt.expectedScore, score)
			if tt.expectNoReason {
				assert.Empty(t, reasons)
			} else {
				assert.Contains(t, reasons, tt.expectedReason)
			}
		})
	}
}

func TestScoreComplementaryTRL_ExpectedTRLLevelFallback(t *testing.T) {
	seeker := createTestSeeker()
	seeker.TargetPartnerTRL = nil
	seeker.ExpectedTRLLevel = intPtr(3)

	candidate := createTestCandidate()
	score, reasons := scoreComplementaryTRL(seeker, &candidate)

	assert.Equal(t, 40, score, "expectedTrlLevel stands in when targetPartnerTrl is absent")
	assert.Contains(t, reasons, models.ReasonComplementaryTRLFit)
}

// ==========================
// Alignment and Scale Tests
// ==========================

func TestScoreAlignment(t *testing.T) {
	s := newTestScorer()

	t.Run("declared field and technology overlap", func(t *testing.T) {
		seeker := createTestSeeker()
		candidate := createTestCandidate()

		score, reasons := s.scoreAlignment(seeker, &candidate)

		// 12 single field overlap + 8 single technology overlap = 20
		assert.Equal(t, 20, score)
		assert.Contains(t, reasons, models.ReasonDesiredFieldMatch)
		assert.Contains(t, reasons, models.ReasonDesiredTechnologyMatch)
	})

	t.Run("same sector fallback when nothing declared", func(t *testing.T) {
		seeker := createTestSeeker()
		seeker.DesiredConsortiumFields = nil
		seeker.DesiredTechnologies = nil

		candidate := createTestCandidate()
		candidate.IndustrySector = "스마트공장"
		candidate.ResearchFocusAreas = nil
		candidate.KeyTechnologies = nil

		score, reasons := s.scoreAlignment(seeker, &candidate)

		assert.Equal(t, 15, score)
		assert.Contains(t, reasons, models.ReasonSectorMatch)
	})

	t.Run("related sector fallback earns less", func(t *testing.T) {
		seeker := createTestSeeker()
		seeker.DesiredConsortiumFields = nil
		seeker.DesiredTechnologies = nil

		candidate := createTestCandidate()
		candidate.IndustrySector = "소프트웨어"
		candidate.ResearchFocusAreas = nil
		candidate.KeyTechnologies = nil

		score, reasons := s.scoreAlignment(seeker, &candidate)

		// manufacturing to ICT relevance 0.7 clears the 0.5 fallback bar
		assert.Equal(t, 10, score)
		assert.Contains(t, reasons, models.ReasonCrossIndustryRelevance)
	})

	t.Run("unresolvable sectors earn nothing", func(t *testing.T) {
		seeker := createTestSeeker()
		seeker.DesiredConsortiumFields = nil
		seeker.DesiredTechnologies = nil
		seeker.IndustrySector = "일반 서비스"

		candidate := createTestCandidate()

		score, reasons := s.scoreAlignment(seeker, &candidate)
		assert.Equal(t, 0, score)
		assert.Empty(t, reasons)
	})
}

func TestScoreScale(t *testing.T) {
	t.Run("exact bucket match", func(t *testing.T) {
		seeker := createTestSeeker()
		candidate := createTestCandidate()

		score, reasons := scoreScale(seeker, &candidate)

		// 8 exact employee bucket + 3 neutral revenue = 11
		assert.Equal(t, 11, score)
		assert.Contains(t, reasons, models.ReasonOrgScaleCompatible)
	})

	t.Run("adjacent bucket keeps most credit", func(t *testing.T) {
		seeker := createTestSeeker()
		candidate := createTestCandidate()
		employees := models.Employees50To99
		candidate.EmployeeCount = &employees

		score, reasons := scoreScale(seeker, &candidate)

		// 6 adjacent employee bucket + 3 neutral revenue = 9
		assert.Equal(t, 9, score)
		assert.Contains(t, reasons, models.ReasonOrgScaleCompatible)
	})

	t.Run("distant bucket flags the gap", func(t *testing.T) {
		seeker := createTestSeeker()
		candidate := createTestCandidate()
		employees := models.EmployeesOver300
		candidate.EmployeeCount = &employees

		score, reasons := scoreScale(seeker, &candidate)

		// 2 distant employee bucket + 3 neutral revenue = 5
		assert.Equal(t, 5, score)
		assert.Contains(t, reasons, models.ReasonOrgScaleFar)
		assert.NotContains(t, reasons, models.ReasonOrgScaleCompatible)
	})

	t.Run("no scale preference is neutral", func(t *testing.T) {
		seeker := createTestSeeker()
		seeker.TargetOrgScale = nil
		candidate := createTestCandidate()

		score, reasons := scoreScale(seeker, &candidate)

		// 4 neutral employee + 3 neutral revenue = 7
		assert.Equal(t, 7, score)
		assert.Empty(t, reasons)
	})

	t.Run("revenue preference with matching bucket", func(t *testing.T) {
		seeker := createTestSeeker()
		revenue := models.Revenue1BTo5B
		seeker.TargetOrgRevenue = &revenue

		candidate := createTestCandidate()
		candidateRevenue := models.Revenue1BTo5B
		candidate.RevenueRange = &candidateRevenue

		score, _ := scoreScale(seeker, &candidate)

		// 8 exact employee + 7 exact revenue = 15, the factor cap
		assert.Equal(t, 15, score)
	})
}

// ==========================
// Track Record Tests
// ==========================

func TestScoreTrackRecord_CandidateOnly(t *testing.T) {
	candidate := createTestCandidate()

	score, reasons := scoreTrackRecord(&candidate)

	// 10 experience + 4 for two collaborations = 14
	assert.Equal(t, 14, score)
	assert.Contains(t, reasons, models.ReasonPartnerRnDTrackRecord)
	assert.Contains(t, reasons, models.ReasonCollaborationHistory)

	blank := createTestCandidate()
	blank.RnDExperience = false
	blank.CollaborationCount = 0
	score, reasons = scoreTrackRecord(&blank)
	assert.Equal(t, 0, score)
	assert.Empty(t, reasons)
}

// ==========================
// Ranking Tests
// ==========================

func TestMatchPartners_RanksAndTruncates(t *testing.T) {
	s := newTestScorer()
	seeker := createTestSeeker()

	best := createTestCandidate() // 40 + 20 + 11 + 14 = 85

	middle := createTestCandidate() // 40 + 12 + 11 + 10 = 73
	middle.ID = "org-mid"
	middle.TechnologyReadinessLevel = intPtr(4)
	middle.ResearchFocusAreas = []string{"로봇"}
	middle.KeyTechnologies = nil
	middle.CollaborationCount = 0

	weak := createTestCandidate() // 12 + 10 + 5 + 0 = 27
	weak.ID = "org-weak"
	weak.Type = models.OrgTypeCompany
	weak.IndustrySector = "소프트웨어"
	weak.TechnologyReadinessLevel = intPtr(8)
	weak.ResearchFocusAreas = nil
	weak.KeyTechnologies = nil
	weak.RnDExperience = false
	weak.CollaborationCount = 0
	bigTeam := models.EmployeesOver300
	weak.EmployeeCount = &bigTeam

	candidates := []models.Organization{weak, middle, best}

	t.Run("default minimum score drops the weak pairing", func(t *testing.T) {
		results := s.MatchPartners(seeker, candidates, Options{})

		require.Len(t, results, 2)
		assert.Equal(t, "org-lab", results[0].OrganizationID)
		assert.Equal(t, 85, results[0].Score)
		assert.Equal(t, "org-mid", results[1].OrganizationID)
		assert.Equal(t, 73, results[1].Score)
	})

	t.Run("lowered minimum score keeps it", func(t *testing.T) {
		results := s.MatchPartners(seeker, candidates, Options{MinimumScore: 20})

		require.Len(t, results, 3)
		assert.Equal(t, "org-weak", results[2].OrganizationID)
		assert.Equal(t, 27, results[2].Score)
	})

	t.Run("limit truncates after ranking", func(t *testing.T) {
		results := s.MatchPartners(seeker, candidates, Options{MinimumScore: 20, Limit: 1})

		require.Len(t, results, 1)
		assert.Equal(t, "org-lab", results[0].OrganizationID)
	})
}

func TestMatchPartners_Exclusions(t *testing.T) {
	s := newTestScorer()
	seeker := createTestSeeker()

	inactive := createTestCandidate()
	inactive.ID = "org-inactive"
	inactive.Status = models.OrgStatusInactive

	incomplete := createTestCandidate()
	incomplete.ID = "org-incomplete"
	incomplete.ProfileCompleted = false

	self := createTestCandidate()
	self.ID = seeker.ID

	results := s.MatchPartners(seeker, []models.Organization{inactive, incomplete, self}, Options{MinimumScore: 1})
	assert.Empty(t, results, "inactive, incomplete and self candidates are excluded outright")
}

func TestMatchPartners_EmptyInputs(t *testing.T) {
	s := newTestScorer()

	results := s.MatchPartners(nil, []models.Organization{createTestCandidate()}, Options{})
	require.NotNil(t, results)
	assert.Empty(t, results)

	results = s.MatchPartners(createTestSeeker(), nil, Options{})
	require.NotNil(t, results)
	assert.Empty(t, results)
}

// ==========================
// Summary and Breakdown Tests
// ==========================

func TestScorePair_BreakdownAndSummary(t *testing.T) {
	s := newTestScorer()
	seeker := createTestSeeker()
	candidate := createTestCandidate()

	match := s.ScorePair(seeker, &candidate)

	require.NotNil(t, match)
	assert.Equal(t, match.Breakdown.Total(), match.Score)
	assert.LessOrEqual(t, match.Breakdown.TRLFitScore, 40)
	assert.LessOrEqual(t, match.Breakdown.AlignmentScore, 30)
	assert.LessOrEqual(t, match.Breakdown.ScaleScore, 15)
	assert.LessOrEqual(t, match.Breakdown.TrackRecordScore, 15)

	assert.Equal(t, "기술성숙도 상호보완성이 높습니다, 희망 협력 분야가 일치합니다", match.Summary)

	assert.Nil(t, s.ScorePair(nil, &candidate))
	assert.Nil(t, s.ScorePair(seeker, nil))
}
