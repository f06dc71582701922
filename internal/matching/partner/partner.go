// internal/matching/partner/partner.go

// Package partner scores organization-to-organization consortium fit.
// Where program matching rewards TRL overlap, partner matching rewards
// complementary TRL gaps: a seeker wanting early-stage innovation pairs
// best with a low-TRL researcher, a seeker needing commercialization
// pairs best with a partner that reaches high TRL.
package partner

import (
	"sort"
	"strings"

	"grantmatch-workers/internal/matching/taxonomy"
	"grantmatch-workers/internal/models"
)

// Config carries the tuned constants of the partner scorer.
type Config struct {
	// DefaultLimit bounds the shortlist when the caller does not.
	DefaultLimit int
	// MinimumScore drops weak pairings after scoring.
	MinimumScore int
	// FallbackRelevance is the sector relevance that still earns
	// alignment credit when no declared field or technology overlaps.
	FallbackRelevance float64
}

// DefaultConfig returns the standard tuning.
func DefaultConfig() Config {
	return Config{
		DefaultLimit:      5,
		MinimumScore:      40,
		FallbackRelevance: 0.5,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.DefaultLimit <= 0 {
		c.DefaultLimit = def.DefaultLimit
	}
	if c.MinimumScore <= 0 {
		c.MinimumScore = def.MinimumScore
	}
	if c.FallbackRelevance <= 0 {
		c.FallbackRelevance = def.FallbackRelevance
	}
	return c
}

// Options tunes a single matching call. Non-positive fields select the
// configured defaults.
type Options struct {
	Limit        int
	MinimumScore int
}

// Scorer ranks candidate partner organizations for a seeker. Immutable
// after construction and safe for concurrent use.
type Scorer struct {
	table *taxonomy.Table
	cfg   Config
}

// New builds a scorer over the given taxonomy table. A nil table
// selects the default taxonomy.
func New(table *taxonomy.Table, cfg Config) *Scorer {
	if table == nil {
		table = taxonomy.Default()
	}
	return &Scorer{table: table, cfg: cfg.withDefaults()}
}

// MatchPartners ranks the candidates for one seeker. Inactive or
// profile-incomplete candidates and the seeker itself are excluded
// outright. A nil seeker or empty candidate list yields an empty,
// non-nil slice.
func (s *Scorer) MatchPartners(seeker *models.Organization, candidates []models.Organization, opts Options) []models.PartnerMatch {
	results := []models.PartnerMatch{}
	if seeker == nil || len(candidates) == 0 {
		return results
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	minScore := opts.MinimumScore
	if minScore <= 0 {
		minScore = s.cfg.MinimumScore
	}

	for i := range candidates {
		candidate := &candidates[i]
		if candidate.Status != models.OrgStatusActive || !candidate.ProfileCompleted {
			continue
		}
		if candidate.ID == seeker.ID {
			continue
		}
		match := s.ScorePair(seeker, candidate)
		if match == nil || match.Score < minScore {
			continue
		}
		results = append(results, *match)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// ScorePair computes the compatibility record for a single pair without
// the exclusion and shortlist rules of MatchPartners.
func (s *Scorer) ScorePair(seeker, candidate *models.Organization) *models.PartnerMatch {
	if seeker == nil || candidate == nil {
		return nil
	}

	trlScore, trlReasons := scoreComplementaryTRL(seeker, candidate)
	alignScore, alignReasons := s.scoreAlignment(seeker, candidate)
	scaleScore, scaleReasons := scoreScale(seeker, candidate)
	trackScore, trackReasons := scoreTrackRecord(candidate)

	breakdown := models.PartnerBreakdown{
		TRLFitScore:      trlScore,
		AlignmentScore:   alignScore,
		ScaleScore:       scaleScore,
		TrackRecordScore: trackScore,
	}

	reasons := make([]models.ReasonCode, 0, len(trlReasons)+len(alignReasons)+len(scaleReasons)+len(trackReasons))
	reasons = append(reasons, trlReasons...)
	reasons = append(reasons, alignReasons...)
	reasons = append(reasons, scaleReasons...)
	reasons = append(reasons, trackReasons...)

	return &models.PartnerMatch{
		OrganizationID: candidate.ID,
		Score:          breakdown.Total(),
		Breakdown:      breakdown,
		Reasons:        reasons,
		Summary:        summarize(reasons),
	}
}

// scoreComplementaryTRL covers the complementary-TRL factor (0-40).
// The seeker's partner-target TRL states where the partner should
// operate; credit falls off with the distance from it.
func scoreComplementaryTRL(seeker, candidate *models.Organization) (int, []models.ReasonCode) {
	target := seeker.PartnerTargetTRL()
	if target == nil {
		return 20, nil
	}
	current := candidate.TechnologyReadinessLevel
	if current == nil {
		return 15, []models.ReasonCode{models.ReasonTRLDataMissing}
	}

	// the candidate's reach counts for commercialization seekers: a
	// lab currently at TRL 6 targeting TRL 8 can still carry a product
	// to market
	reach := *current
	if candidate.TargetResearchTRL != nil && *candidate.TargetResearchTRL > reach {
		reach = *candidate.TargetResearchTRL
	}

	switch {
	case *target <= 4:
		switch {
		case *current <= 4:
			return 40, []models.ReasonCode{models.ReasonComplementaryTRLFit}
		case *current <= 6:
			return 22, nil
		default:
			return 12, []models.ReasonCode{models.ReasonTRLGapMismatch}
		}
	case *target >= 7:
		switch {
		case reach >= 7:
			return 40, []models.ReasonCode{models.ReasonComplementaryTRLFit}
		case reach >= 5:
			return 22, nil
		default:
			return 12, []models.ReasonCode{models.ReasonTRLGapMismatch}
		}
	default: // mid-stage target
		gap := *current - *target
		if gap < 0 {
			gap = -gap
		}
		switch {
		case gap <= 1:
			return 28, []models.ReasonCode{models.ReasonComplementaryTRLFit}
		case gap == 2:
			return 22, nil
		default:
			return 12, []models.ReasonCode{models.ReasonTRLGapMismatch}
		}
	}
}

// scoreAlignment covers industry and technology alignment (0-30):
// declared desired-field and desired-technology overlap first, sector
// relevance as the fallback when nothing was declared or nothing
// overlapped.
func (s *Scorer) scoreAlignment(seeker, candidate *models.Organization) (int, []models.ReasonCode) {
	score := 0
	var reasons []models.ReasonCode

	candidateFields := taxonomy.NormalizeAll(append(append([]string{}, candidate.ResearchFocusAreas...), candidate.IndustrySector))
	switch n := overlapCount(taxonomy.NormalizeAll(seeker.DesiredConsortiumFields), candidateFields); {
	case n >= 2:
		score += 18
		reasons = append(reasons, models.ReasonDesiredFieldMatch)
	case n == 1:
		score += 12
		reasons = append(reasons, models.ReasonDesiredFieldMatch)
	}

	switch n := overlapCount(taxonomy.NormalizeAll(seeker.DesiredTechnologies), taxonomy.NormalizeAll(candidate.KeyTechnologies)); {
	case n >= 2:
		score += 12
		reasons = append(reasons, models.ReasonDesiredTechnologyMatch)
	case n == 1:
		score += 8
		reasons = append(reasons, models.ReasonDesiredTechnologyMatch)
	}

	if score == 0 {
		seekerMatch, seekerOK := s.table.Resolve(seeker.IndustrySector)
		candidateMatch, candidateOK := s.table.Resolve(candidate.IndustrySector)
		if seekerOK && candidateOK {
			if seekerMatch == candidateMatch {
				score = 15
				reasons = append(reasons, models.ReasonSectorMatch)
			} else if s.table.Relevance(seekerMatch, candidateMatch) >= s.cfg.FallbackRelevance {
				score = 10
				reasons = append(reasons, models.ReasonCrossIndustryRelevance)
			}
		}
	}

	if score > 30 {
		score = 30
	}
	return score, reasons
}

// scoreScale covers organization-scale compatibility (0-15) with
// adjacent-bucket tolerance on the employee and revenue orderings.
func scoreScale(seeker, candidate *models.Organization) (int, []models.ReasonCode) {
	score := 0
	nearMatch := false
	farMatch := false

	// employee part, up to 8
	switch {
	case seeker.TargetOrgScale == nil:
		score += 4
	case candidate.EmployeeCount == nil || !candidate.EmployeeCount.Valid():
		score += 2
	default:
		switch dist := bucketDistance(seeker.TargetOrgScale.Index(), candidate.EmployeeCount.Index()); {
		case dist == 0:
			score += 8
			nearMatch = true
		case dist == 1:
			score += 6
			nearMatch = true
		default:
			score += 2
			farMatch = true
		}
	}

	// revenue part, up to 7
	switch {
	case seeker.TargetOrgRevenue == nil:
		score += 3
	case candidate.RevenueRange == nil || !candidate.RevenueRange.Valid():
		score += 1
	default:
		switch dist := bucketDistance(seeker.TargetOrgRevenue.Index(), candidate.RevenueRange.Index()); {
		case dist == 0:
			score += 7
			nearMatch = true
		case dist == 1:
			score += 5
			nearMatch = true
		default:
			score += 2
			farMatch = true
		}
	}

	var reasons []models.ReasonCode
	switch {
	case farMatch:
		reasons = append(reasons, models.ReasonOrgScaleFar)
	case nearMatch:
		reasons = append(reasons, models.ReasonOrgScaleCompatible)
	}
	return score, reasons
}

// scoreTrackRecord covers the candidate's R&D history (0-15). Only the
// candidate's record counts; the seeker is vouching for itself
// elsewhere.
func scoreTrackRecord(candidate *models.Organization) (int, []models.ReasonCode) {
	score := 0
	var reasons []models.ReasonCode
	if candidate.RnDExperience {
		score += 10
		reasons = append(reasons, models.ReasonPartnerRnDTrackRecord)
	}
	switch {
	case candidate.CollaborationCount >= 4:
		score += 5
	case candidate.CollaborationCount >= 2:
		score += 4
	case candidate.CollaborationCount == 1:
		score += 2
	}
	if candidate.CollaborationCount >= 1 {
		reasons = append(reasons, models.ReasonCollaborationHistory)
	}
	return score, reasons
}

func overlapCount(a, b []string) int {
	n := 0
	for _, x := range a {
		for _, y := range b {
			if taxonomy.ContainsEither(x, y) {
				n++
				break
			}
		}
	}
	return n
}

func bucketDistance(a, b int) int {
	if a < 0 || b < 0 {
		return 0
	}
	if a > b {
		return a - b
	}
	return b - a
}

// summaryPhrases maps reason codes to the short phrases a shortlist
// row shows. Codes without a phrase contribute nothing.
var summaryPhrases = map[models.ReasonCode]string{
	models.ReasonComplementaryTRLFit:    "기술성숙도 상호보완성이 높습니다",
	models.ReasonDesiredFieldMatch:      "희망 협력 분야가 일치합니다",
	models.ReasonDesiredTechnologyMatch: "희망 기술 분야가 일치합니다",
	models.ReasonSectorMatch:            "동일 산업 분야에서 활동합니다",
	models.ReasonCrossIndustryRelevance: "연관 산업 분야에서 활동합니다",
	models.ReasonOrgScaleCompatible:     "기관 규모가 적합합니다",
	models.ReasonPartnerRnDTrackRecord:  "검증된 R&D 수행 실적을 보유하고 있습니다",
	models.ReasonCollaborationHistory:   "공동연구 수행 경험이 있습니다",
}

// summaryPriority orders codes by how informative they are in one
// line; the two best phrases form the summary.
var summaryPriority = []models.ReasonCode{
	models.ReasonComplementaryTRLFit,
	models.ReasonDesiredFieldMatch,
	models.ReasonDesiredTechnologyMatch,
	models.ReasonSectorMatch,
	models.ReasonOrgScaleCompatible,
	models.ReasonPartnerRnDTrackRecord,
	models.ReasonCrossIndustryRelevance,
	models.ReasonCollaborationHistory,
}

func summarize(reasons []models.ReasonCode) string {
	present := make(map[models.ReasonCode]bool, len(reasons))
	for _, r := range reasons {
		present[r] = true
	}
	var phrases []string
	for _, code := range summaryPriority {
		if present[code] {
			phrases = append(phrases, summaryPhrases[code])
			if len(phrases) == 2 {
				break
			}
		}
	}
	if len(phrases) == 0 {
		return "협력 가능성을 검토해볼 수 있는 기관입니다"
	}
	return strings.Join(phrases, ", ")
}
