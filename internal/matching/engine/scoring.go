// internal/matching/engine/scoring.go
package engine

import (
	"math"
	"time"

	"grantmatch-workers/internal/matching/taxonomy"
	"grantmatch-workers/internal/models"
)

// scoreProgram computes the five sub-scores for a surviving pair. The
// total is their unweighted sum; each sub-score honors its own cap
// (30/20/20/15/15), so the total never exceeds 100.
func (e *Engine) scoreProgram(org *models.Organization, prog *models.FundingProgram, now time.Time) (models.ScoreBreakdown, []models.ReasonCode) {
	industryScore, industryReasons := e.scoreIndustry(org, prog)
	trlScore, trlReasons := scoreTRL(org, prog)
	typeScore, typeReason := scoreOrgType(org, prog)
	rndScore, rndReasons := scoreRnD(org)
	deadlineScore, deadlineReason := scoreDeadline(prog, now)

	breakdown := models.ScoreBreakdown{
		IndustryScore: industryScore,
		TRLScore:      trlScore,
		TypeScore:     typeScore,
		RnDScore:      rndScore,
		DeadlineScore: deadlineScore,
	}

	reasons := make([]models.ReasonCode, 0, len(industryReasons)+len(trlReasons)+len(rndReasons)+3)
	reasons = append(reasons, industryReasons...)
	reasons = append(reasons, trlReasons...)
	reasons = append(reasons, typeReason)
	reasons = append(reasons, rndReasons...)
	reasons = append(reasons, deadlineReason)
	if prog.BudgetAmount == nil {
		reasons = append(reasons, models.ReasonBudgetInfoMissing)
	}
	return breakdown, reasons
}

// scoreIndustry covers the industry/keyword factor (0-30):
// exact-category bonus, keyword overlap from the highest-priority
// source, sector agreement, cross-industry relevance and the
// research-institute technology-domain bonus.
func (e *Engine) scoreIndustry(org *models.Organization, prog *models.FundingProgram) (int, []models.ReasonCode) {
	score := 0
	var reasons []models.ReasonCode

	orgSector := taxonomy.Normalize(org.IndustrySector)
	progCategory := taxonomy.Normalize(prog.Category)
	exactCategory := orgSector != "" && orgSector == progCategory
	if exactCategory {
		score += 10
		reasons = append(reasons, models.ReasonExactCategoryMatch)
	}

	// program keyword pool: declared keywords plus the category string
	pool := taxonomy.NormalizeAll(append(append([]string{}, prog.Keywords...), prog.Category))

	orgMatch, orgResolved := e.table.ResolveDetail(org.IndustrySector)

	// Keyword overlap is scored separately per source and only the
	// highest-priority source that scores contributes, so the reason
	// code never claims a technology match off a generic sector term.
	var sectorKeywords []string
	if orgResolved {
		sectorKeywords = e.table.SectorKeywords(orgMatch.Sector)
	}
	sources := []struct {
		keywords []string
		code     models.ReasonCode
	}{
		{taxonomy.NormalizeAll(org.KeyTechnologies), models.ReasonTechnologyKeywordMatch},
		{taxonomy.NormalizeAll(org.ResearchFocusAreas), models.ReasonResearchFocusMatch},
		{sectorKeywords, models.ReasonSectorKeywordMatch},
	}
	for _, src := range sources {
		if pts := keywordOverlap(src.keywords, pool); pts > 0 {
			score += pts
			reasons = append(reasons, src.code)
			break
		}
	}

	progMatch, fromCategory, progResolved := e.resolveProgramSector(prog)
	if orgResolved && progResolved {
		if orgMatch.Sector == progMatch.Sector {
			if orgMatch.Primary && progMatch.Primary && fromCategory {
				score += 10
				reasons = append(reasons, models.ReasonSectorMatch)
			} else {
				score += 6
				reasons = append(reasons, models.ReasonSubSectorMatch)
			}
		} else if !exactCategory {
			// skipped after an exact-category bonus: "exact match but
			// different industry" would contradict itself
			rel := e.table.Relevance(orgMatch.Sector, progMatch.Sector)
			switch {
			case rel >= 0.7:
				score += 5
				reasons = append(reasons, models.ReasonCrossIndustryRelevance)
			case rel >= e.cfg.CrossIndustryThreshold:
				score += 3
				reasons = append(reasons, models.ReasonCrossIndustryRelevance)
			}
		}
	}

	if org.Type == models.OrgTypeResearchInstitute {
		switch overlaps := countOverlaps(taxonomy.NormalizeAll(org.KeyTechnologies), pool); {
		case overlaps >= 2:
			score += 5
			reasons = append(reasons, models.ReasonTechDomainMatch)
		case overlaps == 1:
			score += 3
			reasons = append(reasons, models.ReasonTechDomainMatch)
		}
	}

	if score > 30 {
		score = 30
	}
	return score, reasons
}

// keywordOverlap scores one keyword source against the program pool:
// 8 per exact (normalized equality) match, 4 per containment-only
// match, capped at 15.
func keywordOverlap(keywords, pool []string) int {
	pts := 0
	for _, kw := range keywords {
		best := 0
		for _, pk := range pool {
			if kw == pk {
				best = 8
				break
			}
			if best < 4 && taxonomy.ContainsEither(kw, pk) {
				best = 4
			}
		}
		pts += best
		if pts >= 15 {
			return 15
		}
	}
	return pts
}

func countOverlaps(keywords, pool []string) int {
	n := 0
	for _, kw := range keywords {
		for _, pk := range pool {
			if taxonomy.ContainsEither(kw, pk) {
				n++
				break
			}
		}
	}
	return n
}

// scoreTRL covers TRL compatibility (0-20). Credit is graduated rather
// than binary: full inside the stated range, tapering at distance 1-3
// outside it, zero beyond. Inferred or missing program ranges apply a
// trust multiplier because derived data earns less credit than stated
// data.
func scoreTRL(org *models.Organization, prog *models.FundingProgram) (int, []models.ReasonCode) {
	t := org.MatchingTRL()
	if t == nil {
		return 10, []models.ReasonCode{models.ReasonTRLDataMissing}
	}
	if prog.MinTRL == nil && prog.MaxTRL == nil {
		// no stated range: in-range credit at the missing-data trust
		// level, 20 * 0.7 = 14
		return 14, []models.ReasonCode{models.ReasonTRLDataMissing}
	}

	lo, hi := 1, 9
	if prog.MinTRL != nil {
		lo = *prog.MinTRL
	}
	if prog.MaxTRL != nil {
		hi = *prog.MaxTRL
	}
	distance := 0
	if *t < lo {
		distance = lo - *t
	} else if *t > hi {
		distance = *t - hi
	}

	var raw int
	var code models.ReasonCode
	switch distance {
	case 0:
		raw, code = 20, models.ReasonTRLRangeFit
	case 1:
		raw, code = 14, models.ReasonTRLNearRange
	case 2:
		raw, code = 10, models.ReasonTRLFarFromRange
	case 3:
		raw, code = 6, models.ReasonTRLFarFromRange
	default:
		raw, code = 0, models.ReasonTRLFarFromRange
	}

	codes := []models.ReasonCode{code}
	if prog.TRLInferred {
		raw = int(math.Round(float64(raw) * 0.85))
		codes = append(codes, models.ReasonTRLInferred)
	}
	return raw, codes
}

// scoreOrgType covers organization-type fit (0-20).
func scoreOrgType(org *models.Organization, prog *models.FundingProgram) (int, models.ReasonCode) {
	if len(prog.TargetTypes) == 0 {
		return 10, models.ReasonTargetTypeOpen
	}
	if containsOrgType(prog.TargetTypes, org.Type) {
		return 20, models.ReasonTargetTypeMatch
	}
	// reachable in historical mode, where the type pre-filter lifts
	return 0, models.ReasonTargetTypeMismatch
}

// scoreRnD covers R&D capability (0-15): 10 for recorded experience
// plus a graduated collaboration bonus of 2/4/5.
func scoreRnD(org *models.Organization) (int, []models.ReasonCode) {
	score := 0
	var reasons []models.ReasonCode
	if org.RnDExperience {
		score += 10
		reasons = append(reasons, models.ReasonRnDExperience)
	}
	switch {
	case org.CollaborationCount >= 4:
		score += 5
	case org.CollaborationCount >= 2:
		score += 4
	case org.CollaborationCount == 1:
		score += 2
	}
	if org.CollaborationCount >= 1 {
		reasons = append(reasons, models.ReasonCollaborationHistory)
	}
	return score, reasons
}

// scoreDeadline covers deadline proximity (0-15). A missing deadline
// degrades to the distant-deadline credit rather than failing.
func scoreDeadline(prog *models.FundingProgram, now time.Time) (int, models.ReasonCode) {
	if prog.Deadline == nil {
		return 5, models.ReasonDeadlineInfoMissing
	}
	days := prog.Deadline.Sub(now).Hours() / 24
	switch {
	case days < 0:
		return 0, models.ReasonDeadlinePassed
	case days <= 7:
		return 15, models.ReasonDeadlineUrgent
	case days <= 30:
		return 12, models.ReasonDeadlineSoon
	case days <= 60:
		return 8, models.ReasonDeadlineComfortable
	default:
		return 5, models.ReasonDeadlineDistant
	}
}
