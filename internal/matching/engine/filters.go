// internal/matching/engine/filters.go
package engine

import (
	"strings"
	"time"

	"grantmatch-workers/internal/matching/eligibility"
	"grantmatch-workers/internal/matching/taxonomy"
	"grantmatch-workers/internal/models"
)

// medicalTitleMarkers flags programs restricted to medical research
// institutions. Upstream extraction lists COMPANY among their target
// types even though companies cannot apply, so the title text is the
// reliable signal.
var medicalTitleMarkers = []string{"병원", "의료기관", "요양기관", "보건의료기관"}

// passesFilters runs the hard pre-filters in their fixed order, short-
// circuiting on the first rejection. The eligibility detail of a
// surviving pair is returned so the caller does not evaluate it twice.
//
// Historical mode (includeExpired) admits EXPIRED programs, waives the
// deadline check, bypasses the target-type and industry filters and
// widens the TRL window. Consolidated-announcement, business-structure,
// medical-gate and eligibility checks stay strict in both modes.
func (e *Engine) passesFilters(org *models.Organization, prog *models.FundingProgram, now time.Time, historical bool) (*models.EligibilityDetail, bool) {
	// 1. status and deadline
	if historical {
		if prog.Status != models.ProgramStatusActive && prog.Status != models.ProgramStatusExpired {
			return nil, false
		}
	} else if prog.Status != models.ProgramStatusActive || prog.DeadlinePassed(now) {
		return nil, false
	}

	// 2. consolidated announcements carry no actionable detail
	if prog.IsConsolidatedAnnouncement() {
		return nil, false
	}

	// 3. target organization types
	if !historical && len(prog.TargetTypes) > 0 && !containsOrgType(prog.TargetTypes, org.Type) {
		return nil, false
	}

	// 4. business structure; a restriction never matches a profile
	// that left the structure blank
	if len(prog.AllowedBusinessStructures) > 0 {
		if org.BusinessStructure == nil || !containsStructure(prog.AllowedBusinessStructures, *org.BusinessStructure) {
			return nil, false
		}
	}

	// 5. hard TRL range, only when both sides state their numbers
	if t := org.MatchingTRL(); t != nil && prog.HasTRLRange() {
		lo, hi := *prog.MinTRL, *prog.MaxTRL
		if historical {
			lo -= e.cfg.HistoricalTRLSlack
			hi += e.cfg.HistoricalTRLSlack
			if lo < 1 {
				lo = 1
			}
			if hi > 9 {
				hi = 9
			}
		}
		if *t < lo || *t > hi {
			return nil, false
		}
	}

	// 6. medical-institution programs admit research institutes only
	if titleHasMedicalMarker(prog.Title) && org.Type != models.OrgTypeResearchInstitute {
		return nil, false
	}

	// 7. industry compatibility; an unresolved side rejects because
	// unknown compatibility is not assumed safe
	if !historical {
		orgMatch, orgOK := e.table.ResolveDetail(org.IndustrySector)
		progMatch, _, progOK := e.resolveProgramSector(prog)
		if !orgOK || !progOK {
			return nil, false
		}
		if e.table.Relevance(orgMatch.Sector, progMatch.Sector) < e.cfg.CompatibilityThreshold {
			return nil, false
		}
	}

	// 8. formal eligibility
	det := eligibility.Evaluate(org, prog, now)
	if det.Level == models.Ineligible {
		return nil, false
	}
	return &det, true
}

// resolveProgramSector resolves the program's sector from the most
// structured field available: category first, then each declared
// keyword, then the title. The second result reports whether the
// category itself resolved.
func (e *Engine) resolveProgramSector(prog *models.FundingProgram) (taxonomy.Match, bool, bool) {
	if m, ok := e.table.ResolveDetail(prog.Category); ok {
		return m, true, true
	}
	for _, kw := range prog.Keywords {
		if m, ok := e.table.ResolveDetail(kw); ok {
			return m, false, true
		}
	}
	if m, ok := e.table.ResolveDetail(prog.Title); ok {
		return m, false, true
	}
	return taxonomy.Match{}, false, false
}

func titleHasMedicalMarker(title string) bool {
	n := taxonomy.Normalize(title)
	if n == "" {
		return false
	}
	for _, marker := range medicalTitleMarkers {
		if strings.Contains(n, taxonomy.Normalize(marker)) {
			return true
		}
	}
	return false
}

func containsOrgType(types []models.OrgType, t models.OrgType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsStructure(structures []models.BusinessStructure, s models.BusinessStructure) bool {
	for _, candidate := range structures {
		if candidate == s {
			return true
		}
	}
	return false
}
