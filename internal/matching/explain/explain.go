// internal/matching/explain/explain.go

// Package explain renders match results into Korean presentation text:
// a tiered summary line, per-reason sentences, data-quality warnings and
// next-step recommendations. Rendering is best effort; a reason code
// without a template is dropped, never an error, since the decision the
// code records was already made by the scorer.
package explain

import (
	"fmt"
	"time"

	"grantmatch-workers/internal/models"
)

// Generator renders explanations for scored program matches. Safe for
// concurrent use.
type Generator struct {
	now func() time.Time
}

func New() *Generator {
	return &Generator{now: time.Now}
}

// Generate builds the explanation for one scored match. The organization
// and program records parameterize the sentences; either may be nil, in
// which case neutral phrasing stands in. A nil score yields a minimal
// placeholder explanation.
func (g *Generator) Generate(score *models.MatchScore, org *models.Organization, prog *models.FundingProgram) models.Explanation {
	if score == nil {
		return models.Explanation{Summary: "매칭 정보를 확인할 수 없습니다."}
	}

	ctx := renderContext{org: org, prog: prog}
	out := models.Explanation{
		Summary: summaryLine(score.Score, ctx),
		Reasons: []string{},
	}

	// reasons arrive in priority order and may repeat; each code renders
	// once, on its first occurrence
	seen := make(map[models.ReasonCode]bool, len(score.Reasons))
	for _, code := range score.Reasons {
		if seen[code] {
			continue
		}
		seen[code] = true
		if code.IsWarning() {
			if render, ok := warningTemplates[code]; ok {
				out.Warnings = append(out.Warnings, render(ctx))
			}
			continue
		}
		if render, ok := reasonTemplates[code]; ok {
			out.Reasons = append(out.Reasons, render(ctx))
		}
	}

	out.Warnings = append(out.Warnings, g.dataQualityWarnings(org, prog)...)
	if score.Eligibility != nil && score.Eligibility.Level == models.Ineligible {
		for _, failed := range score.Eligibility.FailedRequirements {
			out.Warnings = append(out.Warnings, "자격 미충족: "+failed)
		}
	}

	out.Recommendations = g.recommendations(score, prog)
	return out
}

type renderContext struct {
	org  *models.Organization
	prog *models.FundingProgram
}

func (c renderContext) progTitle() string {
	if c.prog == nil || c.prog.Title == "" {
		return "해당 사업"
	}
	return c.prog.Title
}

func (c renderContext) orgName() string {
	if c.org == nil || c.org.Name == "" {
		return "귀 기관"
	}
	return c.org.Name
}

func (c renderContext) category() string {
	if c.prog == nil || c.prog.Category == "" {
		return "해당 분야"
	}
	return c.prog.Category
}

func (c renderContext) orgSector() string {
	if c.org == nil || c.org.IndustrySector == "" {
		return "해당 분야"
	}
	return c.org.IndustrySector
}

func (c renderContext) orgTypeName() string {
	if c.org != nil {
		if name, ok := orgTypeNames[c.org.Type]; ok {
			return name
		}
	}
	return "기관"
}

func (c renderContext) deadlineDate() string {
	if c.prog == nil || c.prog.Deadline == nil {
		return ""
	}
	return c.prog.Deadline.Format("2006-01-02")
}

func (c renderContext) orgTRL() *int {
	if c.org == nil {
		return nil
	}
	return c.org.MatchingTRL()
}

func (c renderContext) trlRange() (int, int, bool) {
	if c.prog == nil || !c.prog.HasTRLRange() {
		return 0, 0, false
	}
	return *c.prog.MinTRL, *c.prog.MaxTRL, true
}

var orgTypeNames = map[models.OrgType]string{
	models.OrgTypeCompany:           "기업",
	models.OrgTypeResearchInstitute: "연구기관",
	models.OrgTypeUniversity:        "대학",
	models.OrgTypePublicInstitution: "공공기관",
}

func summaryLine(score int, c renderContext) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("'%s'은(는) %s에 매우 적합한 지원사업입니다.", c.progTitle(), c.orgName())
	case score >= 60:
		return fmt.Sprintf("'%s'은(는) %s에 적합한 지원사업입니다.", c.progTitle(), c.orgName())
	case score >= 40:
		return fmt.Sprintf("'%s'은(는) %s와(과) 부분적으로 부합하는 지원사업입니다.", c.progTitle(), c.orgName())
	default:
		return fmt.Sprintf("'%s'은(는) %s와(과)의 적합도가 낮은 지원사업입니다.", c.progTitle(), c.orgName())
	}
}

// reasonTemplates maps positive reason codes to their sentences. Codes
// absent here (deadline-missing and budget-missing markers, partner-side
// codes) are handled elsewhere or intentionally unrendered.
var reasonTemplates = map[models.ReasonCode]func(renderContext) string{
	models.ReasonExactCategoryMatch: func(c renderContext) string {
		return fmt.Sprintf("지원 분야 '%s'이(가) 기관의 산업 분야와 정확히 일치합니다.", c.category())
	},
	models.ReasonTechnologyKeywordMatch: func(c renderContext) string {
		return "기관의 보유 기술이 사업 키워드와 직접 겹칩니다."
	},
	models.ReasonResearchFocusMatch: func(c renderContext) string {
		return "기관의 연구 분야가 사업 키워드와 겹칩니다."
	},
	models.ReasonSectorKeywordMatch: func(c renderContext) string {
		return fmt.Sprintf("산업 분야 '%s' 관련 키워드가 사업 내용과 겹칩니다.", c.orgSector())
	},
	models.ReasonSectorMatch: func(c renderContext) string {
		return fmt.Sprintf("기관의 산업 분야 '%s'와(과) 사업 분야가 같은 영역에 속합니다.", c.orgSector())
	},
	models.ReasonSubSectorMatch: func(c renderContext) string {
		return "기관의 세부 기술 분야가 사업의 세부 분야와 맞닿아 있습니다."
	},
	models.ReasonCrossIndustryRelevance: func(c renderContext) string {
		return fmt.Sprintf("기관의 산업 분야 '%s'와(과) 사업 분야 간 연관성이 높습니다.", c.orgSector())
	},
	models.ReasonTechDomainMatch: func(c renderContext) string {
		return "연구기관의 보유 기술이 사업의 기술 범위와 겹칩니다."
	},
	models.ReasonTRLRangeFit: func(c renderContext) string {
		trl := c.orgTRL()
		if lo, hi, ok := c.trlRange(); ok && trl != nil {
			return fmt.Sprintf("기관의 기술성숙도(TRL %d)가 사업 요구 범위(TRL %d~%d)에 부합합니다.", *trl, lo, hi)
		}
		return "기관의 기술성숙도가 사업 요구 수준에 부합합니다."
	},
	models.ReasonTRLNearRange: func(c renderContext) string {
		if trl := c.orgTRL(); trl != nil {
			return fmt.Sprintf("기관의 기술성숙도(TRL %d)가 사업 요구 범위에 근접합니다.", *trl)
		}
		return "기관의 기술성숙도가 사업 요구 범위에 근접합니다."
	},
	models.ReasonTargetTypeMatch: func(c renderContext) string {
		return fmt.Sprintf("기관 유형(%s)이 사업의 지원 대상에 포함됩니다.", c.orgTypeName())
	},
	models.ReasonTargetTypeOpen: func(c renderContext) string {
		return "사업이 기관 유형을 제한하지 않아 지원이 가능합니다."
	},
	models.ReasonRnDExperience: func(c renderContext) string {
		return "국가 R&D 과제 수행 경험이 평가에 반영되었습니다."
	},
	models.ReasonCollaborationHistory: func(c renderContext) string {
		if c.org != nil && c.org.CollaborationCount > 0 {
			return fmt.Sprintf("공동연구 수행 경험(%d회)이 평가에 반영되었습니다.", c.org.CollaborationCount)
		}
		return "공동연구 수행 경험이 평가에 반영되었습니다."
	},
	models.ReasonDeadlineUrgent: func(c renderContext) string {
		if date := c.deadlineDate(); date != "" {
			return fmt.Sprintf("접수 마감(%s)이 일주일 이내로 임박했습니다.", date)
		}
		return "접수 마감이 일주일 이내로 임박했습니다."
	},
	models.ReasonDeadlineSoon: func(c renderContext) string {
		if date := c.deadlineDate(); date != "" {
			return fmt.Sprintf("접수 마감(%s)까지 한 달 이내입니다.", date)
		}
		return "접수 마감까지 한 달 이내입니다."
	},
	models.ReasonDeadlineComfortable: func(c renderContext) string {
		if date := c.deadlineDate(); date != "" {
			return fmt.Sprintf("접수 마감(%s)까지 두 달 이내로 준비 기간이 있습니다.", date)
		}
		return "접수 마감까지 두 달 이내로 준비 기간이 있습니다."
	},
	models.ReasonDeadlineDistant: func(c renderContext) string {
		return "접수 마감까지 기간이 충분합니다."
	},
}

// warningTemplates maps deficiency codes to their sentences.
var warningTemplates = map[models.ReasonCode]func(renderContext) string{
	models.ReasonTRLFarFromRange: func(c renderContext) string {
		if lo, hi, ok := c.trlRange(); ok {
			return fmt.Sprintf("기관의 기술성숙도가 사업 요구 범위(TRL %d~%d)와 차이가 큽니다.", lo, hi)
		}
		return "기관의 기술성숙도가 사업 요구 수준과 차이가 큽니다."
	},
	models.ReasonTargetTypeMismatch: func(c renderContext) string {
		return "기관 유형이 사업의 지원 대상에 포함되지 않습니다."
	},
}

// dataQualityWarnings derives warnings from the records themselves
// rather than from reason codes: missing budget or deadline, a deadline
// already behind us, an inferred TRL range and a business-structure
// restriction the organization does not satisfy.
func (g *Generator) dataQualityWarnings(org *models.Organization, prog *models.FundingProgram) []string {
	if prog == nil {
		return nil
	}
	var warnings []string

	if prog.BudgetAmount == nil {
		warnings = append(warnings, "예산 정보가 공고에 명시되어 있지 않습니다.")
	}
	if prog.Deadline == nil {
		warnings = append(warnings, "마감일 정보가 없어 접수 일정을 별도로 확인해야 합니다.")
	} else if prog.DeadlinePassed(g.now()) {
		warnings = append(warnings, "이미 마감된 사업으로 참고용으로만 활용하세요.")
	}
	if prog.TRLInferred {
		warnings = append(warnings, "사업의 기술성숙도 요건은 공고문에서 추정된 값입니다.")
	}

	if len(prog.AllowedBusinessStructures) > 0 && org != nil {
		if org.BusinessStructure == nil {
			warnings = append(warnings, "사업이 사업자 형태를 제한하지만 기관의 사업자 형태 정보가 없습니다.")
		} else if !containsStructure(prog.AllowedBusinessStructures, *org.BusinessStructure) {
			warnings = append(warnings, "기관의 사업자 형태가 사업이 허용하는 형태에 포함되지 않습니다.")
		}
	}
	return warnings
}

func containsStructure(structures []models.BusinessStructure, s models.BusinessStructure) bool {
	for _, candidate := range structures {
		if candidate == s {
			return true
		}
	}
	return false
}

func (g *Generator) recommendations(score *models.MatchScore, prog *models.FundingProgram) []string {
	var recs []string

	switch {
	case score.Score >= 80:
		recs = append(recs, "적합도가 높은 사업이므로 우선 지원 대상으로 검토해보세요.")
	case score.Score >= 60:
		recs = append(recs, "지원 요건을 확인한 뒤 신청을 준비해보세요.")
	case score.Score >= 40:
		recs = append(recs, "부족한 요건을 보완하면 지원 가능성을 높일 수 있습니다.")
	default:
		recs = append(recs, "적합도가 낮으므로 다른 지원사업을 함께 검토해보세요.")
	}

	if prog != nil && prog.Deadline != nil && !prog.DeadlinePassed(g.now()) {
		days := prog.Deadline.Sub(g.now()).Hours() / 24
		switch {
		case days <= 7:
			recs = append(recs, "접수 마감이 일주일 이내입니다. 신청 서류를 서둘러 준비하세요.")
		case days <= 30:
			recs = append(recs, "접수 마감까지 한 달이 남지 않았습니다. 일정에 맞춰 준비를 시작하세요.")
		}
	}

	if score.Eligibility != nil {
		if score.Eligibility.Level == models.ConditionallyEligible {
			recs = append(recs, "우대 요건(인증, 수상 실적 등)을 추가로 충족하면 선정 가능성이 높아집니다.")
		}
		if score.Eligibility.NeedsManualReview {
			recs = append(recs, "프로필 정보가 부족한 항목이 있습니다. 프로필을 보완한 뒤 다시 확인해보세요.")
		}
	}
	return recs
}
