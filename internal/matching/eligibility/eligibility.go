// internal/matching/eligibility/eligibility.go

// Package eligibility classifies an organization against a funding
// program's formal requirements. Evaluation is a pure function of the
// two records and a reference time; it never consults storage and never
// mutates its inputs.
package eligibility

import (
	"fmt"
	"strings"
	"time"

	"grantmatch-workers/internal/matching/taxonomy"
	"grantmatch-workers/internal/models"
)

// Evaluate runs every hard requirement the program states, then the
// soft preference checks. Hard checks are independent: all of them run
// even after one fails, so the detail lists everything that passed and
// everything that did not. A requirement that cannot be checked because
// the organization never supplied the field fails hard and raises
// NeedsManualReview, keeping "provably ineligible" distinct from
// "insufficient data".
func Evaluate(org *models.Organization, prog *models.FundingProgram, now time.Time) models.EligibilityDetail {
	det := models.EligibilityDetail{Level: models.ConditionallyEligible}
	if org == nil || prog == nil {
		det.Level = models.Ineligible
		det.NeedsManualReview = true
		det.ReviewReasons = append(det.ReviewReasons, "평가에 필요한 레코드가 누락되었습니다")
		return det
	}

	hardFailed := false
	fail := func(desc string) {
		det.FailedRequirements = append(det.FailedRequirements, desc)
		hardFailed = true
	}
	failForReview := func(desc, reason string) {
		fail(desc)
		det.NeedsManualReview = true
		det.ReviewReasons = append(det.ReviewReasons, reason)
	}
	pass := func(desc string) {
		det.PassedRequirements = append(det.PassedRequirements, desc)
	}

	checkCertifications(org, prog, pass, fail, failForReview)
	checkInvestment(org, prog, pass, fail, failForReview)
	checkEmployees(org, prog, pass, fail, failForReview)
	checkRevenue(org, prog, pass, fail, failForReview)
	checkOperatingYears(org, prog, now, pass, fail, failForReview)

	det.SatisfiedPreferences = softPreferences(org, prog)

	switch {
	case hardFailed:
		det.Level = models.Ineligible
	case len(det.SatisfiedPreferences) > 0:
		det.Level = models.FullyEligible
	default:
		det.Level = models.ConditionallyEligible
	}
	return det
}

func checkCertifications(org *models.Organization, prog *models.FundingProgram, pass, fail func(string), failForReview func(string, string)) {
	if len(prog.RequiredCertifications) == 0 {
		return
	}
	if org.Certifications == nil {
		failForReview(
			"필수 인증 요건을 확인할 수 없음",
			"기관 프로필에 인증 정보가 등록되지 않았습니다",
		)
		return
	}

	held := make(map[string]struct{}, len(org.Certifications))
	for _, c := range taxonomy.NormalizeAll(org.Certifications) {
		held[c] = struct{}{}
	}
	var missing []string
	for _, required := range prog.RequiredCertifications {
		if _, ok := held[taxonomy.Normalize(required)]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		fail(fmt.Sprintf("필수 인증 미보유: %s", strings.Join(missing, ", ")))
		return
	}
	pass(fmt.Sprintf("필수 인증 보유: %s", strings.Join(prog.RequiredCertifications, ", ")))
}

func checkInvestment(org *models.Organization, prog *models.FundingProgram, pass, fail func(string), failForReview func(string, string)) {
	if prog.RequiredInvestmentAmount == nil {
		return
	}
	required := *prog.RequiredInvestmentAmount
	if org.InvestmentHistory == nil {
		failForReview(
			fmt.Sprintf("투자유치 요건(%d원 이상)을 확인할 수 없음", required),
			"투자유치 이력이 등록되지 않았습니다",
		)
		return
	}
	total := org.VerifiedInvestmentTotal()
	if total < required {
		fail(fmt.Sprintf("검증된 투자유치 합계 %d원이 요구액 %d원에 미달", total, required))
		return
	}
	pass(fmt.Sprintf("투자유치 요건 충족 (검증 합계 %d원)", total))
}

func checkEmployees(org *models.Organization, prog *models.FundingProgram, pass, fail func(string), failForReview func(string, string)) {
	if prog.RequiredMinEmployees == nil && prog.RequiredMaxEmployees == nil {
		return
	}
	if org.EmployeeCount == nil || !org.EmployeeCount.Valid() {
		failForReview(
			"임직원 수 요건을 확인할 수 없음",
			"기관 프로필에 임직원 규모가 등록되지 않았습니다",
		)
		return
	}
	mid := org.EmployeeCount.Midpoint()
	if prog.RequiredMinEmployees != nil && mid < *prog.RequiredMinEmployees {
		fail(fmt.Sprintf("임직원 규모(%s)가 최소 요건 %d명에 미달", *org.EmployeeCount, *prog.RequiredMinEmployees))
		return
	}
	if prog.RequiredMaxEmployees != nil && mid > *prog.RequiredMaxEmployees {
		fail(fmt.Sprintf("임직원 규모(%s)가 최대 요건 %d명을 초과", *org.EmployeeCount, *prog.RequiredMaxEmployees))
		return
	}
	pass(fmt.Sprintf("임직원 수 요건 충족 (%s)", *org.EmployeeCount))
}

func checkRevenue(org *models.Organization, prog *models.FundingProgram, pass, fail func(string), failForReview func(string, string)) {
	if prog.RequiredMinRevenue == nil && prog.RequiredMaxRevenue == nil {
		return
	}
	if org.RevenueRange == nil || !org.RevenueRange.Valid() {
		failForReview(
			"매출 요건을 확인할 수 없음",
			"기관 프로필에 매출 구간이 등록되지 않았습니다",
		)
		return
	}
	mid := org.RevenueRange.Midpoint()
	if prog.RequiredMinRevenue != nil && mid < *prog.RequiredMinRevenue {
		fail(fmt.Sprintf("매출 구간(%s)이 최소 요건 %d원에 미달", *org.RevenueRange, *prog.RequiredMinRevenue))
		return
	}
	if prog.RequiredMaxRevenue != nil && mid > *prog.RequiredMaxRevenue {
		fail(fmt.Sprintf("매출 구간(%s)이 최대 요건 %d원을 초과", *org.RevenueRange, *prog.RequiredMaxRevenue))
		return
	}
	pass(fmt.Sprintf("매출 요건 충족 (%s)", *org.RevenueRange))
}

func checkOperatingYears(org *models.Organization, prog *models.FundingProgram, now time.Time, pass, fail func(string), failForReview func(string, string)) {
	if prog.RequiredOperatingYears == nil && prog.MaxOperatingYears == nil {
		return
	}
	years := org.OperatingYears(now)
	if years == nil {
		failForReview(
			"업력 요건을 확인할 수 없음",
			"기관 프로필에 설립일이 등록되지 않았습니다",
		)
		return
	}
	if prog.RequiredOperatingYears != nil && *years < *prog.RequiredOperatingYears {
		fail(fmt.Sprintf("업력 %d년이 최소 요건 %d년에 미달", *years, *prog.RequiredOperatingYears))
		return
	}
	if prog.MaxOperatingYears != nil && *years > *prog.MaxOperatingYears {
		fail(fmt.Sprintf("업력 %d년이 최대 요건 %d년을 초과", *years, *prog.MaxOperatingYears))
		return
	}
	pass(fmt.Sprintf("업력 요건 충족 (%d년)", *years))
}

// softPreferences reports which preferred conditions the organization
// satisfies. These never gate eligibility; they lift CONDITIONALLY to
// FULLY when all hard requirements pass.
func softPreferences(org *models.Organization, prog *models.FundingProgram) []string {
	var satisfied []string

	if len(prog.PreferredCertifications) > 0 && len(org.Certifications) > 0 {
		held := make(map[string]struct{}, len(org.Certifications))
		for _, c := range taxonomy.NormalizeAll(org.Certifications) {
			held[c] = struct{}{}
		}
		var matched []string
		for _, preferred := range prog.PreferredCertifications {
			if _, ok := held[taxonomy.Normalize(preferred)]; ok {
				matched = append(matched, preferred)
			}
		}
		if len(matched) > 0 {
			satisfied = append(satisfied, fmt.Sprintf("우대 인증 보유: %s", strings.Join(matched, ", ")))
		}
	}
	if len(org.PriorGrantWins) > 0 {
		satisfied = append(satisfied, "정부지원사업 수행 이력 보유")
	}
	if len(org.IndustryAwards) > 0 {
		satisfied = append(satisfied, "산업 분야 수상 실적 보유")
	}
	return satisfied
}
