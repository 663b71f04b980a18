package review

import "review-backend/internal/tier"

// effectiveInput pairs an automated result with the human result (empty
// when no judgment has been recorded yet).
type effectiveInput struct {
	AutoResult  string
	HumanResult tier.HumanResult
}

// Counts are the denormalized submission counters.
type Counts struct {
	Total   int
	Pass    int
	Fail    int
	Partial int
	Pending int
}

// tallyCounts folds assessment outcomes into submission counters. The
// human result takes precedence over the automated one: an override
// replaces the automated result, ACCEPT confirms it, DEFER and unjudged
// assessments count as pending, NOT_APPLICABLE counts only toward total.
func tallyCounts(inputs []effectiveInput) Counts {
	counts := Counts{Total: len(inputs)}
	for _, in := range inputs {
		switch in.HumanResult {
		case tier.ResultOverridePass:
			counts.Pass++
		case tier.ResultOverrideFail:
			counts.Fail++
		case tier.ResultNotApplicable:
			// total only
		case tier.ResultAccept:
			switch in.AutoResult {
			case "PASS":
				counts.Pass++
			case "FAIL":
				counts.Fail++
			case "PARTIAL":
				counts.Partial++
			default:
				counts.Pending++
			}
		default: // DEFER or no judgment yet
			counts.Pending++
		}
	}
	return counts
}

// applyPatch overlays the set fields of a patch on a judgment.
func applyPatch(j Judgment, patch JudgmentPatch) Judgment {
	if patch.HumanResult != nil {
		j.HumanResult = *patch.HumanResult
	}
	if patch.HumanConfidence != nil {
		j.HumanConfidence = *patch.HumanConfidence
	}
	if patch.Notes != nil {
		j.Notes = *patch.Notes
	}
	if patch.OverrideReason != nil {
		j.OverrideReason = *patch.OverrideReason
	}
	if patch.ReviewStatus != nil {
		j.ReviewStatus = *patch.ReviewStatus
	}
	return j
}
