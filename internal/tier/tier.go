// Package tier classifies how much authority the automated assessor has
// over a policy check and decides which human judgments are legal for a
// given assessment. All functions are pure; nothing here touches storage.
package tier

import "fmt"

// Tier is the discretion classification assigned to an assessment.
type Tier string

const (
	// Tier1Binary: the automated result is authoritative. A reviewer may
	// accept it or override it in either direction.
	Tier1Binary Tier = "TIER_1_BINARY"
	// Tier2Professional: the automated result is advisory only. A reviewer
	// may flag a deficiency or defer, but may not record a pass.
	Tier2Professional Tier = "TIER_2_PROFESSIONAL"
	// Tier3Statutory: the automated result is informational only. The
	// decision belongs to a statutory decision-maker outside this system.
	Tier3Statutory Tier = "TIER_3_STATUTORY"
)

// Valid reports whether t is one of the three known tiers.
func (t Tier) Valid() bool {
	switch t {
	case Tier1Binary, Tier2Professional, Tier3Statutory:
		return true
	}
	return false
}

// HumanResult is a reviewer's reconciliation of an automated assessment.
type HumanResult string

const (
	ResultAccept        HumanResult = "ACCEPT"
	ResultOverridePass  HumanResult = "OVERRIDE_PASS"
	ResultOverrideFail  HumanResult = "OVERRIDE_FAIL"
	ResultDefer         HumanResult = "DEFER"
	ResultNotApplicable HumanResult = "NOT_APPLICABLE"
)

// Valid reports whether r is a known human result.
func (r HumanResult) Valid() bool {
	switch r {
	case ResultAccept, ResultOverridePass, ResultOverrideFail, ResultDefer, ResultNotApplicable:
		return true
	}
	return false
}

// Confidence is the reviewer-supplied confidence grade.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
	ConfidenceNone   Confidence = "NONE"
)

// Valid reports whether c is a known confidence grade.
func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone:
		return true
	}
	return false
}

// ValidateJudgment reports whether result is a legal human result for an
// assessment at tier t. The returned error message is user-facing review
// guidance and is shown to the reviewer verbatim.
func ValidateJudgment(t Tier, result HumanResult) error {
	if !result.Valid() {
		return fmt.Errorf("unknown human result %q", result)
	}
	switch t {
	case Tier1Binary:
		return nil
	case Tier2Professional:
		switch result {
		case ResultAccept, ResultOverridePass:
			return fmt.Errorf("TIER_2_PROFESSIONAL: the automated result is advisory only; a registered professional must make the determination, so %s is not permitted — record OVERRIDE_FAIL to flag a deficiency or DEFER", result)
		}
		return nil
	case Tier3Statutory:
		if result != ResultDefer {
			return fmt.Errorf("TIER_3_STATUTORY: this assessment is reserved for a Statutory Decision Maker; %s cannot be recorded here — the only permitted result is DEFER", result)
		}
		return nil
	default:
		return fmt.Errorf("unknown discretion tier %q", t)
	}
}

// RequiresHumanReview reports whether an assessment must surface to a
// reviewer rather than standing on its automated result alone. Tier 2 and
// tier 3 always do; tier 1 does when the automated result is adverse or
// the evaluator was unsure.
func RequiresHumanReview(t Tier, autoResult string, autoConfidence float64) bool {
	switch t {
	case Tier2Professional, Tier3Statutory:
		return true
	case Tier1Binary:
		if autoResult == "FAIL" || autoResult == "PARTIAL" || autoResult == "PENDING" {
			return true
		}
		return autoConfidence < lowConfidenceThreshold
	}
	return true
}
