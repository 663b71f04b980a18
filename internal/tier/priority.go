package tier

// lowConfidenceThreshold marks an automated result as unsure for routing
// and review purposes.
const lowConfidenceThreshold = 0.7

// Priority buckets, lowest surfaces first in a worklist.
const (
	priorityStatutory = iota
	priorityLowConfidenceFail
	priorityProfessional
	priorityFail
	priorityPartial
	priorityRest
)

// Priority computes the worklist bucket for an assessment. It is a total,
// deterministic function of (tier, automated result, confidence): statutory
// items first, then tier-1 failures the evaluator was unsure about, then
// professional-discretion items, then remaining failures and partials.
func Priority(t Tier, autoResult string, autoConfidence float64) int {
	if t == Tier3Statutory {
		return priorityStatutory
	}
	if t == Tier1Binary && autoResult == "FAIL" && autoConfidence < lowConfidenceThreshold {
		return priorityLowConfidenceFail
	}
	if t == Tier2Professional {
		return priorityProfessional
	}
	if autoResult == "FAIL" {
		return priorityFail
	}
	if autoResult == "PARTIAL" {
		return priorityPartial
	}
	return priorityRest
}

// Less is the worklist ordering: priority bucket, then ascending automated
// confidence (least certain first), then id for a stable total order.
func Less(aTier Tier, aResult string, aConf float64, aID int64, bTier Tier, bResult string, bConf float64, bID int64) bool {
	ap, bp := Priority(aTier, aResult, aConf), Priority(bTier, bResult, bConf)
	if ap != bp {
		return ap < bp
	}
	if aConf != bConf {
		return aConf < bConf
	}
	return aID < bID
}
