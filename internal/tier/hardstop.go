package tier

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed hardstop_terms.yaml
var hardStopTermsYAML []byte

var hardStopTerms = mustLoadHardStopTerms()

type hardStopConfig struct {
	Terms []string `yaml:"terms"`
}

func mustLoadHardStopTerms() []string {
	var cfg hardStopConfig
	if err := yaml.Unmarshal(hardStopTermsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("tier: bad embedded hard-stop term list: %v", err))
	}
	terms := make([]string, 0, len(cfg.Terms))
	for _, t := range cfg.Terms {
		if trimmed := strings.ToLower(strings.TrimSpace(t)); trimmed != "" {
			terms = append(terms, trimmed)
		}
	}
	return terms
}

// HardStopMatch scans the given texts for Indigenous-content trigger terms
// and returns the first matching term. Matching is case-insensitive
// substring containment: deliberately conservative, so a term embedded in
// an unrelated longer word still triggers. A match means the assessment
// must be routed to a Statutory Decision Maker no matter what tier the
// evaluator assigned.
func HardStopMatch(texts ...string) (string, bool) {
	for _, text := range texts {
		if text == "" {
			continue
		}
		lowered := strings.ToLower(text)
		for _, term := range hardStopTerms {
			if strings.Contains(lowered, term) {
				return term, true
			}
		}
	}
	return "", false
}

// EffectiveTier resolves the tier that governs judgment validation for an
// assessment. The hard-stop is re-evaluated on every call against the
// supplied texts; a stored tier is never trusted over a live match.
func EffectiveTier(stored Tier, texts ...string) Tier {
	if _, hit := HardStopMatch(texts...); hit {
		return Tier3Statutory
	}
	return stored
}

// ValidateJudgmentForAssessment combines the hard-stop re-check with tier
// legality. When the hard-stop fires, the error names the triggering term
// so the reviewer can see why the tier was escalated.
func ValidateJudgmentForAssessment(stored Tier, result HumanResult, texts ...string) error {
	if term, hit := HardStopMatch(texts...); hit && result != ResultDefer {
		return fmt.Errorf("Indigenous-content hard stop (matched %q): this assessment is reserved for a Statutory Decision Maker regardless of its assigned tier; the only permitted result is DEFER", term)
	}
	return ValidateJudgment(EffectiveTier(stored, texts...), result)
}
