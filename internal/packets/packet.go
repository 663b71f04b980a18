// Package packets reads externally-produced audit packets for human
// review. Packets are untrusted input: they are decoded into a loose tree,
// validated structurally, and projected into fully-defaulted flat records;
// a malformed packet degrades to fallback values instead of an error.
package packets

// Fallback values used when a packet field is missing or has the wrong
// type. Consumers can rely on every field being populated.
const (
	UnknownSchemaVersion = "(unknown)"
	UnknownSessionID     = "(unknown)"
	UnknownGeneratedAt   = "(unknown)"
	UnknownTier          = "(unknown)"
	UnknownStatus        = "(unknown)"
	DefaultConfidence    = "NONE"
)

// Metadata is the typed, fully-defaulted projection of a packet's
// metadata block.
type Metadata struct {
	SessionID         string `json:"session_id"`
	GeneratedAt       string `json:"generated_at"`
	SchemaVersion     string `json:"schema_version"`
	RecordCount       int    `json:"record_count"`
	PoliciesEvaluated int    `json:"policies_evaluated"`
	PoliciesInKB      int    `json:"policies_in_kb"`
	PoliciesFiltered  int    `json:"policies_filtered"`
}

// FlatRecord is the display-ready projection of one packet decision
// record. Every field is always populated; missing optionals default to
// the documented empty values above (score 0, empty location, empty but
// non-nil flags). It is never persisted.
type FlatRecord struct {
	PolicyID         string   `json:"policy_id"`
	Tier             string   `json:"tier"`
	Status           string   `json:"status"`
	Confidence       string   `json:"confidence"`
	DecisionScore    float64  `json:"decision_score"`
	AIReason         string   `json:"ai_invocation_reason"`
	EvidenceLocation string   `json:"best_evidence_location"`
	QualityFlags     []string `json:"quality_flags"`
}

// ExtractMetadata projects the metadata block out of a raw packet tree.
// Any shape mismatch degrades to the documented fallbacks so a malformed
// packet still renders an informative, partially-populated view.
func ExtractMetadata(raw map[string]any) Metadata {
	meta := Metadata{
		SessionID:     UnknownSessionID,
		GeneratedAt:   UnknownGeneratedAt,
		SchemaVersion: UnknownSchemaVersion,
	}
	block, ok := raw["metadata"].(map[string]any)
	if !ok {
		return meta
	}
	meta.SessionID = asString(block["session_id"], UnknownSessionID)
	meta.GeneratedAt = asString(block["generated_at"], UnknownGeneratedAt)
	meta.SchemaVersion = asString(block["schema_version"], UnknownSchemaVersion)
	meta.RecordCount = asInt(block["record_count"], 0)
	meta.PoliciesEvaluated = asInt(block["policies_evaluated"], 0)
	meta.PoliciesInKB = asInt(block["policies_in_kb"], 0)
	meta.PoliciesFiltered = asInt(block["policies_filtered"], 0)
	return meta
}

// ExtractRecords returns the packet's record list, or an empty list when
// the records field is missing or not an array of objects.
func ExtractRecords(raw map[string]any) []map[string]any {
	list, ok := raw["records"].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, entry := range list {
		if rec, ok := entry.(map[string]any); ok {
			out = append(out, rec)
		}
	}
	return out
}

// FlattenRecord projects one nested decision record into a FlatRecord.
func FlattenRecord(rec map[string]any) FlatRecord {
	flat := FlatRecord{
		PolicyID:     asString(rec["policy_id"], ""),
		Tier:         asString(rec["tier"], UnknownTier),
		Status:       UnknownStatus,
		Confidence:   DefaultConfidence,
		QualityFlags: []string{},
	}

	if decision, ok := rec["decision"].(map[string]any); ok {
		flat.Status = asString(decision["status"], UnknownStatus)
		flat.Confidence = asString(decision["confidence"], DefaultConfidence)
		flat.DecisionScore = asFloat(decision["score"], 0)
		flat.AIReason = asString(decision["ai_invocation_reason"], "")
	}

	flat.EvidenceLocation = bestEvidenceLocation(rec["evidence"])

	if flags, ok := rec["quality_flags"].([]any); ok {
		for _, f := range flags {
			if s, ok := f.(string); ok {
				flat.QualityFlags = append(flat.QualityFlags, s)
			}
		}
	}
	return flat
}

// bestEvidenceLocation picks the location of the highest-confidence
// evidence entry, empty when no usable evidence exists.
func bestEvidenceLocation(raw any) string {
	entries, ok := raw.([]any)
	if !ok {
		return ""
	}
	best := ""
	bestConfidence := -1.0
	for _, entry := range entries {
		ev, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		location := asString(ev["location"], "")
		if location == "" {
			continue
		}
		confidence := asFloat(ev["confidence"], 0)
		if confidence > bestConfidence {
			best = location
			bestConfidence = confidence
		}
	}
	return best
}

func asString(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func asInt(v any, fallback int) int {
	switch n := v.(type) {
	case float64: // encoding/json decodes all numbers to float64
		return int(n)
	case int:
		return n
	}
	return fallback
}

func asFloat(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return fallback
}
