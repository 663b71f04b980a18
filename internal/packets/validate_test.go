package packets

import (
	"strings"
	"testing"
)

func validPacket() map[string]any {
	return map[string]any{
		"metadata": map[string]any{
			"session_id":     "sess-001",
			"generated_at":   "2025-06-01T10:00:00Z",
			"schema_version": "2.1",
			"record_count":   2,
		},
		"records": []any{
			map[string]any{"policy_id": "POL-1"},
			map[string]any{"policy_id": "POL-2"},
		},
	}
}

func TestValidatePacketAccepts(t *testing.T) {
	result := ValidatePacket(validPacket())
	if !result.Valid {
		t.Fatalf("valid packet rejected: %v", result.Violations)
	}
	if len(result.Violations) != 0 {
		t.Fatalf("violations on valid packet: %v", result.Violations)
	}
}

func TestValidatePacketRecordCountMismatch(t *testing.T) {
	packet := validPacket()
	packet["metadata"].(map[string]any)["record_count"] = 5

	result := ValidatePacket(packet)
	if result.Valid {
		t.Fatal("mismatched record_count must be invalid")
	}
	found := false
	for _, v := range result.Violations {
		if strings.Contains(v, "declared 5") && strings.Contains(v, "found 2") {
			found = true
		}
	}
	if !found {
		t.Fatalf("violation should name both numbers: %v", result.Violations)
	}
}

func TestValidatePacketMissingMetadata(t *testing.T) {
	packet := map[string]any{
		"records": []any{map[string]any{"policy_id": "POL-1"}},
	}
	result := ValidatePacket(packet)
	if result.Valid {
		t.Fatal("packet without metadata must be invalid")
	}
	if len(result.Violations) == 0 {
		t.Fatal("expected at least one violation")
	}

	// Extraction still yields a fully-populated fallback object.
	meta := ExtractMetadata(packet)
	if meta.SchemaVersion != UnknownSchemaVersion || meta.RecordCount != 0 {
		t.Fatalf("fallback metadata = %+v", meta)
	}
	if meta.SessionID != UnknownSessionID {
		t.Fatalf("fallback session id = %q", meta.SessionID)
	}
}

func TestValidatePacketMissingIdentityField(t *testing.T) {
	packet := validPacket()
	packet["records"] = []any{map[string]any{"tier": "TIER_1_BINARY"}}
	packet["metadata"].(map[string]any)["record_count"] = 1

	result := ValidatePacket(packet)
	if result.Valid {
		t.Fatal("record without policy_id must be invalid")
	}
}

func TestValidatePacketNil(t *testing.T) {
	result := ValidatePacket(nil)
	if result.Valid || len(result.Violations) == 0 {
		t.Fatalf("nil packet = %+v", result)
	}
}

func TestExtractMetadataFull(t *testing.T) {
	packet := validPacket()
	meta := packet["metadata"].(map[string]any)
	meta["policies_evaluated"] = 40
	meta["policies_in_kb"] = 120
	meta["policies_filtered"] = 80

	got := ExtractMetadata(packet)
	if got.SessionID != "sess-001" || got.SchemaVersion != "2.1" || got.RecordCount != 2 {
		t.Fatalf("metadata = %+v", got)
	}
	if got.PoliciesEvaluated != 40 || got.PoliciesInKB != 120 || got.PoliciesFiltered != 80 {
		t.Fatalf("policy counts = %+v", got)
	}
}

func TestFlattenRecordFull(t *testing.T) {
	rec := map[string]any{
		"policy_id": "POL-9",
		"tier":      "TIER_2_PROFESSIONAL",
		"decision": map[string]any{
			"status":               "FAIL",
			"confidence":           "HIGH",
			"score":                0.82,
			"ai_invocation_reason": "low retrieval overlap",
		},
		"evidence": []any{
			map[string]any{"location": "page 2", "confidence": 0.4},
			map[string]any{"location": "page 7", "confidence": 0.9},
		},
		"quality_flags": []any{"OCR_NOISE", "TRUNCATED"},
	}

	flat := FlattenRecord(rec)
	if flat.PolicyID != "POL-9" || flat.Tier != "TIER_2_PROFESSIONAL" || flat.Status != "FAIL" {
		t.Fatalf("flat = %+v", flat)
	}
	if flat.DecisionScore != 0.82 || flat.AIReason != "low retrieval overlap" {
		t.Fatalf("decision fields = %+v", flat)
	}
	if flat.EvidenceLocation != "page 7" {
		t.Fatalf("best evidence should be the highest-confidence entry, got %q", flat.EvidenceLocation)
	}
	if len(flat.QualityFlags) != 2 {
		t.Fatalf("quality flags = %v", flat.QualityFlags)
	}
}

func TestFlattenRecordDefaults(t *testing.T) {
	flat := FlattenRecord(map[string]any{"policy_id": "POL-1"})
	if flat.Tier != UnknownTier || flat.Status != UnknownStatus {
		t.Fatalf("defaults = %+v", flat)
	}
	if flat.Confidence != DefaultConfidence || flat.DecisionScore != 0 {
		t.Fatalf("defaults = %+v", flat)
	}
	if flat.EvidenceLocation != "" {
		t.Fatalf("evidence default = %q", flat.EvidenceLocation)
	}
	if flat.QualityFlags == nil || len(flat.QualityFlags) != 0 {
		t.Fatalf("quality flags must be empty but non-nil: %#v", flat.QualityFlags)
	}
}

func TestBuildViewOnMalformedPacket(t *testing.T) {
	view := BuildView(map[string]any{"records": "not-a-list"})
	if view.Validation.Valid {
		t.Fatal("malformed packet must be invalid")
	}
	if view.Metadata.SchemaVersion != UnknownSchemaVersion {
		t.Fatalf("metadata fallback = %+v", view.Metadata)
	}
	if len(view.Records) != 0 {
		t.Fatalf("records = %v", view.Records)
	}
}
