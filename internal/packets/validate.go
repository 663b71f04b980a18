package packets

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed packet_schema.json
var packetSchemaJSON []byte

var packetSchema = mustCompilePacketSchema()

func mustCompilePacketSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("packet_schema.json", bytes.NewReader(packetSchemaJSON)); err != nil {
		panic(fmt.Sprintf("packets: add embedded schema: %v", err))
	}
	schema, err := compiler.Compile("packet_schema.json")
	if err != nil {
		panic(fmt.Sprintf("packets: compile embedded schema: %v", err))
	}
	return schema
}

// ValidationResult is the structured outcome of packet validation. It is
// always returned, never thrown: an invalid packet carries an itemized
// violation list and can still be partially displayed.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

// ValidatePacket runs the structural checks over an already-decoded packet
// tree: schema shape (presence and type of metadata and records, record
// identity fields) plus consistency checks the schema cannot express.
func ValidatePacket(raw map[string]any) ValidationResult {
	result := ValidationResult{Violations: []string{}}
	if raw == nil {
		result.Violations = append(result.Violations, "packet is empty")
		return result
	}

	if err := packetSchema.Validate(normalizeForSchema(raw)); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			result.Violations = append(result.Violations, flattenSchemaError(validationErr)...)
		} else {
			result.Violations = append(result.Violations, err.Error())
		}
	}

	// record_count is declared by the producer; hold it to the actual
	// list so a truncated export cannot pass review unnoticed.
	if meta, ok := raw["metadata"].(map[string]any); ok {
		if records, ok := raw["records"].([]any); ok {
			declared := asInt(meta["record_count"], -1)
			if declared >= 0 && declared != len(records) {
				result.Violations = append(result.Violations,
					fmt.Sprintf("record_count mismatch: declared %d, found %d", declared, len(records)))
			}
		}
	}

	result.Valid = len(result.Violations) == 0
	return result
}

// flattenSchemaError walks the nested cause tree into flat, user-readable
// violation strings.
func flattenSchemaError(err *jsonschema.ValidationError) []string {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return []string{fmt.Sprintf("%s: %s", location, err.Message)}
	}
	var out []string
	for _, cause := range err.Causes {
		out = append(out, flattenSchemaError(cause)...)
	}
	return out
}

// normalizeForSchema re-types the tree the way a fresh json.Unmarshal
// would, so trees built by hand in tests validate the same as trees read
// from disk.
func normalizeForSchema(raw map[string]any) any {
	return normalizeValue(raw)
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = normalizeValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	case int:
		return float64(val)
	case int64:
		return float64(val)
	default:
		return val
	}
}
