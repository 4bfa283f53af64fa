// =============================================================================
// Smart Invoice Validator - JSON Encoder
// =============================================================================

package encoder

import "encoding/json"

// encodeJSON pretty-prints the record tree. The canonical model is built
// from JSON-compatible values only, so marshalling cannot fail.
func encodeJSON(data any) []byte {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return []byte("null")
	}
	return append(encoded, '\n')
}
