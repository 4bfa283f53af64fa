// =============================================================================
// Smart Invoice Validator - CSV Encoder
// =============================================================================
//
// Flattens a sequence of records (a singleton record is wrapped as a
// one-element sequence) into rows. The column set is the union of the
// records' top-level keys, in first-seen order so the output matches the
// input layout. Nested values (line items of a wrapped invoice) are emitted
// as compact JSON, which survives a round-trip through the JSON decoder.
//
// =============================================================================

package encoder

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"sort"

	"github.com/zedtax/invoice-validator/internal/normalize"
)

// encodeCSV serializes records to CSV bytes with a header row.
func encodeCSV(data any) []byte {
	records := asRecordSequence(data)
	headers := unionKeys(records)

	var buffer bytes.Buffer
	w := csv.NewWriter(&buffer)

	w.Write(headers)
	for _, record := range records {
		row := make([]string, len(headers))
		for i, header := range headers {
			row[i] = cellText(record[header])
		}
		w.Write(row)
	}

	w.Flush()
	return buffer.Bytes()
}

// asRecordSequence wraps a singleton record into a one-element sequence and
// drops non-mapping elements (the engine never produces any).
func asRecordSequence(data any) []map[string]any {
	switch v := data.(type) {
	case []any:
		records := make([]map[string]any, 0, len(v))
		for _, item := range v {
			if record, ok := item.(map[string]any); ok {
				records = append(records, record)
			}
		}
		return records
	case map[string]any:
		return []map[string]any{v}
	default:
		return nil
	}
}

// unionKeys returns the union of the records' top-level keys in first-seen
// order; keys introduced by later records are appended sorted per record so
// the column order stays deterministic.
func unionKeys(records []map[string]any) []string {
	var headers []string
	seen := make(map[string]bool)

	for _, record := range records {
		fresh := make([]string, 0, len(record))
		for key := range record {
			if !seen[key] {
				seen[key] = true
				fresh = append(fresh, key)
			}
		}
		sort.Strings(fresh)
		headers = append(headers, fresh...)
	}

	return headers
}

// cellText renders one cell. Scalars use the canonical text form; nested
// mappings and sequences are emitted as compact JSON.
func cellText(value any) string {
	switch value.(type) {
	case nil:
		return ""
	case map[string]any, []any:
		encoded, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(encoded)
	default:
		return normalize.Stringify(value)
	}
}
