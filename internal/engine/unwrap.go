// =============================================================================
// Smart Invoice Validator - Structural Unwrapping
// =============================================================================
//
// XML decoding leaves two structural artifacts that the rule engine removes
// with explicit, independently testable steps before evaluation:
//
//   1. "unwrap singleton wrapper": a document root that wraps the real
//      invoice body produces a single-key mapping whose sole value is itself
//      a mapping.
//   2. "collapse repeated child to sequence": <LineItems> holding repeated
//      <LineItem> children decodes to {"LineItem": [...]} (or to a single
//      nested mapping when there is exactly one child).
//
// =============================================================================

package engine

// unwrapSingleton removes single-key wrappers whose sole value is itself a
// mapping. The returned map is a reference into the same tree, so mutations
// made through it are visible in the enclosing structure.
func unwrapSingleton(record map[string]any) map[string]any {
	for len(record) == 1 {
		var sole any
		for _, v := range record {
			sole = v
		}
		inner, ok := sole.(map[string]any)
		if !ok {
			return record
		}
		record = inner
	}
	return record
}

// collapseRepeated normalizes a decoded line-items value to a flat sequence.
//
//   - an existing sequence passes through
//   - a single-child wrapper around a sequence unwraps to that sequence
//   - a single-child wrapper around a mapping becomes a one-element sequence
//     (the XML single-repeated-element artifact)
//
// ok is false when the value has no sequence interpretation at all.
func collapseRepeated(value any) (items []any, ok bool) {
	switch v := value.(type) {
	case []any:
		return v, true

	case map[string]any:
		if len(v) != 1 {
			return nil, false
		}
		var sole any
		for _, inner := range v {
			sole = inner
		}
		switch child := sole.(type) {
		case []any:
			return child, true
		case map[string]any:
			return []any{child}, true
		default:
			return nil, false
		}

	default:
		return nil, false
	}
}
