// =============================================================================
// Smart Invoice Validator - Encoder Module
// =============================================================================
//
// Serializes a canonical (usually fixed) record back into one of the
// interchange formats. Encoding is total over any record shape the engine
// can produce; the only error path is an unsupported target kind.
//
// =============================================================================

package encoder

import (
	"fmt"

	"github.com/zedtax/invoice-validator/internal/decoder"
)

// Encode serializes a canonical record (or sequence of records) to the
// given target format. XLSX is an input-only format; spreadsheet data is
// written back as CSV.
func Encode(data any, kind decoder.Kind) ([]byte, error) {
	switch kind {
	case decoder.KindXML:
		return encodeXML(data), nil
	case decoder.KindCSV:
		return encodeCSV(data), nil
	case decoder.KindJSON:
		return encodeJSON(data), nil
	default:
		return nil, fmt.Errorf("unsupported target kind %q", string(kind))
	}
}

// OutputKind maps a detected input kind to the kind corrected output is
// written in. Identity for the three text formats, CSV for XLSX.
func OutputKind(kind decoder.Kind) decoder.Kind {
	if kind == decoder.KindXLSX {
		return decoder.KindCSV
	}
	return kind
}
