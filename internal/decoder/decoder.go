// =============================================================================
// Smart Invoice Validator - Decoder Module
// =============================================================================
//
// This module converts raw file bytes in one of the supported interchange
// formats into the canonical record model (see internal/types). Decoding is
// the only step that can fail hard: a file that cannot be parsed yields a
// *FormatError for that file and never aborts a batch.
//
// SUPPORTED FORMATS:
//   - XML  : recursive descent over the document tree
//   - CSV  : header row + auto-typed cells, line-item wrap heuristic
//   - JSON : direct parse with a best-effort repair pass on syntax errors
//   - XLSX : first worksheet, treated like CSV rows
//
// =============================================================================

package decoder

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
)

// Kind identifies an interchange format.
type Kind string

const (
	KindXML  Kind = "xml"
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
	KindXLSX Kind = "xlsx"
)

// =============================================================================
// FORMAT ERROR
// =============================================================================

// FormatError reports input that could not be parsed in the declared format.
// It carries the underlying parser diagnostic plus an actionable hint.
type FormatError struct {
	// Kind is the format that was attempted.
	Kind Kind

	// Hint suggests what to check in the input file.
	Hint string

	// Err is the underlying parser error.
	Err error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	msg := fmt.Sprintf("cannot decode %s input", e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// Unwrap exposes the underlying parser error.
func (e *FormatError) Unwrap() error { return e.Err }

// =============================================================================
// DECODE DISPATCH
// =============================================================================

// Decode parses raw bytes in the given format into a canonical record, or a
// sequence of canonical records when the input carries a batch.
func Decode(data []byte, kind Kind) (any, error) {
	switch kind {
	case KindXML:
		return decodeXML(data)
	case KindCSV:
		return decodeCSV(data)
	case KindJSON:
		return decodeJSON(data)
	case KindXLSX:
		return decodeXLSX(data)
	default:
		return nil, &FormatError{
			Kind: kind,
			Hint: "supported kinds are xml, csv, json and xlsx",
			Err:  fmt.Errorf("unsupported file kind %q", string(kind)),
		}
	}
}

// DetectKind guesses the format of a file from its extension, falling back
// to a content sniff when the extension is unknown.
func DetectKind(path string, data []byte) Kind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return KindXML
	case ".csv":
		return KindCSV
	case ".json":
		return KindJSON
	case ".xlsx":
		return KindXLSX
	}

	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	switch {
	case len(trimmed) > 0 && trimmed[0] == '<':
		return KindXML
	case len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '['):
		return KindJSON
	default:
		return KindCSV
	}
}
