// =============================================================================
// Smart Invoice Validator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - decoder
//   - engine
//   - encoder
//   - report
//
// CANONICAL RECORD MODEL:
//   A decoded invoice is represented as a plain Go value tree:
//     - map[string]any for mappings (keys unique, case-significant)
//     - []any          for sequences
//     - string, float64, bool, nil for scalars
//   A batch input (multiple CSV rows, multiple XML documents) is a []any of
//   such records. The engine never mutates a decoded record; corrections are
//   applied to a deep copy.
//
// =============================================================================

package types

import "fmt"

// =============================================================================
// SEVERITY / CONFIDENCE / CATEGORY ENUMS
// =============================================================================

// Severity indicates how serious a validation issue is.
type Severity string

const (
	// SeverityError blocks submission; the result is not valid.
	SeverityError Severity = "error"

	// SeverityWarning was auto-corrected or needs a second look, but does
	// not block the result on its own.
	SeverityWarning Severity = "warning"

	// SeverityInfo is purely informational.
	SeverityInfo Severity = "info"
)

// Confidence expresses how certain an automatic correction is to reflect
// the original intent of the data.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Category groups issues by the rule that produced them.
type Category string

const (
	CategoryTPIN      Category = "tpin"
	CategoryDate      Category = "date"
	CategoryVAT       Category = "vat"
	CategoryAmount    Category = "amount"
	CategoryMandatory Category = "mandatory"
	CategoryDuplicate Category = "duplicate"
	CategoryCurrency  Category = "currency"
	CategorySchema    Category = "schema"
)

// =============================================================================
// VALIDATION ISSUE
// =============================================================================

// Issue represents a single rule violation found during validation.
// Issues are immutable once created and are appended in rule order.
type Issue struct {
	// Severity is the severity of the issue ("error", "warning", "info").
	Severity Severity `json:"severity"`

	// Field names the offending field, including a record/line locator.
	// Example: "record 2: LineItems[3].UnitPrice"
	Field string `json:"field"`

	// Message is a human-readable description of the violation.
	Message string `json:"message"`

	// OriginalValue is the value as it appeared in the input, if any.
	OriginalValue any `json:"originalValue,omitempty"`

	// FixedValue is the corrected value, if the issue was auto-fixed.
	FixedValue any `json:"fixedValue,omitempty"`

	// AutoFixed is true when FixedData already contains the correction.
	AutoFixed bool `json:"autoFixed"`

	// Confidence is the certainty tier of the correction.
	Confidence Confidence `json:"confidence,omitempty"`

	// Category is the rule category that produced the issue.
	Category Category `json:"category"`
}

// String renders the issue in one line, suitable for findings reports.
func (i Issue) String() string {
	s := fmt.Sprintf("[%s/%s] %s: %s", i.Severity, i.Category, i.Field, i.Message)
	if i.AutoFixed {
		s += fmt.Sprintf(" (auto-fixed: %v -> %v, confidence %s)", i.OriginalValue, i.FixedValue, i.Confidence)
	}
	return s
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Result contains the outcome of validating one decoded payload
// (a single record or a batch of records).
type Result struct {
	// IsValid is true iff no issue has severity "error".
	IsValid bool `json:"isValid"`

	// Issues contains every rule deviation found, in evaluation order.
	Issues []Issue `json:"issues"`

	// OriginalData is the decoded input, untouched.
	OriginalData any `json:"originalData"`

	// FixedData has the same shape as OriginalData with corrected values
	// substituted in place.
	FixedData any `json:"fixedData"`
}

// ErrorCount returns the number of error-severity issues.
func (r *Result) ErrorCount() int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			n++
		}
	}
	return n
}
