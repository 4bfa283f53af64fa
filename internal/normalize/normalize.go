// =============================================================================
// Smart Invoice Validator - Field Normalizers
// =============================================================================
//
// This module provides the pure normalization functions used by the rule
// engine. Each normalizer is a total function: it accepts any scalar input,
// never panics, and degrades to a low-confidence fallback instead of
// returning an error.
//
// NORMALIZERS:
//   - TaxpayerID: canonical 10-digit TPIN with a confidence tier
//   - Date:       canonical ISO YYYY-MM-DD with a confidence tier
//   - Number:     lenient numeric coercion (strips currency symbols, commas)
//
// CONFIDENCE TIERS:
//   high   - the input already matched (or trivially reduced to) the
//            canonical form
//   medium - a mechanical repair was applied (padding, truncation,
//            timestamp interpretation)
//   low    - the input was unusable and a fallback was substituted;
//            the engine escalates these to error severity
//
// =============================================================================

package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zedtax/invoice-validator/internal/types"
)

// TPINSentinel is substituted when a taxpayer ID cannot be recovered at all.
const TPINSentinel = "0000000000"

// tpinLength is the canonical TPIN length mandated by the authority.
const tpinLength = 10

// NormalizedValue is the result of a normalization: the canonical string
// plus the confidence tier of the conversion.
type NormalizedValue struct {
	Normalized string
	Confidence types.Confidence
}

// =============================================================================
// STRING COERCION
// =============================================================================

// Stringify coerces any scalar value to its text representation.
// Numbers are rendered without a trailing ".0" so that a decoded float64
// compares equal to its original text form.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		// Composite values have no meaningful scalar form; callers only
		// pass scalars here, but stay total regardless.
		return ""
	}
}

// =============================================================================
// TAXPAYER ID (TPIN)
// =============================================================================

// TaxpayerID normalizes a TPIN to its canonical 10-digit form.
//
// RULES:
//   - exactly 10 digits        -> unchanged, high confidence
//   - 9 digits                 -> left-pad one zero (dropped leading zero),
//     medium confidence
//   - more than 10 digits      -> first 10 digits, medium confidence
//   - 6 to 8 digits            -> right-pad zeros to 10, low confidence
//   - fewer than 6 digits      -> sentinel "0000000000", low confidence
//
// Deterministic and total; never returns an error.
func TaxpayerID(value any) NormalizedValue {
	digits := stripNonDigits(Stringify(value))

	switch {
	case len(digits) == tpinLength:
		return NormalizedValue{digits, types.ConfidenceHigh}

	case len(digits) == tpinLength-1:
		// Leading zeros are commonly lost by spreadsheet round-trips.
		return NormalizedValue{"0" + digits, types.ConfidenceMedium}

	case len(digits) > tpinLength:
		return NormalizedValue{digits[:tpinLength], types.ConfidenceMedium}

	case len(digits) >= 6:
		return NormalizedValue{digits + strings.Repeat("0", tpinLength-len(digits)), types.ConfidenceLow}

	default:
		return NormalizedValue{TPINSentinel, types.ConfidenceLow}
	}
}

// stripNonDigits removes every non-digit character from a string.
func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// =============================================================================
// DATES
// =============================================================================

// datePatterns are tried in order. Day-first parsing is hard-coded for the
// slash/dash/dot layouts; genuinely month-first input (US-style MM/DD/YYYY)
// is silently misread when both readings are valid calendar dates. This is a
// known limitation carried over from the authority tooling, not something to
// "fix" with a different heuristic.
var datePatterns = []struct {
	re        *regexp.Regexp
	yearFirst bool
}{
	{regexp.MustCompile(`^(\d{4})[-/](\d{1,2})[-/](\d{1,2})$`), true},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), false},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), false},
	{regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`), false},
}

var timestampRe = regexp.MustCompile(`^\d{10,13}$`)

// Date normalizes a date value to ISO YYYY-MM-DD.
//
// PARSING ORDER:
//  1. YYYY-M-D / YYYY/M/D, then D/M/YYYY, D-M-YYYY, D.M.YYYY. Accepted with
//     high confidence when the result is a real calendar date, not in the
//     future, with a year in [2000, current year + 1].
//  2. A 10-13 digit Unix timestamp (10 digits = seconds, otherwise
//     milliseconds), medium confidence.
//  3. Fallback to the current date, low confidence.
func Date(value any) NormalizedValue {
	return dateAt(value, time.Now().UTC())
}

// dateAt is Date with an injectable clock.
func dateAt(value any, now time.Time) NormalizedValue {
	s := strings.TrimSpace(Stringify(value))

	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}

		var year, month, day int
		if p.yearFirst {
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		} else {
			day, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}

		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)

		// time.Date normalizes overflow (e.g. month 13), so the components
		// must round-trip for the input to be a real calendar date.
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			continue
		}
		if t.After(now) || year < 2000 || year > now.Year()+1 {
			continue
		}

		return NormalizedValue{t.Format("2006-01-02"), types.ConfidenceHigh}
	}

	// Second chance: the value may be a Unix timestamp exported by another
	// system. 10 digits are seconds, 11-13 digits are milliseconds.
	if timestampRe.MatchString(s) {
		ts, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			var t time.Time
			if len(s) == 10 {
				t = time.Unix(ts, 0).UTC()
			} else {
				t = time.UnixMilli(ts).UTC()
			}
			return NormalizedValue{t.Format("2006-01-02"), types.ConfidenceMedium}
		}
	}

	// Unusable input: substitute today so downstream rules keep running.
	return NormalizedValue{now.Format("2006-01-02"), types.ConfidenceLow}
}

// =============================================================================
// NUMBERS
// =============================================================================

// Number coerces a loosely-typed value to a float64.
//
// Numeric inputs pass through unchanged. Anything else is stringified,
// stripped of every character except digits, '.' and '-', and parsed as a
// decimal. The second return value is false when no number can be recovered.
func Number(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}

	s := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, Stringify(value))

	if s == "" {
		return 0, false
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
