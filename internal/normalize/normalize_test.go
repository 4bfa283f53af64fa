package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/zedtax/invoice-validator/internal/types"
)

// fixed clock for deterministic date tests: 2024-06-15 12:00 UTC
var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

// TestTaxpayerID tests every branch of the TPIN normalizer.
func TestTaxpayerID(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		normalized string
		confidence types.Confidence
	}{
		{"exact ten digits unchanged", "1012345678", "1012345678", types.ConfidenceHigh},
		{"formatting stripped", "101-234-5678", "1012345678", types.ConfidenceHigh},
		{"nine digits left padded", "123456789", "0123456789", types.ConfidenceMedium},
		{"eleven digits truncated", "10123456789", "1012345678", types.ConfidenceMedium},
		{"six digits right padded", "123456", "1234560000", types.ConfidenceLow},
		{"eight digits right padded", "12345678", "1234567800", types.ConfidenceLow},
		{"too short falls back to sentinel", "12345", TPINSentinel, types.ConfidenceLow},
		{"non numeric falls back to sentinel", "abc", TPINSentinel, types.ConfidenceLow},
		{"empty falls back to sentinel", "", TPINSentinel, types.ConfidenceLow},
		{"nil falls back to sentinel", nil, TPINSentinel, types.ConfidenceLow},
		{"numeric input coerced", float64(1012345678), "1012345678", types.ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TaxpayerID(tt.input)
			assert.Equal(t, tt.normalized, got.Normalized)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

// TestTaxpayerIDIdempotent verifies that an already-canonical TPIN passes
// through unchanged with high confidence.
func TestTaxpayerIDIdempotent(t *testing.T) {
	first := TaxpayerID("4500123456")
	second := TaxpayerID(first.Normalized)

	assert.Equal(t, first.Normalized, second.Normalized)
	assert.Equal(t, types.ConfidenceHigh, second.Confidence)
}

// TestDate tests the date normalizer layouts and acceptance window.
func TestDate(t *testing.T) {
	tests := []struct {
		name       string
		input      any
		normalized string
		confidence types.Confidence
	}{
		{"iso dashes", "2023-05-01", "2023-05-01", types.ConfidenceHigh},
		{"iso slashes single digit", "2023/5/1", "2023-05-01", types.ConfidenceHigh},
		{"day first slashes", "01/05/2023", "2023-05-01", types.ConfidenceHigh},
		{"day first dashes", "1-5-2023", "2023-05-01", types.ConfidenceHigh},
		{"day first dots", "01.05.2023", "2023-05-01", types.ConfidenceHigh},
		{"unix seconds", "1682899200", "2023-05-01", types.ConfidenceMedium},
		{"unix milliseconds", "1682899200000", "2023-05-01", types.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dateAt(tt.input, testNow)
			assert.Equal(t, tt.normalized, got.Normalized)
			assert.Equal(t, tt.confidence, got.Confidence)
		})
	}
}

// TestDateFallsBackToToday covers inputs that degrade to the current date.
func TestDateFallsBackToToday(t *testing.T) {
	today := testNow.Format("2006-01-02")

	for _, input := range []any{
		"not-a-date",
		"",
		"31/02/2023", // impossible calendar date
		"01/05/1999", // before the accepted window
		"01/05/2031", // beyond current year + 1
		"15/06/2025", // in the future relative to the clock
		nil,
	} {
		got := dateAt(input, testNow)
		assert.Equal(t, today, got.Normalized, "input %v", input)
		assert.Equal(t, types.ConfidenceLow, got.Confidence, "input %v", input)
	}
}

// TestNumber covers the lenient numeric coercion.
func TestNumber(t *testing.T) {
	tests := []struct {
		input any
		want  float64
		ok    bool
	}{
		{float64(12.5), 12.5, true},
		{42, 42, true},
		{"100", 100, true},
		{"1,250.75", 1250.75, true},
		{"K 1250.75", 1250.75, true},
		{"-16", -16, true},
		{"abc", 0, false},
		{"", 0, false},
		{nil, 0, false},
		{"--", 0, false},
	}

	for _, tt := range tests {
		got, ok := Number(tt.input)
		assert.Equal(t, tt.ok, ok, "input %v", tt.input)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, "input %v", tt.input)
		}
	}
}

// TestRound2 verifies half-away-from-zero rounding.
func TestRound2(t *testing.T) {
	assert.Equal(t, 2.35, Round2(2.345))
	assert.Equal(t, -2.35, Round2(-2.345))
	assert.Equal(t, 20.0, Round2(2*10.0))
	assert.Equal(t, 0.0, Round2(0))
}

// TestStringify verifies scalar coercion, in particular float rendering.
func TestStringify(t *testing.T) {
	assert.Equal(t, "1012345678", Stringify(float64(1012345678)))
	assert.Equal(t, "12.5", Stringify(12.5))
	assert.Equal(t, "true", Stringify(true))
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "x", Stringify("x"))
}
