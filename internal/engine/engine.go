// =============================================================================
// Smart Invoice Validator - Validation & Auto-Fix Engine
// =============================================================================
//
// The engine walks one or more canonical records, applies the authority rule
// set using the field normalizers, and emits a parallel fixed-record tree
// plus an ordered issue log.
//
// RULE PASSES (per record, in order):
//   1. unwrap singleton wrapper (XML root artifact)
//   2. mandatory-field presence
//   3. invoice-number duplicate detection (per-batch table)
//   4. currency token
//   5. taxpayer ID normalization
//   6. date normalization (four date-bearing fields)
//   7. VAT rate range and standard-rate check
//   8. line items: quantity/unit-price sanity, line-total recomputation
//   9. totals: VAT and grand-total recomputation from the taxable amount,
//      using the possibly-just-fixed VAT rate
//  10. structural schema presence signal
//
// ERROR HANDLING:
//   Issues are collected, never thrown. Error-severity issues make the
//   result invalid but never stop evaluation: every remaining rule and
//   every remaining record in the batch still runs. Values that cannot be
//   interpreted degrade to low-confidence fallbacks.
//
// CONCURRENCY:
//   A Context carries the only mutable cross-record state (the duplicate
//   invoice-number table) and is scoped to one Validate call. Independent
//   files validate with independent contexts, so batch processing needs no
//   locks.
//
// =============================================================================

package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/zedtax/invoice-validator/internal/normalize"
	"github.com/zedtax/invoice-validator/internal/types"
)

// =============================================================================
// RULE CONSTANTS
// =============================================================================

const (
	// StandardVATRate is the authority's standard VAT percentage, also used
	// as the replacement for out-of-range rates.
	StandardVATRate = 16.0

	// ExemptVATRate is the only other accepted rate.
	ExemptVATRate = 0.0

	// CanonicalCurrency replaces missing or unrecognized currency tokens.
	CanonicalCurrency = "ZMW"

	// amountTolerance is the absolute tolerance below which a stored amount
	// counts as already correct.
	amountTolerance = 0.01
)

// acceptedCurrencies are the only tokens that pass the currency rule.
var acceptedCurrencies = map[string]bool{
	"ZMW": true,
	"USD": true,
}

// =============================================================================
// VALIDATION CONTEXT
// =============================================================================

// Context holds per-call mutable state: the invoice-number deduplication
// table. A Context must not be shared between concurrent Validate calls;
// construct one per call (or per logical batch).
type Context struct {
	// firstSeen maps an invoice number to the 1-based index of the record
	// that introduced it.
	firstSeen map[string]int
}

// NewContext creates an empty validation context.
func NewContext() *Context {
	return &Context{firstSeen: make(map[string]int)}
}

// =============================================================================
// ENTRY POINTS
// =============================================================================

// Validate validates a decoded payload with a fresh context. This is the
// call external collaborators use for one file.
func Validate(decoded any) *types.Result {
	return ValidateWithContext(NewContext(), decoded)
}

// ValidateWithContext validates a decoded payload (a single record or a
// sequence of records) against the authority rule set. The input is never
// mutated; corrections land in a deep copy returned as FixedData.
func ValidateWithContext(ctx *Context, decoded any) *types.Result {
	result := &types.Result{
		IsValid:      true,
		Issues:       []types.Issue{},
		OriginalData: decoded,
		FixedData:    deepCopy(decoded),
	}

	switch fixed := result.FixedData.(type) {
	case []any:
		for i, element := range fixed {
			record, ok := element.(map[string]any)
			if !ok {
				result.Issues = append(result.Issues, types.Issue{
					Severity: types.SeverityError,
					Field:    fieldRef(i+1, "(record)"),
					Message:  "batch element is not a record",
					Category: types.CategorySchema,
				})
				continue
			}
			v := &recordValidator{ctx: ctx, index: i + 1, result: result}
			v.run(record)
		}

	case map[string]any:
		v := &recordValidator{ctx: ctx, index: 1, result: result}
		v.run(fixed)

	default:
		result.Issues = append(result.Issues, types.Issue{
			Severity: types.SeverityError,
			Field:    fieldRef(1, "(record)"),
			Message:  "decoded payload is not a record or record sequence",
			Category: types.CategorySchema,
		})
	}

	result.IsValid = result.ErrorCount() == 0
	return result
}

// =============================================================================
// PER-RECORD VALIDATOR
// =============================================================================

// recordValidator evaluates the rule passes for one record of a batch.
type recordValidator struct {
	ctx    *Context
	index  int
	record map[string]any
	result *types.Result
}

// run executes every rule pass against the record. The record is the deep
// copy, so write-backs are corrections, not input mutations.
func (v *recordValidator) run(record map[string]any) {
	v.record = unwrapSingleton(record)

	v.checkMandatory()
	v.checkDuplicateInvoiceNumber()
	v.checkCurrency()
	v.checkTaxpayerID()
	v.checkDates()
	effectiveRate := v.checkVATRate()
	v.checkLineItems()
	v.checkTotals(effectiveRate)
	v.checkSchema()
}

// addIssue appends an issue to the shared, ordered log.
func (v *recordValidator) addIssue(issue types.Issue) {
	v.result.Issues = append(v.result.Issues, issue)
}

// fieldRef builds the record-scoped locator for an issue.
func fieldRef(recordIndex int, path string) string {
	return fmt.Sprintf("record %d: %s", recordIndex, path)
}

func (v *recordValidator) fieldRef(path string) string {
	return fieldRef(v.index, path)
}

// -----------------------------------------------------------------------------
// Pass 2: mandatory fields
// -----------------------------------------------------------------------------

func (v *recordValidator) checkMandatory() {
	for _, field := range mandatoryFields {
		_, value, ok := resolveAlias(v.record, field.aliases)
		if !ok || isEmptyValue(value) {
			v.addIssue(types.Issue{
				Severity: types.SeverityError,
				Field:    v.fieldRef(field.name),
				Message:  fmt.Sprintf("mandatory field %s is missing or empty", field.name),
				Category: types.CategoryMandatory,
			})
		}
	}
}

// -----------------------------------------------------------------------------
// Pass 3: duplicate invoice numbers
// -----------------------------------------------------------------------------

func (v *recordValidator) checkDuplicateInvoiceNumber() {
	_, value, ok := resolveAlias(v.record, aliasInvoiceNumber)
	if !ok || isEmptyValue(value) {
		return // absence already reported by the mandatory pass
	}

	number := normalize.Stringify(value)
	if first, seen := v.ctx.firstSeen[number]; seen {
		// Never auto-fixed: a repeated number needs manual review even if
		// everything else in the record is corrected.
		v.addIssue(types.Issue{
			Severity:      types.SeverityError,
			Field:         v.fieldRef("InvoiceNumber"),
			Message:       fmt.Sprintf("duplicate invoice number %q, first seen in record %d; requires manual review", number, first),
			OriginalValue: value,
			Category:      types.CategoryDuplicate,
		})
		return
	}
	v.ctx.firstSeen[number] = v.index
}

// -----------------------------------------------------------------------------
// Pass 4: currency
// -----------------------------------------------------------------------------

func (v *recordValidator) checkCurrency() {
	key, value, ok := resolveAlias(v.record, aliasCurrency)
	if !ok {
		v.record["Currency"] = CanonicalCurrency
		v.addIssue(types.Issue{
			Severity:   types.SeverityInfo,
			Field:      v.fieldRef("Currency"),
			Message:    fmt.Sprintf("currency missing, defaulted to %s", CanonicalCurrency),
			FixedValue: CanonicalCurrency,
			AutoFixed:  true,
			Confidence: types.ConfidenceHigh,
			Category:   types.CategoryCurrency,
		})
		return
	}

	token := normalize.Stringify(value)
	if acceptedCurrencies[token] {
		return
	}

	v.record[key] = CanonicalCurrency
	v.addIssue(types.Issue{
		Severity:      types.SeverityWarning,
		Field:         v.fieldRef(key),
		Message:       fmt.Sprintf("currency %q is not accepted, replaced with %s", token, CanonicalCurrency),
		OriginalValue: value,
		FixedValue:    CanonicalCurrency,
		AutoFixed:     true,
		Confidence:    types.ConfidenceHigh,
		Category:      types.CategoryCurrency,
	})
}

// -----------------------------------------------------------------------------
// Pass 5: taxpayer ID
// -----------------------------------------------------------------------------

func (v *recordValidator) checkTaxpayerID() {
	key, value, ok := resolveAlias(v.record, aliasTPIN)
	if !ok {
		return // nothing to normalize; the mandatory pass reported absence
	}

	normalized := normalize.TaxpayerID(value)
	if normalized.Normalized == normalize.Stringify(value) {
		return
	}

	severity := types.SeverityWarning
	if normalized.Confidence == types.ConfidenceLow {
		severity = types.SeverityError
	}

	v.record[key] = normalized.Normalized
	v.addIssue(types.Issue{
		Severity:      severity,
		Field:         v.fieldRef(key),
		Message:       "taxpayer ID is not in canonical 10-digit form",
		OriginalValue: value,
		FixedValue:    normalized.Normalized,
		AutoFixed:     true,
		Confidence:    normalized.Confidence,
		Category:      types.CategoryTPIN,
	})
}

// -----------------------------------------------------------------------------
// Pass 6: dates
// -----------------------------------------------------------------------------

func (v *recordValidator) checkDates() {
	for _, field := range dateFields {
		key, value, ok := resolveAlias(v.record, field.aliases)
		if !ok {
			continue
		}

		normalized := normalize.Date(value)
		if normalized.Normalized == normalize.Stringify(value) {
			continue
		}

		severity := types.SeverityInfo
		if normalized.Confidence == types.ConfidenceLow {
			severity = types.SeverityError
		}

		v.record[key] = normalized.Normalized
		v.addIssue(types.Issue{
			Severity:      severity,
			Field:         v.fieldRef(key),
			Message:       fmt.Sprintf("%s is not in ISO format", field.name),
			OriginalValue: value,
			FixedValue:    normalized.Normalized,
			AutoFixed:     true,
			Confidence:    normalized.Confidence,
			Category:      types.CategoryDate,
		})
	}
}

// -----------------------------------------------------------------------------
// Pass 7: VAT rate
// -----------------------------------------------------------------------------

// checkVATRate validates the VAT rate and returns the effective rate for the
// totals pass. If the stored rate was out of range it has already been
// replaced by the time totals are recomputed; that ordering is load-bearing
// for consistent auto-fixes.
func (v *recordValidator) checkVATRate() float64 {
	key, value, ok := resolveAlias(v.record, aliasVATRate)
	if !ok {
		return StandardVATRate
	}

	rate, numeric := normalize.Number(value)
	if !numeric || rate < 0 || rate > 100 {
		v.record[key] = StandardVATRate
		v.addIssue(types.Issue{
			Severity:      types.SeverityWarning,
			Field:         v.fieldRef(key),
			Message:       fmt.Sprintf("VAT rate is not a percentage in [0,100], replaced with the standard rate %g", StandardVATRate),
			OriginalValue: value,
			FixedValue:    StandardVATRate,
			AutoFixed:     true,
			Confidence:    types.ConfidenceMedium,
			Category:      types.CategoryVAT,
		})
		return StandardVATRate
	}

	if rate != StandardVATRate && rate != ExemptVATRate {
		// Permitted, but flagged: only the standard and exemption rates are
		// expected on domestic invoices.
		v.addIssue(types.Issue{
			Severity:      types.SeverityInfo,
			Field:         v.fieldRef(key),
			Message:       fmt.Sprintf("non-standard VAT rate %g%%", rate),
			OriginalValue: value,
			Category:      types.CategoryVAT,
		})
	}
	return rate
}

// -----------------------------------------------------------------------------
// Pass 8: line items
// -----------------------------------------------------------------------------

func (v *recordValidator) checkLineItems() {
	key, value, ok := resolveAlias(v.record, aliasLineItems)
	if !ok {
		v.addIssue(types.Issue{
			Severity: types.SeverityError,
			Field:    v.fieldRef("LineItems"),
			Message:  "invoice has no line items field",
			Category: types.CategoryMandatory,
		})
		return
	}

	items, isSequence := collapseRepeated(value)
	if !isSequence {
		v.addIssue(types.Issue{
			Severity:      types.SeverityError,
			Field:         v.fieldRef(key),
			Message:       "line items must be a sequence",
			OriginalValue: value,
			Category:      types.CategorySchema,
		})
		return
	}

	// Mirror the collapse on the fixed copy so encoded output carries the
	// flat sequence instead of the XML wrapper artifact.
	v.record[key] = items

	if len(items) == 0 {
		v.addIssue(types.Issue{
			Severity: types.SeverityError,
			Field:    v.fieldRef(key),
			Message:  "invoice must have at least one line item",
			Category: types.CategoryMandatory,
		})
		return
	}

	for i, element := range items {
		v.checkLineItem(key, i+1, element)
	}
}

// checkLineItem validates one line and recomputes its total.
func (v *recordValidator) checkLineItem(itemsKey string, line int, element any) {
	ref := func(field string) string {
		return v.fieldRef(fmt.Sprintf("%s[%d].%s", itemsKey, line, field))
	}

	item, ok := element.(map[string]any)
	if !ok {
		v.addIssue(types.Issue{
			Severity:      types.SeverityError,
			Field:         ref("(line)"),
			Message:       "line item is not a record",
			OriginalValue: element,
			Category:      types.CategorySchema,
		})
		return
	}

	qtyKey, qtyValue, qtyFound := resolveAlias(item, aliasQuantity)
	quantity, qtyNumeric := normalize.Number(qtyValue)
	if !qtyFound {
		qtyKey = "Quantity"
	}

	priceKey, priceValue, priceFound := resolveAlias(item, aliasUnitPrice)
	price, priceNumeric := normalize.Number(priceValue)
	if !priceFound {
		priceKey = "UnitPrice"
	}

	if !qtyNumeric || quantity <= 0 {
		v.addIssue(types.Issue{
			Severity:      types.SeverityError,
			Field:         ref(qtyKey),
			Message:       "quantity must be a number greater than zero",
			OriginalValue: qtyValue,
			Category:      types.CategoryAmount,
		})
	}

	switch {
	case !priceNumeric || price < 0:
		v.addIssue(types.Issue{
			Severity:      types.SeverityError,
			Field:         ref(priceKey),
			Message:       "unit price must be a non-negative number",
			OriginalValue: priceValue,
			Category:      types.CategoryAmount,
		})
	case price == 0:
		// Free items are legal; flag for review only.
		v.addIssue(types.Issue{
			Severity:      types.SeverityWarning,
			Field:         ref(priceKey),
			Message:       "unit price is zero",
			OriginalValue: priceValue,
			Category:      types.CategoryAmount,
		})
	}

	if !qtyNumeric || quantity <= 0 || !priceNumeric || price < 0 {
		return // no trustworthy basis to recompute the line total
	}

	expected := normalize.Round2(quantity * price)
	totalKey, totalValue, totalFound := resolveAlias(item, aliasLineTotal)
	stored, storedNumeric := normalize.Number(totalValue)

	if totalFound && storedNumeric && math.Abs(stored-expected) <= amountTolerance {
		return
	}
	if !totalFound {
		totalKey = "LineTotal"
	}

	item[totalKey] = expected
	v.addIssue(types.Issue{
		Severity:      types.SeverityWarning,
		Field:         ref(totalKey),
		Message:       fmt.Sprintf("line total recomputed as quantity x unit price = %.2f", expected),
		OriginalValue: totalValue,
		FixedValue:    expected,
		AutoFixed:     true,
		Confidence:    types.ConfidenceHigh,
		Category:      types.CategoryAmount,
	})
}

// -----------------------------------------------------------------------------
// Pass 9: totals
// -----------------------------------------------------------------------------

func (v *recordValidator) checkTotals(effectiveRate float64) {
	taxKey, taxValue, taxFound := resolveAlias(v.record, aliasTaxable)
	taxable, taxNumeric := normalize.Number(taxValue)

	vatKey, vatValue, vatFound := resolveAlias(v.record, aliasVATAmount)
	vatAmount, vatNumeric := normalize.Number(vatValue)

	grandKey, grandValue, grandFound := resolveAlias(v.record, aliasGrandTotal)
	grandTotal, grandNumeric := normalize.Number(grandValue)

	negatives := []struct {
		name    string
		key     string
		found   bool
		numeric bool
		amount  float64
		value   any
	}{
		{"TaxableAmount", taxKey, taxFound, taxNumeric, taxable, taxValue},
		{"VATAmount", vatKey, vatFound, vatNumeric, vatAmount, vatValue},
		{"GrandTotal", grandKey, grandFound, grandNumeric, grandTotal, grandValue},
	}
	for _, field := range negatives {
		if field.found && field.numeric && field.amount < 0 {
			v.addIssue(types.Issue{
				Severity:      types.SeverityError,
				Field:         v.fieldRef(field.key),
				Message:       fmt.Sprintf("%s must not be negative", field.name),
				OriginalValue: field.value,
				Category:      types.CategoryAmount,
			})
		}
	}

	if taxFound && taxNumeric && taxable == 0 {
		v.addIssue(types.Issue{
			Severity:      types.SeverityWarning,
			Field:         v.fieldRef(taxKey),
			Message:       "taxable amount is zero",
			OriginalValue: taxValue,
			Category:      types.CategoryAmount,
		})
	}

	if !taxNumeric || taxable < 0 {
		return // derived totals cannot be recomputed without a basis
	}

	expectedVAT := normalize.Round2(taxable * effectiveRate / 100)
	if !vatFound || !vatNumeric || math.Abs(vatAmount-expectedVAT) > amountTolerance {
		if !vatFound {
			vatKey = "VATAmount"
		}
		v.record[vatKey] = expectedVAT
		v.addIssue(types.Issue{
			Severity:      types.SeverityWarning,
			Field:         v.fieldRef(vatKey),
			Message:       fmt.Sprintf("VAT amount recomputed as %.2f (%g%% of taxable amount)", expectedVAT, effectiveRate),
			OriginalValue: vatValue,
			FixedValue:    expectedVAT,
			AutoFixed:     true,
			Confidence:    types.ConfidenceHigh,
			Category:      types.CategoryAmount,
		})
	}

	expectedGrand := normalize.Round2(taxable + expectedVAT)
	if !grandFound || !grandNumeric || math.Abs(grandTotal-expectedGrand) > amountTolerance {
		if !grandFound {
			grandKey = "GrandTotal"
		}
		v.record[grandKey] = expectedGrand
		v.addIssue(types.Issue{
			Severity:      types.SeverityWarning,
			Field:         v.fieldRef(grandKey),
			Message:       fmt.Sprintf("grand total recomputed as %.2f (taxable amount plus VAT)", expectedGrand),
			OriginalValue: grandValue,
			FixedValue:    expectedGrand,
			AutoFixed:     true,
			Confidence:    types.ConfidenceHigh,
			Category:      types.CategoryAmount,
		})
	}
}

// -----------------------------------------------------------------------------
// Pass 10: structural schema signal
// -----------------------------------------------------------------------------

// checkSchema re-verifies the identity fields as one combined schema-level
// issue. It intentionally overlaps a subset of the mandatory pass: report
// consumers treat schema issues as "file shape" problems and mandatory
// issues as "record content" problems.
func (v *recordValidator) checkSchema() {
	var missing []string
	for _, field := range schemaFields {
		if _, _, ok := resolveAlias(v.record, field.aliases); !ok {
			missing = append(missing, field.name)
		}
	}
	if len(missing) == 0 {
		return
	}

	v.addIssue(types.Issue{
		Severity: types.SeverityError,
		Field:    v.fieldRef("(record)"),
		Message:  "record is missing required fields: " + strings.Join(missing, ", "),
		Category: types.CategorySchema,
	})
}

// =============================================================================
// DEEP COPY
// =============================================================================

// deepCopy clones a canonical value tree. FixedData is built on the clone so
// no correction can alias-mutate the caller's decoded input.
func deepCopy(value any) any {
	switch v := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(v))
		for key, inner := range v {
			clone[key] = deepCopy(inner)
		}
		return clone
	case []any:
		clone := make([]any, len(v))
		for i, inner := range v {
			clone[i] = deepCopy(inner)
		}
		return clone
	default:
		return v
	}
}
