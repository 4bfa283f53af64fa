// =============================================================================
// Smart Invoice Validator - Field Alias Resolution
// =============================================================================
//
// Every semantic field may appear under multiple literal key spellings:
// PascalCase from XML exports, camelCase from JSON APIs, snake_case and
// legacy names from older systems. Each field carries a fixed priority list
// of aliases, resolved by first-present lookup.
//
// WRITE-BACK INVARIANT:
//   Corrections are always written back under the exact key spelling that
//   was found, never a canonically-chosen one. Silently renaming a caller's
//   schema would break their downstream consumers.
//
// =============================================================================

package engine

// Alias priority lists per semantic field. Order matters: the original
// (PascalCase) spelling is tried first, then lowerCamel, all-lowercase and
// legacy names.
var (
	aliasTPIN          = []string{"TPIN", "tpin", "TaxpayerID", "taxpayerId", "taxpayer_id"}
	aliasInvoiceNumber = []string{"InvoiceNumber", "invoiceNumber", "invoice_no", "InvoiceNo", "invoicenumber"}
	aliasInvoiceDate   = []string{"InvoiceDate", "invoiceDate", "invoice_date", "Date", "date"}
	aliasDueDate       = []string{"DueDate", "dueDate", "due_date"}
	aliasSupplyDate    = []string{"SupplyDate", "supplyDate", "supply_date"}
	aliasIssueDate     = []string{"IssueDate", "issueDate", "issue_date"}
	aliasCurrency      = []string{"Currency", "currency", "CurrencyCode", "currencyCode"}
	aliasVATRate       = []string{"VATRate", "vatRate", "vat_rate", "TaxRate", "taxRate"}
	aliasLineItems     = []string{"LineItems", "lineItems", "line_items", "Items", "items"}
	aliasQuantity      = []string{"Quantity", "quantity", "Qty", "qty"}
	aliasUnitPrice     = []string{"UnitPrice", "unitPrice", "unit_price", "Price", "price"}
	aliasLineTotal     = []string{"LineTotal", "lineTotal", "line_total", "Total", "total"}
	aliasTaxable       = []string{"TaxableAmount", "taxableAmount", "taxable_amount", "SubTotal", "subTotal", "subtotal"}
	aliasVATAmount     = []string{"VATAmount", "vatAmount", "vat_amount", "TaxAmount", "taxAmount"}
	aliasGrandTotal    = []string{"GrandTotal", "grandTotal", "grand_total", "TotalAmount", "totalAmount", "InvoiceTotal"}
)

// dateFields are the four date-bearing fields the engine normalizes.
var dateFields = []struct {
	name    string
	aliases []string
}{
	{"InvoiceDate", aliasInvoiceDate},
	{"DueDate", aliasDueDate},
	{"SupplyDate", aliasSupplyDate},
	{"IssueDate", aliasIssueDate},
}

// mandatoryFields are checked for presence on every record.
var mandatoryFields = []struct {
	name    string
	aliases []string
}{
	{"TPIN", aliasTPIN},
	{"InvoiceDate", aliasInvoiceDate},
	{"InvoiceNumber", aliasInvoiceNumber},
	{"TaxableAmount", aliasTaxable},
	{"VATAmount", aliasVATAmount},
	{"GrandTotal", aliasGrandTotal},
}

// schemaFields are re-checked as a distinct schema-level signal.
var schemaFields = []struct {
	name    string
	aliases []string
}{
	{"TPIN", aliasTPIN},
	{"InvoiceNumber", aliasInvoiceNumber},
	{"InvoiceDate", aliasInvoiceDate},
}

// resolveAlias returns the first alias key present in the record, with its
// value. ok is false when no alias is present at all.
func resolveAlias(record map[string]any, aliases []string) (key string, value any, ok bool) {
	for _, alias := range aliases {
		if v, present := record[alias]; present {
			return alias, v, true
		}
	}
	return "", nil, false
}

// isEmptyValue reports whether a resolved value counts as absent for the
// mandatory-field check.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
