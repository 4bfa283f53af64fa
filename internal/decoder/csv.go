// =============================================================================
// Smart Invoice Validator - CSV Decoder
// =============================================================================
//
// Parses CSV input with the header row as field names, one record per row.
// Each cell is auto-typed (unambiguous numeric strings become numbers).
//
// LINE ITEM HEURISTIC:
//   CSV has no native nesting. When the rows carry line-item-shaped columns
//   (a quantity column and a unit-price column, in either case), the whole
//   row set is wrapped into a single record {"LineItems": [...]} so the
//   engine treats the file as one invoice with many line items rather than
//   many independent invoices.
//
// =============================================================================

package decoder

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// decodeCSV parses CSV bytes into a canonical record or sequence of records.
func decodeCSV(data []byte) (any, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	// Tolerant reader settings: ragged rows and loose quoting show up
	// constantly in exports from legacy billing systems.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, &FormatError{
			Kind: KindCSV,
			Hint: "check for unbalanced quotes and consistent delimiters",
			Err:  err,
		}
	}
	if len(allRows) == 0 {
		return nil, &FormatError{
			Kind: KindCSV,
			Hint: "the file is empty",
			Err:  fmt.Errorf("no rows"),
		}
	}

	headers := cleanHeaders(allRows[0])

	rows := make([]any, 0, len(allRows)-1)
	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		rows = append(rows, rowToRecord(headers, row))
	}

	if len(rows) == 0 {
		return nil, &FormatError{
			Kind: KindCSV,
			Hint: "the file has a header row but no data rows",
			Err:  fmt.Errorf("no data rows"),
		}
	}

	return wrapRows(rows, headers), nil
}

// wrapRows applies the line-item heuristic shared by the CSV and XLSX
// decoders: row sets with line-item-shaped columns become one invoice.
func wrapRows(rows []any, headers []string) any {
	if hasLineItemShape(headers) {
		return map[string]any{"LineItems": rows}
	}
	if len(rows) == 1 {
		return rows[0]
	}
	return rows
}

// hasLineItemShape reports whether the headers look like per-line columns:
// at least a quantity column and a unit-price column, in either case.
func hasLineItemShape(headers []string) bool {
	var hasQuantity, hasPrice bool
	for _, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "quantity", "qty":
			hasQuantity = true
		case "unitprice", "unit_price", "unit price", "price":
			hasPrice = true
		}
	}
	return hasQuantity && hasPrice
}

// rowToRecord converts one CSV row into a canonical mapping.
func rowToRecord(headers []string, row []string) map[string]any {
	record := make(map[string]any, len(headers))
	for i, header := range headers {
		if i < len(row) {
			record[header] = autoType(strings.TrimSpace(row[i]))
		} else {
			record[header] = ""
		}
	}
	return record
}

// autoType converts a cell to a number when the conversion is unambiguous.
// Values with leading zeros (invoice numbers, TPINs) stay strings so no
// information is lost.
func autoType(cell string) any {
	if cell == "" {
		return ""
	}

	f, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return cell
	}

	// A numeric cell is unambiguous only if the parsed value renders back
	// to the original text.
	if strconv.FormatFloat(f, 'f', -1, 64) != cell {
		return cell
	}
	return f
}

// cleanHeaders trims headers and replaces empty ones with a positional name.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, header := range headers {
		header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
		if header == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}
	return cleaned
}

// isRowEmpty checks if a row contains only empty values.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
