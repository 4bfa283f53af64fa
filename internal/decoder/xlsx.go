// =============================================================================
// Smart Invoice Validator - XLSX Decoder
// =============================================================================
//
// Spreadsheet support for invoices exported straight from Excel. Only the
// first worksheet is read: the first row is the header row, every following
// row is a record. Cell typing and the line-item wrap heuristic are shared
// with the CSV decoder, so an XLSX export of a CSV file decodes to the same
// canonical record.
//
// XLSX is decode-only; corrected output for spreadsheet inputs is written
// as CSV.
//
// =============================================================================

package decoder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// decodeXLSX parses an XLSX workbook into a canonical record or sequence.
func decodeXLSX(data []byte) (any, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{
			Kind: KindXLSX,
			Hint: "the file is not a valid XLSX workbook",
			Err:  err,
		}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &FormatError{
			Kind: KindXLSX,
			Hint: "the workbook contains no worksheets",
			Err:  fmt.Errorf("no sheets"),
		}
	}

	allRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &FormatError{
			Kind: KindXLSX,
			Hint: "the first worksheet could not be read",
			Err:  err,
		}
	}
	if len(allRows) == 0 {
		return nil, &FormatError{
			Kind: KindXLSX,
			Hint: "the first worksheet is empty",
			Err:  fmt.Errorf("no rows"),
		}
	}

	headers := cleanHeaders(allRows[0])

	rows := make([]any, 0, len(allRows)-1)
	for _, row := range allRows[1:] {
		if isRowEmpty(row) {
			continue
		}
		// excelize returns trailing empty cells inconsistently; pad so the
		// record carries every header.
		for len(row) < len(headers) {
			row = append(row, "")
		}
		record := make(map[string]any, len(headers))
		for i, header := range headers {
			record[header] = autoType(strings.TrimSpace(row[i]))
		}
		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, &FormatError{
			Kind: KindXLSX,
			Hint: "the worksheet has a header row but no data rows",
			Err:  fmt.Errorf("no data rows"),
		}
	}

	return wrapRows(rows, headers), nil
}
