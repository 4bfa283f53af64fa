package decoder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// TestDetectKind covers extension detection and the content sniff fallback.
func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindXML, DetectKind("invoice.XML", nil))
	assert.Equal(t, KindCSV, DetectKind("rows.csv", nil))
	assert.Equal(t, KindJSON, DetectKind("inv.json", nil))
	assert.Equal(t, KindXLSX, DetectKind("book.xlsx", nil))

	assert.Equal(t, KindXML, DetectKind("upload.dat", []byte("  <Invoice/>")))
	assert.Equal(t, KindJSON, DetectKind("upload.dat", []byte("{\"a\":1}")))
	assert.Equal(t, KindJSON, DetectKind("upload.dat", []byte("[1]")))
	assert.Equal(t, KindCSV, DetectKind("upload.dat", []byte("a,b\n1,2")))
}

// TestDecodeUnsupportedKind verifies the dispatch error path.
func TestDecodeUnsupportedKind(t *testing.T) {
	_, err := Decode([]byte("x"), Kind("pdf"))
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, Kind("pdf"), fe.Kind)
	assert.Contains(t, fe.Error(), "unsupported file kind")
}

// =============================================================================
// XML
// =============================================================================

func TestDecodeXMLBasic(t *testing.T) {
	input := `<?xml version="1.0"?>
<Invoice>
  <TPIN>1001234567</TPIN>
  <InvoiceNumber>INV-001</InvoiceNumber>
  <LineItems>
    <LineItem><Quantity>2</Quantity><UnitPrice>10</UnitPrice></LineItem>
    <LineItem><Quantity>1</Quantity><UnitPrice>5</UnitPrice></LineItem>
  </LineItems>
</Invoice>`

	decoded, err := Decode([]byte(input), KindXML)
	require.NoError(t, err)

	// The document root is unwrapped one level.
	record, ok := decoded.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1001234567", record["TPIN"])
	assert.Equal(t, "INV-001", record["InvoiceNumber"])

	// Repeated sibling tags collapse into a sequence.
	wrapper, ok := record["LineItems"].(map[string]any)
	require.True(t, ok)
	items, ok := wrapper["LineItem"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	first, ok := items[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", first["Quantity"])
}

func TestDecodeXMLAttributes(t *testing.T) {
	input := `<Invoice currency="ZMW"><TPIN id="primary">1001234567</TPIN></Invoice>`

	decoded, err := Decode([]byte(input), KindXML)
	require.NoError(t, err)

	record := decoded.(map[string]any)
	attrs, ok := record[AttributesKey].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ZMW", attrs["currency"])

	// An element with attributes and text keeps the text under "#text".
	tpin, ok := record["TPIN"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1001234567", tpin[TextKey])
}

func TestDecodeXMLMultipleDocuments(t *testing.T) {
	input := `<Invoice><InvoiceNumber>A</InvoiceNumber></Invoice>
<Invoice><InvoiceNumber>B</InvoiceNumber></Invoice>`

	decoded, err := Decode([]byte(input), KindXML)
	require.NoError(t, err)

	records, ok := decoded.([]any)
	require.True(t, ok)
	require.Len(t, records, 2)
}

func TestDecodeXMLMalformed(t *testing.T) {
	_, err := Decode([]byte("<Invoice><TPIN>123</Invoice>"), KindXML)
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindXML, fe.Kind)
}

// =============================================================================
// CSV
// =============================================================================

func TestDecodeCSVLineItemWrap(t *testing.T) {
	input := "Quantity,UnitPrice,LineTotal\n2,10,20\n1,5,5\n"

	decoded, err := Decode([]byte(input), KindCSV)
	require.NoError(t, err)

	record, ok := decoded.(map[string]any)
	require.True(t, ok, "line-item-shaped rows must wrap into one record")

	items, ok := record["LineItems"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)

	first := items[0].(map[string]any)
	assert.Equal(t, float64(2), first["Quantity"])
	assert.Equal(t, float64(10), first["UnitPrice"])
}

func TestDecodeCSVMultipleInvoices(t *testing.T) {
	input := "InvoiceNumber,TPIN\nINV-1,1001234567\nINV-2,1001234568\n"

	decoded, err := Decode([]byte(input), KindCSV)
	require.NoError(t, err)

	records, ok := decoded.([]any)
	require.True(t, ok)
	require.Len(t, records, 2)

	first := records[0].(map[string]any)
	assert.Equal(t, "INV-1", first["InvoiceNumber"])
}

func TestDecodeCSVAutoTyping(t *testing.T) {
	input := "InvoiceNumber,Amount,Qty\n0042,12.5,3\n"

	decoded, err := Decode([]byte(input), KindCSV)
	require.NoError(t, err)

	record := decoded.(map[string]any)
	// Leading zeros must survive as text.
	assert.Equal(t, "0042", record["InvoiceNumber"])
	assert.Equal(t, 12.5, record["Amount"])
	assert.Equal(t, float64(3), record["Qty"])
}

func TestDecodeCSVEmpty(t *testing.T) {
	_, err := Decode([]byte(""), KindCSV)
	require.Error(t, err)

	_, err = Decode([]byte("OnlyHeaders,NoRows\n"), KindCSV)
	require.Error(t, err)
}

// =============================================================================
// JSON
// =============================================================================

func TestDecodeJSONClean(t *testing.T) {
	input := `{"TPIN": "1001234567", "LineItems": [{"Quantity": 2}]}`

	decoded, err := Decode([]byte(input), KindJSON)
	require.NoError(t, err)

	record := decoded.(map[string]any)
	assert.Equal(t, "1001234567", record["TPIN"])
}

func TestDecodeJSONRepair(t *testing.T) {
	input := `{
  // exported by hand
  TPIN: '1001234567',
  note: 'it\'s fine',
  /* legacy block */
  LineItems: [
    {Quantity: 2, UnitPrice: 10,},
  ],
}`

	decoded, err := Decode([]byte(input), KindJSON)
	require.NoError(t, err)

	record := decoded.(map[string]any)
	assert.Equal(t, "1001234567", record["TPIN"])
	assert.Equal(t, "it's fine", record["note"])

	items := record["LineItems"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, float64(2), items[0].(map[string]any)["Quantity"])
}

func TestDecodeJSONCommentMarkersInsideStrings(t *testing.T) {
	input := `{"url": "https://example.com/a", "note": "a /* not a comment */ b"}`

	decoded, err := Decode([]byte(input), KindJSON)
	require.NoError(t, err)

	record := decoded.(map[string]any)
	assert.Equal(t, "https://example.com/a", record["url"])
	assert.Equal(t, "a /* not a comment */ b", record["note"])
}

func TestDecodeJSONUnrepairable(t *testing.T) {
	_, err := Decode([]byte(`{"a": }`), KindJSON)
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindJSON, fe.Kind)
	assert.Contains(t, fe.Error(), "check for")
}

// =============================================================================
// XLSX
// =============================================================================

func TestDecodeXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Quantity", "UnitPrice", "LineTotal"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{2, 10, 20}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{1, 5, 5}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	decoded, err := Decode(buf.Bytes(), KindXLSX)
	require.NoError(t, err)

	record, ok := decoded.(map[string]any)
	require.True(t, ok)
	items := record["LineItems"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, float64(2), items[0].(map[string]any)["Quantity"])
}

func TestDecodeXLSXNotAWorkbook(t *testing.T) {
	_, err := Decode([]byte("definitely not a zip"), KindXLSX)
	require.Error(t, err)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, KindXLSX, fe.Kind)
}
