// =============================================================================
// Smart Invoice Validator - XML Decoder
// =============================================================================
//
// Recursive descent over the parsed XML token stream. The mapping to the
// canonical record model is:
//
//   <Invoice>                          {                       // root unwrapped
//     <TPIN>1001234567</TPIN>            "TPIN": "1001234567",
//     <LineItems>                        "LineItems": {
//       <LineItem>...</LineItem>           "LineItem": [ {...}, {...} ]
//       <LineItem>...</LineItem>         },
//     </LineItems>                     }
//   </Invoice>
//
//   - each element becomes a mapping keyed by child tag name
//   - attributes are collected under the reserved key "@attributes"
//   - text-only elements collapse to their string value
//   - repeated sibling tags with the same name collapse into a sequence
//   - the document root is unwrapped one level so downstream logic sees the
//     invoice fields directly; a file with several root-level documents
//     decodes to a sequence of records
//
// =============================================================================

package decoder

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
)

// AttributesKey is the reserved mapping key for element attributes.
const AttributesKey = "@attributes"

// TextKey holds the character data of an element that has attributes but no
// child elements.
const TextKey = "#text"

// decodeXML parses an XML document (or several concatenated documents) into
// canonical records.
func decodeXML(data []byte) (any, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var records []any
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &FormatError{
				Kind: KindXML,
				Hint: "check for unclosed tags and a single well-formed root element",
				Err:  err,
			}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue // declaration, comments, whitespace between documents
		}

		value, err := parseElement(dec, start)
		if err != nil {
			return nil, &FormatError{
				Kind: KindXML,
				Hint: "check for unclosed tags and mismatched end elements",
				Err:  err,
			}
		}
		records = append(records, value)
	}

	if len(records) == 0 {
		return nil, &FormatError{
			Kind: KindXML,
			Hint: "the file contains no XML elements",
			Err:  io.ErrUnexpectedEOF,
		}
	}
	if len(records) == 1 {
		return records[0], nil
	}
	return records, nil
}

// parseElement consumes one element (the start token has already been read)
// and returns its canonical value.
func parseElement(dec *xml.Decoder, start xml.StartElement) (any, error) {
	children := make(map[string]any)

	if len(start.Attr) > 0 {
		attrs := make(map[string]any, len(start.Attr))
		for _, a := range start.Attr {
			attrs[a.Name.Local] = a.Value
		}
		children[AttributesKey] = attrs
	}

	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			child, err := parseElement(dec, t)
			if err != nil {
				return nil, err
			}
			mergeChild(children, t.Name.Local, child)

		case xml.CharData:
			text.Write(t)

		case xml.EndElement:
			return finishElement(children, strings.TrimSpace(text.String())), nil
		}
	}
}

// mergeChild inserts a child value, collapsing repeated sibling tags with the
// same name into a sequence.
func mergeChild(children map[string]any, name string, child any) {
	existing, seen := children[name]
	if !seen {
		children[name] = child
		return
	}
	if seq, ok := existing.([]any); ok {
		children[name] = append(seq, child)
		return
	}
	children[name] = []any{existing, child}
}

// finishElement decides the canonical value of a completed element.
// Text-only elements collapse to their string value; elements that carry
// only attributes keep the text under the reserved "#text" key.
func finishElement(children map[string]any, text string) any {
	_, hasAttrs := children[AttributesKey]

	if len(children) == 0 {
		return text
	}
	if hasAttrs && len(children) == 1 && text != "" {
		children[TextKey] = text
	}
	return children
}
