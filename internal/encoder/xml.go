// =============================================================================
// Smart Invoice Validator - XML Encoder
// =============================================================================
//
// Emits a canonical record tree as indented XML under a single declared root
// element. The emission rules are the inverse of the XML decoder:
//
//   - one element per mapping key, skipping the reserved "@attributes" key
//     (attribute fidelity is not required on output; attributes were already
//     surfaced to the engine on decode)
//   - sequence values emit sibling elements with the same tag repeated
//   - scalar leaves emit escaped text content
//   - a record sequence is wrapped as <Invoices> around one <Invoice> each
//
// Mapping keys are emitted in sorted order so output is deterministic.
//
// =============================================================================

package encoder

import (
	"bytes"
	"sort"
	"strings"

	"github.com/zedtax/invoice-validator/internal/decoder"
	"github.com/zedtax/invoice-validator/internal/normalize"
)

const (
	xmlDeclaration = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"
	xmlIndent      = "  "

	recordRootTag = "Invoice"
	batchRootTag  = "Invoices"
)

// encodeXML serializes a record or record sequence to XML bytes.
func encodeXML(data any) []byte {
	var buffer bytes.Buffer
	buffer.WriteString(xmlDeclaration)

	if seq, ok := data.([]any); ok {
		buffer.WriteString("<" + batchRootTag + ">\n")
		for _, record := range seq {
			writeXMLValue(&buffer, recordRootTag, record, 1)
		}
		buffer.WriteString("</" + batchRootTag + ">\n")
		return buffer.Bytes()
	}

	writeXMLValue(&buffer, recordRootTag, data, 0)
	return buffer.Bytes()
}

// writeXMLValue writes one named value with indentation, recursing into
// mappings and repeating the tag for sequences.
func writeXMLValue(buffer *bytes.Buffer, name string, value any, level int) {
	tag := sanitizeTag(name)

	switch v := value.(type) {
	case map[string]any:
		writeIndent(buffer, level)
		buffer.WriteString("<" + tag + ">\n")
		for _, key := range sortedKeys(v) {
			if key == decoder.AttributesKey {
				continue
			}
			writeXMLValue(buffer, key, v[key], level+1)
		}
		writeIndent(buffer, level)
		buffer.WriteString("</" + tag + ">\n")

	case []any:
		for _, item := range v {
			writeXMLValue(buffer, name, item, level)
		}

	default:
		writeIndent(buffer, level)
		text := normalize.Stringify(value)
		if text == "" {
			buffer.WriteString("<" + tag + "/>\n")
			return
		}
		buffer.WriteString("<" + tag + ">" + escapeXML(text) + "</" + tag + ">\n")
	}
}

// writeIndent writes the indentation for one nesting level.
func writeIndent(buffer *bytes.Buffer, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(xmlIndent)
	}
}

// sortedKeys returns the mapping keys in sorted order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// sanitizeTag turns an arbitrary mapping key into a legal XML element name.
// CSV headers may carry spaces or punctuation that XML tags cannot.
func sanitizeTag(name string) string {
	var b strings.Builder
	for i, r := range name {
		valid := r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9' && i > 0)
		if valid {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	tag := b.String()
	if tag == "" {
		tag = "Field"
	}
	if tag[0] == '-' || tag[0] == '.' || (tag[0] >= '0' && tag[0] <= '9') {
		tag = "_" + tag
	}
	return tag
}

// escapeXML escapes special characters for XML text content and attributes.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
