// =============================================================================
// Smart Invoice Validator - JSON Decoder
// =============================================================================
//
// JSON input is parsed directly. On a syntax error a best-effort repair pass
// rewrites the most common hand-edited-JSON mistakes and the parse is
// retried once:
//
//   - // line comments and /* block comments */ are stripped
//   - single-quoted strings become double-quoted
//   - bare object keys are quoted
//   - trailing commas before ] or } are removed
//   - CRLF line endings are normalized
//
// If the repaired text still fails to parse, decoding fails with both the
// parser diagnostic and formatting hints.
//
// =============================================================================

package decoder

import (
	"encoding/json"
	"regexp"
	"strings"
)

// decodeJSON parses JSON bytes into a canonical record or record sequence.
func decodeJSON(data []byte) (any, error) {
	var value any
	if err := json.Unmarshal(data, &value); err == nil {
		return value, nil
	}

	repaired := repairJSON(string(data))
	if err := json.Unmarshal([]byte(repaired), &value); err != nil {
		return nil, &FormatError{
			Kind: KindJSON,
			Hint: "check for missing quotes around keys, single-quoted strings, comments or trailing commas",
			Err:  err,
		}
	}
	return value, nil
}

// bareKeyRe matches an unquoted object key after '{' or ','.
var bareKeyRe = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)

// trailingCommaRe matches a comma directly before a closing bracket.
var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// repairJSON applies the repair rewrites in a fixed order. Comment stripping
// and quote conversion run on a character scanner so that string contents
// are never touched; the key/comma rewrites are regex passes on the result.
func repairJSON(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = stripCommentsAndRequote(s)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = trailingCommaRe.ReplaceAllString(s, `$1`)
	return s
}

// stripCommentsAndRequote removes // and /* */ comments and converts
// single-quoted strings to double-quoted ones, escaping any inner double
// quotes. Content inside double-quoted strings passes through untouched.
func stripCommentsAndRequote(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	const (
		stateCode = iota
		stateDouble
		stateSingle
		stateLineComment
		stateBlockComment
	)

	state := stateCode
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		switch state {
		case stateCode:
			switch {
			case c == '"':
				state = stateDouble
				out.WriteByte(c)
			case c == '\'':
				state = stateSingle
				out.WriteByte('"')
			case c == '/' && i+1 < len(s) && s[i+1] == '/':
				state = stateLineComment
				i++
			case c == '/' && i+1 < len(s) && s[i+1] == '*':
				state = stateBlockComment
				i++
			default:
				out.WriteByte(c)
			}

		case stateDouble:
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				state = stateCode
			}

		case stateSingle:
			if escaped {
				escaped = false
				// JSON has no \' escape; emit a bare quote. Every other
				// escape is passed through with its backslash.
				if c == '\'' {
					out.WriteByte('\'')
				} else {
					out.WriteByte('\\')
					out.WriteByte(c)
				}
				continue
			}
			switch c {
			case '\\':
				escaped = true
			case '\'':
				out.WriteByte('"')
				state = stateCode
			case '"':
				out.WriteString(`\"`)
			default:
				out.WriteByte(c)
			}

		case stateLineComment:
			if c == '\n' {
				out.WriteByte(c)
				state = stateCode
			}

		case stateBlockComment:
			if c == '*' && i+1 < len(s) && s[i+1] == '/' {
				i++
				state = stateCode
			}
		}
	}

	return out.String()
}
