package doc

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// field is one member of a canonical object. Values are string or int64.
type field struct {
	key   string
	value any
}

// marshalCanonical renders a flat object as RFC 8785 style canonical JSON:
// keys sorted, no insignificant whitespace, no HTML escaping, NFC strings.
// Only strings and integers are supported; documents carry nothing else.
func marshalCanonical(fields []field) ([]byte, error) {
	sorted := make([]field, len(fields))
	copy(sorted, fields)
	// Keys are ASCII, so byte order equals UTF-16 code unit order.
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range sorted {
		if i > 0 {
			if sorted[i-1].key == f.key {
				return nil, fmt.Errorf("duplicate key %q", f.key)
			}
			buf.WriteByte(',')
		}
		writeCanonicalString(&buf, f.key)
		buf.WriteByte(':')
		switch v := f.value.(type) {
		case string:
			writeCanonicalString(&buf, v)
		case int64:
			buf.WriteString(strconv.FormatInt(v, 10))
		default:
			return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// writeCanonicalString escapes only the quote, the backslash and control
// characters, as RFC 8785 requires. U+2028 and U+2029 stay literal.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			buf.WriteString(`\"`)
		case r == '\\':
			buf.WriteString(`\\`)
		case r == '\b':
			buf.WriteString(`\b`)
		case r == '\f':
			buf.WriteString(`\f`)
		case r == '\n':
			buf.WriteString(`\n`)
		case r == '\r':
			buf.WriteString(`\r`)
		case r == '\t':
			buf.WriteString(`\t`)
		case r < 0x20:
			fmt.Fprintf(buf, `\u%04x`, r)
		default:
			buf.WriteString(s[i : i+size])
		}
		i += size
	}
	buf.WriteByte('"')
}
