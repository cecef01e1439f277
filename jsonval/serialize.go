package jsonval

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Serialize renders v as JSON text. With pretty set, arrays and objects are
// expanded over multiple lines with two-space indentation; compact output
// carries no whitespace at all. A nil value renders as null.
func Serialize(v *Value, pretty bool) string {
	var sb strings.Builder
	writeValue(&sb, v, pretty, 0)
	return sb.String()
}

func writeIndent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

func writeValue(sb *strings.Builder, v *Value, pretty bool, depth int) {
	switch v.Kind() {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		if v.b {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindDouble:
		writeDouble(sb, v.f)
	case KindString:
		writeString(sb, v.s)
	case KindArray:
		writeArray(sb, v, pretty, depth)
	case KindObject:
		writeObject(sb, v, pretty, depth)
	}
}

// writeDouble renders a float the way the rest of the system expects to read
// it back: non-finite values degrade to null, whole numbers below 1e15 print
// without a fractional part, everything else uses the shortest form that
// reparses to the identical bits.
func writeDouble(sb *strings.Builder, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		sb.WriteString("null")
		return
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		sb.WriteString(strconv.FormatFloat(f, 'f', 0, 64))
		return
	}
	sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
}

func writeString(sb *strings.Builder, s []byte) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			if c < 0x20 {
				fmt.Fprintf(sb, `\u%04x`, c)
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
}

func writeArray(sb *strings.Builder, v *Value, pretty bool, depth int) {
	if len(v.arr) == 0 {
		sb.WriteString("[]")
		return
	}
	sb.WriteByte('[')
	for i, elem := range v.arr {
		if i > 0 {
			sb.WriteByte(',')
		}
		if pretty {
			sb.WriteByte('\n')
			writeIndent(sb, depth+1)
		}
		writeValue(sb, elem, pretty, depth+1)
	}
	if pretty {
		sb.WriteByte('\n')
		writeIndent(sb, depth)
	}
	sb.WriteByte(']')
}

func writeObject(sb *strings.Builder, v *Value, pretty bool, depth int) {
	if len(v.obj) == 0 {
		sb.WriteString("{}")
		return
	}
	sb.WriteByte('{')
	for i := range v.obj {
		if i > 0 {
			sb.WriteByte(',')
		}
		if pretty {
			sb.WriteByte('\n')
			writeIndent(sb, depth+1)
		}
		writeString(sb, v.obj[i].key)
		sb.WriteByte(':')
		if pretty {
			sb.WriteByte(' ')
		}
		writeValue(sb, v.obj[i].val, pretty, depth+1)
	}
	if pretty {
		sb.WriteByte('\n')
		writeIndent(sb, depth)
	}
	sb.WriteByte('}')
}
