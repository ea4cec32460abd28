package value

import (
	"strconv"
	"strings"
)

// maxFormatDepth cuts off printing of self-referencing containers.
const maxFormatDepth = 32

// String is the print form: strings are written raw at the top level.
func (v Value) String() string {
	if v.Kind == KindString {
		return v.AsString()
	}
	var sb strings.Builder
	v.format(&sb, 0)
	return sb.String()
}

// Repr is the quoted form used inside containers.
func (v Value) Repr() string {
	var sb strings.Builder
	v.format(&sb, 0)
	return sb.String()
}

func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if strings.ContainsAny(s, ".eIN") {
		return s
	}
	return s + ".0"
}

func (v Value) format(sb *strings.Builder, depth int) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("null")
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.AsInt(), 10))
	case KindFloat:
		sb.WriteString(FormatFloat(v.AsFloat()))
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.AsBool()))
	case KindString:
		sb.WriteString(strconv.Quote(v.AsString()))
	case KindList:
		if depth >= maxFormatDepth {
			sb.WriteString("[...]")
			return
		}
		sb.WriteByte('[')
		for i, item := range v.AsList().Items() {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.format(sb, depth+1)
		}
		sb.WriteByte(']')
	case KindMap:
		if depth >= maxFormatDepth {
			sb.WriteString("{...}")
			return
		}
		sb.WriteByte('{')
		first := true
		v.AsMap().Range(func(k string, item Value) bool {
			if !first {
				sb.WriteString(", ")
			}
			first = false
			sb.WriteString(k)
			sb.WriteString(": ")
			item.format(sb, depth+1)
			return true
		})
		sb.WriteByte('}')
	case KindFunc:
		if b := v.AsBuiltin(); b != nil {
			sb.WriteString("<builtin " + b.Name + ">")
			return
		}
		name := v.AsFunction().Code.FuncName()
		if name == "" {
			name = "anonymous"
		}
		sb.WriteString("<function " + name + ">")
	case KindModule:
		sb.WriteString("<module " + v.AsModule().Name + ">")
	case KindPtr:
		sb.WriteString("<ptr " + v.AsPtr().Label + ">")
	}
}
