// JSON rendering of decoded values, for inspection only. The mapping is
// one way: it loses symbol/string distinctions and key order of objects.
package rvdata

import (
	"encoding/base64"
	"math"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// MarshalJSON renders v for humans. Symbols become ":name", binary
// strings that are not valid UTF-8 become {"binary": base64}, objects
// become {"class": ..., "fields": {...}}. A value reached again while it
// is still being rendered becomes {"cycle": class-or-kind}.
func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonValue(v, make(map[*Value]bool)))
}

func jsonValue(v *Value, active map[*Value]bool) any {
	switch v.Kind() {
	case KindNil:
		return nil
	case KindBool:
		return v.boolVal
	case KindInt:
		return json.Number(v.Big().String())
	case KindFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return formatFloat(v.floatVal)
		}
		return v.floatVal
	case KindString:
		if v.enc == EncodingBinary && !utf8.Valid(v.data) {
			return map[string]any{"binary": base64.StdEncoding.EncodeToString(v.data)}
		}
		return string(v.data)
	case KindSymbol:
		return ":" + v.name
	case KindUserData:
		return map[string]any{"class": v.name, "data": base64.StdEncoding.EncodeToString(v.data)}
	}

	if active[v] {
		name := v.Class()
		if name == "" {
			name = v.kind.String()
		}
		return map[string]any{"cycle": name}
	}
	active[v] = true
	defer delete(active, v)

	switch v.kind {
	case KindArray:
		out := make([]any, len(v.items))
		for i, item := range v.items {
			out[i] = jsonValue(item, active)
		}
		return out
	case KindHash:
		out := make([]any, len(v.pairs))
		for i, p := range v.pairs {
			out[i] = map[string]any{"key": jsonValue(p.Key, active), "value": jsonValue(p.Value, active)}
		}
		if v.def != nil {
			return map[string]any{"pairs": out, "default": jsonValue(v.def, active)}
		}
		return out
	default: // KindObject, KindStruct
		fields := make(map[string]any, len(v.fields))
		for _, f := range v.fields {
			fields[f.Name] = jsonValue(f.Value, active)
		}
		return map[string]any{"class": v.name, "fields": fields}
	}
}
