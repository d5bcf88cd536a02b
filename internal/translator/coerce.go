package translator

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Drivers hand back loosely typed values (sql.Null*, []byte, int64 for
// booleans on some engines); everything is coerced by declared kind here so
// nothing past the translator sees a backend-native value.

func toCanonicalValue(f Field, raw any) (any, error) {
	switch f.Kind {
	case KindString:
		s, err := asString(raw)
		if err != nil {
			return nil, err
		}
		if f.Enum != nil {
			mapped, ok := f.Enum[s]
			if !ok {
				return nil, fmt.Errorf("unknown value %q", s)
			}
			return mapped, nil
		}
		return s, nil
	case KindBool:
		return asBool(raw)
	case KindInt:
		return asInt(raw)
	case KindFloat:
		return asFloat(raw)
	case KindTime:
		t, err := asTime(raw)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case KindJSON:
		return asJSON(raw)
	case KindStringList:
		return asStringList(raw)
	}
	return nil, fmt.Errorf("unsupported kind %d", f.Kind)
}

func toLegacyValue(f Field, v any) (any, error) {
	v = indirect(v)
	if v == nil {
		return nil, nil
	}
	switch f.Kind {
	case KindString:
		s, err := asString(v)
		if err != nil {
			return nil, err
		}
		if f.Enum != nil {
			for legacy, canonical := range f.Enum {
				if canonical == s {
					return legacy, nil
				}
			}
			return nil, fmt.Errorf("no legacy value for %q", s)
		}
		return s, nil
	case KindBool:
		return asBool(v)
	case KindInt:
		return asInt(v)
	case KindFloat:
		return asFloat(v)
	case KindTime:
		t, err := asTime(v)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	case KindJSON:
		raw, err := asJSON(v)
		if err != nil || raw == nil {
			return nil, err
		}
		return datatypes.JSON(raw), nil
	case KindStringList:
		return asStringList(v)
	}
	return nil, fmt.Errorf("unsupported kind %d", f.Kind)
}

// indirect dereferences pointers and reduces named scalar types (such as
// domain status enums) to their underlying Go type.
func indirect(v any) any {
	if v == nil {
		return nil
	}
	switch v.(type) {
	case string, bool, int, int64, float64, time.Time, json.RawMessage, datatypes.JSON, []byte:
		return v
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return rv.Interface()
}

func asString(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	case nil:
		return "", fmt.Errorf("nil value")
	}
	return "", fmt.Errorf("cannot read %T as string", v)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case int64:
		return b != 0, nil
	case int:
		return b != 0, nil
	case float64:
		return b != 0, nil
	case string, []byte:
		s, _ := asString(b)
		return strconv.ParseBool(strings.TrimSpace(s))
	}
	return false, fmt.Errorf("cannot read %T as bool", v)
}

func asInt(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int64(n), nil
	case float32:
		return asInt(float64(n))
	case string, []byte:
		s, _ := asString(n)
		return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	}
	return 0, fmt.Errorf("cannot read %T as int", v)
}

func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case string, []byte:
		s, _ := asString(n)
		return strconv.ParseFloat(strings.TrimSpace(s), 64)
	}
	return 0, fmt.Errorf("cannot read %T as float", v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func asTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		if t == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return *t, nil
	case string, []byte:
		s, _ := asString(t)
		s = strings.TrimSpace(s)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", s)
	}
	return time.Time{}, fmt.Errorf("cannot read %T as time", v)
}

// asJSON returns raw JSON, or nil for a JSON null.
func asJSON(v any) (json.RawMessage, error) {
	var raw []byte
	switch j := v.(type) {
	case json.RawMessage:
		raw = j
	case datatypes.JSON:
		raw = j
	case []byte:
		raw = j
	case string:
		raw = []byte(j)
	default:
		encoded, err := json.Marshal(j)
		if err != nil {
			return nil, err
		}
		raw = encoded
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("invalid JSON payload")
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out, nil
}

func asStringList(v any) ([]string, error) {
	switch l := v.(type) {
	case []string:
		return l, nil
	case []any:
		out := make([]string, 0, len(l))
		for _, item := range l {
			s, err := asString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, s)
		}
		return out, nil
	case string, []byte:
		raw, err := asJSON(l)
		if err != nil {
			return nil, err
		}
		var out []string
		if raw != nil {
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, err
			}
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot read %T as string list", v)
}
