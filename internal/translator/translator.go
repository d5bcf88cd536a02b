// Package translator converts between legacy-backend rows and the canonical
// entity shape. It performs no I/O.
package translator

import (
	"encoding/json"
	"fmt"
	"strings"

	"go-recruitment-datalayer/internal/domain"
	"go-recruitment-datalayer/pkg/apperror"
)

type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
	KindTime
	KindJSON
	KindStringList
)

// Field declares one canonical field and the legacy column backing it.
// Canonical may be a dotted path into a nested canonical object.
type Field struct {
	Canonical string
	Legacy    string
	Kind      Kind
	Required  bool
	// Enum maps legacy values to canonical values. Nil means passthrough.
	Enum map[string]string
}

// Default is a canonical field with no legacy column. It is defaulted on
// read and dropped on legacy writes.
type Default struct {
	Canonical string
	Kind      Kind
}

// Mapping is the complete declaration for one family.
type Mapping struct {
	Family domain.Family
	Fields []Field
	// CanonicalOnly enumerates the fields lost on a legacy round trip.
	CanonicalOnly []Default
	// Derived fields are computed from primitives at translation time and
	// never written to the legacy backend.
	Derived []string
}

// Field returns the declaration for a canonical path.
func (m Mapping) Field(canonical string) (Field, bool) {
	for _, f := range m.Fields {
		if f.Canonical == canonical {
			return f, true
		}
	}
	return Field{}, false
}

// LegacyColumn renames a canonical field to its legacy column.
func (m Mapping) LegacyColumn(canonical string) (string, error) {
	f, ok := m.Field(canonical)
	if !ok {
		return "", fmt.Errorf("translator: %s has no legacy column for %q", m.Family, canonical)
	}
	return f.Legacy, nil
}

// LegacyValue converts a canonical value for use against the legacy column.
func (m Mapping) LegacyValue(canonical string, v any) (any, error) {
	f, ok := m.Field(canonical)
	if !ok {
		return nil, fmt.Errorf("translator: %s has no legacy column for %q", m.Family, canonical)
	}
	return toLegacyValue(f, v)
}

// Required lists the canonical fields the contract marks required.
func (m Mapping) Required() []string {
	var out []string
	for _, f := range m.Fields {
		if f.Required {
			out = append(out, f.Canonical)
		}
	}
	return out
}

// ToCanonical maps a legacy row to the canonical shape. Every canonical key
// is present in the result; absent nullable fields are nil and list fields
// are empty. A missing required field yields a ShapeError.
func ToCanonical(m Mapping, row map[string]any) (map[string]any, error) {
	id := rowID(m, row)
	out := make(map[string]any, len(m.Fields)+len(m.CanonicalOnly))

	for _, f := range m.Fields {
		raw, present := row[f.Legacy]
		if !present || raw == nil || (f.Required && isBlank(raw)) {
			if f.Required {
				return nil, apperror.Shape(m.Family.String(), id, f.Canonical)
			}
			setPath(out, f.Canonical, zeroValue(f.Kind))
			continue
		}
		v, err := toCanonicalValue(f, raw)
		if err != nil {
			return nil, apperror.New(apperror.KindShape,
				fmt.Sprintf("%s %q: malformed legacy column %q", m.Family, id, f.Legacy), err)
		}
		setPath(out, f.Canonical, v)
	}

	for _, d := range m.CanonicalOnly {
		setPath(out, d.Canonical, zeroValue(d.Kind))
	}
	return out, nil
}

// ToLegacyWrite maps a (possibly partial) canonical object to a legacy write
// payload. Only keys present in canonical are written.
func ToLegacyWrite(m Mapping, canonical map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(m.Fields))
	for _, f := range m.Fields {
		v, ok := getPath(canonical, f.Canonical)
		if !ok {
			continue
		}
		lv, err := toLegacyValue(f, v)
		if err != nil {
			return nil, fmt.Errorf("translator: %s.%s: %w", m.Family, f.Canonical, err)
		}
		out[f.Legacy] = lv
	}
	return out, nil
}

// normalizer is satisfied by pointers to canonical entities.
type normalizer[T any] interface {
	*T
	Normalize()
}

// Decode turns a canonical map into the typed entity and recomputes derived
// fields.
func Decode[T any, P normalizer[T]](m map[string]any) (*T, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("translator: encode canonical: %w", err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("translator: decode canonical: %w", err)
	}
	P(&v).Normalize()
	return &v, nil
}

// FromLegacy translates a legacy row into the typed canonical entity.
func FromLegacy[T any, P normalizer[T]](m Mapping, row map[string]any) (*T, error) {
	canonical, err := ToCanonical(m, row)
	if err != nil {
		return nil, err
	}
	return Decode[T, P](canonical)
}

// FromNew normalizes a new-backend row, which already uses canonical names.
func FromNew[T any, P normalizer[T]](row map[string]any) (*T, error) {
	return Decode[T, P](row)
}

// Encode turns a typed canonical entity into its canonical map.
func Encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("translator: encode entity: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("translator: decode entity: %w", err)
	}
	return out, nil
}

// ToLegacy encodes a typed entity straight into a legacy write payload.
func ToLegacy(m Mapping, v any) (map[string]any, error) {
	canonical, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return ToLegacyWrite(m, canonical)
}

func rowID(m Mapping, row map[string]any) string {
	for _, f := range m.Fields {
		if !f.Required {
			continue
		}
		if s, err := asString(row[f.Legacy]); err == nil && s != "" {
			return s
		}
		break
	}
	return "?"
}

func zeroValue(k Kind) any {
	if k == KindStringList {
		return []string{}
	}
	return nil
}

func isBlank(v any) bool {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s) == ""
	case []byte:
		return len(s) == 0
	}
	return false
}

func setPath(m map[string]any, path string, v any) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[p] = next
		}
		cur = next
	}
	cur[parts[len(parts)-1]] = v
}

func getPath(m map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")
	cur := m
	for _, p := range parts[:len(parts)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return nil, false
		}
		cur = next
	}
	v, ok := cur[parts[len(parts)-1]]
	return v, ok
}
