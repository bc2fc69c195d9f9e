package model

import (
	"encoding/json"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

// OverrideChange is an override whose value differs from the field's base default
type OverrideChange struct {
	Section   types.SectionID `json:"section"`
	Path      FieldPath       `json:"path"`
	Entry     OverrideEntry   `json:"entry"`
	BaseValue any             `json:"base_value"`
	HasBase   bool            `json:"has_base"`
}

// SectionChanges groups override changes of one functional area
type SectionChanges struct {
	Section types.SectionID  `json:"section"`
	Changes []OverrideChange `json:"changes"`
}

// ChangedOverrides walks every section and returns the override entries whose
// value is not equal to the base default. Order is section display order, then
// path, then list order.
func ChangedOverrides(cfg Configuration) []OverrideChange {
	var changes []OverrideChange
	for _, path := range cfg.OverridePaths() {
		section, _, err := path.Split()
		if err != nil {
			continue
		}
		base, hasBase := cfg.Lookup(path)
		for _, entry := range cfg.OverridesAt(path) {
			if hasBase && ValuesEqual(base, entry.Value) {
				continue
			}
			changes = append(changes, OverrideChange{
				Section:   section,
				Path:      path,
				Entry:     entry,
				BaseValue: base,
				HasBase:   hasBase,
			})
		}
	}
	return changes
}

// GroupBySection groups changes by section keeping display order. Sections
// without changes are omitted.
func GroupBySection(changes []OverrideChange) []SectionChanges {
	bySection := make(map[types.SectionID][]OverrideChange)
	for _, c := range changes {
		bySection[c.Section] = append(bySection[c.Section], c)
	}

	var groups []SectionChanges
	for _, id := range types.AllSections() {
		if list, ok := bySection[id]; ok {
			groups = append(groups, SectionChanges{Section: id, Changes: list})
		}
	}
	return groups
}

// ValuesEqual compares two configuration values structurally. Numbers are
// compared by value regardless of Go type, maps regardless of key order, and
// nil and empty collections are equal.
func ValuesEqual(a, b any) bool {
	return cmp.Equal(canonical(a), canonical(b), cmpopts.EquateEmpty())
}

// canonical converts numbers to float64 and typed collections to their
// generic JSON shape so values decoded from JSON and values built in Go compare alike.
func canonical(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = canonical(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = canonical(e)
		}
		return s
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := range s {
			s[i] = canonical(rv.Index(i).Interface())
		}
		return s
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = canonical(iter.Value().Interface())
		}
		return m
	}
	return v
}
