package model

import (
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

// Section holds the base fields of one functional area and the overrides of
// those fields keyed by section-relative dotted path.
type Section struct {
	Fields    map[string]any             `json:"fields"`
	Overrides map[string][]OverrideEntry `json:"overrides,omitempty"`
}

// Configuration is the full parameter set of a model definition.
// It is persisted as a single blob.
type Configuration map[types.SectionID]*Section

// FieldPath is a dotted path whose first segment is the section,
// e.g. "discount_rates.risk_free_rate".
type FieldPath string

// Split returns the section and the section-relative path
func (p FieldPath) Split() (types.SectionID, string, error) {
	section, rel, ok := strings.Cut(string(p), ".")
	if !ok || section == "" || rel == "" {
		return "", "", goerr.Wrap(ErrInvalidPath, "field path must be <section>.<field>", goerr.V(FieldPathKey, p))
	}
	id := types.SectionID(section)
	if !id.IsValid() {
		return "", "", goerr.Wrap(ErrInvalidPath, "unknown section", goerr.V(FieldPathKey, p), goerr.V(SectionKey, section))
	}
	for _, seg := range strings.Split(rel, ".") {
		if seg == "" {
			return "", "", goerr.Wrap(ErrInvalidPath, "empty path segment", goerr.V(FieldPathKey, p))
		}
	}
	return id, rel, nil
}

// JoinPath builds a FieldPath from a section and a relative path
func JoinPath(section types.SectionID, rel string) FieldPath {
	return FieldPath(string(section) + "." + rel)
}

// Lookup returns the base value at a dotted path
func (c Configuration) Lookup(path FieldPath) (any, bool) {
	section, rel, err := path.Split()
	if err != nil {
		return nil, false
	}
	s, ok := c[section]
	if !ok || s == nil {
		return nil, false
	}
	return lookupField(s.Fields, rel)
}

func lookupField(fields map[string]any, rel string) (any, bool) {
	var cur any = fields
	for _, seg := range strings.Split(rel, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// OverridesAt returns the override list for a dotted path
func (c Configuration) OverridesAt(path FieldPath) []OverrideEntry {
	section, rel, err := path.Split()
	if err != nil {
		return nil
	}
	s, ok := c[section]
	if !ok || s == nil {
		return nil
	}
	return s.Overrides[rel]
}

// Effective resolves a dotted path for a LOB/Year query
func (c Configuration) Effective(path FieldPath, q OverrideQuery) (any, Tier) {
	base, _ := c.Lookup(path)
	entry, tier := ResolveEntry(c.OverridesAt(path), q)
	if entry == nil {
		return base, TierNone
	}
	return entry.Value, tier
}

// MergeSection shallow-merges patch into the fields of one section and returns a
// new Configuration. Sibling sections and every override list are carried over
// untouched. No cross-field consistency is checked.
func (c Configuration) MergeSection(id types.SectionID, patch map[string]any) (Configuration, error) {
	if err := id.Validate(); err != nil {
		return nil, goerr.Wrap(err, "cannot merge section", goerr.V(SectionKey, id))
	}

	merged := make(Configuration, len(c)+1)
	for k, v := range c {
		merged[k] = v
	}

	next := &Section{Fields: map[string]any{}}
	if cur, ok := c[id]; ok && cur != nil {
		for k, v := range cur.Fields {
			next.Fields[k] = v
		}
		next.Overrides = cur.Overrides
	}
	for k, v := range patch {
		next.Fields[k] = v
	}
	merged[id] = next

	return merged, nil
}

// SetOverride upserts entry for path. An entry whose ID already exists at path
// is edited in place and may change scope; otherwise the entry with the same
// LOB/Year scope gets the new value. New entries always get a fresh ID.
// Returns the new Configuration and the stored entry.
func (c Configuration) SetOverride(path FieldPath, entry OverrideEntry) (Configuration, OverrideEntry, error) {
	section, rel, err := path.Split()
	if err != nil {
		return nil, OverrideEntry{}, err
	}
	if err := entry.Validate(); err != nil {
		return nil, OverrideEntry{}, goerr.Wrap(err, "cannot set override", goerr.V(FieldPathKey, path))
	}

	list := c.OverridesAt(path)
	target := -1
	if entry.ID != "" {
		target = slices.IndexFunc(list, func(e OverrideEntry) bool { return e.ID == entry.ID })
	}
	if target < 0 {
		target = slices.IndexFunc(list, func(e OverrideEntry) bool { return e.SameScope(entry) })
		if target >= 0 {
			entry.ID = list[target].ID
		}
	}
	if target >= 0 {
		for i, e := range list {
			if i != target && e.SameScope(entry) {
				return nil, OverrideEntry{}, goerr.Wrap(ErrDuplicateScope, "another override already has this scope",
					goerr.V(FieldPathKey, path), goerr.V(OverrideIDKey, e.ID))
			}
		}
	} else {
		entry.ID = NewOverrideID()
	}

	updated := make([]OverrideEntry, 0, len(list)+1)
	updated = append(updated, list...)
	if target >= 0 {
		updated[target] = entry
	} else {
		updated = append(updated, entry)
	}

	next := c.withSectionCopy(section)
	next[section].Overrides[rel] = updated

	return next, entry, nil
}

// RemoveOverride deletes the entry with id from path
func (c Configuration) RemoveOverride(path FieldPath, id OverrideID) (Configuration, error) {
	section, rel, err := path.Split()
	if err != nil {
		return nil, err
	}

	list := c.OverridesAt(path)
	idx := -1
	for i, e := range list {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, goerr.Wrap(ErrOverrideNotFound, "override not found", goerr.V(FieldPathKey, path), goerr.V(OverrideIDKey, id))
	}

	next := c.withSectionCopy(section)
	updated := make([]OverrideEntry, 0, len(list)-1)
	updated = append(updated, list[:idx]...)
	updated = append(updated, list[idx+1:]...)
	if len(updated) == 0 {
		delete(next[section].Overrides, rel)
	} else {
		next[section].Overrides[rel] = updated
	}

	return next, nil
}

// withSectionCopy returns a shallow copy of c whose section has private
// Fields and Overrides maps, so the copy can be edited without touching c.
func (c Configuration) withSectionCopy(id types.SectionID) Configuration {
	next := make(Configuration, len(c)+1)
	for k, v := range c {
		next[k] = v
	}

	s := &Section{
		Fields:    map[string]any{},
		Overrides: map[string][]OverrideEntry{},
	}
	if cur, ok := c[id]; ok && cur != nil {
		for k, v := range cur.Fields {
			s.Fields[k] = v
		}
		for k, v := range cur.Overrides {
			s.Overrides[k] = v
		}
	}
	next[id] = s
	return next
}

// Clone returns a deep copy of the configuration
func (c Configuration) Clone() Configuration {
	if c == nil {
		return nil
	}
	out := make(Configuration, len(c))
	for id, s := range c {
		if s == nil {
			out[id] = nil
			continue
		}
		cp := &Section{Fields: make(map[string]any, len(s.Fields))}
		for k, v := range s.Fields {
			cp.Fields[k] = deepCopyValue(v)
		}
		if s.Overrides != nil {
			cp.Overrides = make(map[string][]OverrideEntry, len(s.Overrides))
			for k, list := range s.Overrides {
				entries := make([]OverrideEntry, len(list))
				for i, e := range list {
					e.Value = deepCopyValue(e.Value)
					entries[i] = e
				}
				cp.Overrides[k] = entries
			}
		}
		out[id] = cp
	}
	return out
}

func deepCopyValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			m[k] = deepCopyValue(e)
		}
		return m
	case []any:
		s := make([]any, len(x))
		for i, e := range x {
			s[i] = deepCopyValue(e)
		}
		return s
	default:
		return v
	}
}

// OverridePaths returns every dotted path that carries overrides, in section
// display order and then lexical order
func (c Configuration) OverridePaths() []FieldPath {
	var paths []FieldPath
	for _, id := range types.AllSections() {
		s, ok := c[id]
		if !ok || s == nil {
			continue
		}
		rels := make([]string, 0, len(s.Overrides))
		for rel := range s.Overrides {
			rels = append(rels, rel)
		}
		slices.Sort(rels)
		for _, rel := range rels {
			paths = append(paths, JoinPath(id, rel))
		}
	}
	return paths
}
