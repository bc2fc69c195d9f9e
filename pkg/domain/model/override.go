package model

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

// OverrideID is a UUID-based identifier for an override entry
type OverrideID string

// NewOverrideID generates a new UUID v4 OverrideID
func NewOverrideID() OverrideID {
	return OverrideID(uuid.New().String())
}

// OverrideEntry substitutes the base value of one field for a LOB/Year scope
type OverrideEntry struct {
	ID    OverrideID `json:"id"`
	LOB   types.LOB  `json:"lob"`
	Year  types.Year `json:"year"`
	Value any        `json:"value"`
}

// Validate checks the scope of the entry
func (e *OverrideEntry) Validate() error {
	if err := e.LOB.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidOverride, "invalid LOB", goerr.V(OverrideIDKey, e.ID), goerr.V("cause", err.Error()))
	}
	if err := e.Year.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidOverride, "invalid year", goerr.V(OverrideIDKey, e.ID), goerr.V("cause", err.Error()))
	}
	return nil
}

// SameScope reports whether both entries target the same LOB/Year pair
func (e *OverrideEntry) SameScope(other OverrideEntry) bool {
	return e.LOB == other.LOB && e.Year == other.Year
}

// OverrideQuery is the concrete (LOB, Year) context a value is resolved for
type OverrideQuery struct {
	LOB  types.LOB
	Year types.Year
}

// Tier is the precedence level at which an override matched. Higher wins.
type Tier int

const (
	TierNone Tier = iota
	// TierGlobal matches an ALL/ALL entry
	TierGlobal
	// TierYear matches an entry with lob ALL and the queried year
	TierYear
	// TierLOB matches an entry with the queried LOB and year ALL
	TierLOB
	// TierExact matches the queried LOB and year
	TierExact
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierLOB:
		return "lob"
	case TierYear:
		return "year"
	case TierGlobal:
		return "global"
	default:
		return "base"
	}
}

// Match returns the tier at which the entry applies to the query
func (e *OverrideEntry) Match(q OverrideQuery) Tier {
	switch {
	case e.LOB == q.LOB && e.Year == q.Year:
		return TierExact
	case e.LOB == q.LOB && e.Year.IsWildcard():
		return TierLOB
	case e.LOB.IsWildcard() && e.Year == q.Year:
		return TierYear
	case e.LOB.IsWildcard() && e.Year.IsWildcard():
		return TierGlobal
	default:
		return TierNone
	}
}

// ResolveEntry picks the override that applies to the query. Within one tier the
// entry appearing last in the list wins, so a later insertion shadows an earlier one.
// Returns nil and TierNone when nothing matches.
func ResolveEntry(entries []OverrideEntry, q OverrideQuery) (*OverrideEntry, Tier) {
	var found *OverrideEntry
	best := TierNone

	for i := range entries {
		tier := entries[i].Match(q)
		if tier == TierNone {
			continue
		}
		if tier >= best {
			found = &entries[i]
			best = tier
		}
	}

	return found, best
}

// Resolve returns the effective value for the query, falling back to base.
func Resolve(base any, entries []OverrideEntry, q OverrideQuery) any {
	if entry, _ := ResolveEntry(entries, q); entry != nil {
		return entry.Value
	}
	return base
}
