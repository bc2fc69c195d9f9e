package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

func newTestConfiguration() model.Configuration {
	return model.Configuration{
		types.SectionProjectionAssumptions: {
			Fields: map[string]any{
				"lapse_rate": 0.05,
				"mortality": map[string]any{
					"table":            "CSO2017",
					"improvement_rate": 0.01,
				},
			},
			Overrides: map[string][]model.OverrideEntry{
				"lapse_rate": {entry("TERM_LIFE", "ALL", 0.07)},
			},
		},
		types.SectionDiscountRates: {
			Fields: map[string]any{
				"method":         "bottom_up",
				"risk_free_rate": 0.03,
			},
		},
	}
}

func TestFieldPath_Split(t *testing.T) {
	section, rel, err := model.FieldPath("projection_assumptions.mortality.table").Split()
	gt.NoError(t, err).Required()
	gt.Value(t, section).Equal(types.SectionProjectionAssumptions)
	gt.Value(t, rel).Equal("mortality.table")

	for _, p := range []string{"", "discount_rates", "unknown.field", "discount_rates.", "discount_rates.a..b"} {
		_, _, err := model.FieldPath(p).Split()
		gt.Error(t, err).Is(model.ErrInvalidPath)
	}
}

func TestConfiguration_Lookup(t *testing.T) {
	cfg := newTestConfiguration()

	v, ok := cfg.Lookup("projection_assumptions.mortality.table")
	gt.Bool(t, ok).True()
	gt.Value(t, v).Equal(any("CSO2017"))

	_, ok = cfg.Lookup("projection_assumptions.mortality.missing")
	gt.Bool(t, ok).False()

	_, ok = cfg.Lookup("projection_assumptions.lapse_rate.nested")
	gt.Bool(t, ok).False()

	_, ok = cfg.Lookup("risk_adjustment.confidence_level")
	gt.Bool(t, ok).False()
}

func TestConfiguration_Effective(t *testing.T) {
	cfg := newTestConfiguration()

	v, tier := cfg.Effective("projection_assumptions.lapse_rate", query("TERM_LIFE", "2026"))
	gt.Value(t, v).Equal(any(0.07))
	gt.Value(t, tier).Equal(model.TierLOB)

	v, tier = cfg.Effective("projection_assumptions.lapse_rate", query("AUTO", "2026"))
	gt.Value(t, v).Equal(any(0.05))
	gt.Value(t, tier).Equal(model.TierNone)
}

func TestConfiguration_MergeSection(t *testing.T) {
	t.Run("merges fields and keeps siblings and overrides", func(t *testing.T) {
		cfg := newTestConfiguration()

		merged, err := cfg.MergeSection(types.SectionProjectionAssumptions, map[string]any{
			"lapse_rate":   0.06,
			"expense_rate": 0.02,
		})
		gt.NoError(t, err).Required()

		v, _ := merged.Lookup("projection_assumptions.lapse_rate")
		gt.Value(t, v).Equal(any(0.06))
		v, _ = merged.Lookup("projection_assumptions.expense_rate")
		gt.Value(t, v).Equal(any(0.02))
		v, _ = merged.Lookup("projection_assumptions.mortality.table")
		gt.Value(t, v).Equal(any("CSO2017"))
		v, _ = merged.Lookup("discount_rates.risk_free_rate")
		gt.Value(t, v).Equal(any(0.03))
		gt.Array(t, merged.OverridesAt("projection_assumptions.lapse_rate")).Length(1)

		// original untouched
		v, _ = cfg.Lookup("projection_assumptions.lapse_rate")
		gt.Value(t, v).Equal(any(0.05))
		_, ok := cfg.Lookup("projection_assumptions.expense_rate")
		gt.Bool(t, ok).False()
	})

	t.Run("switching method keeps unrelated method fields", func(t *testing.T) {
		cfg := newTestConfiguration()
		merged, err := cfg.MergeSection(types.SectionDiscountRates, map[string]any{"method": "top_down"})
		gt.NoError(t, err).Required()

		v, _ := merged.Lookup("discount_rates.risk_free_rate")
		gt.Value(t, v).Equal(any(0.03))
	})

	t.Run("creates a missing section", func(t *testing.T) {
		cfg := newTestConfiguration()
		merged, err := cfg.MergeSection(types.SectionRiskAdjustment, map[string]any{"confidence_level": 0.75})
		gt.NoError(t, err).Required()
		v, ok := merged.Lookup("risk_adjustment.confidence_level")
		gt.Bool(t, ok).True()
		gt.Value(t, v).Equal(any(0.75))
	})

	t.Run("rejects unknown section", func(t *testing.T) {
		_, err := newTestConfiguration().MergeSection("cash_flows", map[string]any{"x": 1})
		gt.Error(t, err)
	})
}

func TestConfiguration_SetOverride(t *testing.T) {
	t.Run("appends a new scope with generated ID", func(t *testing.T) {
		cfg := newTestConfiguration()
		next, stored, err := cfg.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			LOB: "TERM_LIFE", Year: "2026", Value: 0.09,
		})
		gt.NoError(t, err).Required()
		gt.String(t, string(stored.ID)).NotEqual("")
		gt.Array(t, next.OverridesAt("projection_assumptions.lapse_rate")).Length(2)
		gt.Array(t, cfg.OverridesAt("projection_assumptions.lapse_rate")).Length(1)
	})

	t.Run("replaces the value of an existing scope", func(t *testing.T) {
		cfg := newTestConfiguration()
		existing := cfg.OverridesAt("projection_assumptions.lapse_rate")[0]

		next, stored, err := cfg.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			LOB: "TERM_LIFE", Year: "ALL", Value: 0.08,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ID).Equal(existing.ID)

		list := next.OverridesAt("projection_assumptions.lapse_rate")
		gt.Array(t, list).Length(1).Required()
		gt.Value(t, list[0].Value).Equal(any(0.08))
		gt.Value(t, cfg.OverridesAt("projection_assumptions.lapse_rate")[0].Value).Equal(any(0.07))
	})

	t.Run("known ID edits that entry and may move its scope", func(t *testing.T) {
		cfg := newTestConfiguration()
		next, first, err := cfg.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			LOB: "TERM_LIFE", Year: "2026", Value: 0.09,
		})
		gt.NoError(t, err).Required()

		next, moved, err := next.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			ID: first.ID, LOB: "WHOLE_LIFE", Year: "2027", Value: 0.11,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, moved.ID).Equal(first.ID)

		list := next.OverridesAt("projection_assumptions.lapse_rate")
		gt.Array(t, list).Length(2).Required()
		gt.Value(t, list[0].ID).NotEqual(list[1].ID)
		gt.Value(t, list[1].ID).Equal(first.ID)
		gt.Value(t, list[1].LOB).Equal(types.LOB("WHOLE_LIFE"))
		gt.Value(t, list[1].Year).Equal(types.Year("2027"))
	})

	t.Run("moving onto an occupied scope is rejected", func(t *testing.T) {
		cfg := newTestConfiguration()
		next, first, err := cfg.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			LOB: "TERM_LIFE", Year: "2026", Value: 0.09,
		})
		gt.NoError(t, err).Required()

		_, _, err = next.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			ID: first.ID, LOB: "TERM_LIFE", Year: "ALL", Value: 0.11,
		})
		gt.Error(t, err).Is(model.ErrDuplicateScope)
	})

	t.Run("unknown ID on a new scope is replaced", func(t *testing.T) {
		cfg := newTestConfiguration()
		existing := cfg.OverridesAt("projection_assumptions.lapse_rate")[0]

		_, stored, err := cfg.SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			ID: "client-chosen", LOB: "WHOLE_LIFE", Year: "2027", Value: 0.11,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, stored.ID).NotEqual(model.OverrideID("client-chosen"))
		gt.Value(t, stored.ID).NotEqual(existing.ID)
	})

	t.Run("rejects invalid scope", func(t *testing.T) {
		_, _, err := newTestConfiguration().SetOverride("projection_assumptions.lapse_rate", model.OverrideEntry{
			LOB: "term life", Year: "2026", Value: 1,
		})
		gt.Error(t, err).Is(model.ErrInvalidOverride)
	})
}

func TestConfiguration_RemoveOverride(t *testing.T) {
	cfg := newTestConfiguration()
	id := cfg.OverridesAt("projection_assumptions.lapse_rate")[0].ID

	next, err := cfg.RemoveOverride("projection_assumptions.lapse_rate", id)
	gt.NoError(t, err).Required()
	gt.Array(t, next.OverridesAt("projection_assumptions.lapse_rate")).Length(0)
	gt.Array(t, next.OverridePaths()).Length(0)
	gt.Array(t, cfg.OverridesAt("projection_assumptions.lapse_rate")).Length(1)

	_, err = cfg.RemoveOverride("projection_assumptions.lapse_rate", "missing")
	gt.Error(t, err).Is(model.ErrOverrideNotFound)
}

func TestConfiguration_Clone(t *testing.T) {
	cfg := newTestConfiguration()
	cp := cfg.Clone()

	cp[types.SectionProjectionAssumptions].Fields["mortality"].(map[string]any)["table"] = "VBT2015"
	cp[types.SectionProjectionAssumptions].Overrides["lapse_rate"][0].Value = 0.5

	v, _ := cfg.Lookup("projection_assumptions.mortality.table")
	gt.Value(t, v).Equal(any("CSO2017"))
	gt.Value(t, cfg.OverridesAt("projection_assumptions.lapse_rate")[0].Value).Equal(any(0.07))
}
