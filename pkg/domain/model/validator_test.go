package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

func newTestCatalog() *config.Catalog {
	return &config.Catalog{
		LOBs: []config.LineOfBusiness{
			{ID: "TERM_LIFE", Name: "Term Life"},
			{ID: "AUTO", Name: "Auto Insurance"},
		},
		ProductTypes: []config.ProductType{
			{
				ID:                       "TERM_LIFE",
				Name:                     "Term Life",
				AllowedMeasurementModels: []types.MeasurementModel{types.MeasurementModelGMM, types.MeasurementModelVFA},
			},
			{ID: "AUTO", Name: "Auto"},
		},
	}
}

func TestModelValidator_ValidateHeader(t *testing.T) {
	v := model.NewModelValidator(newTestCatalog())

	tests := []struct {
		name    string
		def     model.ModelDefinition
		wantErr error
	}{
		{
			name: "valid",
			def:  model.ModelDefinition{Name: "m", ProductType: "TERM_LIFE", MeasurementModel: types.MeasurementModelGMM},
		},
		{
			name:    "missing name",
			def:     model.ModelDefinition{ProductType: "TERM_LIFE", MeasurementModel: types.MeasurementModelGMM},
			wantErr: model.ErrMissingName,
		},
		{
			name:    "unknown product",
			def:     model.ModelDefinition{Name: "m", ProductType: "PET", MeasurementModel: types.MeasurementModelGMM},
			wantErr: model.ErrInvalidProduct,
		},
		{
			name:    "measurement not allowed",
			def:     model.ModelDefinition{Name: "m", ProductType: "TERM_LIFE", MeasurementModel: types.MeasurementModelPAA},
			wantErr: model.ErrInvalidMeasurement,
		},
		{
			name:    "any measurement allowed without restriction",
			def:     model.ModelDefinition{Name: "m", ProductType: "AUTO", MeasurementModel: types.MeasurementModelPAA},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateHeader(&tt.def)
			if tt.wantErr == nil {
				gt.NoError(t, err)
				return
			}
			gt.Error(t, err).Is(tt.wantErr)
		})
	}
}

func TestModelValidator_Validate(t *testing.T) {
	v := model.NewModelValidator(newTestCatalog())

	t.Run("valid definition has no issues", func(t *testing.T) {
		def := &model.ModelDefinition{
			Name: "m", ProductType: "TERM_LIFE", MeasurementModel: types.MeasurementModelGMM,
			Configuration: newTestConfiguration(),
		}
		gt.Array(t, v.Validate(def)).Length(0)
	})

	t.Run("reports every problem", func(t *testing.T) {
		cfg := newTestConfiguration()
		cfg[types.SectionProjectionAssumptions].Overrides["lapse_rate"] = append(
			cfg[types.SectionProjectionAssumptions].Overrides["lapse_rate"],
			entry("TERM_LIFE", "ALL", 0.1),
			entry("HOME", "2026", 0.1),
		)
		cfg[types.SectionProjectionAssumptions].Overrides["missing_field"] = []model.OverrideEntry{entry("AUTO", "ALL", 1)}

		def := &model.ModelDefinition{
			Name: "m", ProductType: "TERM_LIFE", MeasurementModel: types.MeasurementModelGMM,
			Configuration: cfg,
		}
		issues := v.Validate(def)
		gt.Array(t, issues).Length(3).Required()

		var dup, lob, field bool
		for _, issue := range issues {
			switch {
			case issue.Is(model.ErrDuplicateScope):
				dup = true
			case issue.Is(model.ErrUnknownLOB):
				lob = true
			case issue.Is(model.ErrUnknownField):
				field = true
			}
		}
		gt.Bool(t, dup).True()
		gt.Bool(t, lob).True()
		gt.Bool(t, field).True()
	})

	t.Run("reports entries sharing an ID", func(t *testing.T) {
		cfg := newTestConfiguration()
		first := cfg[types.SectionProjectionAssumptions].Overrides["lapse_rate"][0]
		twin := entry("TERM_LIFE", "2027", 0.1)
		twin.ID = first.ID
		cfg[types.SectionProjectionAssumptions].Overrides["lapse_rate"] = append(
			cfg[types.SectionProjectionAssumptions].Overrides["lapse_rate"], twin)

		def := &model.ModelDefinition{
			Name: "m", ProductType: "TERM_LIFE", MeasurementModel: types.MeasurementModelGMM,
			Configuration: cfg,
		}
		issues := v.Validate(def)
		gt.Array(t, issues).Length(1).Required()
		gt.Bool(t, issues[0].Is(model.ErrDuplicateEntryID)).True()
		gt.Value(t, issues[0].EntryID).Equal(first.ID)
	})

	t.Run("nil catalog accepts any LOB", func(t *testing.T) {
		open := model.NewModelValidator(nil)
		gt.NoError(t, open.ValidateOverride(entry("HOME", "2026", 1)))
	})
}
