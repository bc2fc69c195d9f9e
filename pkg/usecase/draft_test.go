package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
)

func TestDraftStore_CopiesOnReadAndWrite(t *testing.T) {
	store := usecase.NewDraftStore()
	def := &model.ModelDefinition{
		ID: "md-draft",
		Configuration: model.Configuration{
			types.SectionDiscountRates: {Fields: map[string]any{"risk_free_rate": 0.03}},
		},
	}
	store.Put(def)

	def.Configuration[types.SectionDiscountRates].Fields["risk_free_rate"] = 0.5

	got, ok := store.Get("md-draft")
	gt.Bool(t, ok).True()
	rate, _ := got.Configuration.Lookup("discount_rates.risk_free_rate")
	gt.Value(t, rate).Equal(any(0.03))

	got.Configuration[types.SectionDiscountRates].Fields["risk_free_rate"] = 0.7
	again, _ := store.Get("md-draft")
	rate, _ = again.Configuration.Lookup("discount_rates.risk_free_rate")
	gt.Value(t, rate).Equal(any(0.03))

	gt.Bool(t, store.Has("md-draft")).True()
	gt.Bool(t, store.Delete("md-draft")).True()
	gt.Bool(t, store.Delete("md-draft")).False()
	_, ok = store.Get("md-draft")
	gt.Bool(t, ok).False()
}
