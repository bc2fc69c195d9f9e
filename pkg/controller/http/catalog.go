package http

import (
	"net/http"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
)

type lobResponse struct {
	ID   types.LOB `json:"id"`
	Name string    `json:"name"`
}

type productTypeResponse struct {
	ID                       types.ProductType        `json:"id"`
	Name                     string                   `json:"name"`
	DefaultMeasurementModel  types.MeasurementModel   `json:"default_measurement_model,omitempty"`
	AllowedMeasurementModels []types.MeasurementModel `json:"allowed_measurement_models"`
}

type catalogResponse struct {
	LOBs              []lobResponse            `json:"lobs"`
	ProductTypes      []productTypeResponse    `json:"product_types"`
	MeasurementModels []types.MeasurementModel `json:"measurement_models"`
	Sections          []types.SectionID        `json:"sections"`
	Wildcard          string                   `json:"wildcard"`
}

func newCatalogResponse(catalog *config.Catalog) catalogResponse {
	resp := catalogResponse{
		LOBs:              []lobResponse{},
		ProductTypes:      []productTypeResponse{},
		MeasurementModels: types.AllMeasurementModels(),
		Sections:          types.AllSections(),
		Wildcard:          types.Wildcard,
	}
	if catalog == nil {
		return resp
	}

	for _, l := range catalog.LOBs {
		resp.LOBs = append(resp.LOBs, lobResponse{ID: l.ID, Name: l.Name})
	}
	for _, p := range catalog.ProductTypes {
		allowed := p.AllowedMeasurementModels
		if len(allowed) == 0 {
			allowed = types.AllMeasurementModels()
		}
		resp.ProductTypes = append(resp.ProductTypes, productTypeResponse{
			ID:                       p.ID,
			Name:                     p.Name,
			DefaultMeasurementModel:  p.DefaultMeasurementModel,
			AllowedMeasurementModels: allowed,
		})
	}
	return resp
}

// catalogHandler serves the reference data the SPA needs to build its forms
func catalogHandler(uc *usecase.ModelDefinitionUseCase) http.HandlerFunc {
	resp := newCatalogResponse(uc.Catalog())
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, resp)
	}
}
