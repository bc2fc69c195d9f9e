package http

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/usecase"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/errutil"
)

// maxJSONBody bounds request bodies of the JSON endpoints
const maxJSONBody = 4 << 20

type modelResponse struct {
	ID               model.ModelDefinitionID `json:"id"`
	Name             string                  `json:"name"`
	Description      string                  `json:"description"`
	ProductType      types.ProductType       `json:"product_type"`
	MeasurementModel types.MeasurementModel  `json:"measurement_model"`
	Status           types.ModelStatus       `json:"status"`
	Version          int                     `json:"version"`
	Locked           bool                    `json:"locked"`
	LockedBy         string                  `json:"locked_by,omitempty"`
	Configuration    model.Configuration     `json:"configuration,omitempty"`
	HasDraft         bool                    `json:"has_draft"`
	CreatedBy        string                  `json:"created_by"`
	UpdatedBy        string                  `json:"updated_by"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func toModelResponse(def *model.ModelDefinition, hasDraft, withConfig bool) modelResponse {
	resp := modelResponse{
		ID:               def.ID,
		Name:             def.Name,
		Description:      def.Description,
		ProductType:      def.ProductType,
		MeasurementModel: def.MeasurementModel,
		Status:           def.Status.Normalize(),
		Version:          def.Version,
		Locked:           def.Locked,
		LockedBy:         def.LockedBy,
		HasDraft:         hasDraft,
		CreatedBy:        def.CreatedBy,
		UpdatedBy:        def.UpdatedBy,
		CreatedAt:        def.CreatedAt,
		UpdatedAt:        def.UpdatedAt,
	}
	if withConfig {
		resp.Configuration = def.Configuration
	}
	return resp
}

type createModelRequest struct {
	Name             string `json:"name"`
	Description      string `json:"description"`
	ProductType      string `json:"product_type"`
	MeasurementModel string `json:"measurement_model"`
}

type cloneModelRequest struct {
	Name string `json:"name"`
}

type setOverrideRequest struct {
	Path  model.FieldPath     `json:"path"`
	Entry model.OverrideEntry `json:"entry"`
}

type saveModelRequest struct {
	ExpectedVersion int `json:"expected_version"`
}

type validateResponse struct {
	Valid  bool                    `json:"valid"`
	Model  *modelResponse          `json:"model,omitempty"`
	Issues []model.ValidationIssue `json:"issues"`
}

type overridesListResponse struct {
	ModelID model.ModelDefinitionID `json:"model_id"`
	Groups  []model.SectionChanges  `json:"groups"`
	Total   int                     `json:"total"`
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return nil
		}
		return goerr.Wrap(errBadRequest, "invalid JSON body", goerr.V("cause", err.Error()))
	}
	return nil
}

type modelHandler struct {
	uc *usecase.ModelDefinitionUseCase
}

func modelID(r *http.Request) model.ModelDefinitionID {
	return model.ModelDefinitionID(chi.URLParam(r, "modelID"))
}

func (h *modelHandler) list(w http.ResponseWriter, r *http.Request) {
	defs, err := h.uc.List(r.Context())
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	resp := make([]modelResponse, len(defs))
	for i, def := range defs {
		resp[i] = toModelResponse(def, h.uc.HasDraft(def.ID), false)
	}
	writeJSON(r.Context(), w, http.StatusOK, resp)
}

func (h *modelHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createModelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	var mm types.MeasurementModel
	if req.MeasurementModel != "" {
		parsed, err := types.ParseMeasurementModel(req.MeasurementModel)
		if err != nil {
			handleError(r.Context(), w, goerr.Wrap(model.ErrInvalidMeasurement, err.Error()))
			return
		}
		mm = parsed
	}

	productType := types.ProductType(strings.ToUpper(strings.TrimSpace(req.ProductType)))
	def, err := h.uc.Create(r.Context(), strings.TrimSpace(req.Name), req.Description, productType, mm)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toModelResponse(def, false, true))
}

func (h *modelHandler) get(w http.ResponseWriter, r *http.Request) {
	def, err := h.uc.Get(r.Context(), modelID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toModelResponse(def, h.uc.HasDraft(def.ID), true))
}

func (h *modelHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.uc.Delete(r.Context(), modelID(r)); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *modelHandler) clone(w http.ResponseWriter, r *http.Request) {
	var req cloneModelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	def, err := h.uc.Clone(r.Context(), modelID(r), strings.TrimSpace(req.Name))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusCreated, toModelResponse(def, false, true))
}

func (h *modelHandler) getDraft(w http.ResponseWriter, r *http.Request) {
	id := modelID(r)
	def, err := h.uc.GetDraft(r.Context(), id)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toModelResponse(def, h.uc.HasDraft(id), true))
}

func (h *modelHandler) discardDraft(w http.ResponseWriter, r *http.Request) {
	if _, err := h.uc.DiscardDraft(r.Context(), modelID(r)); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *modelHandler) updateSection(w http.ResponseWriter, r *http.Request) {
	section := types.SectionID(chi.URLParam(r, "section"))
	if !section.IsValid() {
		handleError(r.Context(), w, goerr.Wrap(errBadRequest, "unknown section", goerr.V("section", section)))
		return
	}

	var patch map[string]any
	if err := decodeJSON(w, r, &patch); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	def, err := h.uc.UpdateSection(r.Context(), modelID(r), section, patch)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toModelResponse(def, true, true))
}

func (h *modelHandler) setOverride(w http.ResponseWriter, r *http.Request) {
	var req setOverrideRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	entry, err := h.uc.SetOverride(r.Context(), modelID(r), req.Path, req.Entry)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, entry)
}

func (h *modelHandler) removeOverride(w http.ResponseWriter, r *http.Request) {
	path := model.FieldPath(r.URL.Query().Get("path"))
	entryID := model.OverrideID(chi.URLParam(r, "entryID"))

	if _, err := h.uc.RemoveOverride(r.Context(), modelID(r), path, entryID); err != nil {
		handleError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *modelHandler) save(w http.ResponseWriter, r *http.Request) {
	var req saveModelRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(r.Context(), w, err)
		return
	}

	def, err := h.uc.Save(r.Context(), modelID(r), req.ExpectedVersion)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, toModelResponse(def, false, true))
}

func (h *modelHandler) validate(w http.ResponseWriter, r *http.Request) {
	def, issues, err := h.uc.Validate(r.Context(), modelID(r))
	if len(issues) > 0 {
		errutil.HandleHTTPWithDetails(r.Context(), w, err, http.StatusUnprocessableEntity, issues)
		return
	}
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	resp := toModelResponse(def, h.uc.HasDraft(def.ID), false)
	writeJSON(r.Context(), w, http.StatusOK, validateResponse{Valid: true, Model: &resp, Issues: []model.ValidationIssue{}})
}

func (h *modelHandler) lock(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		def, err := h.uc.SetLock(r.Context(), modelID(r), locked)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, toModelResponse(def, h.uc.HasDraft(def.ID), false))
	}
}

func (h *modelHandler) resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lob := types.LOB(q.Get("lob"))
	year := types.Year(q.Get("year"))
	if lob == "" {
		lob = types.Wildcard
	}
	if year == "" {
		year = types.Wildcard
	}

	resolved, err := h.uc.Resolve(r.Context(), modelID(r), model.FieldPath(q.Get("path")), lob, year)
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}
	writeJSON(r.Context(), w, http.StatusOK, resolved)
}

// overrides is the overrides viewer: a flat list of changed values grouped by
// area, or with format=json the full dump
func (h *modelHandler) overrides(w http.ResponseWriter, r *http.Request) {
	id := modelID(r)

	switch r.URL.Query().Get("format") {
	case "", "list":
		groups, err := h.uc.ChangedOverrides(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		resp := overridesListResponse{ModelID: id, Groups: groups}
		if resp.Groups == nil {
			resp.Groups = []model.SectionChanges{}
		}
		for _, g := range groups {
			resp.Total += len(g.Changes)
		}
		writeJSON(r.Context(), w, http.StatusOK, resp)

	case "json":
		export, err := h.uc.ExportOverrides(r.Context(), id)
		if err != nil {
			handleError(r.Context(), w, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, export)

	default:
		handleError(r.Context(), w, goerr.Wrap(errBadRequest, "format must be list or json", goerr.V("format", r.URL.Query().Get("format"))))
	}
}

func (h *modelHandler) downloadOverrides(w http.ResponseWriter, r *http.Request) {
	export, err := h.uc.ExportOverrides(r.Context(), modelID(r))
	if err != nil {
		handleError(r.Context(), w, err)
		return
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		handleError(r.Context(), w, goerr.Wrap(err, "failed to marshal overrides export"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", attachment(export.ModelID.String()+"-overrides.json"))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // header already committed
}
