package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
)

// AutoSaveScheduler arms and disarms the idle timer that persists a draft
type AutoSaveScheduler interface {
	Touch(id model.ModelDefinitionID)
	Cancel(id model.ModelDefinitionID)
}

// ResolvedValue is the effective value of one field for a LOB/Year query
type ResolvedValue struct {
	Path  model.FieldPath      `json:"path"`
	LOB   types.LOB            `json:"lob"`
	Year  types.Year           `json:"year"`
	Value any                  `json:"value"`
	Base  any                  `json:"base"`
	Tier  string               `json:"tier"`
	Entry *model.OverrideEntry `json:"entry,omitempty"`
}

// OverridesExport is the full JSON dump of a model's overrides
type OverridesExport struct {
	ModelID    model.ModelDefinitionID                                `json:"model_id"`
	Name       string                                                 `json:"name"`
	Version    int                                                    `json:"version"`
	ExportedAt time.Time                                              `json:"exported_at"`
	Overrides  map[types.SectionID]map[string][]model.OverrideEntry `json:"overrides"`
}

type ModelDefinitionUseCase struct {
	repo      interfaces.Repository
	catalog   *config.Catalog
	validator *model.ModelValidator
	drafts    *DraftStore
	autoSaver AutoSaveScheduler
	events    *eventPublisher

	// mu serializes draft edits and saves so the auto-saver and requests
	// never interleave a read-modify-write of the same draft.
	mu sync.Mutex
}

func NewModelDefinitionUseCase(repo interfaces.Repository, catalog *config.Catalog, drafts *DraftStore) *ModelDefinitionUseCase {
	if drafts == nil {
		drafts = NewDraftStore()
	}
	return &ModelDefinitionUseCase{
		repo:      repo,
		catalog:   catalog,
		validator: model.NewModelValidator(catalog),
		drafts:    drafts,
		events:    newEventPublisher(nil, nil),
	}
}

// SetAutoSaver installs the idle timer. It is set after construction because
// the timer itself calls back into Save.
func (uc *ModelDefinitionUseCase) SetAutoSaver(s AutoSaveScheduler) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	uc.autoSaver = s
}

func (uc *ModelDefinitionUseCase) Catalog() *config.Catalog {
	return uc.catalog
}

func (uc *ModelDefinitionUseCase) Create(ctx context.Context, name, description string, productType types.ProductType, measurementModel types.MeasurementModel) (*model.ModelDefinition, error) {
	if measurementModel == "" {
		if product, ok := uc.catalog.ProductType(productType); ok {
			measurementModel = product.DefaultMeasurementModel
		}
	}

	userID := auth.UserIDFromContext(ctx)
	def := &model.ModelDefinition{
		ID:               model.NewModelDefinitionID(),
		Name:             name,
		Description:      description,
		ProductType:      productType,
		MeasurementModel: measurementModel,
		Status:           types.ModelStatusDraft,
		Version:          1,
		Configuration:    seedConfiguration(uc.catalog),
		CreatedBy:        userID,
		UpdatedBy:        userID,
	}

	if err := uc.validator.ValidateHeader(def); err != nil {
		return nil, goerr.Wrap(err, "invalid model definition")
	}

	created, err := uc.repo.ModelDefinition().Create(ctx, def)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create model definition")
	}

	logging.From(ctx).Info("model definition created", "model_id", created.ID, "product_type", created.ProductType)
	return created, nil
}

// seedConfiguration builds the configuration of a new definition from the
// catalog defaults. Every section exists even when it has no defaults.
func seedConfiguration(catalog *config.Catalog) model.Configuration {
	cfg := make(model.Configuration, len(types.AllSections()))
	for _, id := range types.AllSections() {
		fields := map[string]any{}
		if catalog != nil {
			for k, v := range catalog.Defaults[id] {
				fields[k] = v
			}
		}
		cfg[id] = &model.Section{Fields: fields}
	}
	return cfg.Clone()
}

func (uc *ModelDefinitionUseCase) Get(ctx context.Context, id model.ModelDefinitionID) (*model.ModelDefinition, error) {
	def, err := uc.repo.ModelDefinition().Get(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err, "failed to get model definition", id)
	}
	return def, nil
}

func (uc *ModelDefinitionUseCase) List(ctx context.Context) ([]*model.ModelDefinition, error) {
	defs, err := uc.repo.ModelDefinition().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list model definitions")
	}
	return defs, nil
}

func (uc *ModelDefinitionUseCase) Delete(ctx context.Context, id model.ModelDefinitionID) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	def, err := uc.Get(ctx, id)
	if err != nil {
		return err
	}
	if def.Locked {
		return goerr.Wrap(ErrModelLocked, "cannot delete locked model definition", goerr.V(ModelIDKey, id))
	}

	if err := uc.repo.ModelDefinition().Delete(ctx, id); err != nil {
		return wrapRepoError(err, "failed to delete model definition", id)
	}
	uc.drafts.Delete(id)
	uc.cancelAutoSave(id)

	logging.From(ctx).Info("model definition deleted", "model_id", id)
	uc.events.publish(ctx, model.NewChangeEvent(model.ChangeDeleted, def, auth.UserIDFromContext(ctx)))
	return nil
}

// Clone copies a persisted definition into a new one. An empty name becomes
// "<source name> (Copy)".
func (uc *ModelDefinitionUseCase) Clone(ctx context.Context, srcID model.ModelDefinitionID, name string) (*model.ModelDefinition, error) {
	src, err := uc.Get(ctx, srcID)
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = src.Name + " (Copy)"
	}

	cloned := model.CloneModelDefinition(src, name)
	userID := auth.UserIDFromContext(ctx)
	cloned.CreatedBy = userID
	cloned.UpdatedBy = userID

	created, err := uc.repo.ModelDefinition().Create(ctx, cloned)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create cloned model definition", goerr.V(ModelIDKey, srcID))
	}

	logging.From(ctx).Info("model definition cloned", "source_id", srcID, "model_id", created.ID)
	return created, nil
}

// GetDraft returns the in-progress edit, or the persisted definition when no
// edit is pending
func (uc *ModelDefinitionUseCase) GetDraft(ctx context.Context, id model.ModelDefinitionID) (*model.ModelDefinition, error) {
	if draft, ok := uc.drafts.Get(id); ok {
		return draft, nil
	}
	return uc.Get(ctx, id)
}

// HasDraft reports whether unsaved edits exist
func (uc *ModelDefinitionUseCase) HasDraft(id model.ModelDefinitionID) bool {
	return uc.drafts.Has(id)
}

// editDraft applies fn to the current draft and schedules an auto-save
func (uc *ModelDefinitionUseCase) editDraft(ctx context.Context, id model.ModelDefinitionID, fn func(def *model.ModelDefinition) error) (*model.ModelDefinition, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	def, err := uc.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	if def.Locked {
		return nil, goerr.Wrap(ErrModelLocked, "cannot edit locked model definition", goerr.V(ModelIDKey, id))
	}

	if err := fn(def); err != nil {
		return nil, err
	}
	def.UpdatedBy = auth.UserIDFromContext(ctx)

	uc.drafts.Put(def)
	if uc.autoSaver != nil {
		uc.autoSaver.Touch(id)
	}
	return def, nil
}

// UpdateSection merges patch into one section of the draft
func (uc *ModelDefinitionUseCase) UpdateSection(ctx context.Context, id model.ModelDefinitionID, section types.SectionID, patch map[string]any) (*model.ModelDefinition, error) {
	return uc.editDraft(ctx, id, func(def *model.ModelDefinition) error {
		merged, err := def.Configuration.MergeSection(section, patch)
		if err != nil {
			return err
		}
		def.Configuration = merged
		return nil
	})
}

// SetOverride adds an override to the draft, or replaces the value of the
// entry with the same LOB/Year
func (uc *ModelDefinitionUseCase) SetOverride(ctx context.Context, id model.ModelDefinitionID, path model.FieldPath, entry model.OverrideEntry) (*model.OverrideEntry, error) {
	if err := uc.validator.ValidateOverride(entry); err != nil {
		return nil, goerr.Wrap(err, "invalid override", goerr.V(ModelIDKey, id), goerr.V(model.FieldPathKey, path))
	}

	var stored model.OverrideEntry
	_, err := uc.editDraft(ctx, id, func(def *model.ModelDefinition) error {
		next, e, err := def.Configuration.SetOverride(path, entry)
		if err != nil {
			return err
		}
		def.Configuration = next
		stored = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (uc *ModelDefinitionUseCase) RemoveOverride(ctx context.Context, id model.ModelDefinitionID, path model.FieldPath, entryID model.OverrideID) (*model.ModelDefinition, error) {
	return uc.editDraft(ctx, id, func(def *model.ModelDefinition) error {
		next, err := def.Configuration.RemoveOverride(path, entryID)
		if err != nil {
			return err
		}
		def.Configuration = next
		return nil
	})
}

// Save persists the draft wholesale and bumps the version. A non-zero
// expectedVersion must match the stored version.
func (uc *ModelDefinitionUseCase) Save(ctx context.Context, id model.ModelDefinitionID, expectedVersion int) (*model.ModelDefinition, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	current, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Locked {
		return nil, goerr.Wrap(ErrModelLocked, "cannot save locked model definition", goerr.V(ModelIDKey, id))
	}
	if expectedVersion != 0 && expectedVersion != current.Version {
		return nil, goerr.Wrap(interfaces.ErrVersionConflict, "model definition was saved by someone else",
			goerr.V(ModelIDKey, id), goerr.V(VersionKey, current.Version), goerr.V("expected_version", expectedVersion))
	}

	next := current
	if draft, ok := uc.drafts.Get(id); ok {
		next = draft
	}
	next.Version = current.Version + 1
	next.Status = types.ModelStatusSaved
	next.Locked = current.Locked
	next.LockedBy = current.LockedBy
	next.UpdatedBy = auth.UserIDFromContext(ctx)

	saved, err := uc.repo.ModelDefinition().Update(ctx, next, current.Version)
	if err != nil {
		return nil, wrapRepoError(err, "failed to save model definition", id)
	}

	uc.drafts.Delete(id)
	uc.cancelAutoSave(id)

	logging.From(ctx).Info("model definition saved", "model_id", id, "version", saved.Version)
	uc.events.publish(ctx, model.NewChangeEvent(model.ChangeSaved, saved, saved.UpdatedBy))
	return saved, nil
}

// DiscardDraft drops unsaved edits. Returns false when there was nothing to discard.
func (uc *ModelDefinitionUseCase) DiscardDraft(ctx context.Context, id model.ModelDefinitionID) (bool, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	if _, err := uc.Get(ctx, id); err != nil {
		return false, err
	}
	uc.cancelAutoSave(id)
	return uc.drafts.Delete(id), nil
}

// Validate checks the persisted definition. On success the status becomes
// VALIDATED; otherwise the issues are returned with ErrValidationFailed.
func (uc *ModelDefinitionUseCase) Validate(ctx context.Context, id model.ModelDefinitionID) (*model.ModelDefinition, []model.ValidationIssue, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	def, err := uc.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if issues := uc.validator.Validate(def); len(issues) > 0 {
		ev := model.NewChangeEvent(model.ChangeValidationFailed, def, auth.UserIDFromContext(ctx))
		ev.Detail = issueSummary(issues)
		uc.events.publish(ctx, ev)
		return def, issues, goerr.Wrap(ErrValidationFailed, "model definition is invalid",
			goerr.V(ModelIDKey, id), goerr.V("issue_count", len(issues)))
	}

	prevVersion := def.Version
	def.Status = types.ModelStatusValidated
	updated, err := uc.repo.ModelDefinition().Update(ctx, def, prevVersion)
	if err != nil {
		return nil, nil, wrapRepoError(err, "failed to mark model definition validated", id)
	}
	uc.syncDraft(updated)
	uc.events.publish(ctx, model.NewChangeEvent(model.ChangeValidated, updated, auth.UserIDFromContext(ctx)))
	return updated, nil, nil
}

// SetLock locks or unlocks a definition. The lock holder is the current user.
func (uc *ModelDefinitionUseCase) SetLock(ctx context.Context, id model.ModelDefinitionID, locked bool) (*model.ModelDefinition, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	def, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	def.Locked = locked
	def.LockedBy = ""
	if locked {
		def.LockedBy = auth.UserIDFromContext(ctx)
		uc.cancelAutoSave(id)
	}

	updated, err := uc.repo.ModelDefinition().Update(ctx, def, def.Version)
	if err != nil {
		return nil, wrapRepoError(err, "failed to update lock", id)
	}
	uc.syncDraft(updated)
	// a draft left over from before the lock is scheduled again
	if !locked && uc.autoSaver != nil && uc.drafts.Has(id) {
		uc.autoSaver.Touch(id)
	}

	logging.From(ctx).Info("model definition lock changed", "model_id", id, "locked", locked)
	kind := model.ChangeUnlocked
	if locked {
		kind = model.ChangeLocked
	}
	uc.events.publish(ctx, model.NewChangeEvent(kind, updated, auth.UserIDFromContext(ctx)))
	return updated, nil
}

// syncDraft copies state fields that change without a save into a pending draft
func (uc *ModelDefinitionUseCase) syncDraft(def *model.ModelDefinition) {
	draft, ok := uc.drafts.Get(def.ID)
	if !ok {
		return
	}
	draft.Locked = def.Locked
	draft.LockedBy = def.LockedBy
	draft.Status = def.Status
	uc.drafts.Put(draft)
}

// Resolve returns the effective value of path for lob and year in the draft
func (uc *ModelDefinitionUseCase) Resolve(ctx context.Context, id model.ModelDefinitionID, path model.FieldPath, lob types.LOB, year types.Year) (*ResolvedValue, error) {
	if _, _, err := path.Split(); err != nil {
		return nil, err
	}
	if err := lob.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidOverride, "invalid LOB query", goerr.V("lob", lob))
	}
	if err := year.Validate(); err != nil {
		return nil, goerr.Wrap(model.ErrInvalidOverride, "invalid year query", goerr.V("year", year))
	}

	def, err := uc.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	base, _ := def.Configuration.Lookup(path)
	query := model.OverrideQuery{LOB: lob, Year: year}
	entry, tier := model.ResolveEntry(def.Configuration.OverridesAt(path), query)

	resolved := &ResolvedValue{
		Path:  path,
		LOB:   lob,
		Year:  year,
		Value: model.Resolve(base, def.Configuration.OverridesAt(path), query),
		Base:  base,
		Tier:  tier.String(),
		Entry: entry,
	}
	return resolved, nil
}

// ChangedOverrides lists the draft's overrides that differ from their base
// value, grouped by functional area
func (uc *ModelDefinitionUseCase) ChangedOverrides(ctx context.Context, id model.ModelDefinitionID) ([]model.SectionChanges, error) {
	def, err := uc.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return model.GroupBySection(model.ChangedOverrides(def.Configuration)), nil
}

// ExportOverrides dumps every override list of the draft
func (uc *ModelDefinitionUseCase) ExportOverrides(ctx context.Context, id model.ModelDefinitionID) (*OverridesExport, error) {
	def, err := uc.GetDraft(ctx, id)
	if err != nil {
		return nil, err
	}

	export := &OverridesExport{
		ModelID:    def.ID,
		Name:       def.Name,
		Version:    def.Version,
		ExportedAt: time.Now().UTC(),
		Overrides:  make(map[types.SectionID]map[string][]model.OverrideEntry),
	}
	for _, sectionID := range types.AllSections() {
		s, ok := def.Configuration[sectionID]
		if !ok || s == nil || len(s.Overrides) == 0 {
			continue
		}
		export.Overrides[sectionID] = s.Overrides
	}
	return export, nil
}

func (uc *ModelDefinitionUseCase) cancelAutoSave(id model.ModelDefinitionID) {
	if uc.autoSaver != nil {
		uc.autoSaver.Cancel(id)
	}
}

// wrapRepoError maps repository sentinels to use case sentinels
func wrapRepoError(err error, msg string, id model.ModelDefinitionID) error {
	if errors.Is(err, interfaces.ErrNotFound) {
		return goerr.Wrap(ErrModelNotFound, msg, goerr.V(ModelIDKey, id), goerr.V("cause", err.Error()))
	}
	return goerr.Wrap(err, msg, goerr.V(ModelIDKey, id))
}
