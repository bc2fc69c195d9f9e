package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
)

type modelDefinitionRepository struct {
	mu   sync.RWMutex
	defs map[model.ModelDefinitionID]*model.ModelDefinition
}

func newModelDefinitionRepository() *modelDefinitionRepository {
	return &modelDefinitionRepository{
		defs: make(map[model.ModelDefinitionID]*model.ModelDefinition),
	}
}

func (r *modelDefinitionRepository) Create(ctx context.Context, def *model.ModelDefinition) (*model.ModelDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if def.ID == "" {
		return nil, goerr.New("model definition ID is required")
	}
	if _, exists := r.defs[def.ID]; exists {
		return nil, goerr.New("model definition already exists", goerr.V("id", def.ID))
	}

	now := time.Now().UTC()
	created := def.Copy()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Version == 0 {
		created.Version = 1
	}

	r.defs[created.ID] = created
	return created.Copy(), nil
}

func (r *modelDefinitionRepository) Get(ctx context.Context, id model.ModelDefinitionID) (*model.ModelDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.defs[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "model definition not found", goerr.V("id", id))
	}

	// Return a copy to prevent external modification
	return def.Copy(), nil
}

func (r *modelDefinitionRepository) List(ctx context.Context) ([]*model.ModelDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]*model.ModelDefinition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def.Copy())
	}

	sort.Slice(defs, func(i, j int) bool {
		if defs[i].UpdatedAt.Equal(defs[j].UpdatedAt) {
			return defs[i].ID < defs[j].ID
		}
		return defs[i].UpdatedAt.After(defs[j].UpdatedAt)
	})

	return defs, nil
}

func (r *modelDefinitionRepository) Update(ctx context.Context, def *model.ModelDefinition, prevVersion int) (*model.ModelDefinition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.defs[def.ID]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "model definition not found", goerr.V("id", def.ID))
	}
	if existing.Version != prevVersion {
		return nil, goerr.Wrap(ErrVersionConflict, "model definition was modified",
			goerr.V("id", def.ID), goerr.V("stored_version", existing.Version), goerr.V("prev_version", prevVersion))
	}

	updated := def.Copy()
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.UpdatedAt = time.Now().UTC()

	r.defs[updated.ID] = updated
	return updated.Copy(), nil
}

func (r *modelDefinitionRepository) Delete(ctx context.Context, id model.ModelDefinitionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[id]; !exists {
		return goerr.Wrap(ErrNotFound, "model definition not found", goerr.V("id", id))
	}

	delete(r.defs, id)
	return nil
}
