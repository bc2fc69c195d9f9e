package interfaces

import (
	"context"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
)

type ModelDefinitionRepository interface {
	// Create stores a new definition. The ID must be set by the caller.
	Create(ctx context.Context, def *model.ModelDefinition) (*model.ModelDefinition, error)

	// Get retrieves a definition by ID
	Get(ctx context.Context, id model.ModelDefinitionID) (*model.ModelDefinition, error)

	// List retrieves all definitions ordered by UpdatedAt descending
	List(ctx context.Context) ([]*model.ModelDefinition, error)

	// Update replaces a definition wholesale if its stored version equals
	// prevVersion, and returns ErrVersionConflict otherwise.
	Update(ctx context.Context, def *model.ModelDefinition, prevVersion int) (*model.ModelDefinition, error)

	// Delete deletes a definition by ID
	Delete(ctx context.Context, id model.ModelDefinitionID) error
}
