package interfaces

import (
	"context"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

type UploadRepository interface {
	Put(ctx context.Context, upload *model.DataUpload) error
	Get(ctx context.Context, id model.UploadID) (*model.DataUpload, error)

	// ListByModel returns uploads of a model definition, newest first
	ListByModel(ctx context.Context, modelID model.ModelDefinitionID) ([]*model.DataUpload, error)

	// ListByStatus returns uploads of a model definition with the given status
	ListByStatus(ctx context.Context, modelID model.ModelDefinitionID, status types.UploadStatus) ([]*model.DataUpload, error)
}
