package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

type uploadRepository struct {
	mu      sync.RWMutex
	uploads map[model.UploadID]*model.DataUpload
}

func newUploadRepository() *uploadRepository {
	return &uploadRepository{
		uploads: make(map[model.UploadID]*model.DataUpload),
	}
}

func copyUpload(u *model.DataUpload) *model.DataUpload {
	copied := *u
	return &copied
}

func (r *uploadRepository) Put(ctx context.Context, upload *model.DataUpload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if upload.ID == "" {
		return goerr.New("upload ID is required")
	}
	r.uploads[upload.ID] = copyUpload(upload)
	return nil
}

func (r *uploadRepository) Get(ctx context.Context, id model.UploadID) (*model.DataUpload, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	upload, exists := r.uploads[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "upload not found", goerr.V("id", id))
	}
	return copyUpload(upload), nil
}

func (r *uploadRepository) ListByModel(ctx context.Context, modelID model.ModelDefinitionID) ([]*model.DataUpload, error) {
	return r.list(func(u *model.DataUpload) bool {
		return u.ModelDefinitionID == modelID
	}), nil
}

func (r *uploadRepository) ListByStatus(ctx context.Context, modelID model.ModelDefinitionID, status types.UploadStatus) ([]*model.DataUpload, error) {
	return r.list(func(u *model.DataUpload) bool {
		return u.ModelDefinitionID == modelID && u.Status == status
	}), nil
}

func (r *uploadRepository) list(match func(*model.DataUpload) bool) []*model.DataUpload {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.DataUpload, 0)
	for _, u := range r.uploads {
		if match(u) {
			result = append(result, copyUpload(u))
		}
	}

	// UUIDv7 IDs sort by creation time
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID > result[j].ID
	})
	return result
}
