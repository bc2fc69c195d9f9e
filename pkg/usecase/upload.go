package usecase

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/auth"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/async"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/safe"
	"golang.org/x/sync/errgroup"
)

// retryConcurrency bounds parallel re-validation in RetryFailed
const retryConcurrency = 4

type UploadUseCase struct {
	repo       interfaces.Repository
	storage    interfaces.BlobStorage
	dispatcher *async.Dispatcher
	events     *eventPublisher

	mu       sync.Mutex
	inFlight map[model.UploadID]struct{}
}

func NewUploadUseCase(repo interfaces.Repository, storage interfaces.BlobStorage, dispatcher *async.Dispatcher) *UploadUseCase {
	if dispatcher == nil {
		dispatcher = async.NewDispatcher()
	}
	return &UploadUseCase{
		repo:       repo,
		storage:    storage,
		dispatcher: dispatcher,
		events:     newEventPublisher(nil, dispatcher),
		inFlight:   make(map[model.UploadID]struct{}),
	}
}

func storageKey(modelID model.ModelDefinitionID, id model.UploadID, fileName string) string {
	return "uploads/" + modelID.String() + "/" + id.String() + "/" + filepath.Base(fileName)
}

// Upload stores a data file for a model definition and starts validation in
// the background. Size and extension are checked before anything is stored.
func (uc *UploadUseCase) Upload(ctx context.Context, modelID model.ModelDefinitionID, fileName string, size int64, contentType string, body io.Reader) (*model.DataUpload, error) {
	if err := model.ValidateUploadFile(fileName, size); err != nil {
		return nil, err
	}
	if uc.storage == nil {
		return nil, goerr.Wrap(ErrStorageNotConfigured, "cannot accept uploads")
	}
	if _, err := uc.repo.ModelDefinition().Get(ctx, modelID); err != nil {
		return nil, wrapRepoError(err, "failed to get model definition for upload", modelID)
	}

	now := time.Now().UTC()
	upload := &model.DataUpload{
		ID:                model.NewUploadID(),
		ModelDefinitionID: modelID,
		FileName:          filepath.Base(fileName),
		Size:              size,
		ContentType:       contentType,
		Status:            types.UploadStatusUploaded,
		UploadedBy:        auth.UserIDFromContext(ctx),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	upload.StorageKey = storageKey(modelID, upload.ID, fileName)

	// The declared size is not trusted; the stored byte count must match it
	counter := safe.NewCountingReader(io.LimitReader(body, model.MaxUploadSize+1))
	if err := uc.storage.Put(ctx, upload.StorageKey, contentType, counter); err != nil {
		return nil, goerr.Wrap(err, "failed to store upload", goerr.V(UploadIDKey, upload.ID), goerr.V(model.FileNameKey, fileName))
	}
	if err := uc.checkStoredSize(ctx, upload, counter.Count()); err != nil {
		return nil, err
	}
	if err := uc.repo.Upload().Put(ctx, upload); err != nil {
		return nil, goerr.Wrap(err, "failed to record upload", goerr.V(UploadIDKey, upload.ID))
	}

	logging.From(ctx).Info("upload stored", "upload_id", upload.ID, "model_id", modelID, "size", size)

	id := upload.ID
	uc.dispatcher.Dispatch(ctx, "validate_upload", func(ctx context.Context) error {
		_, err := uc.Validate(ctx, id)
		return err
	})

	return upload, nil
}

// checkStoredSize removes a stored blob whose length is over the limit or
// differs from the declared size.
func (uc *UploadUseCase) checkStoredSize(ctx context.Context, upload *model.DataUpload, stored int64) error {
	var err error
	switch {
	case stored > model.MaxUploadSize:
		err = goerr.Wrap(model.ErrFileTooLarge, "stored file is too large",
			goerr.V(UploadIDKey, upload.ID), goerr.V(model.FileNameKey, upload.FileName), goerr.V("max_size", model.MaxUploadSize))
	case stored != upload.Size:
		err = goerr.Wrap(model.ErrInvalidContent, "stored size differs from declared size",
			goerr.V(UploadIDKey, upload.ID), goerr.V(model.FileSizeKey, upload.Size), goerr.V("stored_size", stored))
	default:
		return nil
	}

	if delErr := uc.storage.Delete(ctx, upload.StorageKey); delErr != nil {
		logging.From(ctx).Warn("failed to delete rejected upload", "upload_id", upload.ID, "error", delErr)
	}
	return err
}

func (uc *UploadUseCase) acquire(id model.UploadID) bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	if _, busy := uc.inFlight[id]; busy {
		return false
	}
	uc.inFlight[id] = struct{}{}
	return true
}

func (uc *UploadUseCase) release(id model.UploadID) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, id)
}

// Validate checks the stored file signature against its extension. A file that
// fails the check ends up FAILED with a message; only infrastructure errors are
// returned as errors.
func (uc *UploadUseCase) Validate(ctx context.Context, id model.UploadID) (*model.DataUpload, error) {
	if !uc.acquire(id) {
		return nil, goerr.Wrap(ErrUploadInProgress, "upload is already being validated", goerr.V(UploadIDKey, id))
	}
	defer uc.release(id)

	upload, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upload.Status = types.UploadStatusValidating
	upload.Attempts++
	upload.Error = ""
	upload.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Upload().Put(ctx, upload); err != nil {
		return nil, goerr.Wrap(err, "failed to mark upload validating", goerr.V(UploadIDKey, id))
	}

	checkErr, infraErr := uc.inspect(ctx, upload)
	switch {
	case infraErr != nil:
		upload.Status = types.UploadStatusFailed
		upload.Error = "could not read stored file, retry later"
	case checkErr != nil:
		upload.Status = types.UploadStatusFailed
		upload.Error = checkErr.Error()
	default:
		upload.Status = types.UploadStatusValidated
	}
	upload.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Upload().Put(ctx, upload); err != nil {
		return nil, goerr.Wrap(err, "failed to record validation result", goerr.V(UploadIDKey, id))
	}

	logging.From(ctx).Info("upload validated",
		"upload_id", id, "status", upload.Status, "attempts", upload.Attempts)

	if upload.Status == types.UploadStatusFailed {
		uc.notifyFailure(ctx, upload)
	}

	if infraErr != nil {
		return upload, infraErr
	}
	return upload, nil
}

func (uc *UploadUseCase) inspect(ctx context.Context, upload *model.DataUpload) (checkErr, infraErr error) {
	if uc.storage == nil {
		return nil, goerr.Wrap(ErrStorageNotConfigured, "cannot read upload")
	}
	r, err := uc.storage.Get(ctx, upload.StorageKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open stored upload", goerr.V(UploadIDKey, upload.ID))
	}
	defer safe.Close(ctx, r)

	head, err := safe.ReadHead(r, model.SniffLength)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read stored upload", goerr.V(UploadIDKey, upload.ID))
	}
	return model.DetectSpreadsheet(upload.FileName, head), nil
}

func (uc *UploadUseCase) notifyFailure(ctx context.Context, upload *model.DataUpload) {
	def, err := uc.repo.ModelDefinition().Get(ctx, upload.ModelDefinitionID)
	if err != nil {
		logging.From(ctx).Warn("model of failed upload not found", "upload_id", upload.ID, "error", err)
		return
	}
	ev := model.NewChangeEvent(model.ChangeUploadFailed, def, upload.UploadedBy)
	ev.Detail = upload.FileName + ": " + upload.Error
	uc.events.publish(ctx, ev)
}

// RetryValidation re-runs validation of one upload
func (uc *UploadUseCase) RetryValidation(ctx context.Context, id model.UploadID) (*model.DataUpload, error) {
	return uc.Validate(ctx, id)
}

// RetryFailed re-validates every FAILED upload of a model definition
func (uc *UploadUseCase) RetryFailed(ctx context.Context, modelID model.ModelDefinitionID) ([]*model.DataUpload, error) {
	failed, err := uc.repo.Upload().ListByStatus(ctx, modelID, types.UploadStatusFailed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list failed uploads", goerr.V(ModelIDKey, modelID))
	}

	results := make([]*model.DataUpload, len(failed))
	// retries run independently; one failure does not cancel the rest
	var eg errgroup.Group
	eg.SetLimit(retryConcurrency)

	for i, upload := range failed {
		eg.Go(func() error {
			updated, err := uc.Validate(ctx, upload.ID)
			switch {
			case updated != nil:
				// unreadable files come back FAILED with an error; the record is the result
				if err != nil {
					logging.From(ctx).Warn("retry left upload failed", "upload_id", upload.ID, "error", err)
				}
				results[i] = updated
				return nil
			case errors.Is(err, ErrUploadInProgress):
				results[i] = upload
				return nil
			default:
				return err
			}
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to retry uploads", goerr.V(ModelIDKey, modelID))
	}
	return results, nil
}

func (uc *UploadUseCase) Get(ctx context.Context, id model.UploadID) (*model.DataUpload, error) {
	upload, err := uc.repo.Upload().Get(ctx, id)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrUploadNotFound, "failed to get upload", goerr.V(UploadIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get upload", goerr.V(UploadIDKey, id))
	}
	return upload, nil
}

func (uc *UploadUseCase) ListByModel(ctx context.Context, modelID model.ModelDefinitionID) ([]*model.DataUpload, error) {
	uploads, err := uc.repo.Upload().ListByModel(ctx, modelID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list uploads", goerr.V(ModelIDKey, modelID))
	}
	return uploads, nil
}

// Download opens the stored file. The caller closes the reader.
func (uc *UploadUseCase) Download(ctx context.Context, id model.UploadID) (*model.DataUpload, io.ReadCloser, error) {
	upload, err := uc.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if uc.storage == nil {
		return nil, nil, goerr.Wrap(ErrStorageNotConfigured, "cannot download upload")
	}
	r, err := uc.storage.Get(ctx, upload.StorageKey)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to open stored upload", goerr.V(UploadIDKey, id))
	}
	return upload, r, nil
}

// Wait blocks until background validations have finished
func (uc *UploadUseCase) Wait() {
	uc.dispatcher.Wait()
}
