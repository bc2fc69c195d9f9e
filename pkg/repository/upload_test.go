package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

func newUpload(modelID model.ModelDefinitionID, status types.UploadStatus) *model.DataUpload {
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := model.NewUploadID()
	return &model.DataUpload{
		ID:                id,
		ModelDefinitionID: modelID,
		FileName:          "claims.xlsx",
		Size:              1024,
		ContentType:       "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		StorageKey:        "uploads/" + string(modelID) + "/" + string(id),
		Status:            status,
		UploadedBy:        "U001",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

func runUploadTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		u := newUpload("md-a", types.UploadStatusUploaded)
		gt.NoError(t, repo.Upload().Put(ctx, u)).Required()

		got, err := repo.Upload().Get(ctx, u.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.FileName).Equal("claims.xlsx")
		gt.Value(t, got.Status).Equal(types.UploadStatusUploaded)
		gt.Value(t, got.StorageKey).Equal(u.StorageKey)

		u.Status = types.UploadStatusFailed
		u.Error = "bad signature"
		u.Attempts = 1
		gt.NoError(t, repo.Upload().Put(ctx, u)).Required()

		got, err = repo.Upload().Get(ctx, u.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Status).Equal(types.UploadStatusFailed)
		gt.Value(t, got.Error).Equal("bad signature")
		gt.Value(t, got.Attempts).Equal(1)
	})

	t.Run("Get returns ErrNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.Upload().Get(context.Background(), model.NewUploadID())
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("ListByModel and ListByStatus filter", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Upload().Put(ctx, newUpload("md-a", types.UploadStatusValidated))).Required()
		gt.NoError(t, repo.Upload().Put(ctx, newUpload("md-a", types.UploadStatusFailed))).Required()
		gt.NoError(t, repo.Upload().Put(ctx, newUpload("md-b", types.UploadStatusFailed))).Required()

		all, err := repo.Upload().ListByModel(ctx, "md-a")
		gt.NoError(t, err).Required()
		gt.Array(t, all).Length(2)

		failed, err := repo.Upload().ListByStatus(ctx, "md-a", types.UploadStatusFailed)
		gt.NoError(t, err).Required()
		gt.Array(t, failed).Length(1).Required()
		gt.Value(t, failed[0].ModelDefinitionID).Equal(model.ModelDefinitionID("md-a"))

		none, err := repo.Upload().ListByModel(ctx, "md-c")
		gt.NoError(t, err).Required()
		gt.Array(t, none).Length(0)
	})
}

func TestMemoryUploadRepository(t *testing.T) {
	runUploadTest(t, newMemoryRepository)
}

func TestFirestoreUploadRepository(t *testing.T) {
	runUploadTest(t, newFirestoreRepository)
}
