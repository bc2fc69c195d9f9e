package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type uploadDocument struct {
	ID                string    `firestore:"id"`
	ModelDefinitionID string    `firestore:"model_definition_id"`
	FileName          string    `firestore:"file_name"`
	Size              int64     `firestore:"size"`
	ContentType       string    `firestore:"content_type"`
	StorageKey        string    `firestore:"storage_key"`
	Status            string    `firestore:"status"`
	Error             string    `firestore:"error"`
	Attempts          int       `firestore:"attempts"`
	UploadedBy        string    `firestore:"uploaded_by"`
	CreatedAt         time.Time `firestore:"created_at"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

type uploadRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUploadRepository(client *firestore.Client) *uploadRepository {
	return &uploadRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *uploadRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_uploads"
	}
	return "uploads"
}

func uploadToDocument(u *model.DataUpload) *uploadDocument {
	return &uploadDocument{
		ID:                string(u.ID),
		ModelDefinitionID: string(u.ModelDefinitionID),
		FileName:          u.FileName,
		Size:              u.Size,
		ContentType:       u.ContentType,
		StorageKey:        u.StorageKey,
		Status:            string(u.Status),
		Error:             u.Error,
		Attempts:          u.Attempts,
		UploadedBy:        u.UploadedBy,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func uploadFromDocument(doc *uploadDocument) *model.DataUpload {
	return &model.DataUpload{
		ID:                model.UploadID(doc.ID),
		ModelDefinitionID: model.ModelDefinitionID(doc.ModelDefinitionID),
		FileName:          doc.FileName,
		Size:              doc.Size,
		ContentType:       doc.ContentType,
		StorageKey:        doc.StorageKey,
		Status:            types.UploadStatus(doc.Status),
		Error:             doc.Error,
		Attempts:          doc.Attempts,
		UploadedBy:        doc.UploadedBy,
		CreatedAt:         doc.CreatedAt,
		UpdatedAt:         doc.UpdatedAt,
	}
}

func (r *uploadRepository) Put(ctx context.Context, upload *model.DataUpload) error {
	if upload.ID == "" {
		return goerr.New("upload ID is required")
	}
	docRef := r.client.Collection(r.collection()).Doc(string(upload.ID))
	if _, err := docRef.Set(ctx, uploadToDocument(upload)); err != nil {
		return goerr.Wrap(err, "failed to put upload", goerr.V("id", upload.ID))
	}
	return nil
}

func (r *uploadRepository) Get(ctx context.Context, id model.UploadID) (*model.DataUpload, error) {
	snap, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "upload not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get upload", goerr.V("id", id))
	}

	var doc uploadDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal upload", goerr.V("id", id))
	}
	return uploadFromDocument(&doc), nil
}

func (r *uploadRepository) ListByModel(ctx context.Context, modelID model.ModelDefinitionID) ([]*model.DataUpload, error) {
	query := r.client.Collection(r.collection()).
		Where("model_definition_id", "==", string(modelID)).
		OrderBy("created_at", firestore.Desc)
	return r.collect(ctx, query)
}

func (r *uploadRepository) ListByStatus(ctx context.Context, modelID model.ModelDefinitionID, st types.UploadStatus) ([]*model.DataUpload, error) {
	query := r.client.Collection(r.collection()).
		Where("model_definition_id", "==", string(modelID)).
		Where("status", "==", string(st)).
		OrderBy("created_at", firestore.Desc)
	return r.collect(ctx, query)
}

func (r *uploadRepository) collect(ctx context.Context, query firestore.Query) ([]*model.DataUpload, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	uploads := make([]*model.DataUpload, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate uploads")
		}

		var doc uploadDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal upload")
		}
		uploads = append(uploads, uploadFromDocument(&doc))
	}
	return uploads, nil
}
