package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// modelDefinitionDocument stores the configuration as one JSON blob so field
// paths containing dots never collide with Firestore field path syntax.
type modelDefinitionDocument struct {
	ID                string    `firestore:"id"`
	Name              string    `firestore:"name"`
	Description       string    `firestore:"description"`
	ProductType       string    `firestore:"product_type"`
	MeasurementModel  string    `firestore:"measurement_model"`
	Status            string    `firestore:"status"`
	Version           int       `firestore:"version"`
	Locked            bool      `firestore:"locked"`
	LockedBy          string    `firestore:"locked_by"`
	ConfigurationJSON string    `firestore:"configuration_json"`
	CreatedBy         string    `firestore:"created_by"`
	UpdatedBy         string    `firestore:"updated_by"`
	CreatedAt         time.Time `firestore:"created_at"`
	UpdatedAt         time.Time `firestore:"updated_at"`
}

type modelDefinitionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newModelDefinitionRepository(client *firestore.Client) *modelDefinitionRepository {
	return &modelDefinitionRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *modelDefinitionRepository) collection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_model_definitions"
	}
	return "model_definitions"
}

func modelDefinitionToDocument(def *model.ModelDefinition) (*modelDefinitionDocument, error) {
	raw, err := json.Marshal(def.Configuration)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal configuration", goerr.V("id", def.ID))
	}
	return &modelDefinitionDocument{
		ID:                string(def.ID),
		Name:              def.Name,
		Description:       def.Description,
		ProductType:       string(def.ProductType),
		MeasurementModel:  string(def.MeasurementModel),
		Status:            string(def.Status),
		Version:           def.Version,
		Locked:            def.Locked,
		LockedBy:          def.LockedBy,
		ConfigurationJSON: string(raw),
		CreatedBy:         def.CreatedBy,
		UpdatedBy:         def.UpdatedBy,
		CreatedAt:         def.CreatedAt,
		UpdatedAt:         def.UpdatedAt,
	}, nil
}

func modelDefinitionFromDocument(doc *modelDefinitionDocument) (*model.ModelDefinition, error) {
	var cfg model.Configuration
	if doc.ConfigurationJSON != "" {
		if err := json.Unmarshal([]byte(doc.ConfigurationJSON), &cfg); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal configuration", goerr.V("id", doc.ID))
		}
	}
	return &model.ModelDefinition{
		ID:               model.ModelDefinitionID(doc.ID),
		Name:             doc.Name,
		Description:      doc.Description,
		ProductType:      types.ProductType(doc.ProductType),
		MeasurementModel: types.MeasurementModel(doc.MeasurementModel),
		Status:           types.ModelStatus(doc.Status).Normalize(),
		Version:          doc.Version,
		Locked:           doc.Locked,
		LockedBy:         doc.LockedBy,
		Configuration:    cfg,
		CreatedBy:        doc.CreatedBy,
		UpdatedBy:        doc.UpdatedBy,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}

func (r *modelDefinitionRepository) decode(snap *firestore.DocumentSnapshot) (*model.ModelDefinition, error) {
	var doc modelDefinitionDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal model definition", goerr.V("id", snap.Ref.ID))
	}
	return modelDefinitionFromDocument(&doc)
}

func (r *modelDefinitionRepository) Create(ctx context.Context, def *model.ModelDefinition) (*model.ModelDefinition, error) {
	if def.ID == "" {
		return nil, goerr.New("model definition ID is required")
	}

	now := time.Now().UTC()
	created := def.Copy()
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Version == 0 {
		created.Version = 1
	}

	doc, err := modelDefinitionToDocument(created)
	if err != nil {
		return nil, err
	}

	docRef := r.client.Collection(r.collection()).Doc(doc.ID)
	if _, err := docRef.Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(err, "model definition already exists", goerr.V("id", def.ID))
		}
		return nil, goerr.Wrap(err, "failed to create model definition", goerr.V("id", def.ID))
	}

	return created, nil
}

func (r *modelDefinitionRepository) Get(ctx context.Context, id model.ModelDefinitionID) (*model.ModelDefinition, error) {
	snap, err := r.client.Collection(r.collection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "model definition not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get model definition", goerr.V("id", id))
	}

	return r.decode(snap)
}

func (r *modelDefinitionRepository) List(ctx context.Context) ([]*model.ModelDefinition, error) {
	iter := r.client.Collection(r.collection()).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	defs := make([]*model.ModelDefinition, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate model definitions")
		}

		def, err := r.decode(snap)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}

	return defs, nil
}

func (r *modelDefinitionRepository) Update(ctx context.Context, def *model.ModelDefinition, prevVersion int) (*model.ModelDefinition, error) {
	docRef := r.client.Collection(r.collection()).Doc(string(def.ID))

	var updated *model.ModelDefinition
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "model definition not found", goerr.V("id", def.ID))
			}
			return goerr.Wrap(err, "failed to get model definition", goerr.V("id", def.ID))
		}

		existing, err := r.decode(snap)
		if err != nil {
			return err
		}
		if existing.Version != prevVersion {
			return goerr.Wrap(ErrVersionConflict, "model definition was modified",
				goerr.V("id", def.ID), goerr.V("stored_version", existing.Version), goerr.V("prev_version", prevVersion))
		}

		next := def.Copy()
		next.CreatedAt = existing.CreatedAt
		next.CreatedBy = existing.CreatedBy
		next.UpdatedAt = time.Now().UTC()

		doc, err := modelDefinitionToDocument(next)
		if err != nil {
			return err
		}
		if err := tx.Set(docRef, doc); err != nil {
			return goerr.Wrap(err, "failed to update model definition", goerr.V("id", def.ID))
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (r *modelDefinitionRepository) Delete(ctx context.Context, id model.ModelDefinitionID) error {
	docRef := r.client.Collection(r.collection()).Doc(string(id))

	_, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "model definition not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get model definition", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete model definition", goerr.V("id", id))
	}

	return nil
}
