package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/repository/firestore"
	"github.com/secmon-lab/ifrs-modeler/pkg/repository/memory"
)

func newModelDefinition(name string) *model.ModelDefinition {
	return &model.ModelDefinition{
		ID:               model.NewModelDefinitionID(),
		Name:             name,
		ProductType:      "TERM_LIFE",
		MeasurementModel: types.MeasurementModelGMM,
		Status:           types.ModelStatusDraft,
		Version:          1,
		CreatedBy:        "U001",
		Configuration: model.Configuration{
			types.SectionDiscountRates: {
				Fields: map[string]any{"risk_free_rate": 0.03, "method": "bottom_up"},
				Overrides: map[string][]model.OverrideEntry{
					"risk_free_rate": {{ID: "o1", LOB: "TERM_LIFE", Year: "2026", Value: 0.035}},
				},
			},
		},
	}
}

func runModelDefinitionTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create and Get round trip the configuration", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		def := newModelDefinition("Term Life Q1")
		created, err := repo.ModelDefinition().Create(ctx, def)
		gt.NoError(t, err).Required()
		gt.Value(t, created.ID).Equal(def.ID)
		gt.Value(t, created.Version).Equal(1)
		gt.Bool(t, created.CreatedAt.IsZero()).False()

		retrieved, err := repo.ModelDefinition().Get(ctx, def.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Name).Equal("Term Life Q1")
		gt.Value(t, retrieved.ProductType).Equal(types.ProductType("TERM_LIFE"))
		gt.Value(t, retrieved.MeasurementModel).Equal(types.MeasurementModelGMM)
		gt.Value(t, retrieved.CreatedBy).Equal("U001")

		v, ok := retrieved.Configuration.Lookup("discount_rates.risk_free_rate")
		gt.Bool(t, ok).True()
		gt.Value(t, v).Equal(any(0.03))

		overrides := retrieved.Configuration.OverridesAt("discount_rates.risk_free_rate")
		gt.Array(t, overrides).Length(1).Required()
		gt.Value(t, overrides[0].ID).Equal(model.OverrideID("o1"))
		gt.Value(t, overrides[0].Value).Equal(any(0.035))
	})

	t.Run("Get returns ErrNotFound for unknown ID", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.ModelDefinition().Get(context.Background(), "md-missing")
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound)).True()
	})

	t.Run("returned definitions are copies", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		def := newModelDefinition("copy check")
		_, err := repo.ModelDefinition().Create(ctx, def)
		gt.NoError(t, err).Required()

		got, err := repo.ModelDefinition().Get(ctx, def.ID)
		gt.NoError(t, err).Required()
		got.Configuration[types.SectionDiscountRates].Fields["method"] = "top_down"

		again, err := repo.ModelDefinition().Get(ctx, def.ID)
		gt.NoError(t, err).Required()
		v, _ := again.Configuration.Lookup("discount_rates.method")
		gt.Value(t, v).Equal(any("bottom_up"))
	})

	t.Run("Update checks the previous version", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		def := newModelDefinition("versioned")
		created, err := repo.ModelDefinition().Create(ctx, def)
		gt.NoError(t, err).Required()

		next := created.Copy()
		next.Version = 2
		next.Status = types.ModelStatusSaved
		next.CreatedBy = "someone-else"
		updated, err := repo.ModelDefinition().Update(ctx, next, 1)
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Version).Equal(2)
		gt.Value(t, updated.Status).Equal(types.ModelStatusSaved)
		gt.Value(t, updated.CreatedBy).Equal("U001")

		stale := created.Copy()
		stale.Version = 2
		_, err = repo.ModelDefinition().Update(ctx, stale, 1)
		gt.Bool(t, errors.Is(err, interfaces.ErrVersionConflict)).True()

		_, err = repo.ModelDefinition().Update(ctx, newModelDefinition("missing"), 1)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})

	t.Run("List returns all definitions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		defs, err := repo.ModelDefinition().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, defs).Length(0)

		for i := range 3 {
			_, err := repo.ModelDefinition().Create(ctx, newModelDefinition(fmt.Sprintf("model %d", i)))
			gt.NoError(t, err).Required()
		}

		defs, err = repo.ModelDefinition().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, defs).Length(3)
	})

	t.Run("Delete removes the definition", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		def := newModelDefinition("to delete")
		_, err := repo.ModelDefinition().Create(ctx, def)
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.ModelDefinition().Delete(ctx, def.ID)).Required()

		_, err = repo.ModelDefinition().Get(ctx, def.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()

		err = repo.ModelDefinition().Delete(ctx, def.ID)
		gt.Bool(t, errors.Is(err, interfaces.ErrNotFound)).True()
	})
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test_%d", time.Now().UnixNano())
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix(prefix))
	if err != nil {
		t.Fatalf("failed to create firestore repository: %v", err)
	}
	t.Cleanup(func() {
		if err := repo.Close(); err != nil {
			t.Errorf("failed to close firestore repository: %v", err)
		}
	})
	return repo
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func TestMemoryModelDefinitionRepository(t *testing.T) {
	runModelDefinitionTest(t, newMemoryRepository)
}

func TestFirestoreModelDefinitionRepository(t *testing.T) {
	runModelDefinitionTest(t, newFirestoreRepository)
}
