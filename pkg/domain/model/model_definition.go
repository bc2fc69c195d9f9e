package model

import (
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

const (
	modelIDPrefix   = "md-"
	modelIDAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	modelIDLength   = 12
)

// ModelDefinitionID is a short URL-safe identifier for a model definition
type ModelDefinitionID string

// NewModelDefinitionID generates a new nanoid based ModelDefinitionID
func NewModelDefinitionID() ModelDefinitionID {
	return ModelDefinitionID(modelIDPrefix + nanoid.MustGenerate(modelIDAlphabet, modelIDLength))
}

func (id ModelDefinitionID) String() string {
	return string(id)
}

// ModelDefinition is the persisted, versioned parameter set of one actuarial model
type ModelDefinition struct {
	ID               ModelDefinitionID
	Name             string
	Description      string
	ProductType      types.ProductType
	MeasurementModel types.MeasurementModel
	Status           types.ModelStatus
	Version          int
	Locked           bool
	LockedBy         string
	Configuration    Configuration
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Copy returns a deep copy of the definition
func (m *ModelDefinition) Copy() *ModelDefinition {
	if m == nil {
		return nil
	}
	cp := *m
	cp.Configuration = m.Configuration.Clone()
	return &cp
}

// CloneModelDefinition derives a new draft definition from src. The product type,
// measurement model, description and configuration are copied; identity, version,
// lock and audit fields are not.
func CloneModelDefinition(src *ModelDefinition, name string) *ModelDefinition {
	return &ModelDefinition{
		ID:               NewModelDefinitionID(),
		Name:             name,
		Description:      src.Description,
		ProductType:      src.ProductType,
		MeasurementModel: src.MeasurementModel,
		Status:           types.ModelStatusDraft,
		Version:          1,
		Configuration:    src.Configuration.Clone(),
	}
}
