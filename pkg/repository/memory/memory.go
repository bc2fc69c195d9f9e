package memory

import (
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// ErrNotFound is returned when an entity does not exist
var ErrNotFound = interfaces.ErrNotFound

// ErrVersionConflict is returned when an update is based on a stale version
var ErrVersionConflict = interfaces.ErrVersionConflict

type Memory struct {
	modelDefinition *modelDefinitionRepository
	upload          *uploadRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		modelDefinition: newModelDefinitionRepository(),
		upload:          newUploadRepository(),
	}
}

func (m *Memory) ModelDefinition() interfaces.ModelDefinitionRepository {
	return m.modelDefinition
}

func (m *Memory) Upload() interfaces.UploadRepository {
	return m.upload
}

func (m *Memory) Close() error {
	return nil
}
