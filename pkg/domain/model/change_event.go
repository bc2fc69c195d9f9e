package model

import "time"

// ChangeKind is the lifecycle step a ChangeEvent reports
type ChangeKind string

const (
	ChangeSaved            ChangeKind = "saved"
	ChangeValidated        ChangeKind = "validated"
	ChangeValidationFailed ChangeKind = "validation_failed"
	ChangeLocked           ChangeKind = "locked"
	ChangeUnlocked         ChangeKind = "unlocked"
	ChangeDeleted          ChangeKind = "deleted"
	ChangeUploadFailed     ChangeKind = "upload_failed"
)

// ChangeEvent is published after a model definition changes state
type ChangeEvent struct {
	Kind      ChangeKind
	ModelID   ModelDefinitionID
	ModelName string
	Version   int
	Actor     string
	Detail    string
	At        time.Time
}

// NewChangeEvent fills the event from the definition it concerns
func NewChangeEvent(kind ChangeKind, def *ModelDefinition, actor string) *ChangeEvent {
	return &ChangeEvent{
		Kind:      kind,
		ModelID:   def.ID,
		ModelName: def.Name,
		Version:   def.Version,
		Actor:     actor,
		At:        time.Now().UTC(),
	}
}
