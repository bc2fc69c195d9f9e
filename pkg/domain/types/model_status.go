package types

import "fmt"

// ModelStatus represents the lifecycle label of a model definition
type ModelStatus string

const (
	ModelStatusDraft     ModelStatus = "DRAFT"
	ModelStatusSaved     ModelStatus = "SAVED"
	ModelStatusValidated ModelStatus = "VALIDATED"
)

// AllModelStatuses returns all valid model statuses
func AllModelStatuses() []ModelStatus {
	return []ModelStatus{
		ModelStatusDraft,
		ModelStatusSaved,
		ModelStatusValidated,
	}
}

// IsValid checks if the model status is valid
func (s ModelStatus) IsValid() bool {
	switch s {
	case ModelStatusDraft,
		ModelStatusSaved,
		ModelStatusValidated:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as ModelStatusDraft.
func (s ModelStatus) Normalize() ModelStatus {
	if s == "" {
		return ModelStatusDraft
	}
	return s
}

// String returns the string representation of the model status
func (s ModelStatus) String() string {
	return string(s)
}

// ParseModelStatus parses a string into a ModelStatus
func ParseModelStatus(s string) (ModelStatus, error) {
	status := ModelStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid model status: %s", s)
	}
	return status, nil
}
