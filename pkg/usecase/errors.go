package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Not found errors
	ErrModelNotFound  = errors.New("model definition not found")
	ErrUploadNotFound = errors.New("upload not found")

	// State errors
	ErrModelLocked      = errors.New("model definition is locked")
	ErrValidationFailed = errors.New("model definition has validation issues")
	ErrUploadInProgress = errors.New("upload validation is in progress")

	// Auth errors
	ErrUnauthenticated = errors.New("authentication required")
	ErrInvalidToken    = errors.New("invalid token")

	// Other errors
	ErrStorageNotConfigured = errors.New("blob storage is not configured")
)

// Context keys for error values
const (
	ModelIDKey  = "model_id"
	UploadIDKey = "upload_id"
	VersionKey  = "version"
)
