package model

import "github.com/m-mizutani/goerr/v2"

// Validation errors
var (
	ErrInvalidPath      = goerr.New("invalid field path")
	ErrInvalidOverride  = goerr.New("invalid override entry")
	ErrOverrideNotFound = goerr.New("override entry not found")
	ErrFileTooLarge     = goerr.New("file exceeds maximum upload size")
	ErrInvalidFileType  = goerr.New("unsupported file type")
	ErrInvalidContent   = goerr.New("file content does not match its extension")
)

// Context keys for error values
const (
	FieldPathKey  = "field_path"
	SectionKey    = "section"
	OverrideIDKey = "override_id"
	FileNameKey   = "file_name"
	FileSizeKey   = "file_size"
)

// Model validation errors
var (
	ErrMissingName        = goerr.New("name is required")
	ErrInvalidProduct     = goerr.New("invalid product type")
	ErrInvalidMeasurement = goerr.New("invalid measurement model")
	ErrUnknownField       = goerr.New("override targets a field without base value")
	ErrUnknownLOB         = goerr.New("LOB is not in the catalog")
	ErrDuplicateScope     = goerr.New("duplicate override scope")
	ErrDuplicateEntryID   = goerr.New("duplicate override entry ID")
)
