package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound          = goerr.New("configuration file not found")
	ErrInvalidConfig           = goerr.New("invalid configuration")
	ErrDuplicateLOB            = goerr.New("duplicate LOB ID")
	ErrDuplicateProductType    = goerr.New("duplicate product type ID")
	ErrInvalidLOB              = goerr.New("invalid LOB ID format")
	ErrInvalidProductType      = goerr.New("invalid product type ID format")
	ErrInvalidMeasurementModel = goerr.New("invalid measurement model")
	ErrUnknownSection          = goerr.New("unknown configuration section")
	ErrMissingName             = goerr.New("name is required")
)

// Context keys for error values
const (
	ConfigPathKey       = "config_path"
	LOBKey              = "lob"
	ProductTypeKey      = "product_type"
	MeasurementModelKey = "measurement_model"
	SectionKey          = "section"
	IndexKey            = "index"
)
