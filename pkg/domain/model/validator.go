package model

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"
)

// ValidationIssue describes one problem found in a model definition
type ValidationIssue struct {
	Path    FieldPath  `json:"path,omitempty"`
	EntryID OverrideID `json:"entry_id,omitempty"`
	Message string     `json:"message"`
	err     error
}

func (i ValidationIssue) Error() string {
	if i.Path != "" {
		return string(i.Path) + ": " + i.Message
	}
	return i.Message
}

// Is lets callers match an issue against the sentinel errors of this package
func (i ValidationIssue) Is(target error) bool {
	return errors.Is(i.err, target)
}

// ModelValidator checks a model definition against the catalog
type ModelValidator struct {
	catalog *config.Catalog
}

// NewModelValidator creates a validator. A nil catalog accepts any LOB and product.
func NewModelValidator(catalog *config.Catalog) *ModelValidator {
	return &ModelValidator{
		catalog: catalog,
	}
}

// ValidateHeader checks the identity fields required to create a definition
func (v *ModelValidator) ValidateHeader(def *ModelDefinition) error {
	if def.Name == "" {
		return goerr.Wrap(ErrMissingName, "model definition name is required")
	}
	if err := def.ProductType.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidProduct, err.Error(), goerr.V("product_type", def.ProductType))
	}
	product, ok := v.catalog.ProductType(def.ProductType)
	if !ok {
		return goerr.Wrap(ErrInvalidProduct, "product type not found in catalog", goerr.V("product_type", def.ProductType))
	}
	if !def.MeasurementModel.IsValid() {
		return goerr.Wrap(ErrInvalidMeasurement, "unknown measurement model", goerr.V("measurement_model", def.MeasurementModel))
	}
	if !product.Allows(def.MeasurementModel) {
		return goerr.Wrap(ErrInvalidMeasurement, "measurement model not allowed for product",
			goerr.V("product_type", def.ProductType), goerr.V("measurement_model", def.MeasurementModel))
	}
	return nil
}

// ValidateOverride checks one override entry before it is stored
func (v *ModelValidator) ValidateOverride(entry OverrideEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if !v.catalog.HasLOB(entry.LOB) {
		return goerr.Wrap(ErrUnknownLOB, "LOB not found in catalog", goerr.V("lob", entry.LOB))
	}
	return nil
}

// Validate runs every check and returns all issues found. An empty result means
// the definition is valid.
func (v *ModelValidator) Validate(def *ModelDefinition) []ValidationIssue {
	var issues []ValidationIssue

	if err := v.ValidateHeader(def); err != nil {
		issues = append(issues, ValidationIssue{Message: err.Error(), err: err})
	}

	for _, path := range def.Configuration.OverridePaths() {
		if _, ok := def.Configuration.Lookup(path); !ok {
			issues = append(issues, ValidationIssue{
				Path:    path,
				Message: ErrUnknownField.Error(),
				err:     ErrUnknownField,
			})
		}

		seen := make(map[string]bool)
		seenIDs := make(map[OverrideID]bool)
		for _, entry := range def.Configuration.OverridesAt(path) {
			if seenIDs[entry.ID] {
				issues = append(issues, ValidationIssue{
					Path:    path,
					EntryID: entry.ID,
					Message: ErrDuplicateEntryID.Error() + ": " + string(entry.ID),
					err:     ErrDuplicateEntryID,
				})
			}
			seenIDs[entry.ID] = true

			if err := v.ValidateOverride(entry); err != nil {
				issues = append(issues, ValidationIssue{
					Path:    path,
					EntryID: entry.ID,
					Message: err.Error(),
					err:     err,
				})
			}

			scope := string(entry.LOB) + "/" + string(entry.Year)
			if seen[scope] {
				issues = append(issues, ValidationIssue{
					Path:    path,
					EntryID: entry.ID,
					Message: ErrDuplicateScope.Error() + ": " + scope,
					err:     ErrDuplicateScope,
				})
			}
			seen[scope] = true
		}
	}

	return issues
}
