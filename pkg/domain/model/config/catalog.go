package config

import (
	"slices"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

// LineOfBusiness is a LOB offered for overrides
type LineOfBusiness struct {
	ID   types.LOB
	Name string
}

// ProductType is a product a model definition can be created for
type ProductType struct {
	ID                       types.ProductType
	Name                     string
	DefaultMeasurementModel  types.MeasurementModel
	AllowedMeasurementModels []types.MeasurementModel
}

// Catalog holds the reference data and the default configuration used to seed
// new model definitions. An empty list means "accept anything".
type Catalog struct {
	LOBs         []LineOfBusiness
	ProductTypes []ProductType
	Defaults     map[types.SectionID]map[string]any
}

// HasLOB reports whether lob is in the catalog. The wildcard is always accepted.
func (c *Catalog) HasLOB(lob types.LOB) bool {
	if c == nil || len(c.LOBs) == 0 || lob.IsWildcard() {
		return true
	}
	return slices.ContainsFunc(c.LOBs, func(l LineOfBusiness) bool { return l.ID == lob })
}

// ProductType looks up a product type. ok is true when the catalog has no product list.
func (c *Catalog) ProductType(id types.ProductType) (ProductType, bool) {
	if c == nil || len(c.ProductTypes) == 0 {
		return ProductType{ID: id}, true
	}
	for _, p := range c.ProductTypes {
		if p.ID == id {
			return p, true
		}
	}
	return ProductType{}, false
}

// Allows reports whether the product type may use the measurement model
func (p ProductType) Allows(m types.MeasurementModel) bool {
	if len(p.AllowedMeasurementModels) == 0 {
		return true
	}
	return slices.Contains(p.AllowedMeasurementModels, m)
}
