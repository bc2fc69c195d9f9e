package config

import (
	_ "embed"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/ifrs-modeler/pkg/domain/model/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
	"github.com/secmon-lab/ifrs-modeler/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

//go:embed default_catalog.toml
var defaultCatalog []byte

// CatalogFile is the TOML layout of the catalogue and default model template
type CatalogFile struct {
	LOBs         []LineOfBusiness          `toml:"lob"`
	ProductTypes []ProductType             `toml:"product_type"`
	Sections     map[string]map[string]any `toml:"sections"`
}

// LineOfBusiness represents a LOB entry
type LineOfBusiness struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Validate checks if the LineOfBusiness is valid
func (l *LineOfBusiness) Validate() error {
	lob := types.LOB(l.ID)
	if lob.IsWildcard() {
		return goerr.Wrap(ErrInvalidLOB, "wildcard cannot be a catalogue LOB", goerr.V(LOBKey, l.ID))
	}
	if err := lob.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidLOB, err.Error(), goerr.V(LOBKey, l.ID))
	}
	if l.Name == "" {
		return goerr.Wrap(ErrMissingName, "LOB name is required", goerr.V(LOBKey, l.ID))
	}
	return nil
}

// ProductType represents a product type entry
type ProductType struct {
	ID                       string   `toml:"id"`
	Name                     string   `toml:"name"`
	DefaultMeasurementModel  string   `toml:"default_measurement_model"`
	AllowedMeasurementModels []string `toml:"allowed_measurement_models"`
}

// Validate checks if the ProductType is valid
func (p *ProductType) Validate() error {
	if err := types.ProductType(p.ID).Validate(); err != nil {
		return goerr.Wrap(ErrInvalidProductType, err.Error(), goerr.V(ProductTypeKey, p.ID))
	}
	if p.Name == "" {
		return goerr.Wrap(ErrMissingName, "product type name is required", goerr.V(ProductTypeKey, p.ID))
	}

	allowed := make(map[types.MeasurementModel]bool, len(p.AllowedMeasurementModels))
	for _, s := range p.AllowedMeasurementModels {
		m, err := types.ParseMeasurementModel(s)
		if err != nil {
			return goerr.Wrap(ErrInvalidMeasurementModel, err.Error(),
				goerr.V(ProductTypeKey, p.ID), goerr.V(MeasurementModelKey, s))
		}
		allowed[m] = true
	}

	if p.DefaultMeasurementModel == "" {
		return nil
	}
	m, err := types.ParseMeasurementModel(p.DefaultMeasurementModel)
	if err != nil {
		return goerr.Wrap(ErrInvalidMeasurementModel, err.Error(),
			goerr.V(ProductTypeKey, p.ID), goerr.V(MeasurementModelKey, p.DefaultMeasurementModel))
	}
	if len(allowed) > 0 && !allowed[m] {
		return goerr.Wrap(ErrInvalidMeasurementModel, "default measurement model is not in the allowed list",
			goerr.V(ProductTypeKey, p.ID), goerr.V(MeasurementModelKey, p.DefaultMeasurementModel))
	}
	return nil
}

// Validate checks entries and rejects duplicate IDs and unknown sections
func (c *CatalogFile) Validate() error {
	lobIDs := make(map[string]bool)
	for i, lob := range c.LOBs {
		if err := lob.Validate(); err != nil {
			return goerr.Wrap(err, "invalid LOB", goerr.V(IndexKey, i))
		}
		if lobIDs[lob.ID] {
			return goerr.Wrap(ErrDuplicateLOB, "LOB defined twice", goerr.V(LOBKey, lob.ID))
		}
		lobIDs[lob.ID] = true
	}

	productIDs := make(map[string]bool)
	for i, p := range c.ProductTypes {
		if err := p.Validate(); err != nil {
			return goerr.Wrap(err, "invalid product type", goerr.V(IndexKey, i))
		}
		if productIDs[p.ID] {
			return goerr.Wrap(ErrDuplicateProductType, "product type defined twice", goerr.V(ProductTypeKey, p.ID))
		}
		productIDs[p.ID] = true
	}

	for id := range c.Sections {
		if !types.SectionID(id).IsValid() {
			return goerr.Wrap(ErrUnknownSection, "section is not part of a model configuration", goerr.V(SectionKey, id))
		}
	}

	return nil
}

// ToDomainCatalog converts the file layout to the domain catalogue
func (c *CatalogFile) ToDomainCatalog() *domainConfig.Catalog {
	lobs := make([]domainConfig.LineOfBusiness, len(c.LOBs))
	for i, l := range c.LOBs {
		lobs[i] = domainConfig.LineOfBusiness{ID: types.LOB(l.ID), Name: l.Name}
	}

	products := make([]domainConfig.ProductType, len(c.ProductTypes))
	for i, p := range c.ProductTypes {
		allowed := make([]types.MeasurementModel, 0, len(p.AllowedMeasurementModels))
		for _, s := range p.AllowedMeasurementModels {
			// Validate ran first
			m, _ := types.ParseMeasurementModel(s)
			allowed = append(allowed, m)
		}
		var def types.MeasurementModel
		if p.DefaultMeasurementModel != "" {
			def, _ = types.ParseMeasurementModel(p.DefaultMeasurementModel)
		}
		products[i] = domainConfig.ProductType{
			ID:                       types.ProductType(p.ID),
			Name:                     p.Name,
			DefaultMeasurementModel:  def,
			AllowedMeasurementModels: allowed,
		}
	}

	defaults := make(map[types.SectionID]map[string]any, len(c.Sections))
	for id, fields := range c.Sections {
		defaults[types.SectionID(id)] = fields
	}

	return &domainConfig.Catalog{
		LOBs:         lobs,
		ProductTypes: products,
		Defaults:     defaults,
	}
}

// ParseCatalog decodes and validates catalogue TOML
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var file CatalogFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(ErrInvalidConfig, "failed to parse TOML catalogue", goerr.V("cause", err.Error()))
	}
	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "catalogue validation failed")
	}
	return &file, nil
}

// LoadCatalog reads a catalogue file. An empty path loads the built-in catalogue.
func LoadCatalog(path string) (*domainConfig.Catalog, error) {
	if path == "" {
		file, err := ParseCatalog(defaultCatalog)
		if err != nil {
			return nil, goerr.Wrap(err, "built-in catalogue is broken")
		}
		return file.ToDomainCatalog(), nil
	}

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, goerr.Wrap(ErrConfigNotFound, "catalogue file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read catalogue file", goerr.V(ConfigPathKey, path))
	}

	file, err := ParseCatalog(data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalogue", goerr.V(ConfigPathKey, path))
	}
	return file.ToDomainCatalog(), nil
}

// Catalog holds CLI flags for the catalogue file
type Catalog struct {
	path string
}

func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Path to the catalogue TOML (LOBs, product types, section defaults). Built-in catalogue when empty",
			Sources:     cli.EnvVars("IFRS_MODELER_CATALOG"),
			Destination: &c.path,
		},
	}
}

// Configure loads the catalogue
func (c *Catalog) Configure() (*domainConfig.Catalog, error) {
	catalog, err := LoadCatalog(c.path)
	if err != nil {
		return nil, err
	}
	source := c.path
	if source == "" {
		source = "built-in"
	}
	logging.Default().Info("Catalogue loaded",
		"source", source,
		"lobs", len(catalog.LOBs),
		"product_types", len(catalog.ProductTypes),
	)
	return catalog, nil
}
