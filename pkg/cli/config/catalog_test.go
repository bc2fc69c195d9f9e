package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ifrs-modeler/pkg/cli/config"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestParseCatalog(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name: "valid catalogue",
			content: `
[[lob]]
id = "TERM_LIFE"
name = "Term Life"

[[product_type]]
id = "TERM_LIFE"
name = "Term Life"
default_measurement_model = "gmm"
allowed_measurement_models = ["GMM", "PAA"]

[sections.discount_rates]
risk_free_rate = 0.03
`,
		},
		{
			name:    "empty catalogue",
			content: "",
		},
		{
			name: "duplicate LOB",
			content: `
[[lob]]
id = "TERM_LIFE"
name = "Term Life"

[[lob]]
id = "TERM_LIFE"
name = "Term Life Again"
`,
			wantErr: config.ErrDuplicateLOB,
		},
		{
			name: "lower case LOB",
			content: `
[[lob]]
id = "term_life"
name = "Term Life"
`,
			wantErr: config.ErrInvalidLOB,
		},
		{
			name: "wildcard LOB",
			content: `
[[lob]]
id = "ALL"
name = "Everything"
`,
			wantErr: config.ErrInvalidLOB,
		},
		{
			name: "LOB without name",
			content: `
[[lob]]
id = "TERM_LIFE"
`,
			wantErr: config.ErrMissingName,
		},
		{
			name: "duplicate product type",
			content: `
[[product_type]]
id = "TERM_LIFE"
name = "Term Life"

[[product_type]]
id = "TERM_LIFE"
name = "Term Life"
`,
			wantErr: config.ErrDuplicateProductType,
		},
		{
			name: "invalid product type ID",
			content: `
[[product_type]]
id = "term-life"
name = "Term Life"
`,
			wantErr: config.ErrInvalidProductType,
		},
		{
			name: "unknown measurement model",
			content: `
[[product_type]]
id = "TERM_LIFE"
name = "Term Life"
allowed_measurement_models = ["XYZ"]
`,
			wantErr: config.ErrInvalidMeasurementModel,
		},
		{
			name: "default model outside allowed list",
			content: `
[[product_type]]
id = "TERM_LIFE"
name = "Term Life"
default_measurement_model = "VFA"
allowed_measurement_models = ["GMM"]
`,
			wantErr: config.ErrInvalidMeasurementModel,
		},
		{
			name: "unknown section",
			content: `
[sections.pricing]
margin = 0.1
`,
			wantErr: config.ErrUnknownSection,
		},
		{
			name:    "broken TOML",
			content: `[[lob]`,
			wantErr: config.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := config.ParseCatalog([]byte(tt.content))
			if tt.wantErr != nil {
				gt.Error(t, err).Is(tt.wantErr)
				return
			}
			gt.NoError(t, err)
			gt.Value(t, file).NotNil()
		})
	}
}

func TestCatalogFile_ToDomainCatalog(t *testing.T) {
	file, err := config.ParseCatalog([]byte(`
[[lob]]
id = "TERM_LIFE"
name = "Term Life"

[[product_type]]
id = "UNIT_LINKED"
name = "Unit Linked"
default_measurement_model = "vfa"
allowed_measurement_models = ["VFA", "gmm"]

[sections.projection_assumptions]
lapse_rate = 0.05

[sections.projection_assumptions.mortality]
table = "CSO2017"
`))
	gt.NoError(t, err).Required()

	catalog := file.ToDomainCatalog()
	gt.A(t, catalog.LOBs).Length(1)
	gt.Bool(t, catalog.HasLOB("TERM_LIFE")).True()
	gt.Bool(t, catalog.HasLOB("WHOLE_LIFE")).False()

	product, ok := catalog.ProductType("UNIT_LINKED")
	gt.Bool(t, ok).True()
	gt.Value(t, product.DefaultMeasurementModel).Equal(types.MeasurementModelVFA)
	gt.Bool(t, product.Allows(types.MeasurementModelGMM)).True()
	gt.Bool(t, product.Allows(types.MeasurementModelPAA)).False()

	defaults := catalog.Defaults[types.SectionProjectionAssumptions]
	gt.Value(t, defaults["lapse_rate"]).Equal(any(0.05))
	mortality, ok := defaults["mortality"].(map[string]any)
	gt.Bool(t, ok).True()
	gt.Value(t, mortality["table"]).Equal(any("CSO2017"))
}

func TestLoadCatalog(t *testing.T) {
	t.Run("built-in catalogue", func(t *testing.T) {
		catalog, err := config.LoadCatalog("")
		gt.NoError(t, err).Required()
		gt.Bool(t, catalog.HasLOB("TERM_LIFE")).True()

		product, ok := catalog.ProductType("TERM_LIFE")
		gt.Bool(t, ok).True()
		gt.Value(t, product.DefaultMeasurementModel).Equal(types.MeasurementModelGMM)

		for _, id := range types.AllSections() {
			gt.Bool(t, len(catalog.Defaults[id]) > 0).True()
		}
	})

	t.Run("file", func(t *testing.T) {
		path := writeCatalog(t, `
[[lob]]
id = "MOTOR"
name = "Motor"
`)
		catalog, err := config.LoadCatalog(path)
		gt.NoError(t, err).Required()
		gt.Bool(t, catalog.HasLOB("MOTOR")).True()
		gt.Bool(t, catalog.HasLOB("TERM_LIFE")).False()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadCatalog(filepath.Join(t.TempDir(), "nope.toml"))
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("invalid file", func(t *testing.T) {
		path := writeCatalog(t, `
[sections.unknown]
x = 1
`)
		_, err := config.LoadCatalog(path)
		gt.Error(t, err).Is(config.ErrUnknownSection)
	})
}

func TestDefaultCatalogParses(t *testing.T) {
	file, err := config.ParseCatalog(config.DefaultCatalogTOML)
	gt.NoError(t, err).Required()
	gt.Bool(t, len(file.LOBs) > 0).True()
	gt.Bool(t, len(file.ProductTypes) > 0).True()
}
