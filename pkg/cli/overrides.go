package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/ifrs-modeler/pkg/domain/model"
	"github.com/secmon-lab/ifrs-modeler/pkg/domain/types"
)

// modelDocument is the part of an exported model definition the viewer needs
type modelDocument struct {
	ID            model.ModelDefinitionID `json:"id"`
	Name          string                  `json:"name"`
	Version       int                     `json:"version"`
	Configuration model.Configuration     `json:"configuration"`
}

type overridesReport struct {
	ModelID model.ModelDefinitionID `json:"model_id"`
	Name    string                  `json:"name"`
	Version int                     `json:"version"`
	Groups  []model.SectionChanges  `json:"groups"`
	Total   int                     `json:"total"`
}

func cmdOverrides() *cli.Command {
	var input string
	var format string
	var section string
	var noColor bool

	return &cli.Command{
		Name:      "overrides",
		Aliases:   []string{"o"},
		Usage:     "Show overrides that differ from their base value in an exported model definition",
		ArgsUsage: "[model.json]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "Model definition JSON as returned by GET /api/models/{id} (- for stdin)",
				Value:       "-",
				Destination: &input,
			},
			&cli.StringFlag{
				Name:        "format",
				Aliases:     []string{"f"},
				Usage:       "Output format (list or json)",
				Value:       "list",
				Destination: &format,
			},
			&cli.StringFlag{
				Name:        "section",
				Usage:       "Only show one section",
				Destination: &section,
			},
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "Disable colored output",
				Sources:     cli.EnvVars("NO_COLOR"),
				Destination: &noColor,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Present() {
				input = c.Args().First()
			}
			if noColor {
				color.NoColor = true
			}

			doc, err := readModelDocument(input)
			if err != nil {
				return err
			}

			report, err := buildOverridesReport(doc, types.SectionID(section))
			if err != nil {
				return err
			}

			switch format {
			case "list":
				return renderOverridesList(c.Root().Writer, report)
			case "json":
				enc := json.NewEncoder(c.Root().Writer)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return goerr.Wrap(err, "failed to encode overrides report")
				}
				return nil
			default:
				return goerr.New("format must be list or json", goerr.V("format", format))
			}
		},
	}
}

func readModelDocument(path string) (*modelDocument, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		// #nosec G304 - path is expected to be provided by CLI argument
		f, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open model file", goerr.V("path", path))
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var doc modelDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to decode model definition", goerr.V("path", path))
	}
	if doc.Configuration == nil {
		return nil, goerr.New("model definition has no configuration", goerr.V("path", path))
	}
	return &doc, nil
}

func buildOverridesReport(doc *modelDocument, section types.SectionID) (*overridesReport, error) {
	if section != "" {
		if err := section.Validate(); err != nil {
			return nil, err
		}
	}

	report := &overridesReport{
		ModelID: doc.ID,
		Name:    doc.Name,
		Version: doc.Version,
		Groups:  []model.SectionChanges{},
	}
	for _, g := range model.GroupBySection(model.ChangedOverrides(doc.Configuration)) {
		if section != "" && g.Section != section {
			continue
		}
		report.Groups = append(report.Groups, g)
		report.Total += len(g.Changes)
	}
	return report, nil
}

func renderOverridesList(w io.Writer, report *overridesReport) error {
	title := color.New(color.Bold)
	sectionColor := color.New(color.FgCyan, color.Bold)
	pathColor := color.New(color.FgYellow)
	baseColor := color.New(color.FgHiBlack)
	valueColor := color.New(color.FgGreen)

	if _, err := title.Fprintf(w, "%s (%s) v%d: %d override(s)\n", report.Name, report.ModelID, report.Version, report.Total); err != nil {
		return goerr.Wrap(err, "failed to write report")
	}
	if report.Total == 0 {
		_, err := fmt.Fprintln(w, "No overrides differ from their base values")
		return err
	}

	for _, g := range report.Groups {
		if _, err := sectionColor.Fprintf(w, "\n[%s]\n", g.Section); err != nil {
			return goerr.Wrap(err, "failed to write report")
		}
		for _, change := range g.Changes {
			base := "(none)"
			if change.HasBase {
				base = formatValue(change.BaseValue)
			}
			if _, err := fmt.Fprintf(w, "  %s  %s/%s  %s -> %s\n",
				pathColor.Sprint(change.Path),
				change.Entry.LOB, change.Entry.Year,
				baseColor.Sprint(base),
				valueColor.Sprint(formatValue(change.Entry.Value)),
			); err != nil {
				return goerr.Wrap(err, "failed to write report")
			}
		}
	}
	return nil
}

// formatValue prints scalars as is and collections as compact JSON
func formatValue(v any) string {
	switch v.(type) {
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err == nil {
			return string(data)
		}
	}
	return fmt.Sprint(v)
}
