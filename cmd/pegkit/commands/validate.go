package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/pegkit/pkg/grammar"
)

// ErrInvalidTree is returned when an AST dump violates the schema.
var ErrInvalidTree = errors.New("grammar tree does not match schema")

func newValidateCommand(a *app) *cobra.Command {
	var schema bool

	cmd := &cobra.Command{
		Use:   "validate <ast.json|ast.yaml|->",
		Short: "Validate an AST dump against the embedded schema",
		Long: `Check a tree written by "pegkit ast" against the embedded JSON Schema.
YAML dumps are accepted when the file ends in .yaml or .yml.

Examples:
  pegkit ast calc.peg > calc.json && pegkit validate calc.json
  pegkit validate --schema > ast.schema.json`,
		Args: cobra.RangeArgs(0, 1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema {
				_, err := cmd.OutOrStdout().Write(grammar.Schema())

				return err
			}

			if len(args) == 0 {
				return cmd.Usage()
			}

			return a.runValidate(cmd, args[0])
		},
	}

	cmd.Flags().BoolVar(&schema, "schema", false, "print the embedded schema and exit")

	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, path string) error {
	text, label, err := readSource(cmd, path)
	if err != nil {
		return err
	}

	data := []byte(text)

	if ext := strings.ToLower(filepath.Ext(path)); ext == ".yaml" || ext == ".yml" {
		data, err = yamlToJSON(data)
		if err != nil {
			return wrapLabel(label, err)
		}
	}

	violations, err := grammar.ValidateTree(data)
	if err != nil {
		return wrapLabel(label, err)
	}

	out := cmd.OutOrStdout()

	if len(violations) == 0 {
		if !a.flags.quiet {
			color.New(color.FgGreen).Fprintf(out, "%s: valid grammar tree\n", label)
		}

		return nil
	}

	color.New(color.FgRed).Fprintf(out, "%s: %d schema violations\n", label, len(violations))

	for _, v := range violations {
		color.New(color.FgRed).Fprintf(out, "  - %s\n", v)
	}

	return fmt.Errorf("%w: %s", ErrInvalidTree, label)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml to json: %w", err)
	}

	return out, nil
}
