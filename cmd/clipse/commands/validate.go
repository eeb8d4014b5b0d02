package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/clipse-cli/clipse/pkg/resolver"
)

func newValidateCommand() *cobra.Command {
	var schemaPath string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a clipse configuration",
		Long: `Validate a clipse configuration through the full resolution pipeline.

This command checks:
  - $ref blueprint expansion and reference cycles
  - Variable substitution
  - default_action/default_object targets
  - Declared types and required fields
  - Cross-field constraints
  - Structural conformance with the core JSON Schema`,
		Example: `  # Validate the discovered config (./.clipse or ./clipse)
  clipse validate

  # Validate a specific file
  clipse validate --config ./examples/app.yaml

  # Validate against a custom schema
  clipse validate --schema ./clipse.schema.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _, err := resolveDocument(cmd.Context(), schemaPath)
			if err != nil {
				var diags resolver.Diagnostics
				if errors.As(err, &diags) {
					log.Error().Int("problems", len(diags)).Str("path", path).Msg("Validation failed")
					for _, d := range diags {
						fmt.Println(" -", d.Error())
					}
					return fmt.Errorf("%d validation problems", len(diags))
				}
				return err
			}
			fmt.Printf("OK: %s validates against the core schema\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "custom schema file path")

	return cmd
}
