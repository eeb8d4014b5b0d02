package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipse-cli/clipse/pkg/resolver"
)

func newExplainCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the resolved configuration",
		Long: `Resolve the configuration and print the effective document.

The output is the fully resolved document: blueprints expanded, variables
substituted, and every option and positional annotated with its resolved
value and source.`,
		Example: `  # Print the resolved document as JSON
  clipse explain --format json

  # Human-oriented text output
  clipse explain`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, result, err := resolveDocument(cmd.Context(), "")
			if err != nil {
				var diags resolver.Diagnostics
				if errors.As(err, &diags) {
					for _, d := range diags {
						fmt.Println(" -", d.Error())
					}
					return fmt.Errorf("%d validation problems", len(diags))
				}
				return err
			}

			data, err := json.MarshalIndent(result.Document, "", "  ")
			if err != nil {
				return err
			}
			if format == "json" || jsonOutput {
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Config: %s\n\n", path)
			fmt.Println(string(data))
			fmt.Printf("\nObjects: %s\n", strings.Join(result.Unions.ObjectIDs(), ", "))
			fmt.Printf("Actions: %s\n", strings.Join(result.Unions.ActionIDs(), ", "))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format (json, text)")

	return cmd
}
