package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clipse-cli/clipse/pkg/document"
	"github.com/clipse-cli/clipse/pkg/resolver"
	"github.com/clipse-cli/clipse/pkg/schema"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool
)

// Execute runs the root command
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "clipse",
		Short: "clipse - declarative CLI specification resolver",
		Long: `clipse loads a declarative, style-agnostic CLI specification and
resolves it into a validated document for renderers and generators.

The resolution pipeline expands $ref blueprints, substitutes variables,
applies environment/CLI/default value precedence, and validates types,
constraints and the document structure.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newExplainCommand())
	rootCmd.AddCommand(newWatchCommand())

	return rootCmd
}

// resolveDocument discovers, loads and resolves the config, optionally
// validating against a custom schema file instead of the embedded one.
func resolveDocument(ctx context.Context, schemaPath string) (string, *resolver.Result, error) {
	path, err := document.Discover(configPath)
	if err != nil {
		return "", nil, err
	}
	raw, err := document.Load(path)
	if err != nil {
		return path, nil, err
	}

	var opts []resolver.Option
	if schemaPath != "" {
		v, err := schema.NewValidatorFromFile(schemaPath)
		if err != nil {
			return path, nil, err
		}
		opts = append(opts, resolver.WithSchemaValidator(v))
	}
	pipeline, err := resolver.New(opts...)
	if err != nil {
		return path, nil, err
	}
	result, err := pipeline.Resolve(ctx, raw)
	return path, result, err
}
