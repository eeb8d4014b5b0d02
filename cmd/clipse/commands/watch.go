package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/clipse-cli/clipse/pkg/document"
	"github.com/clipse-cli/clipse/pkg/resolver"
)

// watchDebounce coalesces bursts of editor write events into one rerun.
const watchDebounce = 500 * time.Millisecond

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the configuration on change",
		Long: `Watch the configuration file and re-run the full resolution pipeline
whenever it changes. Useful while authoring a spec.`,
		Example: `  # Watch the discovered config
  clipse watch

  # Watch a specific file
  clipse watch --config ./examples/app.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path, err := document.Discover(configPath)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("failed to create watcher: %w", err)
			}
			defer watcher.Close()

			if err := watcher.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
			log.Info().Str("path", path).Msg("Watching configuration")

			runOnce(cmd, path)

			var rerunTimer *time.Timer
			for {
				select {
				case <-ctx.Done():
					return nil

				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
						continue
					}
					log.Debug().Str("file", event.Name).Str("op", event.Op.String()).Msg("Configuration changed")
					if rerunTimer != nil {
						rerunTimer.Stop()
					}
					rerunTimer = time.AfterFunc(watchDebounce, func() {
						runOnce(cmd, path)
					})

				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Warn().Err(err).Msg("Watcher error")
				}
			}
		},
	}

	return cmd
}

func runOnce(cmd *cobra.Command, path string) {
	_, _, err := resolveDocument(cmd.Context(), "")
	if err == nil {
		fmt.Printf("OK: %s validates against the core schema\n", path)
		return
	}
	var diags resolver.Diagnostics
	if errors.As(err, &diags) {
		log.Error().Int("problems", len(diags)).Msg("Validation failed")
		for _, d := range diags {
			fmt.Println(" -", d.Error())
		}
		return
	}
	log.Error().Err(err).Msg("Validation failed")
}
