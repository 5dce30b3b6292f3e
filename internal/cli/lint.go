// internal/cli/lint.go
package cli

import (
	"github.com/dalemusser/pipekit/lint"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLintCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint [file...]",
		Short: "Check a Codemagic pipeline definition for missing workflow variables",
		Long: `Check Codemagic pipeline definitions (default: ` + lint.DefaultFile + `).

Each file's $VARIABLE references are collected and categorized, and known
workflows are checked for the variables they need. Issues are reported but
only fail the command with --strict.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, vals, err := a.load(cmd, lint.EnvPrefix, lint.AppKeys)
			if err != nil {
				return err
			}
			defer logger.Sync()

			settings := lint.SettingsFrom(vals)
			paths := args
			if len(paths) == 0 {
				paths = []string{lint.DefaultFile}
			}
			opts := lint.Options{SkipShape: settings.SkipShape}

			report := func(paths []string) (failed bool) {
				results := lint.LintFiles(paths, opts)
				if settings.JSON {
					if err := lint.WriteJSON(a.stdout, results); err != nil {
						logger.Error("write report", zap.Error(err))
						return true
					}
				} else {
					lint.NewPrinter(a.stdout).Print(results)
				}
				return lint.AnyFailed(results, settings.Strict)
			}

			failed := report(paths)
			if !settings.Watch {
				if failed {
					return exitCode(1)
				}
				return nil
			}

			logger.Info("watching for changes; press Ctrl+C to stop", zap.Strings("files", paths))
			return lint.Watch(cmd.Context(), paths, logger, func(changed []string) {
				logger.Info("re-linting", zap.Strings("files", changed))
				report(changed)
			})
		},
	}

	mustRegister(cmd, lint.AppKeys)
	return cmd
}
