// internal/cli/notify.go
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/pipekit/metrics"
	"github.com/dalemusser/pipekit/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const pushTimeout = 10 * time.Second

func newNotifyCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "notify <status> <platform> <build_id> <message>",
		Short: "Email a build status notification",
		Long: `Email a build status notification through an authenticated SMTP relay.

Settings come from the environment (EMAIL_SMTP_SERVER, EMAIL_SMTP_PORT,
EMAIL_SMTP_USER, EMAIL_SMTP_PASS, EMAIL_ID, APP_NAME, ...), a config file, or
the flags below. Missing credentials or a failed delivery are logged but never
fail the command.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 4 {
				fmt.Fprintf(a.stdout, "Usage: %s notify <status> <platform> <build_id> <message>\n", a.binName)
				return exitCode(1)
			}

			logger, vals, err := a.load(cmd, "", notify.AppKeys)
			if err != nil {
				return err
			}
			defer logger.Sync()

			settings, err := notify.SettingsFrom(vals)
			if err != nil {
				return &exitError{code: 1, err: err}
			}
			build, err := notify.BuildFromArgs(args, settings)
			if err != nil {
				return &exitError{code: 1, err: err}
			}

			m := metrics.NewNotifications()
			n := &notify.Notifier{
				Settings:  settings,
				Mailer:    a.mailer,
				Metrics:   m,
				Logger:    logger,
				DryRun:    dryRun,
				DryRunOut: a.stdout,
			}

			outcome, err := n.Notify(cmd.Context(), build)
			logger.Debug("notification finished", zap.Stringer("outcome", outcome), zap.Error(err))

			if settings.PushgatewayURL != "" {
				ctx, cancel := context.WithTimeout(cmd.Context(), pushTimeout)
				defer cancel()
				grouping := map[string]string{"build_id": build.BuildID}
				if err := m.Push(ctx, settings.PushgatewayURL, metrics.DefaultJob, grouping, logger); err != nil {
					logger.Warn("metrics push failed", zap.Error(err))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the rendered email instead of sending it")
	mustRegister(cmd, notify.AppKeys)
	return cmd
}
