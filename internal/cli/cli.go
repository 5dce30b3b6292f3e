// internal/cli/cli.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dalemusser/pipekit/config"
	"github.com/dalemusser/pipekit/logging"
	"github.com/dalemusser/pipekit/notify"
	"github.com/dalemusser/pipekit/pantry/version"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Run is the entrypoint used by cmd/pipekit.
//
// binName is the CLI name to show in help/usage text.
// args are the command-line arguments excluding the binary name (i.e. os.Args[1:]).
//
// It returns a process exit code; callers should os.Exit(Run(...)).
func Run(binName string, args []string) int {
	ctx, cancel := WithShutdownSignals(context.Background(), nil)
	defer cancel()

	return run(ctx, &app{binName: binName, stdout: os.Stdout, stderr: os.Stderr}, args)
}

// app carries what every command needs. mailer replaces SMTP delivery in tests.
type app struct {
	binName string
	stdout  io.Writer
	stderr  io.Writer
	mailer  notify.Mailer
}

// exitError ends the run with code. err, if set, is printed first.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }

func exitCode(code int) error { return &exitError{code: code} }

func run(ctx context.Context, a *app, args []string) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(a.stderr, "error: %v\n", ee.err)
		}
		return ee.code
	}
	fmt.Fprintf(a.stderr, "error: %v\n", err)
	return 1
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           a.binName,
		Short:         "CI pipeline helpers: build notifications and pipeline linting",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterCoreFlags(root.PersistentFlags())

	root.AddCommand(
		newNotifyCmd(a),
		newLintCmd(a),
		newVersionCmd(a),
	)
	return root
}

// load resolves core and command settings from cmd's parsed flags and builds
// the command logger. Log output goes to stderr.
func (a *app) load(cmd *cobra.Command, appPrefix string, keys []config.AppKey) (*zap.Logger, config.AppConfigValues, error) {
	bootstrap := logging.BootstrapLogger()
	defer bootstrap.Sync()

	core, vals, err := config.Load(bootstrap, cmd.Flags(), appPrefix, keys)
	if err != nil {
		return nil, nil, &exitError{code: 1, err: fmt.Errorf("config: %w", err)}
	}

	logger, err := logging.New(core.LogLevel, core.Env, zapcore.AddSync(a.stderr))
	if err != nil {
		return nil, nil, &exitError{code: 1, err: err}
	}
	logger.Debug("config loaded", zap.String("command", cmd.Name()), zap.String("core", core.Dump()))
	return logger, vals, nil
}

// mustRegister adds keys as flags on cmd. Key sets are fixed at build time,
// so a conflict is a programming error.
func mustRegister(cmd *cobra.Command, keys []config.AppKey) {
	if err := config.RegisterAppFlags(cmd.Flags(), keys); err != nil {
		panic(err)
	}
}
