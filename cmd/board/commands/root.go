package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/examples/board"
	"github.com/stateforward/go-fsm/pkg/telemetry"
)

type options struct {
	logLevel string
	trace    bool
	policy   string
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "board",
		Short: "Drive the on-board mode controller with telecommands",
		Long: `board runs the spacecraft on-board controller state machine.

Modes:
  STANDBY  initial mode, TC 1 activates
  ACTIVE   TC 2 fires, TC 3 transfers stored telemetry
  STR_TM   stored telemetry transfer, TC 1 returns to ACTIVE
  FIRING   firing sequence, TC 1 returns to ACTIVE`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.trace, "trace", false, "print OpenTelemetry spans of every lifecycle step to stderr")
	rootCmd.PersistentFlags().StringVar(&opts.policy, "policy", "custom", "lifecycle policy (custom, moore, mealy)")

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newDiagramCommand(opts))

	return rootCmd
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

func parsePolicy(policy string) (fsm.Policy, error) {
	switch strings.ToLower(policy) {
	case "custom", "":
		return fsm.Custom, nil
	case "moore":
		return fsm.Moore, nil
	case "mealy":
		return fsm.Mealy, nil
	}
	return fsm.Custom, fmt.Errorf("invalid policy %q", policy)
}

func parseTelecommands(args []string) ([]board.Telecommand, error) {
	telecommands := make([]board.Telecommand, 0, len(args))
	for _, arg := range args {
		tc, err := board.ParseTelecommand(arg)
		if err != nil {
			return nil, err
		}
		telecommands = append(telecommands, tc)
	}
	return telecommands, nil
}

// setup builds the machine options shared by the commands. The returned
// shutdown flushes the tracer when tracing is enabled.
func setup(cmd *cobra.Command, opts *options, traces ...fsm.Trace) ([]fsm.Option, *slog.Logger, func() error, error) {
	logger, err := newLogger(cmd.ErrOrStderr(), opts.logLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	policy, err := parsePolicy(opts.policy)
	if err != nil {
		return nil, nil, nil, err
	}
	shutdown := func() error { return nil }
	if opts.trace {
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(cmd.ErrOrStderr()), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to create trace exporter: %w", err)
		}
		provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
		traces = append(traces, telemetry.New(provider))
		shutdown = func() error {
			return provider.Shutdown(context.WithoutCancel(cmd.Context()))
		}
	}
	machineOptions := []fsm.Option{
		fsm.WithContext(cmd.Context()),
		fsm.WithLogger(logger),
		fsm.WithPolicy(policy),
	}
	if len(traces) > 0 {
		machineOptions = append(machineOptions, fsm.WithTrace(fsm.Traces(traces...)))
	}
	return machineOptions, logger, shutdown, nil
}
