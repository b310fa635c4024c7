package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stateforward/go-fsm"
	"github.com/stateforward/go-fsm/examples/board"
	"github.com/stateforward/go-fsm/pkg/metrics"
)

func newRunCommand(opts *options) *cobra.Command {
	var (
		reset        bool
		printMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "run [telecommand...]",
		Short: "Start the board and dispatch telecommands",
		Example: `  # Activate, fire, then return to ACTIVE
  board run 1 2 1

  # Same, resetting every mode before the final report
  board run --reset 1 2 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			telecommands, err := parseTelecommands(args)
			if err != nil {
				return err
			}
			var traces []fsm.Trace
			var m *metrics.Metrics
			if printMetrics {
				if m, err = metrics.New(); err != nil {
					return err
				}
				traces = append(traces, m.Trace())
			}
			machineOptions, logger, shutdown, err := setup(cmd, opts, traces...)
			if err != nil {
				return err
			}
			defer shutdown()

			b := board.New(machineOptions...)
			board.Run(b, logger, telecommands...)
			if reset {
				board.States(b).Reset()
			}

			storage := b.Storage()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mode: %s\n", b.State())
			fmt.Fprintf(out, "telemetry: %d\n", storage.Telemetry)
			fmt.Fprintf(out, "stored: %d\n", storage.Stored)
			fmt.Fprintf(out, "pid: %d\n", storage.PID)
			fmt.Fprintf(out, "non-volatile: %d\n", storage.NonVolatile)
			for _, action := range storage.Log {
				fmt.Fprintf(out, "- %s\n", action)
			}
			if m != nil {
				return m.Write(out)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "reset every mode value after the run")
	cmd.Flags().BoolVar(&printMetrics, "metrics", false, "print Prometheus metrics of the run")

	return cmd
}
