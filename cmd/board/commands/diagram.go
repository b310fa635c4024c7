package commands

import (
	"github.com/spf13/cobra"

	"github.com/stateforward/go-fsm/examples/board"
	"github.com/stateforward/go-fsm/pkg/plantuml"
)

func newDiagramCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "diagram [telecommand...]",
		Short:   "Print the PlantUML diagram of the transitions taken by a run",
		Example: `  board diagram 1 2 1 3 1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			telecommands, err := parseTelecommands(args)
			if err != nil {
				return err
			}
			recorder := plantuml.NewRecorder()
			machineOptions, logger, shutdown, err := setup(cmd, opts, recorder.Trace())
			if err != nil {
				return err
			}
			defer shutdown()

			b := board.New(machineOptions...)
			board.Run(b, logger, telecommands...)
			return recorder.Generate(cmd.OutOrStdout(), b.Name())
		},
	}
	return cmd
}
