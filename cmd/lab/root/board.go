package root

import (
	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/tui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(cmd.Context(), a.s, a.f, cmd.OutOrStdout())
		},
	}

	return cmd
}
