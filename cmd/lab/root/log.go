package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newLogCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the most recent events, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			events := a.s.Store().RecentEvents(n)
			if len(events) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("(empty)"))
				return nil
			}
			for _, ev := range events {
				fmt.Fprintf(w, "%s  %s\n", ui.Muted.Render(ev.Timestamp.Local().Format("2006-01-02 15:04")), ui.EventText(ev))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "limit", "n", 20, "Number of events")
	return cmd
}
