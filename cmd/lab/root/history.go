package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the durable action history and per-action totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			totals, err := a.s.History().Totals(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, ui.Heading(ui.IconScroll, "Action totals"))
			if len(totals) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("(no actions yet)"))
			}
			weekAgo := a.s.Store().Now().Add(-7 * 24 * time.Hour)
			for _, t := range totals {
				recent, err := a.s.History().CountSince(ctx, t.Action, weekAgo)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "- %-32s %5s × %s XP %s\n", t.Action, a.f.Int(t.Count), a.f.Int(t.XP),
					ui.Muted.Render(fmt.Sprintf("(%d in the last 7 days)", recent)))
			}

			entries, err := a.s.History().Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return nil
			}
			fmt.Fprintln(w, "")
			fmt.Fprintln(w, ui.H2.Render("Recent"))
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %-32s +%d XP  L%d %s\n", ui.Muted.Render(e.OccurredAt.Local().Format("2006-01-02 15:04")),
					e.Action, e.XPGained, e.LevelAfter, ui.Muted.Render(e.SourceID))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of recent actions")
	return cmd
}
