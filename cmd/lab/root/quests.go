package root

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newQuestsCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "quests",
		Short: "List quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			now := a.s.Store().Now()
			fmt.Fprintln(w, ui.Heading(ui.IconTarget, "Quests"))
			shown := 0
			for _, q := range a.s.Document().Quests {
				if !all && q.Status.Terminal() {
					continue
				}
				shown++
				line := fmt.Sprintf("- %s %s [%s] %d/%d %s", ui.Muted.Render(q.ID), q.Title,
					ui.StatusText(string(q.Status)), q.Progress, q.TargetProgress,
					ui.Muted.Render(questReward(q.Reward.XP, q.Reward.XPBoost)))
				if q.Deadline != nil && !q.Status.Terminal() {
					line += " " + ui.Warn.Render(ui.IconWarn+" due in "+q.Deadline.Sub(now).Round(time.Hour).String())
				}
				fmt.Fprintln(w, line)
				if q.Description != "" {
					fmt.Fprintln(w, "  "+ui.Muted.Render(q.Description))
				}
			}
			if shown == 0 {
				fmt.Fprintln(w, ui.Muted.Render("(none)"))
			}
			return nil
		},
	}

	abandon := &cobra.Command{
		Use:   "abandon <id>",
		Short: "Give up on an active quest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.s.AbandonQuest(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Muted.Render("Quest abandoned."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed, expired and failed quests")
	cmd.AddCommand(abandon)
	return cmd
}
