package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show level, streak, boost, achievements and active quests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			s := a.s.Engine().ProfileSummary()

			fmt.Fprintln(w, ui.Heading(ui.IconLab, "Lab Status"))
			fmt.Fprintln(w, ui.LabelValue("Level", s.Level))
			fmt.Fprintln(w, ui.LabelValue("XP", fmt.Sprintf("%s %s/%s", ui.ProgressBar(s.Progress, 20), a.f.Int(s.XP), a.f.Int(s.XPToNextLevel))))
			streak := fmt.Sprintf("%s %d days", ui.IconFire, s.StreakDays)
			if s.LastActivityDate != "" {
				streak += ui.Muted.Render(" (last active " + s.LastActivityDate + ")")
			}
			fmt.Fprintln(w, ui.LabelValue("Streak", streak))
			fmt.Fprintln(w, ui.LabelValue("XP boost", fmt.Sprintf("×%.2f", s.XPBoost)))
			fmt.Fprintln(w, ui.LabelValue("Revenue", a.f.Money(s.TotalRevenue)))
			if at, ok, err := a.s.LastSaved(cmd.Context()); err != nil {
				return err
			} else if ok {
				fmt.Fprintln(w, ui.LabelValue("Saved", ui.Muted.Render(at.Local().Format("2006-01-02 15:04"))))
			}
			fmt.Fprintln(w, "")

			fmt.Fprintln(w, ui.H2.Render(fmt.Sprintf("%s Achievements %d/%d", ui.IconTrophy, s.EarnedAchievements, s.TotalAchievements)))
			for _, ach := range a.s.Document().Achievements {
				if ach.Earned() {
					fmt.Fprintf(w, "- %s %s\n", ui.Gold.Render(ach.Name), ui.Muted.Render(ach.EarnedAt.Local().Format("2006-01-02")))
				} else {
					fmt.Fprintf(w, "- %s %s\n", ui.Muted.Render(ach.Name), ui.Muted.Render("("+ach.Description+")"))
				}
			}
			fmt.Fprintln(w, "")

			fmt.Fprintln(w, ui.H2.Render(ui.IconTarget+" Active quests"))
			if len(s.ActiveQuests) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("(none)"))
			}
			for _, q := range s.ActiveQuests {
				fmt.Fprintf(w, "- %s %d/%d %s\n", q.Title, q.Progress, q.TargetProgress, ui.Muted.Render(questReward(q.Reward.XP, q.Reward.XPBoost)))
			}
			return nil
		},
	}

	return cmd
}

func questReward(xp int, boost float64) string {
	s := fmt.Sprintf("(+%d XP", xp)
	if boost > 0 {
		s += fmt.Sprintf(", +%.2f boost", boost)
	}
	return s + ")"
}
