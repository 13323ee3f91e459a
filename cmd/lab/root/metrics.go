package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newMetricsCmd() *cobra.Command {
	var format string
	var days int

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Cross-project metrics and recent XP/revenue charts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			doc := a.s.Document()
			now := a.s.Store().Now()
			o := analytics.OverallMetrics(doc, now)
			w := cmd.OutOrStdout()
			if done, err := writeStructured(w, format, o); done || err != nil {
				return err
			}

			fmt.Fprintln(w, ui.Heading(ui.IconChart, "Metrics"))
			fmt.Fprintln(w, ui.LabelValue("Projects", fmt.Sprintf("%d total, %d active, %d launched", o.TotalProjects, o.ActiveProjects, o.LaunchedProjects)))
			fmt.Fprintln(w, ui.LabelValue("Experiments", fmt.Sprintf("%d total, %d completed, %d this week, %.1f per project",
				o.TotalExperiments, o.CompletedExperiments, o.ExperimentsPerWeek, o.AvgExperimentsPerProject)))
			mvp := "n/a"
			if o.MVPSampleSize > 0 {
				mvp = a.f.Days(o.AvgMVPTime) + ui.Muted.Render(fmt.Sprintf(" over %d projects", o.MVPSampleSize))
			}
			fmt.Fprintln(w, ui.LabelValue("Avg time to MVP", mvp))
			fmt.Fprintln(w, "")

			fmt.Fprintln(w, ui.H2.Render("Top rated ideas"))
			if len(o.TopRatedIdeas) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("(no projects in the idea stage)"))
			}
			for i, idea := range o.TopRatedIdeas {
				fmt.Fprintf(w, "%d. %s %s\n", i+1, idea.Name, ui.Gold.Render(fmt.Sprintf("%.2f", idea.Score)))
			}
			fmt.Fprintln(w, "")

			xp, rev, err := a.s.DailyActivity(cmd.Context(), days)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s\n", ui.Key.Render(fmt.Sprintf("XP, %dd:     ", days)), ui.Spark(dayValues(xp)))
			fmt.Fprintf(w, "%s %s\n", ui.Key.Render(fmt.Sprintf("Revenue, %dd:", days)), ui.Spark(dayValues(rev)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text|json|yaml)")
	cmd.Flags().IntVar(&days, "days", 14, "Days shown in the charts")
	return cmd
}

func dayValues(days []analytics.DayValue) []float64 {
	out := make([]float64, len(days))
	for i, d := range days {
		out[i] = d.Value
	}
	return out
}
