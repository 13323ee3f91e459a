package root

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/store"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newDistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "dist",
		Aliases: []string{"channel"},
		Short:   "Track distribution (channel) experiments",
	}
	cmd.AddCommand(newDistAddCmd(), newDistUpdateCmd(), newDistListCmd())
	return cmd
}

// metricFlags binds one flag per raw metric and builds a patch from the
// flags the user actually set.
type metricFlags struct {
	budget, spent, r1, r7, r30, arpu, ltv, kFactor, shareRate, hookRate, holdRate float64
	installs, impressions, clicks                                                 int
}

func (m *metricFlags) bind(fs *pflag.FlagSet) {
	fs.Float64Var(&m.budget, "budget", 0, "Planned budget")
	fs.Float64Var(&m.spent, "spent", 0, "Amount spent")
	fs.IntVar(&m.installs, "installs", 0, "Installs")
	fs.IntVar(&m.impressions, "impressions", 0, "Impressions")
	fs.IntVar(&m.clicks, "clicks", 0, "Clicks")
	fs.Float64Var(&m.r1, "r1", 0, "Day-1 retention, percent")
	fs.Float64Var(&m.r7, "r7", 0, "Day-7 retention, percent")
	fs.Float64Var(&m.r30, "r30", 0, "Day-30 retention, percent")
	fs.Float64Var(&m.arpu, "arpu", 0, "Average revenue per user")
	fs.Float64Var(&m.ltv, "ltv", 0, "Lifetime value")
	fs.Float64Var(&m.kFactor, "k-factor", 0, "Viral coefficient")
	fs.Float64Var(&m.shareRate, "share-rate", 0, "Share rate, percent")
	fs.Float64Var(&m.hookRate, "hook-rate", 0, "Creative hook rate, percent")
	fs.Float64Var(&m.holdRate, "hold-rate", 0, "Creative hold rate, percent")
}

func (m *metricFlags) patch(fs *pflag.FlagSet) store.MetricsPatch {
	var p store.MetricsPatch
	floats := map[string]struct {
		dst **float64
		v   *float64
	}{
		"budget":     {&p.Budget, &m.budget},
		"spent":      {&p.Spent, &m.spent},
		"r1":         {&p.RetentionR1, &m.r1},
		"r7":         {&p.RetentionR7, &m.r7},
		"r30":        {&p.RetentionR30, &m.r30},
		"arpu":       {&p.ARPU, &m.arpu},
		"ltv":        {&p.LTV, &m.ltv},
		"k-factor":   {&p.KFactor, &m.kFactor},
		"share-rate": {&p.ShareRate, &m.shareRate},
		"hook-rate":  {&p.HookRate, &m.hookRate},
		"hold-rate":  {&p.HoldRate, &m.holdRate},
	}
	for name, f := range floats {
		if fs.Changed(name) {
			*f.dst = f.v
		}
	}
	ints := map[string]struct {
		dst **int
		v   *int
	}{
		"installs":    {&p.Installs, &m.installs},
		"impressions": {&p.Impressions, &m.impressions},
		"clicks":      {&p.Clicks, &m.clicks},
	}
	for name, f := range ints {
		if fs.Changed(name) {
			*f.dst = f.v
		}
	}
	return p
}

func newDistAddCmd() *cobra.Command {
	var channel, typ, status, projectID string
	var metrics metricFlags

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Start a channel test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := store.DistributionInput{
				ProjectID: projectID,
				Name:      args[0],
				Channel:   store.Channel(channel),
				Metrics:   metrics.patch(cmd.Flags()),
			}
			if typ != "" {
				t, err := store.ParseDistributionType(typ)
				if err != nil {
					return err
				}
				in.Type = t
			}
			if status != "" {
				st, err := store.ParseDistributionStatus(status)
				if err != nil {
					return err
				}
				in.Status = st
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			d, out, err := a.s.CreateDistribution(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s on %s %s\n", ui.IconChart, d.Name, d.Channel, ui.Muted.Render(d.ID))
			printOutcome(w, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Channel, e.g. organic, reddit, tiktok_ads, aso, viral_loop")
	cmd.Flags().StringVar(&typ, "type", "", "Test type (content|paid|aso|viral)")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (planning|running|completed|paused|failed)")
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project the test belongs to")
	metrics.bind(cmd.Flags())
	return cmd
}

func newDistUpdateCmd() *cobra.Command {
	var status, name, channel, typ, projectID string
	var worked, didntWork, learned, next []string
	var metrics metricFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update metrics, status or results of a channel test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := store.DistributionPatch{
				Metrics: metrics.patch(cmd.Flags()),
				AddResults: store.DistributionResults{
					WhatWorked:    worked,
					WhatDidntWork: didntWork,
					KeyLearnings:  learned,
					NextSteps:     next,
				},
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("project") {
				patch.ProjectID = &projectID
			}
			if cmd.Flags().Changed("channel") {
				ch := store.Channel(strings.TrimSpace(channel))
				if ch == "" {
					return errors.New("channel must not be empty")
				}
				patch.Channel = &ch
			}
			if typ != "" {
				t, err := store.ParseDistributionType(typ)
				if err != nil {
					return err
				}
				patch.Type = &t
			}
			if status != "" {
				st, err := store.ParseDistributionStatus(status)
				if err != nil {
					return err
				}
				patch.Status = &st
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			d, out, err := a.s.UpdateDistribution(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			m := d.Metrics
			fmt.Fprintf(w, "%s %s [%s] installs %s, CPI %s, CTR %s, conversion %s\n", ui.IconChart, d.Name,
				ui.StatusText(string(d.Status)), a.f.Int(m.Installs), a.f.Money(m.CPI), a.f.Percent(m.CTR), a.f.Percent(m.ConversionRate))
			if roi := analytics.ROI(d); roi != nil {
				fmt.Fprintln(w, ui.LabelValue("ROI", a.f.Percent(roi.ROI)))
			}
			printOutcome(w, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Rename the test")
	cmd.Flags().StringVar(&channel, "channel", "", "Move the test to another channel")
	cmd.Flags().StringVar(&typ, "type", "", "New test type (content|paid|aso|viral)")
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Attach the test to a project (empty detaches it)")
	cmd.Flags().StringVar(&status, "status", "", "New status (planning|running|completed|paused|failed)")
	cmd.Flags().StringArrayVar(&worked, "worked", nil, "Something that worked (repeatable)")
	cmd.Flags().StringArrayVar(&didntWork, "didnt-work", nil, "Something that did not work (repeatable)")
	cmd.Flags().StringArrayVar(&learned, "learned", nil, "Key learning (repeatable)")
	cmd.Flags().StringArrayVar(&next, "next", nil, "Next step (repeatable)")
	metrics.bind(cmd.Flags())
	return cmd
}

func newDistListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List channel tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			tests := a.s.Document().DistributionExperiments
			if len(tests) == 0 {
				fmt.Fprintln(w, ui.Muted.Render(ui.IconInfo+" No channel tests yet."))
				return nil
			}
			fmt.Fprintln(w, ui.Heading(ui.IconChart, "Channel tests"))
			for _, d := range tests {
				fmt.Fprintf(w, "- %s %s %s/%s [%s] installs %s, spent %s\n", ui.Muted.Render(d.ID), d.Name, d.Channel, d.Type,
					ui.StatusText(string(d.Status)), a.f.Int(d.Metrics.Installs), a.f.Money(d.Metrics.Spent))
			}
			return nil
		},
	}
	return cmd
}
