package root

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

// growthReport is the structured form of `lab growth`.
type growthReport struct {
	Overall      analytics.GrowthOverall   `json:"overall" yaml:"overall"`
	PredictedLTV *float64                  `json:"predictedLTV" yaml:"predictedLTV"`
	Channels     []analytics.ChannelStats  `json:"channels" yaml:"channels"`
	Best         []analytics.ChannelStats  `json:"best" yaml:"best"`
	Worst        []analytics.ChannelStats  `json:"worst" yaml:"worst"`
	Creatives    []analytics.CreativeRow   `json:"creatives" yaml:"creatives"`
	Viral        analytics.ViralSummary    `json:"viral" yaml:"viral"`
	Cohorts      []analytics.Cohort        `json:"cohorts" yaml:"cohorts"`
	Insights     analytics.ChannelInsights `json:"insights" yaml:"insights"`
}

func newGrowthCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "growth",
		Short: "Distribution analytics: channels, creatives, virality, cohorts",
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
			r := growthReport{
				Overall:   analytics.OverallGrowthMetrics(doc),
				Channels:  analytics.AnalyzeByChannel(doc),
				Best:      analytics.BestChannels(doc),
				Worst:     analytics.WorstChannels(doc),
				Creatives: analytics.CompareCreatives(doc),
				Viral:     analytics.AnalyzeViralMetrics(doc),
				Cohorts:   analytics.AnalyzeCohortRetention(doc),
				Insights:  analytics.DistributionInsights(doc),
			}
			if o := r.Overall; o.SampleSize > 0 {
				if ltv, ok := analytics.PredictLTV(o.AvgRetentionR1, o.AvgRetentionR7, o.AvgRetentionR30, o.AvgARPU); ok {
					r.PredictedLTV = &ltv
				}
			}
			w := cmd.OutOrStdout()
			if done, err := writeStructured(w, format, r); done || err != nil {
				return err
			}
			printGrowth(w, a.f, r)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text|json|yaml)")
	return cmd
}

func printGrowth(w io.Writer, f ui.Formatter, r growthReport) {
	o := r.Overall
	fmt.Fprintln(w, ui.Heading(ui.IconChart, "Growth"))
	fmt.Fprintln(w, ui.LabelValue("Channel tests", fmt.Sprintf("%d (%d running, %d completed)", o.TotalExperiments, o.RunningExperiments, o.CompletedExperiments)))
	fmt.Fprintln(w, ui.LabelValue("Installs", f.Int(o.TotalInstalls)))
	fmt.Fprintln(w, ui.LabelValue("Spent / revenue", f.Money(o.TotalSpent)+" / "+f.Money(o.TotalRevenue)))
	fmt.Fprintln(w, ui.LabelValue("ROI", f.OptPercent(o.OverallROI)))
	if o.SampleSize > 0 {
		fmt.Fprintln(w, ui.LabelValue("Averages", fmt.Sprintf("CPI %s, R1/R7/R30 %s/%s/%s, ARPU %s, LTV %s",
			f.Money(o.AvgCPI), f.Percent(o.AvgRetentionR1), f.Percent(o.AvgRetentionR7), f.Percent(o.AvgRetentionR30),
			f.Money(o.AvgARPU), f.Money(o.AvgLTV)))+ui.Muted.Render(fmt.Sprintf(" over %d completed", o.SampleSize)))
	}
	if r.PredictedLTV != nil {
		fmt.Fprintln(w, ui.LabelValue("Predicted LTV", f.Money(*r.PredictedLTV)))
	}
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, ui.H2.Render("Channels"))
	if len(r.Channels) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(no channel tests)"))
	}
	for _, c := range r.Channels {
		fmt.Fprintf(w, "- %-12s %d tests, %s installs, CPI %s, R7 %s, ROI %s\n", c.Channel, c.Experiments,
			f.Int(c.TotalInstalls), f.Money(c.AvgCPI), f.Percent(c.AvgRetention), f.OptPercent(c.ROI))
	}
	printRanked(w, f, ui.Good.Render("Best channels"), r.Best)
	printRanked(w, f, ui.Bad.Render("Worst channels"), r.Worst)

	if len(r.Creatives) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, ui.H2.Render("Paid creatives"))
		for _, c := range r.Creatives {
			fmt.Fprintf(w, "- %s: CTR %s, hook %s, hold %s, CPI %s, ROI %s\n", c.Name,
				f.Percent(c.CTR), f.Percent(c.HookRate), f.Percent(c.HoldRate), f.Money(c.CPI), f.OptPercent(c.ROI))
		}
	}

	if r.Viral.HasViralLoops {
		v := r.Viral
		verdict := ui.Warn.Render("not viral yet")
		if v.IsViral {
			verdict = ui.Good.Render("viral")
		}
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, ui.H2.Render("Viral loops"))
		fmt.Fprintf(w, "K-factor %.2f, share rate %s, %s installs: %s\n", v.AvgKFactor, f.Percent(v.AvgShareRate), f.Int(v.TotalViralInstalls), verdict)
	}

	if len(r.Cohorts) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, ui.H2.Render("Retention cohorts"))
		for _, c := range r.Cohorts {
			fmt.Fprintf(w, "- %-12s %s installs  R1 %s  R7 %s  R30 %s\n", c.Channel, f.Int(c.Installs), f.Percent(c.AvgR1), f.Percent(c.AvgR7), f.Percent(c.AvgR30))
		}
	}

	in := r.Insights
	if len(in.WhatWorked)+len(in.WhatDidntWork)+len(in.KeyLearnings) > 0 {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, ui.H2.Render("Insights"))
		for _, it := range in.WhatWorked {
			fmt.Fprintf(w, "%s %s %s\n", ui.Good.Render("+"), it.Text, ui.Muted.Render("("+it.ExperimentName+")"))
		}
		for _, it := range in.WhatDidntWork {
			fmt.Fprintf(w, "%s %s %s\n", ui.Bad.Render("-"), it.Text, ui.Muted.Render("("+it.ExperimentName+")"))
		}
		for _, it := range in.KeyLearnings {
			fmt.Fprintf(w, "%s %s %s\n", ui.Key.Render("*"), it.Text, ui.Muted.Render("("+it.ExperimentName+")"))
		}
	}
}

func printRanked(w io.Writer, f ui.Formatter, title string, rows []analytics.ChannelStats) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, title)
	for i, c := range rows {
		fmt.Fprintf(w, "%d. %s ROI %s\n", i+1, c.Channel, f.OptPercent(c.ROI))
	}
}
