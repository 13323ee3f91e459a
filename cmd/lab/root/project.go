package root

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/analytics"
	"github.com/mtimit/gamify-product-lab/internal/store"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Create and manage projects",
	}
	cmd.AddCommand(
		newProjectAddCmd(),
		newProjectListCmd(),
		newProjectStatusCmd(),
		newProjectRevenueCmd(),
		newProjectScoreCmd(),
		newProjectHypothesisCmd(),
		newProjectInsightCmd(),
		newProjectNoteCmd(),
		newProjectReportCmd(),
		newProjectCompareCmd(),
	)
	return cmd
}

func newProjectAddCmd() *cobra.Command {
	var problem, audience, solution string
	var tags []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a project in the idea stage",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
				return errors.New("name is required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			p, out, err := a.s.CreateProject(cmd.Context(), store.ProjectInput{
				Name:               args[0],
				Problem:            problem,
				TargetAudience:     audience,
				SolutionHypothesis: solution,
				Tags:               tags,
			})
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Created %s %s\n", ui.IconPlus, ui.H2.Render(p.Name), ui.Muted.Render(p.ID))
			printOutcome(w, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&problem, "problem", "", "Problem the project solves")
	cmd.Flags().StringVar(&audience, "audience", "", "Target audience")
	cmd.Flags().StringVar(&solution, "solution", "", "Solution hypothesis")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "Tag (repeatable)")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			w := cmd.OutOrStdout()
			projects := a.s.Document().Projects
			if len(projects) == 0 {
				fmt.Fprintln(w, ui.Muted.Render(ui.IconInfo+" No projects yet."))
				return nil
			}
			fmt.Fprintln(w, ui.Heading(ui.IconBox, "Projects"))
			for _, p := range projects {
				fmt.Fprintf(w, "- %s %s [%s] score %.1f, revenue %s\n",
					ui.Muted.Render(p.ID), p.Name, ui.StatusText(string(p.Status)),
					p.IdeaScore.TotalScore, a.f.Money(p.Metrics.RevenueTotal))
			}
			return nil
		},
	}
	return cmd
}

func newProjectStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a project to another stage (idea|validating|designing|building|launched|scaling|archived)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := store.ParseProjectStatus(args[1])
			if err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			p, out, err := a.s.SetProjectStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s is now %s\n", ui.IconRocket, p.Name, ui.StatusText(string(p.Status)))
			printOutcome(w, out)
			return nil
		},
	}
	return cmd
}

func newProjectRevenueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revenue <id> <amount>",
		Short: "Record revenue for a project (1 XP per 10 units)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", "."), 64)
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			p, out, err := a.s.AddRevenue(cmd.Context(), args[0], amount)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s %s total revenue %s\n", ui.IconChart, p.Name, a.f.Money(p.Metrics.RevenueTotal))
			printOutcome(w, out)
			return nil
		},
	}
	return cmd
}

func newProjectScoreCmd() *cobra.Command {
	var problemValue, scalability, devTime int

	cmd := &cobra.Command{
		Use:   "score <id>",
		Short: "Set idea score components (1-10 each)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch store.IdeaScorePatch
			if cmd.Flags().Changed("problem-value") {
				patch.ProblemValue = &problemValue
			}
			if cmd.Flags().Changed("scalability") {
				patch.Scalability = &scalability
			}
			if cmd.Flags().Changed("dev-time") {
				patch.DevelopmentTime = &devTime
			}

			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := a.s.UpdateIdeaScore(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			sc := p.IdeaScore
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s score %s %s\n", ui.IconTarget, p.Name, ui.Gold.Render(fmt.Sprintf("%.2f", sc.TotalScore)),
				ui.Muted.Render(fmt.Sprintf("(problem %d, scalability %d, dev time %d)", sc.ProblemValue, sc.Scalability, sc.DevelopmentTime)))
			return nil
		},
	}

	cmd.Flags().IntVar(&problemValue, "problem-value", 5, "How painful the problem is")
	cmd.Flags().IntVar(&scalability, "scalability", 5, "How far it can grow")
	cmd.Flags().IntVar(&devTime, "dev-time", 5, "How quick it is to build (10 = fastest)")
	return cmd
}

func newProjectHypothesisCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hypothesis",
		Short: "Add or validate project hypotheses",
	}

	add := &cobra.Command{
		Use:   "add <projectID> <text>",
		Short: "Add a hypothesis",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := a.s.AddHypothesis(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Hypothesis %s added\n", ui.IconPlus, ui.Muted.Render(h.ID))
			return nil
		},
	}

	validate := &cobra.Command{
		Use:   "validate <projectID> <hypothesisID> <success|failure>",
		Short: "Record a hypothesis result",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := store.ParseHypothesisResult(args[2])
			if err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			h, err := a.s.ValidateHypothesis(cmd.Context(), args[0], args[1], result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q: %s\n", ui.IconDone, h.Text, ui.StatusText(string(h.Result)))
			return nil
		},
	}

	cmd.AddCommand(add, validate)
	return cmd
}

func newProjectInsightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight <projectID> <worked|didnt_work|learning> <text>",
		Short: "Record an insight",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := store.ParseInsightKind(args[1])
			if err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.s.AddInsight(cmd.Context(), args[0], kind, args[2]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Insight saved\n", ui.IconDone)
			return nil
		},
	}
	return cmd
}

func newProjectNoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note <projectID> <text>",
		Short: "Add a dated note",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			_, out, err := a.s.AddNote(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Note added\n", ui.IconScroll)
			printOutcome(w, out)
			return nil
		},
	}
	return cmd
}

func newProjectReportCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "report <id>",
		Short: "Show the full report for one project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := analytics.ProjectReport(a.s.Document(), args[0], a.s.Store().Now())
			if r == nil {
				return fmt.Errorf("project %s: %w", args[0], store.ErrNotFound)
			}
			w := cmd.OutOrStdout()
			if done, err := writeStructured(w, format, r); done || err != nil {
				return err
			}
			printReport(a, r, cmd)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text|json|yaml)")
	return cmd
}

func printReport(a *app, r *analytics.ProjectReportView, cmd *cobra.Command) {
	w := cmd.OutOrStdout()
	p := r.Project
	fmt.Fprintln(w, ui.Heading(ui.IconBox, p.Name))
	fmt.Fprintln(w, ui.LabelValue("Status", ui.StatusText(string(p.Status))))
	fmt.Fprintln(w, ui.LabelValue("Created", p.CreatedAt.Local().Format("2006-01-02")+ui.Muted.Render(fmt.Sprintf(" (%d days ago)", r.Timeline.TotalDays))))
	fmt.Fprintln(w, ui.LabelValue("Idea score", fmt.Sprintf("%.2f", p.IdeaScore.TotalScore)))
	fmt.Fprintln(w, ui.LabelValue("Revenue", a.f.Money(r.Metrics.RevenueTotal)))
	mvp := "n/a"
	if r.Timeline.MVPTime != nil {
		mvp = a.f.Days(*r.Timeline.MVPTime)
	}
	fmt.Fprintln(w, ui.LabelValue("Time to MVP", mvp))
	fmt.Fprintln(w, "")

	fmt.Fprintln(w, ui.H2.Render("Stage velocity"))
	if len(r.Timeline.StageVelocity) == 0 {
		fmt.Fprintln(w, ui.Muted.Render("(no finished stages)"))
	}
	for _, st := range store.ProjectStatuses {
		if d, ok := r.Timeline.StageVelocity[st]; ok {
			fmt.Fprintf(w, "- %s %s\n", ui.StatusText(string(st)), a.f.Days(d))
		}
	}
	fmt.Fprintln(w, "")

	h := r.Hypotheses
	fmt.Fprintln(w, ui.H2.Render("Hypotheses"))
	fmt.Fprintf(w, "%d total, %d validated (%d success, %d failure)\n", h.Total, h.Validated, h.Successful, h.Failed)
	fmt.Fprintln(w, "")

	e := r.Experiments
	fmt.Fprintln(w, ui.H2.Render("Experiments"))
	fmt.Fprintf(w, "%d total, success rate %s\n", e.Total, a.f.Percent(e.SuccessRate))
	fmt.Fprintln(w, "")

	in := r.Insights
	fmt.Fprintln(w, ui.H2.Render("Insights"))
	fmt.Fprintf(w, "%d worked, %d didn't, %d learnings\n", in.WhatWorked, in.WhatDidntWork, in.KeyLearnings)
}

func newProjectCompareCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "compare <id> <id>...",
		Short: "Compare projects side by side",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rows := analytics.CompareProjects(a.s.Document(), args)
			w := cmd.OutOrStdout()
			if done, err := writeStructured(w, format, rows); done || err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(w, ui.Muted.Render("No matching projects."))
				return nil
			}
			fmt.Fprintf(w, "%-24s %6s %8s %5s %12s\n", "PROJECT", "SCORE", "MVP", "EXPS", "REVENUE")
			for _, r := range rows {
				mvp := "n/a"
				if r.MVPTime != nil {
					mvp = a.f.Days(*r.MVPTime)
				}
				fmt.Fprintf(w, "%-24s %6.2f %8s %5d %12s\n", orDash(r.Name), r.Score, mvp, r.Experiments, a.f.Money(r.Revenue))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text|json|yaml)")
	return cmd
}
