package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/store"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func newExpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "exp",
		Aliases: []string{"experiment"},
		Short:   "Track product experiments",
	}
	cmd.AddCommand(newExpAddCmd(), newExpStatusCmd(), newExpListCmd())
	return cmd
}

func newExpAddCmd() *cobra.Command {
	var typ, hypothesis, status string

	cmd := &cobra.Command{
		Use:   "add <projectID>",
		Short: "Start an experiment for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := store.ExperimentInput{ProjectID: args[0], Type: typ, Hypothesis: hypothesis}
			if status != "" {
				st, err := store.ParseExperimentStatus(status)
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

			e, out, err := a.s.CreateExperiment(cmd.Context(), in)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Experiment %s (%s) %s\n", ui.IconLab, ui.Muted.Render(e.ID), e.Type, ui.StatusText(string(e.Status)))
			printOutcome(w, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "Experiment type, e.g. landing, interview, pricing")
	cmd.Flags().StringVar(&hypothesis, "hypothesis", "", "What the experiment should prove")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (planned|running|completed|canceled)")
	return cmd
}

func newExpStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change an experiment status (planned|running|completed|canceled)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := store.ParseExperimentStatus(args[1])
			if err != nil {
				return err
			}
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			e, out, err := a.s.SetExperimentStatus(cmd.Context(), args[0], status)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s Experiment %s is %s\n", ui.IconLab, ui.Muted.Render(e.ID), ui.StatusText(string(e.Status)))
			printOutcome(w, out)
			return nil
		},
	}
	return cmd
}

func newExpListCmd() *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List experiments",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			exps := a.s.Document().Experiments
			if projectID != "" {
				exps = a.s.Store().ExperimentsFor(projectID)
			}
			w := cmd.OutOrStdout()
			if len(exps) == 0 {
				fmt.Fprintln(w, ui.Muted.Render(ui.IconInfo+" No experiments yet."))
				return nil
			}
			fmt.Fprintln(w, ui.Heading(ui.IconLab, "Experiments"))
			for _, e := range exps {
				project := ui.Muted.Render("unknown project")
				if p, ok := a.s.Store().Project(e.ProjectID); ok {
					project = p.Name
				}
				fmt.Fprintf(w, "- %s %s — %s [%s] %s\n", ui.Muted.Render(e.ID), project, e.Type,
					ui.StatusText(string(e.Status)), ui.Muted.Render(orDash(e.Hypothesis)))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectID, "project", "p", "", "Only experiments of this project")
	return cmd
}
