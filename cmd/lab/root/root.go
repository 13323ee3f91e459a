package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mtimit/gamify-product-lab/internal/ui"
)

const Version = "0.2.0"

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lab",
		Short:         "Product lab: track projects, experiments and growth with RPG progression",
		Long:          "lab is a local-first CLI/TUI for indie product work. Projects, experiments and channel tests earn XP, unlock achievements and advance quests.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().String("db", "", "SQLite database path (overrides LAB_DB_PATH and the config file)")

	cmd.AddCommand(
		newStatusCmd(),
		newProjectCmd(),
		newExpCmd(),
		newDistCmd(),
		newGrowthCmd(),
		newQuestsCmd(),
		newLogCmd(),
		newHistoryCmd(),
		newMetricsCmd(),
		newBoardCmd(),
	)
	return cmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		stop()
		os.Exit(1)
	}
}
