package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mtimit/gamify-product-lab/internal/lab"
	"github.com/mtimit/gamify-product-lab/internal/ui"
)

func RunBoard(ctx context.Context, s *lab.Session, f ui.Formatter, out io.Writer) error {
	m := newBoardModel(ctx, s, f)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
