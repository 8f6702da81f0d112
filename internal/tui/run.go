package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runnerr0/linkhist/internal/history"
	"github.com/runnerr0/linkhist/internal/view"
)

// Run starts the browser full screen and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, session *history.Session, list *view.List, opts ...Option) error {
	p := tea.NewProgram(NewModel(ctx, session, list, opts...),
		tea.WithAltScreen(),
		tea.WithContext(ctx))

	list.OnChange(func() { go p.Send(listChangedMsg{}) })
	defer list.OnChange(nil)

	_, err := p.Run()
	return err
}
