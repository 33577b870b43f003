package cli

import (
	"context"
	"errors"

	coreapp "reqcheck/internal/core/app"
	"reqcheck/internal/core/ports"

	tea "github.com/charmbracelet/bubbletea"
)

func runUI(ctx context.Context, app *coreapp.App) error {
	m := initialModel(app.Config.Scan.Dir)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	app.SetUpdateHandler(func(result ports.ScanResult) {
		p.Send(newUpdateMsg(result))
	})

	go func() {
		if result, ok := app.Last(); ok {
			p.Send(newUpdateMsg(result))
		}
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
