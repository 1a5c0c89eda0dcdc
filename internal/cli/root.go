package cli

import (
	"context"

	"github.com/charmbracelet/huh"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tandem/internal/config"
	"tandem/internal/store"
	"tandem/internal/ui"
)

// App holds what the commands need. Zero-valued hooks fall back to the
// terminal implementations.
type App struct {
	Store  *store.Store
	Config config.Config
	Log    logrus.FieldLogger

	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// RunTUI starts the full-screen interface.
	RunTUI func(ctx context.Context) error
	// Confirm asks a yes/no question.
	Confirm func(title string) (bool, error)
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) runTUI(ctx context.Context) error {
	if a.RunTUI != nil {
		return a.RunTUI(ctx)
	}
	return ui.Run(ctx, a.Store, a.Config, a.Log)
}

func (a *App) confirm(title string) (bool, error) {
	if a.Confirm != nil {
		return a.Confirm(title)
	}
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// NewRootCmd creates the top-level "tandem" command. Run bare in a terminal
// it opens the TUI; otherwise it prints both lists.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "tandem",
		Short:         "Personal and professional task lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.interactive() {
				return app.runTUI(commandContext(cmd))
			}
			return listScopes(cmd, app, "", "", 1)
		},
	}

	root.AddCommand(
		newAddCmd(app),
		newListCmd(app),
		newDoneCmd(app),
		newEditCmd(app),
		newPriorityCmd(app),
		newDueCmd(app),
		newRemoveCmd(app),
		newSortCmd(app),
		newMoveCmd(app),
		newClearCmd(app),
		newResetCmd(app),
		newTUICmd(app),
	)

	return root
}

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(commandContext(cmd))
		},
	}
}
