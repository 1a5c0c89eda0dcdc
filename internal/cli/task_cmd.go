package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tandem/internal/cli/formatter"
	"tandem/internal/notify"
	"tandem/internal/store"
	"tandem/internal/task"
)

// commandContext never returns nil, so commands run through Execute without a
// context still work.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func resolveTask(app *App, input string) (task.Scope, task.Task, error) {
	if strings.TrimSpace(input) == "" {
		return "", task.Task{}, fmt.Errorf("task ID is required")
	}
	scope, t, err := app.Store.Find(input)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return "", task.Task{}, fmt.Errorf("task not found: %q", input)
	case errors.Is(err, store.ErrAmbiguousID):
		return "", task.Task{}, fmt.Errorf("task ID prefix %q is ambiguous", input)
	case err != nil:
		return "", task.Task{}, err
	}
	return scope, t, nil
}

type output struct {
	w io.Writer
}

func outputOf(cmd *cobra.Command) output {
	return output{w: cmd.OutOrStdout()}
}

// toast prints a notification as a single line.
func (o output) toast(_ notify.Kind, title, message string) {
	fmt.Fprintf(o.w, "%s: %s\n", formatter.Bold(title), message)
}

func newAddCmd(app *App) *cobra.Command {
	var scopeStr, due, priority string

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task to a list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := task.ParseScope(scopeStr)
			if err != nil {
				return err
			}
			dueDate, err := task.ParseDue(due)
			if err != nil {
				return fmt.Errorf("invalid due date %q: %w", due, err)
			}
			p, err := task.ParsePriority(priority)
			if err != nil {
				return err
			}

			added, err := app.Store.Add(commandContext(cmd), scope, strings.Join(args, " "), dueDate, p)
			if err != nil {
				return err
			}
			outputOf(cmd).toast(notify.Added(added))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.Dim("id"), added.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&scopeStr, "scope", "s", string(task.Personal), "List to add to (personal, professional)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.Medium), "Priority (low, medium, high)")
	return cmd
}

func newListCmd(app *App) *cobra.Command {
	var scopeStr, query string
	var page int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show a page of tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listScopes(cmd, app, scopeStr, query, page)
		},
	}

	cmd.Flags().StringVarP(&scopeStr, "scope", "s", "", "Only show one list (personal, professional)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Case-insensitive text filter")
	cmd.Flags().IntVar(&page, "page", 1, "Page to show; out of range pages are clamped")
	return cmd
}

func listScopes(cmd *cobra.Command, app *App, scopeStr, query string, page int) error {
	scopes := task.Scopes
	if scopeStr != "" {
		scope, err := task.ParseScope(scopeStr)
		if err != nil {
			return err
		}
		scopes = []task.Scope{scope}
	}
	out := cmd.OutOrStdout()
	for i, scope := range scopes {
		if i > 0 {
			fmt.Fprintln(out)
		}
		res := app.Store.View(scope, query, page)
		fmt.Fprint(out, formatter.FormatTasks(scope, app.Store.Stats(scope), res, query, app.Store.PageSize(), app.Config.WindowRadius))
	}
	return nil
}

func newDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between active and completed",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, t, err := resolveTask(app, args[0])
			if err != nil {
				return err
			}
			done, err := app.Store.Toggle(commandContext(cmd), scope, t.ID)
			if err != nil {
				return err
			}
			outputOf(cmd).toast(notify.Toggled(done))
			return nil
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, t, err := resolveTask(app, args[0])
			if err != nil {
				return err
			}
			changed, err := app.Store.EditText(commandContext(cmd), scope, t.ID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Nothing changed"))
				return nil
			}
			outputOf(cmd).toast(notify.Updated())
			return nil
		},
	}
}

func newPriorityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <id> <low|medium|high>",
		Short: "Set a task's priority",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, t, err := resolveTask(app, args[0])
			if err != nil {
				return err
			}
			p, err := task.ParsePriority(args[1])
			if err != nil {
				return err
			}
			if _, err := app.Store.SetPriority(commandContext(cmd), scope, t.ID, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", t.Text, formatter.PriorityBadge(p))
			return nil
		},
	}
}

func newDueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "due <id> <YYYY-MM-DD|none>",
		Short: "Set or clear a task's due date",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, t, err := resolveTask(app, args[0])
			if err != nil {
				return err
			}
			raw := args[1]
			if strings.EqualFold(raw, "none") {
				raw = ""
			}
			due, err := task.ParseDue(raw)
			if err != nil {
				return fmt.Errorf("invalid due date %q: %w", args[1], err)
			}
			if _, err := app.Store.SetDue(commandContext(cmd), scope, t.ID, due); err != nil {
				return err
			}
			updated, _ := app.Store.Get(scope, t.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", updated.Text, formatter.Dim(updated.DueLabel()))
			return nil
		},
	}
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, t, err := resolveTask(app, args[0])
			if err != nil {
				return err
			}
			if _, err := app.Store.Remove(commandContext(cmd), scope, t.ID); err != nil {
				return err
			}
			outputOf(cmd).toast(notify.Deleted(t.Text))
			return nil
		},
	}
}

func newSortCmd(app *App) *cobra.Command {
	var scopeStr string
	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort a list by due date, undated tasks last",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := task.ParseScope(scopeStr)
			if err != nil {
				return err
			}
			if err := app.Store.SortByDue(commandContext(cmd), scope); err != nil {
				return err
			}
			outputOf(cmd).toast(notify.Sorted())
			return nil
		},
	}
	cmd.Flags().StringVarP(&scopeStr, "scope", "s", string(task.Personal), "List to sort")
	return cmd
}

func newMoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <target-id>",
		Short: "Move a task to the position of another task in the same list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, moved, err := resolveTask(app, args[0])
			if err != nil {
				return err
			}
			targetScope, target, err := resolveTask(app, args[1])
			if err != nil {
				return err
			}
			if scope != targetScope {
				return fmt.Errorf("cannot move a %s task into the %s list", scope, targetScope)
			}
			ok, err := app.Store.Reorder(commandContext(cmd), scope, moved.ID, target.ID)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Nothing moved"))
				return nil
			}
			outputOf(cmd).toast(notify.Reordered())
			return nil
		},
	}
}

func newClearCmd(app *App) *cobra.Command {
	var scopeStr string
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove completed tasks from a list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := task.ParseScope(scopeStr)
			if err != nil {
				return err
			}
			removed, err := app.Store.ClearCompleted(commandContext(cmd), scope)
			if err != nil {
				return err
			}
			outputOf(cmd).toast(notify.Cleared(removed))
			return nil
		},
	}
	cmd.Flags().StringVarP(&scopeStr, "scope", "s", string(task.Personal), "List to clear")
	return cmd
}

func newResetCmd(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every task in both lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !app.interactive() {
					return fmt.Errorf("refusing to reset without --yes")
				}
				ok, err := app.confirm("Reset all tasks in both lists?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Reset cancelled"))
					return nil
				}
			}
			if err := app.Store.Reset(commandContext(cmd)); err != nil {
				return err
			}
			outputOf(cmd).toast(notify.Reset())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
