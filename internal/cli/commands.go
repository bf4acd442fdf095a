package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeanpaul/phonebook/internal/shell"
	"github.com/jeanpaul/phonebook/internal/theme"
	"github.com/jeanpaul/phonebook/internal/tui"
)

func (a *app) runShell(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return a.withDispatcher(func(d *shell.Dispatcher) error {
		return shell.New(d, a.in, a.out).Run(ctx)
	})
}

// nonBlankArgs rejects empty or whitespace-only positional arguments, which
// would otherwise make the dispatcher prompt for a value.
func nonBlankArgs(cmd *cobra.Command, args []string) error {
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			return fmt.Errorf("%s: arguments must not be empty", cmd.Name())
		}
	}
	return nil
}

func (a *app) tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer cancel()

			return a.withDispatcher(func(d *shell.Dispatcher) error {
				m := tui.NewModel(d, theme.Named(a.cfg.UI.Theme))
				p := tea.NewProgram(m,
					tea.WithAltScreen(),
					tea.WithContext(ctx),
					tea.WithInput(a.in),
					tea.WithOutput(a.out),
				)
				if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
					return err
				}
				return nil
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show every contact",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run("list")
		},
	}
}

func (a *app) findCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <text>",
		Short: "Show contacts whose name or number contains the text",
		Args:  cobra.MatchAll(cobra.MinimumNArgs(1), nonBlankArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run("find " + strings.Join(args, " "))
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var name, number string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a contact",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.run("add", name, number)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "contact name")
	cmd.Flags().StringVar(&number, "number", "", "phone number, digits only")
	return cmd
}

func (a *app) updateCmd() *cobra.Command {
	var name, number string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change the name and/or number of a contact",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), nonBlankArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run("update "+args[0], name, number)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name (empty keeps the current one)")
	cmd.Flags().StringVar(&number, "number", "", "new number (empty keeps the current one)")
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a contact",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), nonBlankArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run("delete " + args[0])
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all contacts to a .csv, .xlsx or .json file",
		Args:  cobra.MatchAll(cobra.ExactArgs(1), nonBlankArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.run("export " + args[0])
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "import <glob>",
		Short: "Add contacts from matching .csv, .xlsx or .json files",
		Long: `Add contacts from every file matching the pattern. ** matches any number of
directories. Source ids are ignored: imported contacts get fresh ids.`,
		Args: cobra.MatchAll(cobra.ExactArgs(1), nonBlankArgs),
		RunE: func(_ *cobra.Command, args []string) error {
			if !dryRun {
				return a.run("import " + args[0])
			}
			return a.withDispatcher(func(d *shell.Dispatcher) error {
				if err := d.Preview(args[0]); err != nil {
					return reportedError{err}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show the resulting changes without saving them")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.cfg.YAML()
			if err != nil {
				return err
			}
			_, err = a.out.Write(data)
			return err
		},
	}
}
