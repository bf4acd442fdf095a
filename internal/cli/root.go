// Package cli wires the phonebook command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeanpaul/phonebook/internal/config"
	"github.com/jeanpaul/phonebook/internal/logger"
	"github.com/jeanpaul/phonebook/internal/query"
	"github.com/jeanpaul/phonebook/internal/shell"
	"github.com/jeanpaul/phonebook/internal/store"
	"github.com/jeanpaul/phonebook/internal/theme"
)

// reportedError marks a failure whose message the dispatcher already
// printed.
type reportedError struct{ err error }

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

type options struct {
	configFile string
	storage    string
	backend    string
	logLevel   string
	logFormat  string
	logFile    string
}

// app carries the streams and settings shared by every command.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	opts   options

	cfg      *config.Config
	log      *slog.Logger
	logClose io.Closer
}

// NewRootCmd builds the command tree. Without a subcommand it starts the
// interactive shell.
func NewRootCmd(version string, in io.Reader, out, errOut io.Writer) *cobra.Command {
	root, _ := newRootCmd(version, in, out, errOut)
	return root
}

func newRootCmd(version string, in io.Reader, out, errOut io.Writer) (*cobra.Command, *app) {
	a := &app{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "phonebook",
		Short: "A personal phone book for the terminal",
		Long: `phonebook keeps contacts (an id, a name and a phone number) in a local
JSON file or SQLite database.

Run it without arguments for the interactive shell, "phonebook tui" for the
full-screen interface, or use the subcommands for one-off edits.`,
		Version:           version,
		RunE:              a.runShell,
		PersistentPreRunE: a.loadConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	f := root.PersistentFlags()
	f.StringVar(&a.opts.configFile, "config", "", "config file (default: config.yaml in . or ~/.config/phonebook)")
	f.StringVar(&a.opts.storage, "storage", "", "storage file for the selected backend")
	f.StringVar(&a.opts.backend, "backend", "", "storage backend: json or sqlite")
	f.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&a.opts.logFormat, "log-format", "", "log format: text or json")
	f.StringVar(&a.opts.logFile, "log-file", "", "append logs to this file instead of stderr")

	root.AddCommand(
		a.tuiCmd(),
		a.listCmd(),
		a.findCmd(),
		a.addCmd(),
		a.updateCmd(),
		a.deleteCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.configCmd(),
	)
	return root, a
}

// Execute runs the command line against the process streams.
func Execute(version string) error {
	root, a := newRootCmd(version, os.Stdin, os.Stdout, os.Stderr)
	defer a.closeLog()
	err := root.ExecuteContext(context.Background())
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintln(os.Stderr, theme.Named("green").Error.Render("error: "+err.Error()))
	}
	return err
}

// loadConfig reads the configuration and applies flag overrides on top.
func (a *app) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.opts.configFile)
	if err != nil {
		return err
	}
	if a.opts.backend != "" {
		cfg.Storage.Backend = a.opts.backend
	}
	if a.opts.storage != "" {
		if cfg.Storage.Backend == config.BackendSQLite {
			cfg.Storage.SQLitePath = a.opts.storage
		} else {
			cfg.Storage.Path = a.opts.storage
		}
	}
	if a.opts.logLevel != "" {
		cfg.Log.Level = a.opts.logLevel
	}
	if a.opts.logFormat != "" {
		cfg.Log.Format = a.opts.logFormat
	}
	if a.opts.logFile != "" {
		cfg.Log.File = a.opts.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	a.closeLog()
	a.log, a.logClose = logger.New(&logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	a.log.Debug("configuration loaded", "backend", cfg.Storage.Backend, "location", cfg.StoragePath())
	return nil
}

// closeLog releases the log file once the command has finished.
func (a *app) closeLog() {
	if a.logClose == nil {
		return
	}
	if err := a.logClose.Close(); err != nil {
		fmt.Fprintln(a.errOut, "could not close log file:", err)
	}
	a.logClose = nil
}

// openStore opens the configured backend and loads the collection.
func (a *app) openStore() (*store.Store, error) {
	if a.cfg.Storage.Backend != config.BackendSQLite {
		return store.Open(store.NewJSONFile(a.cfg.Storage.Path), a.log)
	}

	db, err := store.OpenSQLite(a.cfg.Storage.SQLitePath)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(db, a.log)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// withDispatcher runs fn against a freshly opened store and closes it
// afterwards.
func (a *app) withDispatcher(fn func(d *shell.Dispatcher) error) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := query.NewEngine(a.cfg.Search.Fields...)
	if err != nil {
		return err
	}
	d := shell.NewDispatcher(s, engine, a.out, theme.Named(a.cfg.UI.Theme), a.log)
	return fn(d)
}

// run executes one dispatcher command with canned answers for its prompts.
func (a *app) run(line string, answers ...string) error {
	return a.withDispatcher(func(d *shell.Dispatcher) error {
		p := shell.Answers(answers)
		if err := d.Execute(line, &p); err != nil {
			return reportedError{err}
		}
		return nil
	})
}
