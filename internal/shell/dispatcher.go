// Package shell turns lines of user input into phone book operations.
package shell

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/query"
	"github.com/jeanpaul/phonebook/internal/store"
	"github.com/jeanpaul/phonebook/internal/theme"
	"github.com/jeanpaul/phonebook/internal/transfer"
)

// ErrQuit ends the session. It is returned for the exit command and when
// input runs out in the middle of a prompt.
var ErrQuit = errors.New("quit")

// errUnknownCommand is returned for input that names no command.
var errUnknownCommand = errors.New("unknown command")

// Prompter asks the user for one line of input.
type Prompter interface {
	Ask(label string) (string, error)
}

// Dispatcher runs commands against a store and writes human readable
// results to out. It never lets an operation error escape as anything but
// a rendered message plus the returned error.
type Dispatcher struct {
	store  *store.Store
	engine *query.Engine
	out    io.Writer
	theme  theme.Theme
	log    *slog.Logger
}

// NewDispatcher wires a dispatcher. A nil engine searches the default
// fields and a nil logger discards.
func NewDispatcher(s *store.Store, engine *query.Engine, out io.Writer, th theme.Theme, log *slog.Logger) *Dispatcher {
	if engine == nil {
		engine, _ = query.NewEngine()
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{store: s, engine: engine, out: out, theme: th, log: log}
}

// SetOutput redirects rendered output.
func (d *Dispatcher) SetOutput(out io.Writer) { d.out = out }

// Store returns the store the dispatcher operates on.
func (d *Dispatcher) Store() *store.Store { return d.store }

// Execute runs one input line. Empty lines do nothing. Errors have already
// been rendered when they are returned; ErrQuit asks the caller to stop.
func (d *Dispatcher) Execute(line string, p Prompter) error {
	name, arg := parse(line)
	if name == "" {
		return nil
	}
	d.log.Debug("command", "name", name, "arg", arg)

	var err error
	switch name {
	case "add":
		err = d.add(p)
	case "list":
		d.list()
	case "find":
		err = d.find(arg, p)
	case "delete":
		err = d.delete(arg, p)
	case "update":
		err = d.update(arg, p)
	case "export":
		err = d.export(arg, p)
	case "import":
		err = d.importFiles(arg, p)
	case "help":
		d.help()
	case "exit":
		return ErrQuit
	default:
		d.failf("Unknown command %q. Type help to see the available commands.", name)
		err = errUnknownCommand
	}
	if err != nil && !errors.Is(err, ErrQuit) {
		d.log.Debug("command failed", "name", name, "err", err)
	}
	return err
}

// parse splits a line into a lower-cased command name and the rest of the
// line.
func parse(line string) (string, string) {
	line = strings.TrimSpace(line)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return strings.ToLower(line), ""
	}
	return strings.ToLower(line[:i]), strings.TrimSpace(line[i:])
}

// argOrAsk returns arg, or prompts for it when it is empty.
func argOrAsk(arg string, p Prompter, label string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	v, err := p.Ask(label)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

func (d *Dispatcher) add(p Prompter) error {
	name, err := p.Ask("Enter name: ")
	if err != nil {
		return err
	}
	number, err := p.Ask("Enter number: ")
	if err != nil {
		return err
	}

	c, err := d.store.Add(strings.TrimSpace(name), strings.TrimSpace(number))
	if err != nil {
		d.renderError(err)
		return err
	}
	d.successf("Contact #%d saved.", c.ID)
	return nil
}

func (d *Dispatcher) list() {
	contacts := d.store.Contacts()
	if len(contacts) == 0 {
		d.printf("The contact list is empty.\n")
		return
	}
	d.printf("%s", Table(d.theme, contacts))
}

func (d *Dispatcher) find(arg string, p Prompter) error {
	if d.store.Len() == 0 {
		d.printf("The phone book is empty. Nothing to search.\n")
		return nil
	}
	q, err := argOrAsk(arg, p, "Search for: ")
	if err != nil {
		return err
	}
	if q == "" {
		d.printf("Empty query.\n")
		return nil
	}

	matches := d.engine.Find(d.store.Contacts(), q)
	if len(matches) == 0 {
		d.printf("Nothing found.\n")
		return nil
	}
	d.printf("\nMatches found: %d\n", len(matches))
	d.printf("%s", Table(d.theme, matches))
	return nil
}

func (d *Dispatcher) delete(arg string, p Prompter) error {
	raw, err := argOrAsk(arg, p, "Enter the id of the contact to delete: ")
	if err != nil {
		return err
	}
	id, err := contact.ParseID(raw)
	if err != nil {
		d.renderError(err)
		return err
	}

	if err := d.store.Delete(id); err != nil {
		d.renderError(err)
		return err
	}
	d.successf("Contact #%d deleted.", id)
	return nil
}

func (d *Dispatcher) update(arg string, p Prompter) error {
	raw, err := argOrAsk(arg, p, "Enter the id of the contact to update: ")
	if err != nil {
		return err
	}
	id, err := contact.ParseID(raw)
	if err != nil {
		d.renderError(err)
		return err
	}
	current, err := d.store.Get(id)
	if err != nil {
		d.renderError(err)
		return err
	}

	d.printf("Editing: %s | %s\n", current.Name, current.Number)
	name, err := p.Ask(fmt.Sprintf("New name [%s]: ", current.Name))
	if err != nil {
		return err
	}
	number, err := p.Ask(fmt.Sprintf("New number [%s]: ", current.Number))
	if err != nil {
		return err
	}

	if _, err := d.store.Update(id, strings.TrimSpace(name), strings.TrimSpace(number)); err != nil {
		d.renderError(err)
		return err
	}
	d.successf("Contact #%d updated.", id)
	return nil
}

func (d *Dispatcher) export(arg string, p Prompter) error {
	path, err := argOrAsk(arg, p, "Export to file (.csv, .xlsx, .json): ")
	if err != nil {
		return err
	}
	if path == "" {
		d.failf("Error: a file name is required.")
		return fmt.Errorf("%w: empty export path", contact.ErrInvalidArgument)
	}

	contacts := d.store.Contacts()
	if err := transfer.Export(path, contacts); err != nil {
		d.failf("Error: could not export: %v", err)
		return err
	}
	d.successf("Exported %d contacts to %s.", len(contacts), path)
	return nil
}

func (d *Dispatcher) importFiles(arg string, p Prompter) error {
	pattern, err := argOrAsk(arg, p, "Import files matching: ")
	if err != nil {
		return err
	}
	if pattern == "" {
		d.failf("Error: a file pattern is required.")
		return fmt.Errorf("%w: empty import pattern", contact.ErrInvalidArgument)
	}

	rep, err := transfer.Import(d.store, pattern)
	d.renderReport(rep)
	if err != nil {
		d.renderError(err)
		return err
	}
	return nil
}

// Preview renders what importing pattern would change, without changing it.
func (d *Dispatcher) Preview(pattern string) error {
	rep, diff, err := transfer.Preview(d.store.Contacts(), d.store.Location(), pattern)
	if err != nil {
		d.renderError(err)
		return err
	}
	d.renderReport(rep)
	if diff != "" {
		d.printf("\n%s", diff)
	}
	return nil
}

func (d *Dispatcher) renderReport(rep transfer.Report) {
	for _, skipped := range rep.Skipped {
		d.printf("%s\n", d.theme.Help.Render("skipped "+skipped.Error()))
	}
	if len(rep.Files) > 0 || len(rep.Skipped) > 0 {
		d.successf("Imported %d contacts from %d files (%d rows skipped).",
			len(rep.Added), len(rep.Files), len(rep.Skipped))
	}
}
