package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/store"
	"github.com/jeanpaul/phonebook/internal/theme"
)

const (
	idWidth     = 4
	nameWidth   = 20
	numberWidth = 15
	ruleWidth   = 45
)

// Table renders contacts in fixed-width columns under a header and a rule.
func Table(th theme.Theme, contacts []contact.Contact) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(th.Header.Render(row("ID", "Name", "Number")))
	b.WriteString("\n")
	b.WriteString(th.Rule.Render(strings.Repeat("-", ruleWidth)))
	b.WriteString("\n")
	for _, c := range contacts {
		b.WriteString(th.Cell.Render(row(fmt.Sprint(c.ID), c.Name, c.Number)))
		b.WriteString("\n")
	}
	return b.String()
}

func row(id, name, number string) string {
	return fmt.Sprintf("%-*s | %-*s | %-*s", idWidth, id, nameWidth, name, numberWidth, number)
}

// Message turns an operation error into the text shown to the user.
func Message(err error) string {
	var se *store.SaveError
	switch {
	case errors.As(err, &se) && se.PermissionDenied():
		return fmt.Sprintf("Error: no permission to write to %s.", se.Location)
	case errors.As(err, &se):
		return fmt.Sprintf("Error: could not save contacts: %v", se.Err)
	case errors.Is(err, contact.ErrNotFound):
		return "Error: no contact with " + reason(err, contact.ErrNotFound) + "."
	case errors.Is(err, contact.ErrInvalidArgument):
		return "Error: " + reason(err, contact.ErrInvalidArgument) + "."
	default:
		return "Error: " + err.Error()
	}
}

// reason strips the sentinel prefix from a wrapped error.
func reason(err, sentinel error) string {
	msg := err.Error()
	if r, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return r
	}
	return msg
}

func (d *Dispatcher) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Dispatcher) successf(format string, args ...any) {
	fmt.Fprintln(d.out, d.theme.Success.Render(fmt.Sprintf(format, args...)))
}

func (d *Dispatcher) failf(format string, args ...any) {
	fmt.Fprintln(d.out, d.theme.Error.Render(fmt.Sprintf(format, args...)))
}

func (d *Dispatcher) renderError(err error) {
	fmt.Fprintln(d.out, d.theme.Error.Render(Message(err)))
}
