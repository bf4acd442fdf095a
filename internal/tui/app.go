// Package tui is the full-screen phone book interface.
package tui

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/phonebook/internal/contact"
	"github.com/jeanpaul/phonebook/internal/shell"
	"github.com/jeanpaul/phonebook/internal/theme"
)

const (
	headerH = 2
	tableH  = 8
	inputH  = 3
	statusH = 1
)

// promptMsg is sent when a running command needs a line of input.
type promptMsg struct {
	output string
	label  string
}

// doneMsg is sent when a command has finished.
type doneMsg struct {
	output   string
	err      error
	contacts []contact.Contact
}

// session runs commands off the UI goroutine. Only the command goroutine
// touches the dispatcher and its buffer while a command is in flight.
type session struct {
	d       *shell.Dispatcher
	buf     bytes.Buffer
	events  chan tea.Msg
	answers chan string
}

func (s *session) flush() string {
	out := s.buf.String()
	s.buf.Reset()
	return out
}

// Ask implements shell.Prompter by handing the prompt to the UI and waiting
// for the line the user enters.
func (s *session) Ask(label string) (string, error) {
	s.events <- promptMsg{output: s.flush(), label: label}
	answer, ok := <-s.answers
	if !ok {
		return "", shell.ErrQuit
	}
	return answer, nil
}

type Model struct {
	width, height int
	table         table.Model
	viewport      viewport.Model
	input         textinput.Model
	menu          MenuModel
	theme         theme.Theme

	sess      *session
	location  string
	contacts  []contact.Contact
	output    string
	busy      bool
	prompting bool
	quitting  bool
}

// NewModel builds the interface around a dispatcher. The dispatcher's
// output is redirected into the model.
func NewModel(d *shell.Dispatcher, th theme.Theme) Model {
	sess := &session{
		d:       d,
		events:  make(chan tea.Msg, 1),
		answers: make(chan string),
	}
	d.SetOutput(&sess.buf)

	ti := textinput.New()
	ti.Placeholder = "type a command, or / for the list"
	ti.Prompt = "> "
	ti.PromptStyle = th.Prompt
	ti.TextStyle = th.Cell
	ti.Focus()

	tbl := table.New(
		table.WithColumns([]table.Column{
			{Title: "ID", Width: 4},
			{Title: "Name", Width: 20},
			{Title: "Number", Width: 15},
		}),
		table.WithHeight(tableH),
		table.WithFocused(true),
	)
	styles := table.DefaultStyles()
	styles.Header = th.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true)
	styles.Selected = th.Selected
	tbl.SetStyles(styles)

	m := Model{
		table:    tbl,
		viewport: viewport.New(80, 10),
		input:    ti,
		menu:     NewMenuModel(th),
		theme:    th,
		sess:     sess,
		location: d.Store().Location(),
	}
	m.setContacts(d.Store().Contacts())
	m.appendOutput(th.Help.Render("Type help to see what you can do.") + "\n")
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case promptMsg:
		m.appendOutput(msg.output)
		m.prompting = true
		m.input.Prompt = msg.label
		m.input.Placeholder = ""
		return m, nil

	case doneMsg:
		m.appendOutput(msg.output)
		m.busy = false
		m.prompting = false
		m.input.Prompt = "> "
		m.setContacts(msg.contacts)
		if m.quitting || errors.Is(msg.err, shell.ErrQuit) {
			return m.quit()
		}
		return m, nil

	case tea.KeyMsg:
		if m.quitting {
			return m, nil
		}
		if m.menu.active {
			return m.updateMenu(msg)
		}

		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			return m.quit()
		case tea.KeyPgUp:
			m.viewport.HalfViewUp()
			return m, nil
		case tea.KeyPgDown:
			m.viewport.HalfViewDown()
			return m, nil
		case tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			return m.submit()
		}

		if msg.String() == "/" && m.input.Value() == "" && !m.busy {
			m.menu.Open()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.menu, cmd = m.menu.Update(msg)
	if picked := m.menu.Picked(); picked != "" {
		m.input.SetValue(picked + " ")
		m.input.CursorEnd()
	}
	return m, cmd
}

// submit hands the input line to the running command, or starts a new one.
func (m Model) submit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	m.input.Reset()

	if m.prompting {
		m.appendOutput(m.theme.Prompt.Render(m.input.Prompt) + line + "\n")
		m.prompting = false
		m.sess.answers <- line
		return m, m.waitForEvent()
	}
	if m.busy || strings.TrimSpace(line) == "" {
		return m, nil
	}

	m.appendOutput(m.theme.Prompt.Render("> ") + line + "\n")
	m.busy = true
	sess := m.sess
	go func() {
		err := sess.d.Execute(line, sess)
		sess.events <- doneMsg{output: sess.flush(), err: err, contacts: sess.d.Store().Contacts()}
	}()
	return m, m.waitForEvent()
}

func (m Model) waitForEvent() tea.Cmd {
	events := m.sess.events
	return func() tea.Msg {
		return <-events
	}
}

// quit stops the program once no command is in flight. A command waiting
// at a prompt is told to stop; its doneMsg ends the program so that the
// store is never closed under a running save.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.quitting {
		m.quitting = true
		close(m.sess.answers)
	}
	if !m.busy {
		return m, tea.Quit
	}
	if m.prompting {
		// The event reader returned with the prompt; start another one.
		m.prompting = false
		return m, m.waitForEvent()
	}
	return m, nil
}

func (m *Model) setContacts(contacts []contact.Contact) {
	m.contacts = contacts
	rows := make([]table.Row, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, table.Row{strconv.Itoa(c.ID), c.Name, c.Number})
	}
	m.table.SetRows(rows)
}

func (m *Model) appendOutput(s string) {
	if s == "" {
		return
	}
	m.output += s
	m.viewport.SetContent(m.output)
	m.viewport.GotoBottom()
}

func (m *Model) resize() {
	m.viewport.Width = m.width - 4
	h := m.height - headerH - tableH - 2 - inputH - statusH
	if m.menu.active {
		h -= menuH
	}
	m.viewport.Height = max(h, 3)
	m.input.Width = m.width - 6
	m.menu.SetWidth(m.width)
}

func (m Model) View() string {
	if m.quitting {
		if m.busy {
			return m.theme.Help.Render("Finishing the running command...")
		}
		return ""
	}

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.Banner.Render("PHONE BOOK"),
		m.theme.Help.Render(fmt.Sprintf("  %s · %d contacts", m.location, len(m.contacts))),
	)

	var b strings.Builder
	b.WriteString(header + "\n\n")
	b.WriteString(m.theme.Border.Render(m.table.View()) + "\n")
	b.WriteString(m.viewport.View() + "\n")
	if m.menu.active {
		b.WriteString(m.menu.View() + "\n")
	}
	b.WriteString(m.theme.Border.Render(m.input.View()) + "\n")

	status := "enter run · / commands · ↑/↓ rows · pgup/pgdn scroll · esc quit"
	if m.busy {
		status = "answer the prompt · esc quit"
	}
	b.WriteString(m.theme.StatusBar.Render(status))
	return b.String()
}
