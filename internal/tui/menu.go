package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeanpaul/phonebook/internal/theme"
)

const menuH = 16

type item struct {
	title, desc string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

// MenuModel is the command picker opened with '/'.
type MenuModel struct {
	list   list.Model
	active bool
	picked string
	border lipgloss.Style
}

func NewMenuModel(th theme.Theme) MenuModel {
	items := []list.Item{
		item{title: "add", desc: "Create a contact"},
		item{title: "list", desc: "Show every contact"},
		item{title: "find", desc: "Search names and numbers"},
		item{title: "delete", desc: "Remove a contact by id"},
		item{title: "update", desc: "Edit a contact by id"},
		item{title: "export", desc: "Write contacts to .csv, .xlsx or .json"},
		item{title: "import", desc: "Add contacts from matching files"},
		item{title: "help", desc: "Show the command reference"},
		item{title: "exit", desc: "Leave the phone book"},
	}

	d := list.NewDefaultDelegate()
	d.Styles.SelectedTitle = th.Header.Border(lipgloss.NormalBorder(), false, false, false, true).PaddingLeft(1)
	d.Styles.SelectedDesc = d.Styles.SelectedTitle.Bold(false)

	l := list.New(items, d, 40, menuH-2)
	l.Title = "Commands"
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = th.Header.MarginLeft(2)

	return MenuModel{list: l, border: th.Border}
}

// Open shows the menu with the first entry selected.
func (m *MenuModel) Open() {
	m.active = true
	m.picked = ""
	m.list.ResetSelected()
	m.list.ResetFilter()
}

// Picked returns the command chosen by the last update, if any.
func (m MenuModel) Picked() string { return m.picked }

func (m *MenuModel) SetWidth(w int) {
	m.list.SetWidth(min(w-4, 60))
}

func (m MenuModel) Update(msg tea.Msg) (MenuModel, tea.Cmd) {
	m.picked = ""
	if !m.active {
		return m, nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "esc":
			m.active = false
			return m, nil
		case "enter":
			if it, ok := m.list.SelectedItem().(item); ok {
				m.picked = it.title
			}
			m.active = false
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m MenuModel) View() string {
	if !m.active {
		return ""
	}
	return m.border.Render(m.list.View())
}
