package shell

import (
	"github.com/charmbracelet/glamour"
)

// Commands lists the command names in the order they are introduced.
var Commands = []string{"add", "list", "find", "delete", "update", "export", "import", "help", "exit"}

const helpMarkdown = `# Phone book commands

| Command | What it does |
|---|---|
| ` + "`add`" + ` | create a contact, asking for its name and number |
| ` + "`list`" + ` | show every contact |
| ` + "`find [text]`" + ` | show contacts whose name or number contains the text |
| ` + "`delete [id]`" + ` | remove the contact with the given id |
| ` + "`update [id]`" + ` | change the name and/or number of a contact |
| ` + "`export <file>`" + ` | write all contacts to a .csv, .xlsx or .json file |
| ` + "`import <glob>`" + ` | add contacts from matching .csv, .xlsx or .json files |
| ` + "`help`" + ` | show this help |
| ` + "`exit`" + ` | leave the phone book |

Leave a prompt empty during **update** to keep the current value.
Numbers may contain digits only.
`

// HelpText returns the command reference rendered for a terminal of the
// given width.
func HelpText(themeName string, width int) string {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if themeName == "plain" {
		opts = append(opts, glamour.WithStandardStyle("notty"))
	} else {
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return helpMarkdown
	}
	out, err := r.Render(helpMarkdown)
	if err != nil {
		return helpMarkdown
	}
	return out
}

func (d *Dispatcher) help() {
	d.printf("%s", HelpText(d.theme.Name, 80))
}
