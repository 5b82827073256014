package ui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/noborus/ov/oviewer"
)

type helpEntry struct {
	keys string
	desc string
}

type helpSection struct {
	title   string
	entries []helpEntry
}

func helpSections(settingsKey string) []helpSection {
	return []helpSection{
		{"Navigation", []helpEntry{
			{"↑/↓, ctrl+p/n", "Move selection (wraps around)"},
			{"PgUp/PgDn", "Page up/down"},
			{"Tab", "Complete a fill or install item, otherwise move down"},
			{"Shift+Tab", "Move up"},
		}},
		{"Actions", []helpEntry{
			{"Enter", "Open the selected item"},
			{"ctrl+y", "Copy path of a file result"},
			{"ctrl+o", "Open the folder of a file result"},
			{"Esc", "Reset and hide the palette"},
		}},
		{"Modes", []helpEntry{
			{"<keyword> <args>", "Run an installed script"},
			{"install <path|url>", "Install a script"},
			{"/path, ~/path", "Browse files"},
			{"2+2*3", "Calculate, Enter copies the result"},
			{settingsKey, "Open or close settings"},
		}},
		{"Other", []helpEntry{
			{"F1", "Show this reference"},
			{"ctrl+c", "Quit"},
		}},
	}
}

// renderKeyReference renders the key reference shown in the pager
func renderKeyReference(settingsKey string) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")).
		MarginTop(1)

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")).
		Width(22)

	descStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("252"))

	var help strings.Builder
	help.WriteString(titleStyle.Render("vanta keys"))
	help.WriteString("\n")

	for _, section := range helpSections(settingsKey) {
		help.WriteString(sectionStyle.Render(section.title))
		help.WriteString("\n")
		for _, e := range section.entries {
			help.WriteString(fmt.Sprintf("  %s%s\n", keyStyle.Render(e.keys), descStyle.Render(e.desc)))
		}
	}

	return strings.TrimRight(help.String(), "\n")
}

// pagerCommand runs ov over a string. It implements tea.ExecCommand so
// bubbletea releases the terminal while the pager is open.
type pagerCommand struct {
	content string
}

func (c *pagerCommand) Run() error {
	root, err := oviewer.NewRoot(strings.NewReader(c.content))
	if err != nil {
		return err
	}

	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// ov opens the tty itself
func (c *pagerCommand) SetStdin(io.Reader)  {}
func (c *pagerCommand) SetStdout(io.Writer) {}
func (c *pagerCommand) SetStderr(io.Writer) {}

// showHelpPager opens the key reference in ov
func showHelpPager(settingsKey string) tea.Cmd {
	return tea.Exec(&pagerCommand{content: renderKeyReference(settingsKey)}, func(err error) tea.Msg {
		return helpPagerMsg{err: err}
	})
}
