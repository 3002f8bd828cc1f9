package runner

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	promptTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BE9FD"))
	promptSelected = lipgloss.NewStyle().Background(lipgloss.Color("#44475A")).Foreground(lipgloss.Color("#F8F8F2"))
	promptDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#6272A4"))
)

// Picker is a minimal bubbletea arrow-key single-select list, replacing
// the original's dialoguer::Select for the no-subcommand interactive
// path (choose a benchmark, then a job Kind to run against it).
type Picker struct {
	label    string
	options  []string
	cursor   int
	chosen   string
	canceled bool
}

// NewPicker builds a Picker over options, labeled for display.
func NewPicker(label string, options []string) *Picker {
	return &Picker{label: label, options: options}
}

func (p *Picker) Init() tea.Cmd { return nil }

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch keyMsg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
	case "enter":
		if len(p.options) > 0 {
			p.chosen = p.options[p.cursor]
		}
		return p, tea.Quit
	case "ctrl+c", "esc", "q":
		p.canceled = true
		return p, tea.Quit
	}
	return p, nil
}

func (p *Picker) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", promptTitle.Render(p.label))
	for i, opt := range p.options {
		if i == p.cursor {
			fmt.Fprintf(&b, "%s\n", promptSelected.Render("> "+opt))
		} else {
			fmt.Fprintf(&b, "  %s\n", opt)
		}
	}
	fmt.Fprintf(&b, "\n%s\n", promptDim.Render("↑/↓ to move, enter to select, q to cancel"))
	return b.String()
}

// Choose runs the picker to completion and returns the chosen option,
// or ok=false if the user canceled or there was nothing to choose from.
func Choose(label string, options []string) (choice string, ok bool) {
	if len(options) == 0 {
		return "", false
	}
	p := NewPicker(label, options)
	final, err := tea.NewProgram(p).Run()
	if err != nil {
		return "", false
	}
	result := final.(*Picker)
	if result.canceled || result.chosen == "" {
		return "", false
	}
	return result.chosen, true
}
