// Package prompt 提供组织选择：终端下的多选列表和命令行参数驱动的静态选择。
package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrAborted 表示用户取消了选择。
var ErrAborted = errors.New("selection aborted")

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// MultiSelect 在终端中显示一个多选列表。
type MultiSelect struct {
	Title string
	In    io.Reader
	Out   io.Writer
}

func (s MultiSelect) PromptSelection(choices []string) ([]string, error) {
	if len(choices) == 0 {
		return nil, nil
	}

	opts := make([]tea.ProgramOption, 0, 2)
	if s.In != nil {
		opts = append(opts, tea.WithInput(s.In))
	}
	if s.Out != nil {
		opts = append(opts, tea.WithOutput(s.Out))
	}

	final, err := tea.NewProgram(newSelectModel(s.Title, choices), opts...).Run()
	if err != nil {
		return nil, fmt.Errorf("run selection prompt: %w", err)
	}

	m, ok := final.(selectModel)
	if !ok {
		return nil, fmt.Errorf("unexpected prompt model %T", final)
	}
	if m.aborted {
		return nil, ErrAborted
	}
	return m.Selected(), nil
}

type selectModel struct {
	title    string
	choices  []string
	cursor   int
	selected map[int]struct{}
	done     bool
	aborted  bool
}

func newSelectModel(title string, choices []string) selectModel {
	if title == "" {
		title = "Select organizations to clone"
	}
	return selectModel{
		title:    title,
		choices:  choices,
		selected: make(map[int]struct{}),
	}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.aborted = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}

	case " ", "x":
		m.toggle(m.cursor)

	case "a":
		m.toggleAll()

	case "enter":
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

func (m selectModel) toggle(i int) {
	if _, ok := m.selected[i]; ok {
		delete(m.selected, i)
		return
	}
	m.selected[i] = struct{}{}
}

// toggleAll 全部已选时清空，否则全选。
func (m selectModel) toggleAll() {
	if len(m.selected) == len(m.choices) {
		clear(m.selected)
		return
	}
	for i := range m.choices {
		m.selected[i] = struct{}{}
	}
}

// Selected 按候选项顺序返回已选条目。
func (m selectModel) Selected() []string {
	out := make([]string, 0, len(m.selected))
	for i, c := range m.choices {
		if _, ok := m.selected[i]; ok {
			out = append(out, c)
		}
	}
	return out
}

func (m selectModel) View() string {
	if m.done || m.aborted {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for i, choice := range m.choices {
		cursor := " "
		if i == m.cursor {
			cursor = cursorStyle.Render(">")
		}

		check := "[ ]"
		line := choice
		if _, ok := m.selected[i]; ok {
			check = "[x]"
			line = selectedStyle.Render(choice)
		}
		fmt.Fprintf(&b, "%s %s %s\n", cursor, check, line)
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space: toggle • a: all • enter: confirm • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}
