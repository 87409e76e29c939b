package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// PromptController is a single-line input dialog.
type PromptController struct {
	input textinput.Model
	title string
	hint  string
	err   string
	open  bool
}

func NewPromptController(width int) *PromptController {
	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 1024
	input.Width = max(10, width)
	return &PromptController{input: input}
}

func (p *PromptController) IsOpen() bool {
	return p != nil && p.open
}

func (p *PromptController) Open(title, hint, placeholder, value string) tea.Cmd {
	if p == nil {
		return nil
	}
	p.open = true
	p.title = strings.TrimSpace(title)
	p.hint = strings.TrimSpace(hint)
	p.err = ""
	p.input.Placeholder = placeholder
	p.input.SetValue(value)
	p.input.CursorEnd()
	return p.input.Focus()
}

func (p *PromptController) Close() {
	if p == nil {
		return
	}
	p.open = false
	p.err = ""
	p.input.Blur()
	p.input.SetValue("")
}

func (p *PromptController) SetError(message string) {
	if p == nil {
		return
	}
	p.err = strings.TrimSpace(message)
}

func (p *PromptController) SetWidth(width int) {
	if p == nil {
		return
	}
	p.input.Width = max(10, width)
}

func (p *PromptController) Value() string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(p.input.Value())
}

// Update feeds msg to the input. It reports submitted on enter and
// cancelled on esc.
func (p *PromptController) Update(msg tea.Msg) (submitted, cancelled bool, cmd tea.Cmd) {
	if p == nil || !p.open {
		return false, false, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEnter:
			return true, false, nil
		case tea.KeyEsc:
			return false, true, nil
		}
	}
	p.input, cmd = p.input.Update(msg)
	return false, false, cmd
}

func (p *PromptController) View() string {
	if p == nil || !p.open {
		return ""
	}
	lines := []string{headerStyle.Render(p.title)}
	if p.hint != "" {
		lines = append(lines, helpStyle.Render(p.hint))
	}
	lines = append(lines, p.input.View())
	if p.err != "" {
		lines = append(lines, toneErrorStyle.Render(p.err))
	}
	lines = append(lines, helpStyle.Render("enter submit • esc cancel"))
	return promptFrameStyle.Render(strings.Join(lines, "\n"))
}
