package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	"propadmin/internal/validation"
	dErrors "propadmin/pkg/domain-errors"
)

// changePasswordModel is the forced (and voluntary) password change page.
// Policy checks run locally before anything hits the server.
type changePasswordModel struct {
	client *api.Client

	current textinput.Model
	next    textinput.Model
	confirm textinput.Model
	focused int

	submitting bool
	errText    string
}

func newChangePasswordModel(client *api.Client) changePasswordModel {
	mk := func(placeholder string) textinput.Model {
		ti := textinput.New()
		ti.Placeholder = placeholder
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
		ti.CharLimit = 128
		return ti
	}
	return changePasswordModel{
		client:  client,
		current: mk("current password"),
		next:    mk("new password"),
		confirm: mk("repeat new password"),
	}
}

func (m changePasswordModel) reset() changePasswordModel {
	m.current.SetValue("")
	m.next.SetValue("")
	m.confirm.SetValue("")
	m.focused = 0
	m.submitting = false
	m.errText = ""
	return m
}

func (m *changePasswordModel) focusCmd() tea.Cmd {
	m.current.Focus()
	m.next.Blur()
	m.confirm.Blur()
	m.focused = 0
	return textinput.Blink
}

func (m *changePasswordModel) fields() []*textinput.Model {
	return []*textinput.Model{&m.current, &m.next, &m.confirm}
}

func (m changePasswordModel) submit() tea.Cmd {
	current, next := m.current.Value(), m.next.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return passwordChangedMsg{err: m.client.ChangePassword(ctx, current, next)}
	}
}

func (m changePasswordModel) Update(msg tea.Msg) (changePasswordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case passwordChangedMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Password change failed.")
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return m.cycleFocus(1)
		case "shift+tab", "up":
			return m.cycleFocus(-1)
		case "enter":
			if m.submitting {
				return m, nil
			}
			if m.current.Value() == "" {
				m.errText = "Current password is required"
				return m, nil
			}
			if err := validation.CheckNewPassword(m.next.Value(), m.confirm.Value()); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.submitting = true
			m.errText = ""
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	field := m.fields()[m.focused]
	*field, cmd = field.Update(msg)
	return m, cmd
}

func (m changePasswordModel) cycleFocus(dir int) (changePasswordModel, tea.Cmd) {
	fields := m.fields()
	m.focused = (m.focused + dir + len(fields)) % len(fields)
	for i, f := range fields {
		if i == m.focused {
			f.Focus()
		} else {
			f.Blur()
		}
	}
	return m, textinput.Blink
}

func (m changePasswordModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Change Password"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Current") + m.current.View() + "\n")
	b.WriteString(labelStyle.Render("New") + m.next.View() + "\n")
	b.WriteString(labelStyle.Render("Repeat") + m.confirm.View() + "\n")

	if pw := m.next.Value(); pw != "" {
		b.WriteString(labelStyle.Render("Strength") + strengthLine(pw) + "\n")
	}
	if m.submitting {
		b.WriteString("\n" + helpStyle.Render("Updating..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString("\n\n" + helpStyle.Render("enter submit · tab switch field · 12+ chars, 3 of 4 character classes"))
	return boxStyle.Render(b.String())
}

func strengthLine(password string) string {
	switch validation.PasswordStrength(password) {
	case validation.StrengthStrong:
		return successStyle.Render("strong")
	case validation.StrengthMedium:
		return warningStyle.Render("medium")
	case validation.StrengthWeak:
		return errorStyle.Render("weak")
	default:
		return errorStyle.Render("too short")
	}
}
