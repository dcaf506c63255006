package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// loginModel is the credential page. It validates locally, submits, and hands
// the tagged outcome to the root model for routing.
type loginModel struct {
	client *api.Client

	email    textinput.Model
	password textinput.Model
	focused  int

	submitting bool
	errText    string
}

func newLoginModel(client *api.Client) loginModel {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 254

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'
	password.CharLimit = 128

	return loginModel{client: client, email: email, password: password}
}

func (m *loginModel) focusCmd() tea.Cmd {
	m.email.Focus()
	m.password.Blur()
	m.focused = 0
	return textinput.Blink
}

func (m loginModel) submit() tea.Cmd {
	email := strings.TrimSpace(m.email.Value())
	password := m.password.Value()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		result, err := m.client.Login(ctx, email, password)
		return loginResultMsg{result: result, err: err}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = loginErrorText(msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.focused = (m.focused + 1) % 2
			if m.focused == 0 {
				m.email.Focus()
				m.password.Blur()
			} else {
				m.password.Focus()
				m.email.Blur()
			}
			return m, textinput.Blink

		case "enter":
			if m.submitting {
				return m, nil
			}
			if strings.TrimSpace(m.email.Value()) == "" || m.password.Value() == "" {
				m.errText = "Email and password are required"
				return m, nil
			}
			m.submitting = true
			m.errText = ""
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	if m.focused == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// loginErrorText renders a login failure, giving lockouts their remaining
// minutes.
func loginErrorText(err error) string {
	var lockout *api.LockoutError
	if errors.As(err, &lockout) {
		minutes := lockout.MinutesRemaining(time.Now())
		return fmt.Sprintf("Account locked. Try again in %d minute(s).", minutes)
	}
	if dErrors.HasCode(err, dErrors.CodeAccountLocked) {
		return dErrors.MessageOf(err, "Account temporarily locked.")
	}
	return dErrors.MessageOf(err, "Login failed. Please try again.")
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("PropertyDeal Admin"))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Email") + m.email.View() + "\n")
	b.WriteString(labelStyle.Render("Password") + m.password.View() + "\n")
	if m.submitting {
		b.WriteString("\n" + helpStyle.Render("Signing in..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString("\n\n" + helpStyle.Render("enter sign in · tab switch field"))
	return boxStyle.Render(b.String())
}
