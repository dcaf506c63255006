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

// mfaVerifyModel collects the 6-digit code after a password login on an
// MFA-enabled account.
type mfaVerifyModel struct {
	client *api.Client

	code       textinput.Model
	submitting bool
	errText    string
}

func newMFAVerifyModel(client *api.Client) mfaVerifyModel {
	code := textinput.New()
	code.Placeholder = "123456"
	code.CharLimit = 8 // leave room for backup codes
	return mfaVerifyModel{client: client, code: code}
}

func (m mfaVerifyModel) reset() mfaVerifyModel {
	m.code.SetValue("")
	m.submitting = false
	m.errText = ""
	return m
}

func (m *mfaVerifyModel) focusCmd() tea.Cmd {
	m.code.Focus()
	return textinput.Blink
}

func (m mfaVerifyModel) submit() tea.Cmd {
	code := strings.TrimSpace(m.code.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		admin, err := m.client.MFAVerify(ctx, code)
		return mfaVerifyMsg{admin: admin, err: err}
	}
}

func (m mfaVerifyModel) Update(msg tea.Msg) (mfaVerifyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case mfaVerifyMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Invalid code. Please try again.")
			m.code.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" {
			if m.submitting {
				return m, nil
			}
			code := strings.TrimSpace(m.code.Value())
			// Backup codes are 8 characters; authenticator codes 6 digits.
			if !validation.IsMFACode(code) && len(code) != 8 {
				m.errText = "Enter the 6-digit code from your authenticator"
				return m, nil
			}
			m.submitting = true
			m.errText = ""
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return m, cmd
}

func (m mfaVerifyModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Two-Factor Verification"))
	b.WriteString("\n")
	b.WriteString(valueStyle.Render("Enter the code from your authenticator app.") + "\n\n")
	b.WriteString(labelStyle.Render("Code") + m.code.View() + "\n")
	if m.submitting {
		b.WriteString("\n" + helpStyle.Render("Verifying..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString("\n\n" + helpStyle.Render("enter verify · a backup code also works"))
	return boxStyle.Render(b.String())
}
