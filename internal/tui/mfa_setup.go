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

// mfaSetupModel walks a first login through authenticator enrollment: fetch
// provisioning material, show it, confirm the first code.
type mfaSetupModel struct {
	client *api.Client

	enrollment *api.MFAEnrollment
	code       textinput.Model
	loading    bool
	submitting bool
	errText    string
}

func newMFASetupModel(client *api.Client) mfaSetupModel {
	code := textinput.New()
	code.Placeholder = "123456"
	code.CharLimit = 6
	return mfaSetupModel{client: client, code: code}
}

func (m mfaSetupModel) reset() mfaSetupModel {
	m.enrollment = nil
	m.code.SetValue("")
	m.loading = false
	m.submitting = false
	m.errText = ""
	return m
}

func (m mfaSetupModel) Init() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		enrollment, err := m.client.MFASetup(ctx)
		return mfaSetupMsg{enrollment: enrollment, err: err}
	}
}

func (m mfaSetupModel) confirm() tea.Cmd {
	code := strings.TrimSpace(m.code.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return mfaConfirmedMsg{err: m.client.MFAConfirm(ctx, code)}
	}
}

func (m mfaSetupModel) Update(msg tea.Msg) (mfaSetupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case mfaSetupMsg:
		m.loading = false
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Could not start enrollment.")
			return m, nil
		}
		m.enrollment = msg.enrollment
		m.code.Focus()
		return m, textinput.Blink

	case mfaConfirmedMsg:
		m.submitting = false
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Verification failed. Try the next code.")
			m.code.SetValue("")
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "enter" && m.enrollment != nil {
			if m.submitting {
				return m, nil
			}
			if !validation.IsMFACode(strings.TrimSpace(m.code.Value())) {
				m.errText = "Enter the 6-digit code from your authenticator"
				return m, nil
			}
			m.submitting = true
			m.errText = ""
			return m, m.confirm()
		}
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return m, cmd
}

func (m mfaSetupModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Set Up Two-Factor Authentication"))
	b.WriteString("\n")

	if m.enrollment == nil {
		if m.errText != "" {
			b.WriteString(errorStyle.Render(m.errText))
		} else {
			b.WriteString(helpStyle.Render("Preparing enrollment..."))
		}
		return boxStyle.Render(b.String())
	}

	b.WriteString(valueStyle.Render("Add this account to your authenticator app:") + "\n\n")
	b.WriteString(labelStyle.Render("Provisioning URL") + valueStyle.Render(m.enrollment.QRCode) + "\n")
	b.WriteString(labelStyle.Render("Manual entry") + valueStyle.Render(m.enrollment.ManualEntry) + "\n\n")
	b.WriteString(warningStyle.Render("Store these backup codes somewhere safe:") + "\n")
	b.WriteString(valueStyle.Render(strings.Join(m.enrollment.BackupCodes, "  ")) + "\n\n")
	b.WriteString(labelStyle.Render("First code") + m.code.View() + "\n")
	if m.submitting {
		b.WriteString("\n" + helpStyle.Render("Confirming..."))
	}
	if m.errText != "" {
		b.WriteString("\n" + errorStyle.Render(m.errText))
	}
	b.WriteString("\n\n" + helpStyle.Render("enter confirm"))
	return boxStyle.Render(b.String())
}
