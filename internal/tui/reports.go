package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// reportsModel shows moderation reports, split between property and message
// targets. Resolving opens an inline action prompt.
type reportsModel struct {
	client *api.Client

	rows    []api.Report
	pane    int // 0 property reports, 1 message reports
	cursor  int
	errText string
	info    string

	prompting bool
	action    textinput.Model

	width  int
	height int
}

type reportsLoadedMsg struct {
	reports []api.Report
	err     error
}

type reportActionMsg struct {
	err  error
	info string
}

func newReportsModel(client *api.Client) reportsModel {
	action := textinput.New()
	action.Placeholder = "dismissed | removed | warned"
	action.CharLimit = 40
	return reportsModel{client: client, action: action}
}

func (m reportsModel) Init() tea.Cmd {
	return m.fetch()
}

func (m reportsModel) fetch() tea.Cmd {
	pane := m.pane
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		var (
			reports []api.Report
			err     error
		)
		if pane == 0 {
			reports, err = m.client.ListPropertyReports(ctx, nil)
		} else {
			reports, err = m.client.ListMessageReports(ctx, nil)
		}
		return reportsLoadedMsg{reports: reports, err: err}
	}
}

func (m reportsModel) Update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsLoadedMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Failed to load reports")
			return m, nil
		}
		m.errText = ""
		m.rows = msg.reports
		m.cursor = clampCursor(m.cursor, len(m.rows))
		return m, nil

	case reportActionMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Action failed")
			return m, nil
		}
		m.errText = ""
		m.info = msg.info
		return m, m.fetch()

	case tea.KeyMsg:
		if m.prompting {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "up", "k":
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		case "down", "j":
			m.cursor = clampCursor(m.cursor+1, len(m.rows))
		case "left", "right", "h", "l":
			m.pane = 1 - m.pane
			m.cursor = 0
			return m, m.fetch()
		case "r":
			return m, m.fetch()
		case "enter":
			if len(m.rows) > 0 {
				m.prompting = true
				m.action.SetValue("")
				m.action.Focus()
				return m, textinput.Blink
			}
		}
	}
	return m, nil
}

func (m reportsModel) updatePrompt(msg tea.KeyMsg) (reportsModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.prompting = false
		return m, nil
	case "enter":
		action := strings.TrimSpace(m.action.Value())
		if action == "" {
			m.errText = "A resolve action is required"
			return m, nil
		}
		id := m.rows[m.cursor].ID
		m.prompting = false
		m.errText = ""
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := m.client.ResolveReport(ctx, id, action, ""); err != nil {
				return reportActionMsg{err: err}
			}
			return reportActionMsg{info: "report resolved"}
		}
	}
	var cmd tea.Cmd
	m.action, cmd = m.action.Update(msg)
	return m, cmd
}

func (m *reportsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m reportsModel) View() string {
	pane := "Property Reports"
	if m.pane == 1 {
		pane = "Message Reports"
	}
	out := titleStyle.Render(pane) + "\n"
	if m.errText != "" {
		out += errorStyle.Render(m.errText) + "\n"
	}
	if m.info != "" {
		out += successStyle.Render(m.info) + "\n"
	}

	rows := make([][]string, 0, len(m.rows))
	for _, rep := range m.rows {
		rows = append(rows, []string{rep.Reason, rep.ReportedBy, rep.Status, rep.CreatedAt.Format("2006-01-02")})
	}
	out += renderTable(
		[]string{"Reason", "Reported by", "Status", "Filed"},
		[]int{30, 24, 16, 12},
		rows, m.cursor,
	)

	if m.prompting {
		out += "\n" + labelStyle.Render("Action") + m.action.View() +
			"\n" + helpStyle.Render("enter resolve · esc cancel")
	} else {
		out += "\n" + helpStyle.Render("←/→ switch pane · enter resolve · r refresh")
	}
	return out
}
