package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// leadsModel is the read-mostly lead monitoring table.
type leadsModel struct {
	client *api.Client

	rows    []api.Lead
	cursor  int
	errText string
	info    string

	width  int
	height int
}

type leadsLoadedMsg struct {
	leads []api.Lead
	err   error
}

type leadsExportedMsg struct {
	name string
	err  error
}

func newLeadsModel(client *api.Client) leadsModel {
	return leadsModel{client: client}
}

func (m leadsModel) Init() tea.Cmd {
	return m.fetch
}

func (m leadsModel) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	leads, err := m.client.ListLeads(ctx, nil)
	return leadsLoadedMsg{leads: leads, err: err}
}

func (m leadsModel) export(format string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		data, err := m.client.ExportLeads(ctx, format)
		if err != nil {
			return leadsExportedMsg{err: err}
		}
		name := "leads-" + time.Now().Format("20060102-150405") + "." + format
		if err := os.WriteFile(name, data, 0o644); err != nil {
			return leadsExportedMsg{err: err}
		}
		return leadsExportedMsg{name: name}
	}
}

func (m leadsModel) Update(msg tea.Msg) (leadsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case leadsLoadedMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Failed to load leads")
			return m, nil
		}
		m.errText = ""
		m.rows = msg.leads
		m.cursor = clampCursor(m.cursor, len(m.rows))
		return m, nil

	case leadsExportedMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Export failed")
			return m, nil
		}
		m.errText = ""
		m.info = "exported " + msg.name
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		case "down", "j":
			m.cursor = clampCursor(m.cursor+1, len(m.rows))
		case "r":
			return m, m.fetch
		case "e":
			return m, m.export("csv")
		case "E":
			return m, m.export("excel")
		}
	}
	return m, nil
}

func (m *leadsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m leadsModel) View() string {
	out := titleStyle.Render("Leads") + "\n"
	if m.errText != "" {
		out += errorStyle.Render(m.errText) + "\n"
	}
	if m.info != "" {
		out += successStyle.Render(m.info) + "\n"
	}

	rows := make([][]string, 0, len(m.rows))
	for _, l := range m.rows {
		rows = append(rows, []string{l.ClientName, l.Phone, l.Status, l.CreatedAt.Format("2006-01-02 15:04")})
	}
	out += renderTable(
		[]string{"Client", "Phone", "Status", "Created"},
		[]int{24, 16, 12, 18},
		rows, m.cursor,
	)
	out += "\n" + helpStyle.Render("e export csv · E export excel · r refresh")
	return out
}
