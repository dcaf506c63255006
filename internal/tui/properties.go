package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// propertiesModel is the listing moderation table. Disapproval opens an
// inline reason prompt; everything else is a single keypress.
type propertiesModel struct {
	client *api.Client

	rows    []api.Property
	cursor  int
	errText string
	info    string

	promptingReason bool
	reason          textinput.Model

	width  int
	height int
}

type propertiesLoadedMsg struct {
	properties []api.Property
	err        error
}

type propertyActionMsg struct {
	err  error
	info string
}

func newPropertiesModel(client *api.Client) propertiesModel {
	reason := textinput.New()
	reason.Placeholder = "reason shown to the owner"
	reason.CharLimit = 200
	return propertiesModel{client: client, reason: reason}
}

func (m propertiesModel) Init() tea.Cmd {
	return m.fetch
}

func (m propertiesModel) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	properties, err := m.client.ListProperties(ctx, nil)
	return propertiesLoadedMsg{properties: properties, err: err}
}

func (m propertiesModel) action(info string, fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			return propertyActionMsg{err: err}
		}
		return propertyActionMsg{info: info}
	}
}

func (m propertiesModel) Update(msg tea.Msg) (propertiesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case propertiesLoadedMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Failed to load properties")
			return m, nil
		}
		m.errText = ""
		m.rows = msg.properties
		m.cursor = clampCursor(m.cursor, len(m.rows))
		return m, nil

	case propertyActionMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Action failed")
			return m, nil
		}
		m.errText = ""
		m.info = msg.info
		return m, m.fetch

	case tea.KeyMsg:
		if m.promptingReason {
			return m.updateReasonPrompt(msg)
		}
		switch msg.String() {
		case "up", "k":
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		case "down", "j":
			m.cursor = clampCursor(m.cursor+1, len(m.rows))
		case "r":
			return m, m.fetch
		case "a":
			if p := m.selected(); p != nil {
				return m, m.action("listing approved", func(ctx context.Context) error {
					return m.client.ApproveProperty(ctx, p.ID)
				})
			}
		case "d":
			if m.selected() != nil {
				m.promptingReason = true
				m.reason.SetValue("")
				m.reason.Focus()
				return m, textinput.Blink
			}
		case "x":
			if p := m.selected(); p != nil {
				return m, m.action("listing deleted", func(ctx context.Context) error {
					return m.client.DeleteProperty(ctx, p.ID)
				})
			}
		}
	}
	return m, nil
}

func (m propertiesModel) updateReasonPrompt(msg tea.KeyMsg) (propertiesModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.promptingReason = false
		return m, nil
	case "enter":
		reason := strings.TrimSpace(m.reason.Value())
		if reason == "" {
			m.errText = "A disapproval reason is required"
			return m, nil
		}
		p := m.selected()
		m.promptingReason = false
		m.errText = ""
		return m, m.action("listing disapproved", func(ctx context.Context) error {
			return m.client.DisapproveProperty(ctx, p.ID, reason)
		})
	}
	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

func (m *propertiesModel) selected() *api.Property {
	if len(m.rows) == 0 {
		return nil
	}
	return &m.rows[m.cursor]
}

func (m *propertiesModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m propertiesModel) View() string {
	out := titleStyle.Render("Properties") + "\n"
	if m.errText != "" {
		out += errorStyle.Render(m.errText) + "\n"
	}
	if m.info != "" {
		out += successStyle.Render(m.info) + "\n"
	}

	rows := make([][]string, 0, len(m.rows))
	for _, p := range m.rows {
		rows = append(rows, []string{
			p.Title, p.City, fmt.Sprintf("%.0f", p.Price), p.Status,
		})
	}
	out += renderTable(
		[]string{"Title", "City", "Price", "Status"},
		[]int{32, 14, 12, 14},
		rows, m.cursor,
	)

	if m.promptingReason {
		out += "\n" + labelStyle.Render("Reason") + m.reason.View() +
			"\n" + helpStyle.Render("enter disapprove · esc cancel")
	} else {
		out += "\n" + helpStyle.Render("a approve · d disapprove · x delete · r refresh")
	}
	return out
}
