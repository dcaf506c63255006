package tui

import (
	"context"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// usersModel is the user management table: browse, block/unblock, export.
type usersModel struct {
	client *api.Client

	rows    []api.UserSummary
	cursor  int
	errText string
	info    string

	width  int
	height int
}

type usersLoadedMsg struct {
	users []api.UserSummary
	err   error
}

type userActionMsg struct {
	err  error
	info string
}

func newUsersModel(client *api.Client) usersModel {
	return usersModel{client: client}
}

func (m usersModel) Init() tea.Cmd {
	return m.fetch
}

func (m usersModel) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	users, err := m.client.ListUsers(ctx, nil)
	return usersLoadedMsg{users: users, err: err}
}

func (m usersModel) toggleBlock(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := m.client.ToggleUserBlock(ctx, id); err != nil {
			return userActionMsg{err: err}
		}
		return userActionMsg{info: "user updated"}
	}
}

func (m usersModel) exportCSV() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	data, err := m.client.ExportUsersCSV(ctx)
	if err != nil {
		return userActionMsg{err: err}
	}
	name := "users-" + time.Now().Format("20060102-150405") + ".csv"
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return userActionMsg{err: err}
	}
	return userActionMsg{info: "exported " + name}
}

func (m usersModel) Update(msg tea.Msg) (usersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Failed to load users")
			return m, nil
		}
		m.errText = ""
		m.rows = msg.users
		m.cursor = clampCursor(m.cursor, len(m.rows))
		return m, nil

	case userActionMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Action failed")
			return m, nil
		}
		m.errText = ""
		m.info = msg.info
		return m, m.fetch

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			m.cursor = clampCursor(m.cursor-1, len(m.rows))
		case "down", "j":
			m.cursor = clampCursor(m.cursor+1, len(m.rows))
		case "r":
			return m, m.fetch
		case "b":
			if len(m.rows) > 0 {
				return m, m.toggleBlock(m.rows[m.cursor].ID)
			}
		case "e":
			return m, m.exportCSV
		}
	}
	return m, nil
}

func (m *usersModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m usersModel) View() string {
	out := titleStyle.Render("Users") + "\n"
	if m.errText != "" {
		out += errorStyle.Render(m.errText) + "\n"
	}
	if m.info != "" {
		out += successStyle.Render(m.info) + "\n"
	}

	rows := make([][]string, 0, len(m.rows))
	for _, u := range m.rows {
		blocked := ""
		if u.Blocked {
			blocked = "blocked"
		}
		rows = append(rows, []string{u.Name, u.Email, u.UserType, blocked})
	}
	out += renderTable(
		[]string{"Name", "Email", "Type", "Status"},
		[]int{24, 30, 10, 8},
		rows, m.cursor,
	)
	out += "\n" + helpStyle.Render("b block/unblock · e export csv · r refresh")
	return out
}
