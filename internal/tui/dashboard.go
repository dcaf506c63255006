package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// dashboardModel shows the headline numbers and the recent-activity feed.
type dashboardModel struct {
	client *api.Client

	stats    *api.DashboardStats
	activity []api.ActivityEntry
	errText  string

	width  int
	height int
}

type dashboardDataMsg struct {
	stats    *api.DashboardStats
	activity []api.ActivityEntry
	err      error
}

func newDashboardModel(client *api.Client) dashboardModel {
	return dashboardModel{client: client}
}

func (m dashboardModel) Init() tea.Cmd {
	return m.fetch
}

func (m dashboardModel) fetch() tea.Msg {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		stats    *api.DashboardStats
		activity []api.ActivityEntry
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = m.client.DashboardStats(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		activity, err = m.client.RecentActivity(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{stats: stats, activity: activity}
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		if msg.err != nil {
			m.errText = dErrors.MessageOf(msg.err, "Failed to load dashboard")
			return m, nil
		}
		m.errText = ""
		m.stats = msg.stats
		m.activity = msg.activity
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "r" {
			return m, m.fetch
		}
	}
	return m, nil
}

func (m *dashboardModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dashboard"))
	b.WriteString("\n")

	if m.errText != "" {
		b.WriteString(errorStyle.Render(m.errText) + "\n")
		return b.String()
	}
	if m.stats == nil {
		b.WriteString(helpStyle.Render("Loading...") + "\n")
		return b.String()
	}

	cards := []struct {
		label string
		value int
	}{
		{"Users", m.stats.TotalUsers},
		{"Properties", m.stats.TotalProperties},
		{"Pending reviews", m.stats.PendingReviews},
		{"Active leads", m.stats.ActiveLeads},
		{"Open reports", m.stats.OpenReports},
	}
	for _, card := range cards {
		b.WriteString(labelStyle.Render(card.label) + valueStyle.Render(fmt.Sprintf("%d", card.value)) + "\n")
	}

	b.WriteString("\n" + tableHeaderStyle.Render("Recent activity") + "\n")
	if len(m.activity) == 0 {
		b.WriteString(helpStyle.Render("nothing yet") + "\n")
	}
	limit := min(len(m.activity), 10)
	for _, entry := range m.activity[:limit] {
		b.WriteString(helpStyle.Render(entry.At.Format("15:04")) + " " +
			valueStyle.Render(entry.Actor+" "+entry.Action) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("r refresh"))
	return b.String()
}
