package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"propadmin/internal/api"
	"propadmin/internal/session"
)

// Run starts the console UI and blocks until it exits. The notifier, when
// given, is attached so session toasts reach the screen; it must be the same
// one the session manager was built with.
func Run(client *api.Client, manager *session.Manager, notifier *Notifier) error {
	app := NewApp(client, manager)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if notifier != nil {
		notifier.Attach(p)
	}
	// Session transitions can originate inside Update (login, logout), so
	// forwarding must not re-enter the event loop synchronously.
	manager.OnChange(func(snapshot session.Snapshot) {
		go p.Send(sessionChangedMsg{snapshot: snapshot})
	})

	_, err := p.Run()
	return err
}
