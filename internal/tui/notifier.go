package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// sender is the slice of *tea.Program the notifier needs.
type sender interface {
	Send(tea.Msg)
}

// Notifier bridges session manager notifications into the event loop as
// toasts. It satisfies session.Notifier. The session manager is built before
// the program exists, so the notifier starts detached and drops messages
// until Attach is called.
type Notifier struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

// NewNotifier builds a detached notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Attach connects the notifier to a running program.
func (n *Notifier) Attach(p sender) {
	n.mu.Lock()
	n.send = p.Send
	n.mu.Unlock()
}

func (n *Notifier) deliver(msg tea.Msg) {
	n.mu.Lock()
	send := n.send
	n.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

func (n *Notifier) Error(message string) {
	n.deliver(toastMsg{kind: toastError, text: message})
}

func (n *Notifier) Info(message string) {
	n.deliver(toastMsg{kind: toastInfo, text: message})
}
