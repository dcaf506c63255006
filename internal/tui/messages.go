package tui

import (
	"propadmin/internal/api"
	"propadmin/internal/session"
)

// sessionChangedMsg is forwarded from the session manager's change listener
// into the bubbletea event loop.
type sessionChangedMsg struct {
	snapshot session.Snapshot
}

// toastKind selects the toast styling.
type toastKind int

const (
	toastError toastKind = iota
	toastInfo
	toastSuccess
)

// toastMsg shows a transient status line message.
type toastMsg struct {
	kind toastKind
	text string
}

// toastExpiredMsg clears the toast after its display window.
type toastExpiredMsg struct{ seq int }

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	result *api.LoginResult
	err    error
}

// mfaVerifyMsg carries the outcome of an MFA code verification.
type mfaVerifyMsg struct {
	admin *api.Admin
	err   error
}

// mfaSetupMsg carries freshly issued enrollment material.
type mfaSetupMsg struct {
	enrollment *api.MFAEnrollment
	err        error
}

// mfaConfirmedMsg reports the first-code confirmation result.
type mfaConfirmedMsg struct {
	err error
}

// passwordChangedMsg reports a password change attempt.
type passwordChangedMsg struct {
	err error
}

// authCheckedMsg reports that a full auth re-check settled.
type authCheckedMsg struct {
	ok bool
}

// navigateMsg asks the root model to route to a page.
type navigateMsg struct {
	target string
}
