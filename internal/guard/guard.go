// Package guard decides whether a navigation target may be entered given the
// current session state. It is the one place routing consults before showing
// a protected page.
package guard

import (
	"propadmin/internal/session"
)

// Action tells the caller what to do with a navigation attempt.
type Action int

const (
	// ActionWait means the session has not settled yet. Render a loading
	// indicator and re-evaluate once the state changes; never redirect off
	// an in-flight check.
	ActionWait Action = iota

	// ActionRedirectLogin means there is no session. Send the user to the
	// login page, remembering where they were headed.
	ActionRedirectLogin

	// ActionDeny means the session is valid but lacks the privilege the
	// target requires.
	ActionDeny

	// ActionAllow admits the navigation.
	ActionAllow
)

func (a Action) String() string {
	switch a {
	case ActionWait:
		return "wait"
	case ActionRedirectLogin:
		return "redirect_login"
	case ActionDeny:
		return "deny"
	case ActionAllow:
		return "allow"
	}
	return "unknown"
}

// Requirement describes what a route needs beyond being logged in.
type Requirement struct {
	// MinRoleLevel admits only roles at or above this level. Zero means
	// any authenticated admin.
	MinRoleLevel int

	// Permission, when set, requires the named additional permission
	// unless the role level alone already clears MinRoleLevel+BypassLevel.
	Permission string

	// BypassLevel lets sufficiently senior roles skip the Permission
	// check. Zero means no bypass.
	BypassLevel int
}

// Decision is the outcome of evaluating a navigation attempt.
type Decision struct {
	Action Action

	// From is the path the user was trying to reach. On a login redirect
	// the login page carries it along so a later successful authentication
	// can land back there.
	From string
}

// Evaluate decides what to do with a navigation to target under the given
// session snapshot.
func Evaluate(snap session.Snapshot, target string, req Requirement) Decision {
	switch snap.Status {
	case session.StatusLoading:
		return Decision{Action: ActionWait, From: target}
	case session.StatusUnauthenticated:
		return Decision{Action: ActionRedirectLogin, From: target}
	}

	if req.MinRoleLevel > 0 && snap.RoleLevel() < req.MinRoleLevel {
		return Decision{Action: ActionDeny, From: target}
	}
	if req.Permission != "" && !hasPermission(snap, req) {
		return Decision{Action: ActionDeny, From: target}
	}
	return Decision{Action: ActionAllow, From: target}
}

func hasPermission(snap session.Snapshot, req Requirement) bool {
	if req.BypassLevel > 0 && snap.RoleLevel() >= req.BypassLevel {
		return true
	}
	for _, p := range snap.Permissions() {
		if p == req.Permission {
			return true
		}
	}
	return false
}
