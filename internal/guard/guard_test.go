package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"propadmin/internal/api"
	"propadmin/internal/session"
)

func snapshotFor(status session.Status, admin *api.Admin) session.Snapshot {
	return session.Snapshot{Status: status, Admin: admin}
}

func adminWith(level int, perms ...string) *api.Admin {
	return &api.Admin{
		ID:                    "1",
		Role:                  api.Role{Name: "moderator", Level: level},
		AdditionalPermissions: perms,
	}
}

func TestEvaluateWaitsWhileLoading(t *testing.T) {
	d := Evaluate(snapshotFor(session.StatusLoading, nil), "/admin/users", Requirement{})

	assert.Equal(t, ActionWait, d.Action)
	assert.Equal(t, "/admin/users", d.From)
}

func TestEvaluateRedirectsWhenUnauthenticated(t *testing.T) {
	d := Evaluate(snapshotFor(session.StatusUnauthenticated, nil), "/admin/properties", Requirement{})

	assert.Equal(t, ActionRedirectLogin, d.Action)
	assert.Equal(t, "/admin/properties", d.From)
}

func TestEvaluateAllowsAuthenticated(t *testing.T) {
	d := Evaluate(snapshotFor(session.StatusAuthenticated, adminWith(10)), "/admin", Requirement{})

	assert.Equal(t, ActionAllow, d.Action)
}

func TestEvaluateRoleLevel(t *testing.T) {
	snap := snapshotFor(session.StatusAuthenticated, adminWith(40))

	assert.Equal(t, ActionAllow, Evaluate(snap, "/admin/reports", Requirement{MinRoleLevel: 40}).Action)
	assert.Equal(t, ActionDeny, Evaluate(snap, "/admin/settings", Requirement{MinRoleLevel: 80}).Action)
}

func TestEvaluatePermission(t *testing.T) {
	req := Requirement{Permission: "exports", BypassLevel: 100}

	granted := snapshotFor(session.StatusAuthenticated, adminWith(10, "exports"))
	denied := snapshotFor(session.StatusAuthenticated, adminWith(10))
	senior := snapshotFor(session.StatusAuthenticated, adminWith(100))

	assert.Equal(t, ActionAllow, Evaluate(granted, "/admin/users", req).Action)
	assert.Equal(t, ActionDeny, Evaluate(denied, "/admin/users", req).Action)
	assert.Equal(t, ActionAllow, Evaluate(senior, "/admin/users", req).Action)
}

func TestLoadingNeverRedirects(t *testing.T) {
	// Even a route with requirements must not bounce to login while the
	// initial check is still in flight.
	d := Evaluate(snapshotFor(session.StatusLoading, nil), "/admin/users", Requirement{MinRoleLevel: 100})

	assert.Equal(t, ActionWait, d.Action)
}
