package api

import (
	"context"
	"encoding/json"
	"net/http"

	dErrors "propadmin/pkg/domain-errors"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Admin              *Admin `json:"admin"`
	RequiresMFA        bool   `json:"requiresMfa"`
	RequiresMFASetup   bool   `json:"requiresMfaSetup"`
	MustChangePassword bool   `json:"mustChangePassword"`
}

// Login submits primary credentials and returns the tagged outcome.
// Callers must not commit the session for OutcomeMFARequired or
// OutcomeMFASetupRequired; those represent a partial server-side session.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/api/admin/login", nil,
		loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}

	// requiresMfa wins over requiresMfaSetup, matching the server's own
	// precedence for accounts in both states.
	switch {
	case resp.RequiresMFA:
		return &LoginResult{Outcome: OutcomeMFARequired}, nil
	case resp.RequiresMFASetup:
		return &LoginResult{Outcome: OutcomeMFASetupRequired}, nil
	}

	if resp.Admin == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "login response missing admin profile")
	}
	return &LoginResult{
		Outcome:            OutcomeAuthenticated,
		Admin:              resp.Admin,
		MustChangePassword: resp.MustChangePassword,
	}, nil
}

// Profile fetches the authenticated admin's profile. A 401 here means the
// session cookie is missing or stale.
func (c *Client) Profile(ctx context.Context) (*Admin, error) {
	data, err := c.doRaw(ctx, http.MethodGet, "/api/admin/profile", nil, nil)
	if err != nil {
		return nil, err
	}

	// The server wraps the profile in {"admin": ...}; tolerate the bare
	// object too, like the SPA client did.
	var wrapped struct {
		Admin *Admin `json:"admin"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Admin != nil {
		return wrapped.Admin, nil
	}
	var direct Admin
	if err := json.Unmarshal(data, &direct); err != nil || direct.ID == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "profile response missing admin")
	}
	return &direct, nil
}

// CheckAuth probes /api/admin/profile as the "am I logged in" check.
// It never returns an error: any failure, including a well-formed
// unauthenticated response, reads as "not authenticated".
func (c *Client) CheckAuth(ctx context.Context) (*Admin, bool) {
	admin, err := c.Profile(ctx)
	if err != nil {
		return nil, false
	}
	return admin, true
}

// Logout tells the server to drop the session. The response body is
// ignored; the caller clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/admin/logout", nil, struct{}{}, nil)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword submits a password change. The caller is expected to force
// a logout afterward so the admin re-authenticates with the new password.
func (c *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/change-password", nil,
		changePasswordRequest{CurrentPassword: currentPassword, NewPassword: newPassword}, nil)
}
