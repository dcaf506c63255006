package testbackend

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

// wireAdmin is the admin payload the console expects.
type wireAdmin struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Email                 string   `json:"email"`
	Role                  wireRole `json:"role"`
	AdditionalPermissions []string `json:"additionalPermissions,omitempty"`
	MFAEnabled            bool     `json:"mfaEnabled,omitempty"`
}

type wireRole struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Level       int    `json:"level"`
}

func toWireAdmin(a *adminAccount) wireAdmin {
	return wireAdmin{
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
		Role: wireRole{
			Name:        a.RoleName,
			DisplayName: a.RoleDisplayName,
			Level:       a.RoleLevel,
		},
		AdditionalPermissions: a.AdditionalPermissions,
		MFAEnabled:            a.MFAEnabled,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	admin := s.store.adminByEmail(req.Email)
	if admin == nil {
		s.writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}

	now := s.now()
	if admin.LockedUntil.After(now) {
		s.writeJSON(w, http.StatusLocked, map[string]any{
			"code":         "ACCOUNT_LOCKED",
			"message":      "Account temporarily locked due to repeated failures",
			"lockoutUntil": admin.LockedUntil.UTC().Format(time.RFC3339),
		})
		return
	}

	if !checkPassword(admin.PasswordHash, req.Password) {
		admin.FailedLogins++
		if admin.FailedLogins >= maxLoginFailures {
			admin.LockedUntil = now.Add(lockoutDuration)
			admin.FailedLogins = 0
			s.writeJSON(w, http.StatusLocked, map[string]any{
				"code":         "ACCOUNT_LOCKED",
				"message":      "Account temporarily locked due to repeated failures",
				"lockoutUntil": admin.LockedUntil.UTC().Format(time.RFC3339),
			})
			return
		}
		s.writeError(w, http.StatusBadRequest, "Invalid email or password")
		return
	}
	admin.FailedLogins = 0
	admin.LockedUntil = time.Time{}

	// Credentials are good. MFA state decides how far the session goes:
	// enabled accounts get a partial session pending a code, accounts under
	// the MFA policy but not yet enrolled must set up first.
	switch {
	case admin.MFAEnabled:
		if err := s.issueSession(w, admin.ID, scopePartial); err != nil {
			s.writeError(w, http.StatusInternalServerError, "session issue failed")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"requiresMfa": true})
		return

	case admin.MFARequired:
		if err := s.issueSession(w, admin.ID, scopePartial); err != nil {
			s.writeError(w, http.StatusInternalServerError, "session issue failed")
			return
		}
		s.writeJSON(w, http.StatusOK, map[string]any{"requiresMfaSetup": true})
		return
	}

	if err := s.issueSession(w, admin.ID, scopeFull); err != nil {
		s.writeError(w, http.StatusInternalServerError, "session issue failed")
		return
	}
	s.store.recordActivity(admin.Email, "logged in via "+deviceName(r))
	s.writeJSON(w, http.StatusOK, map[string]any{
		"admin":              toWireAdmin(admin),
		"mustChangePassword": admin.MustChangePassword,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if admin, _ := s.parseSession(r); admin != nil {
		s.store.mu.Lock()
		s.store.recordActivity(admin.Email, "logged out")
		s.store.mu.Unlock()
	}
	s.clearSession(w)
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{"admin": toWireAdmin(info.admin)})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	info := sessionFrom(r)
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	admin := info.admin
	if !checkPassword(admin.PasswordHash, req.CurrentPassword) {
		s.writeError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if len(req.NewPassword) < 12 {
		s.writeError(w, http.StatusUnprocessableEntity, "Password must be at least 12 characters")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.MinCost)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "password update failed")
		return
	}
	admin.PasswordHash = hash
	admin.MustChangePassword = false
	s.store.recordActivity(admin.Email, "changed password")
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- MFA ---

func (s *Server) handleMFASetup(w http.ResponseWriter, r *http.Request) {
	info := sessionFrom(r)

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: info.admin.Email,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "enrollment failed")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	admin := info.admin
	admin.PendingSecret = key.Secret()
	admin.BackupCodes = make([]string, 0, 8)
	for range 8 {
		admin.BackupCodes = append(admin.BackupCodes, uuid.NewString()[:8])
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"qrCode":      key.URL(),
		"manualEntry": key.Secret(),
		"backupCodes": admin.BackupCodes,
	})
}

func (s *Server) handleMFAConfirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	info := sessionFrom(r)
	s.store.mu.Lock()
	admin := info.admin
	secret := admin.PendingSecret
	s.store.mu.Unlock()

	if secret == "" || !totp.Validate(req.Code, secret) {
		s.writeJSON(w, http.StatusOK, map[string]bool{"success": false})
		return
	}

	s.store.mu.Lock()
	admin.MFAEnabled = true
	admin.TOTPSecret = secret
	admin.PendingSecret = ""
	s.store.recordActivity(admin.Email, "enrolled an authenticator")
	s.store.mu.Unlock()

	// Enrollment completes the step-up: upgrade to a full session so the
	// console's follow-up auth check lands authenticated.
	if err := s.issueSession(w, admin.ID, scopeFull); err != nil {
		s.writeError(w, http.StatusInternalServerError, "session issue failed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMFAVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	info := sessionFrom(r)
	s.store.mu.Lock()
	admin := info.admin
	secret := admin.TOTPSecret
	wire := toWireAdmin(admin)
	s.store.mu.Unlock()

	if !s.codeAccepted(admin, secret, req.Code) {
		s.writeError(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}

	if err := s.issueSession(w, admin.ID, scopeFull); err != nil {
		s.writeError(w, http.StatusInternalServerError, "session issue failed")
		return
	}
	s.store.mu.Lock()
	s.store.recordActivity(admin.Email, "passed MFA via "+deviceName(r))
	s.store.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"admin":   wire,
	})
}

// codeAccepted checks a TOTP code, falling back to unused backup codes. A
// matched backup code is consumed.
func (s *Server) codeAccepted(admin *adminAccount, secret, code string) bool {
	if secret != "" && totp.Validate(code, secret) {
		return true
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	for i, backup := range admin.BackupCodes {
		if backup == code {
			admin.BackupCodes = append(admin.BackupCodes[:i], admin.BackupCodes[i+1:]...)
			return true
		}
	}
	return false
}

func (s *Server) handleMFADisable(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	info := sessionFrom(r)
	s.store.mu.Lock()
	admin := info.admin
	hash := admin.PasswordHash
	secret := admin.TOTPSecret
	s.store.mu.Unlock()

	if !checkPassword(hash, req.Password) {
		s.writeError(w, http.StatusBadRequest, "Password is incorrect")
		return
	}
	if !s.codeAccepted(admin, secret, req.Code) {
		s.writeError(w, http.StatusBadRequest, "Invalid or expired code")
		return
	}

	s.store.mu.Lock()
	admin.MFAEnabled = false
	admin.TOTPSecret = ""
	admin.BackupCodes = nil
	s.store.recordActivity(admin.Email, "disabled MFA")
	s.store.mu.Unlock()
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
