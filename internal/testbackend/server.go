// Package testbackend is an in-memory stand-in for the PropertyDeal
// marketplace API. It implements the slice of the real backend the admin
// console talks to: session cookies, CSRF double-submit, MFA enrollment and
// verification, lockout, and the moderation endpoints. Integration tests and
// the marketplace-mock command run it; production never does.
package testbackend

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mssola/useragent"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionCookieName = "admin_session"
	csrfCookieName    = "csrf_token"
	csrfHeaderName    = "X-CSRF-Token"

	// scopePartial marks a session that passed primary credentials but has
	// not cleared MFA yet. Only the MFA endpoints accept it.
	scopePartial = "partial"
	scopeFull    = "full"

	sessionTTL       = 24 * time.Hour
	maxLoginFailures = 5
	lockoutDuration  = 15 * time.Minute

	totpIssuer = "PropertyDeal Admin"
)

// Server is the fake marketplace backend.
type Server struct {
	store     *store
	logger    *slog.Logger
	jwtSecret []byte
	now       func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithClock overrides the time source (lockout tests).
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New builds a server seeded with fixture admins, users and listings.
func New(opts ...Option) *Server {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		panic(fmt.Sprintf("generate session secret: %v", err))
	}
	s := &Server{
		store:     newSeedStore(),
		logger:    slog.New(slog.DiscardHandler),
		jwtSecret: secret,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.checkCSRF)

	r.Get("/csrf-token", s.handleCSRFToken)

	r.Route("/api", func(r chi.Router) {
		r.Post("/admin/login", s.handleLogin)
		r.Post("/admin/logout", s.handleLogout)

		// MFA step-up endpoints accept the partial session issued by a
		// password-only login.
		r.Group(func(r chi.Router) {
			r.Use(s.requireSession(scopePartial))
			r.Post("/admin/mfa/setup", s.handleMFASetup)
			r.Post("/admin/mfa/confirm", s.handleMFAConfirm)
			r.Post("/admin/mfa/verify", s.handleMFAVerify)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession(scopeFull))

			r.Get("/admin/profile", s.handleProfile)
			r.Post("/admin/change-password", s.handleChangePassword)
			r.Post("/admin/mfa/disable", s.handleMFADisable)

			r.Get("/admin/dashboard/stats", s.handleDashboardStats)
			r.Get("/admin/dashboard/activity", s.handleDashboardActivity)

			r.Get("/users/list", s.handleListUsers)
			r.Put("/users/block/{userID}", s.handleToggleUserBlock)
			r.Get("/users/export-csv", s.handleExportUsersCSV)
			r.Get("/users/export-pdf", s.handleExportUsersPDF)

			r.Get("/properties/admin/all", s.handleListProperties)
			r.Put("/properties/approve/{propertyID}", s.handleApproveProperty)
			r.Put("/properties/disapprove/{propertyID}", s.handleDisapproveProperty)
			r.Delete("/properties/delete/{propertyID}", s.handleDeleteProperty)

			r.Get("/categories", s.handleListCategories)
			r.Post("/categories", s.handleCreateCategory)
			r.Put("/categories/{categoryID}", s.handleUpdateCategory)
			r.Delete("/categories/{categoryID}", s.handleDeleteCategory)

			r.Get("/propertyTypes", s.handleListPropertyTypes)
			r.Post("/propertyTypes", s.handleCreatePropertyType)
			r.Put("/propertyTypes/{typeID}", s.handleUpdatePropertyType)
			r.Delete("/propertyTypes/{typeID}", s.handleDeletePropertyType)

			r.Get("/admin/leads", s.handleListLeads)
			r.Get("/admin/leads/export", s.handleExportLeads)

			r.Get("/admin/reports/properties", s.handlePropertyReports)
			r.Get("/admin/reports/messages", s.handleMessageReports)
			r.Put("/admin/reports/{reportID}/resolve", s.handleResolveReport)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

// TOTPSecret exposes an admin's enrolled secret so tests can compute live
// codes.
func (s *Server) TOTPSecret(email string) string {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	if a := s.store.adminByEmail(email); a != nil {
		if a.TOTPSecret != "" {
			return a.TOTPSecret
		}
		return a.PendingSecret
	}
	return ""
}

// EnrollMFA pre-enrolls an admin with a generated secret, skipping the
// interactive setup flow. Tests use it to reach the verify path directly.
func (s *Server) EnrollMFA(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: totpIssuer, AccountName: email})
	if err != nil {
		return "", err
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	a := s.store.adminByEmail(email)
	if a == nil {
		return "", fmt.Errorf("no admin %q", email)
	}
	a.MFAEnabled = true
	a.TOTPSecret = key.Secret()
	return key.Secret(), nil
}

// --- session tokens ---

func (s *Server) issueSession(w http.ResponseWriter, adminID, scope string) error {
	claims := jwt.MapClaims{
		"sub":   adminID,
		"scope": scope,
		"iat":   jwt.NewNumericDate(s.now()),
		"exp":   jwt.NewNumericDate(s.now().Add(sessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// parseSession returns the admin and scope behind the session cookie, or nil.
func (s *Server) parseSession(r *http.Request) (*adminAccount, string) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, ""
	}
	token, err := jwt.Parse(cookie.Value, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return nil, ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ""
	}
	sub, _ := claims["sub"].(string)
	scope, _ := claims["scope"].(string)

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return s.store.adminByID(sub), scope
}

// requireSession gates a route group on a session scope. A full session
// satisfies a partial requirement, never the other way around.
func (s *Server) requireSession(minScope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin, scope := s.parseSession(r)
			if admin == nil {
				s.writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if minScope == scopeFull && scope != scopeFull {
				s.writeError(w, http.StatusUnauthorized, "Session expired. Please log in again.")
				return
			}
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), admin, scope)))
		})
	}
}

type ctxKey int

const sessionKey ctxKey = iota

type sessionInfo struct {
	admin *adminAccount
	scope string
}

func withSession(ctx context.Context, admin *adminAccount, scope string) context.Context {
	return context.WithValue(ctx, sessionKey, sessionInfo{admin: admin, scope: scope})
}

// sessionFrom returns the authenticated admin set by requireSession.
func sessionFrom(r *http.Request) sessionInfo {
	info, _ := r.Context().Value(sessionKey).(sessionInfo)
	return info
}

// checkCSRF enforces the double-submit contract on mutating requests: the
// X-CSRF-Token header must match the csrf_token cookie.
func (s *Server) checkCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			cookie, err := r.Cookie(csrfCookieName)
			if err != nil || cookie.Value == "" || r.Header.Get(csrfHeaderName) != cookie.Value {
				s.writeError(w, http.StatusForbidden, "CSRF token missing or invalid")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleCSRFToken(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		s.writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	token := hex.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
	s.writeJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

// deviceName renders the User-Agent into a human-readable device string for
// the activity feed.
func deviceName(r *http.Request) string {
	ua := useragent.New(r.UserAgent())
	browser, _ := ua.Browser()
	if browser == "" {
		if raw := r.UserAgent(); raw != "" {
			if name, _, found := strings.Cut(raw, "/"); found {
				browser = name
			} else {
				browser = raw
			}
		} else {
			browser = "unknown client"
		}
	}
	if os := ua.OS(); os != "" {
		return browser + " on " + os
	}
	return browser
}

// --- response helpers ---

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"message": message})
}

func decodeBody(r *http.Request, out any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func checkPassword(hash []byte, plain string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plain)) == nil
}
