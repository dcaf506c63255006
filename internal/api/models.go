package api

import "time"

// Role describes an admin's role as returned by the admin API.
type Role struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Level       int    `json:"level"`
}

// Admin is the authenticated principal. The session manager owns the only
// long-lived copy; it is replaced wholesale on every successful check or
// login and never partially mutated.
type Admin struct {
	ID                    string   `json:"id"`
	Name                  string   `json:"name"`
	Email                 string   `json:"email"`
	Role                  Role     `json:"role"`
	AdditionalPermissions []string `json:"additionalPermissions,omitempty"`
	MFAEnabled            bool     `json:"mfaEnabled,omitempty"`
}

// AuthErrorKind classifies a boundary failure raised by the response path.
type AuthErrorKind string

const (
	AuthErrorUnauthorized AuthErrorKind = "unauthorized"
	AuthErrorForbidden    AuthErrorKind = "forbidden"
)

// AuthError is a transient value describing a 401/403 response. It is
// produced by the client, consumed at most once by the registered handler,
// and not persisted.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

// AuthErrorHandler receives AuthError values from the client. At most one
// handler is expected; registering a new one replaces the old.
type AuthErrorHandler func(AuthError)

// LoginOutcome tags the result of a login attempt so every caller must
// handle each step-up case explicitly instead of probing booleans.
type LoginOutcome int

const (
	// OutcomeAuthenticated means the server accepted the credentials and
	// returned the full admin profile. The session may be committed.
	OutcomeAuthenticated LoginOutcome = iota
	// OutcomeMFARequired means primary credentials were accepted but a
	// 6-digit code must be verified first. The session must stay
	// unauthenticated until MFAVerify succeeds.
	OutcomeMFARequired
	// OutcomeMFASetupRequired means this is a first login and the admin
	// must enroll an authenticator before the session can be committed.
	OutcomeMFASetupRequired
)

func (o LoginOutcome) String() string {
	switch o {
	case OutcomeAuthenticated:
		return "authenticated"
	case OutcomeMFARequired:
		return "mfa_required"
	case OutcomeMFASetupRequired:
		return "mfa_setup_required"
	default:
		return "unknown"
	}
}

// LoginResult is the tagged outcome of Login. Admin is non-nil only for
// OutcomeAuthenticated. MustChangePassword rides along with the
// authenticated case: the session is committed first, then the caller is
// expected to steer the admin into the password-change flow.
type LoginResult struct {
	Outcome            LoginOutcome
	Admin              *Admin
	MustChangePassword bool
}

// MFAEnrollment is the server-issued provisioning material for MFA setup.
type MFAEnrollment struct {
	QRCode      string   `json:"qrCode"`
	ManualEntry string   `json:"manualEntry"`
	BackupCodes []string `json:"backupCodes"`
}

// LockoutError carries the structured lockout deadline from an
// ACCOUNT_LOCKED login failure so callers can compute minutes remaining.
type LockoutError struct {
	Until time.Time
}

func (e *LockoutError) Error() string {
	return "account locked until " + e.Until.Format(time.RFC3339)
}

// MinutesRemaining returns the whole minutes left until the lockout lifts,
// rounded up, never negative.
func (e *LockoutError) MinutesRemaining(now time.Time) int {
	d := e.Until.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Minute - 1) / time.Minute)
}

// UserSummary is one row of the user management table.
type UserSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	UserType  string    `json:"userType,omitempty"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"createdAt"`
}

// Property is one row of the property moderation table.
type Property struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	OwnerName string    `json:"ownerName,omitempty"`
	City      string    `json:"city,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Status    string    `json:"status"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Category is a listing category or sub-category.
type Category struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// PropertyType is a property type taxonomy entry.
type PropertyType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Lead is one row of the lead monitoring table.
type Lead struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	ClientName string    `json:"clientName"`
	Phone      string    `json:"phone,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Report is a moderation report against a property or message.
type Report struct {
	ID         string    `json:"id"`
	TargetType string    `json:"targetType"`
	TargetID   string    `json:"targetId"`
	Reason     string    `json:"reason"`
	Status     string    `json:"status"`
	ReportedBy string    `json:"reportedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DashboardStats is the headline numbers block on the dashboard.
type DashboardStats struct {
	TotalUsers      int       `json:"totalUsers"`
	TotalProperties int       `json:"totalProperties"`
	PendingReviews  int       `json:"pendingReviews"`
	ActiveLeads     int       `json:"activeLeads"`
	OpenReports     int       `json:"openReports"`
	Timestamp       time.Time `json:"timestamp"`
}

// ActivityEntry is one recent-activity feed item.
type ActivityEntry struct {
	At     time.Time `json:"at"`
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
}
