package testbackend

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/suite"

	"propadmin/internal/api"
	"propadmin/internal/session"
	dErrors "propadmin/pkg/domain-errors"
)

// BackendSuite drives the real console client against the in-memory backend,
// end to end over HTTP.
type BackendSuite struct {
	suite.Suite
	backend *Server
	ts      *httptest.Server
	client  *api.Client
	ctx     context.Context
}

func (s *BackendSuite) SetupTest() {
	s.backend = New()
	s.ts = httptest.NewServer(s.backend.Router())
	client, err := api.New(s.ts.URL, api.WithTimeout(5*time.Second))
	s.Require().NoError(err)
	s.client = client
	s.ctx = context.Background()
}

func (s *BackendSuite) TearDownTest() {
	s.ts.Close()
}

func TestBackendSuite(t *testing.T) {
	suite.Run(t, new(BackendSuite))
}

// prime fetches a CSRF token so mutating requests pass the double-submit
// check. Every flow starts here, as the console does on boot.
func (s *BackendSuite) prime() {
	token := s.client.FetchCSRFToken(s.ctx)
	s.Require().NotEmpty(token)
}

func (s *BackendSuite) TestLoginWithoutCSRFTokenIsForbidden() {
	_, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "Temp0rary!Pass99")
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *BackendSuite) TestPasswordOnlyLogin() {
	s.prime()

	result, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "Temp0rary!Pass99")
	s.Require().NoError(err)

	s.Equal(api.OutcomeAuthenticated, result.Outcome)
	s.True(result.MustChangePassword)
	s.Equal("New Hire", result.Admin.Name)

	admin, ok := s.client.CheckAuth(s.ctx)
	s.True(ok)
	s.Equal("fresh@propertydeal.test", admin.Email)
}

func (s *BackendSuite) TestInvalidCredentials() {
	s.prime()

	_, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "wrong-password")
	s.Require().Error(err)
	s.Equal("Invalid email or password", dErrors.MessageOf(err, ""))

	_, ok := s.client.CheckAuth(s.ctx)
	s.False(ok)
}

func (s *BackendSuite) TestAccountLockout() {
	s.prime()

	var err error
	for range maxLoginFailures {
		_, err = s.client.Login(s.ctx, "fresh@propertydeal.test", "wrong-password")
	}
	s.Require().True(dErrors.HasCode(err, dErrors.CodeAccountLocked))

	var lockout *api.LockoutError
	s.Require().True(errors.As(err, &lockout))
	s.Positive(lockout.MinutesRemaining(time.Now()))

	// The right password is rejected while the lock holds.
	_, err = s.client.Login(s.ctx, "fresh@propertydeal.test", "Temp0rary!Pass99")
	s.True(dErrors.HasCode(err, dErrors.CodeAccountLocked))
}

func (s *BackendSuite) TestMFAVerifyFlow() {
	secret, err := s.backend.EnrollMFA("admin@propertydeal.test")
	s.Require().NoError(err)
	s.prime()

	result, err := s.client.Login(s.ctx, "admin@propertydeal.test", "Sup3rSecret!Admin")
	s.Require().NoError(err)
	s.Equal(api.OutcomeMFARequired, result.Outcome)

	// The partial session must not grant profile access.
	_, ok := s.client.CheckAuth(s.ctx)
	s.False(ok)

	code, err := totp.GenerateCode(secret, time.Now())
	s.Require().NoError(err)

	admin, err := s.client.MFAVerify(s.ctx, code)
	s.Require().NoError(err)
	s.Equal("super_admin", admin.Role.Name)

	admin, ok = s.client.CheckAuth(s.ctx)
	s.True(ok)
	s.True(admin.MFAEnabled)
}

func (s *BackendSuite) TestMFAVerifyRejectsBadCode() {
	_, err := s.backend.EnrollMFA("admin@propertydeal.test")
	s.Require().NoError(err)
	s.prime()

	_, err = s.client.Login(s.ctx, "admin@propertydeal.test", "Sup3rSecret!Admin")
	s.Require().NoError(err)

	_, err = s.client.MFAVerify(s.ctx, "000000")
	s.Require().Error(err)
	s.Equal("Invalid or expired code", dErrors.MessageOf(err, ""))

	_, ok := s.client.CheckAuth(s.ctx)
	s.False(ok)
}

func (s *BackendSuite) TestMFASetupFlow() {
	s.prime()

	result, err := s.client.Login(s.ctx, "mod@propertydeal.test", "M0derator!Pass12")
	s.Require().NoError(err)
	s.Equal(api.OutcomeMFASetupRequired, result.Outcome)

	enrollment, err := s.client.MFASetup(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(enrollment.ManualEntry)
	s.True(strings.HasPrefix(enrollment.QRCode, "otpauth://"))
	s.Len(enrollment.BackupCodes, 8)

	// Wrong first code keeps enrollment pending.
	err = s.client.MFAConfirm(s.ctx, "000000")
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidCode))

	code, err := totp.GenerateCode(enrollment.ManualEntry, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.client.MFAConfirm(s.ctx, code))

	// Enrollment completes the step-up: the follow-up check is the
	// console's source of truth, and it must now land authenticated.
	admin, ok := s.client.CheckAuth(s.ctx)
	s.True(ok)
	s.True(admin.MFAEnabled)
}

func (s *BackendSuite) TestBackupCodeConsumedOnce() {
	_, err := s.backend.EnrollMFA("admin@propertydeal.test")
	s.Require().NoError(err)
	s.prime()

	// Enroll through setup to obtain backup codes.
	result, err := s.client.Login(s.ctx, "mod@propertydeal.test", "M0derator!Pass12")
	s.Require().NoError(err)
	s.Equal(api.OutcomeMFASetupRequired, result.Outcome)

	enrollment, err := s.client.MFASetup(s.ctx)
	s.Require().NoError(err)
	code, err := totp.GenerateCode(enrollment.ManualEntry, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.client.MFAConfirm(s.ctx, code))
	s.Require().NoError(s.client.Logout(s.ctx))

	backup := enrollment.BackupCodes[0]

	result, err = s.client.Login(s.ctx, "mod@propertydeal.test", "M0derator!Pass12")
	s.Require().NoError(err)
	s.Equal(api.OutcomeMFARequired, result.Outcome)
	_, err = s.client.MFAVerify(s.ctx, backup)
	s.Require().NoError(err)
	s.Require().NoError(s.client.Logout(s.ctx))

	// Second use of the same backup code must fail.
	_, err = s.client.Login(s.ctx, "mod@propertydeal.test", "M0derator!Pass12")
	s.Require().NoError(err)
	_, err = s.client.MFAVerify(s.ctx, backup)
	s.Error(err)
}

func (s *BackendSuite) TestSessionManagerAgainstBackend() {
	s.prime()

	manager := session.New(s.client)
	s.False(manager.Start(s.ctx))
	defer manager.Close()

	result, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "Temp0rary!Pass99")
	s.Require().NoError(err)
	s.True(manager.Login(s.ctx, result.Admin))
	s.True(manager.IsAuthenticated())

	manager.Logout(s.ctx)
	s.False(manager.IsAuthenticated())

	_, ok := s.client.CheckAuth(s.ctx)
	s.False(ok)
}

func (s *BackendSuite) TestUnauthorizedDispatchOnProtectedEndpoint() {
	var dispatched []api.AuthError
	s.client.SetAuthErrorHandler(func(e api.AuthError) {
		dispatched = append(dispatched, e)
	})

	_, err := s.client.DashboardStats(s.ctx)
	s.Require().True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	s.Require().Len(dispatched, 1)
	s.Equal(api.AuthErrorUnauthorized, dispatched[0].Kind)
}

func (s *BackendSuite) loginFresh() {
	s.prime()
	_, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "Temp0rary!Pass99")
	s.Require().NoError(err)
}

func (s *BackendSuite) TestChangePassword() {
	s.loginFresh()

	err := s.client.ChangePassword(s.ctx, "wrong", "An0ther!Secret99")
	s.Require().Error(err)
	s.Equal("Current password is incorrect", dErrors.MessageOf(err, ""))

	err = s.client.ChangePassword(s.ctx, "Temp0rary!Pass99", "short")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	s.Require().NoError(s.client.ChangePassword(s.ctx, "Temp0rary!Pass99", "An0ther!Secret99"))
	s.Require().NoError(s.client.Logout(s.ctx))

	result, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "An0ther!Secret99")
	s.Require().NoError(err)
	s.False(result.MustChangePassword)
}

func (s *BackendSuite) TestModerationEndpoints() {
	s.loginFresh()

	users, err := s.client.ListUsers(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().NotEmpty(users)

	wasBlocked := users[0].Blocked
	s.Require().NoError(s.client.ToggleUserBlock(s.ctx, users[0].ID))
	users, err = s.client.ListUsers(s.ctx, nil)
	s.Require().NoError(err)
	s.Equal(!wasBlocked, users[0].Blocked)

	props, err := s.client.ListProperties(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().NotEmpty(props)
	s.Require().NoError(s.client.ApproveProperty(s.ctx, props[0].ID))
	s.Require().NoError(s.client.DisapproveProperty(s.ctx, props[0].ID, "incomplete documents"))

	err = s.client.DisapproveProperty(s.ctx, props[0].ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	cat, err := s.client.CreateCategory(s.ctx, "Coastal", "")
	s.Require().NoError(err)
	s.Require().NoError(s.client.UpdateCategory(s.ctx, cat.ID, "Coastal Homes"))
	s.Require().NoError(s.client.DeleteCategory(s.ctx, cat.ID))

	leads, err := s.client.ListLeads(s.ctx, nil)
	s.Require().NoError(err)
	s.NotEmpty(leads)

	reports, err := s.client.ListPropertyReports(s.ctx, nil)
	s.Require().NoError(err)
	s.Require().NotEmpty(reports)
	s.Require().NoError(s.client.ResolveReport(s.ctx, reports[0].ID, "dismissed", "not actionable"))

	csvData, err := s.client.ExportUsersCSV(s.ctx)
	s.Require().NoError(err)
	s.Contains(string(csvData), "email")

	stats, err := s.client.DashboardStats(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, stats.TotalUsers)
}

func (s *BackendSuite) TestActivityFeedRecordsDevice() {
	s.prime()
	_, err := s.client.Login(s.ctx, "fresh@propertydeal.test", "Temp0rary!Pass99")
	s.Require().NoError(err)

	entries, err := s.client.RecentActivity(s.ctx)
	s.Require().NoError(err)
	s.Require().NotEmpty(entries)
	s.Equal("fresh@propertydeal.test", entries[0].Actor)
	s.Contains(entries[0].Action, "logged in")
}
