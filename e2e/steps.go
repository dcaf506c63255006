package e2e

import (
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/pquerna/otp/totp"

	"propadmin/internal/api"
	dErrors "propadmin/pkg/domain-errors"
)

// RegisterSteps binds all step definitions onto the scenario context.
func RegisterSteps(sc *godog.ScenarioContext, tc *TestContext) {
	sc.Step(`^I have fetched a CSRF token$`, tc.iHaveFetchedACSRFToken)
	sc.Step(`^admin "([^"]*)" has MFA enrolled$`, tc.adminHasMFAEnrolled)
	sc.Step(`^I log in as "([^"]*)" with password "([^"]*)"$`, tc.iLogInAs)
	sc.Step(`^the login outcome is "([^"]*)"$`, tc.theLoginOutcomeIs)
	sc.Step(`^the login fails with message "([^"]*)"$`, tc.theLoginFailsWithMessage)
	sc.Step(`^the login fails with an account lockout$`, tc.theLoginFailsWithLockout)
	sc.Step(`^I must change my password$`, tc.iMustChangeMyPassword)
	sc.Step(`^I submit a valid authenticator code$`, tc.iSubmitAValidAuthenticatorCode)
	sc.Step(`^I start authenticator enrollment$`, tc.iStartAuthenticatorEnrollment)
	sc.Step(`^I confirm enrollment with a valid code$`, tc.iConfirmEnrollmentWithAValidCode)
	sc.Step(`^I receive (\d+) backup codes$`, tc.iReceiveBackupCodes)
	sc.Step(`^my profile email is "([^"]*)"$`, tc.myProfileEmailIs)
	sc.Step(`^I am not authenticated$`, tc.iAmNotAuthenticated)
	sc.Step(`^I log out$`, tc.iLogOut)
	sc.Step(`^I am signed in as "([^"]*)" with password "([^"]*)"$`, tc.iAmSignedInAs)
	sc.Step(`^I approve the first pending listing$`, tc.iApproveTheFirstPendingListing)
	sc.Step(`^no listing is pending$`, tc.noListingIsPending)
	sc.Step(`^I block the user "([^"]*)"$`, tc.iBlockTheUser)
	sc.Step(`^the user "([^"]*)" is blocked$`, tc.theUserIsBlocked)
	sc.Step(`^requesting the dashboard without a session dispatches an auth error$`, tc.requestingDashboardWithoutSession)
}

func (tc *TestContext) iHaveFetchedACSRFToken() error {
	if token := tc.Client.FetchCSRFToken(tc.ctx()); token == "" {
		return fmt.Errorf("no CSRF token issued")
	}
	return nil
}

func (tc *TestContext) adminHasMFAEnrolled(email string) error {
	secret, err := tc.Backend.EnrollMFA(email)
	if err != nil {
		return err
	}
	tc.Secrets[email] = secret
	return nil
}

func (tc *TestContext) iLogInAs(email, password string) error {
	tc.LastEmail = email
	tc.LastOutcome, tc.LastErr = tc.Client.Login(tc.ctx(), email, password)
	return nil
}

func (tc *TestContext) theLoginOutcomeIs(expected string) error {
	if tc.LastErr != nil {
		return fmt.Errorf("login failed: %w", tc.LastErr)
	}
	if got := tc.LastOutcome.Outcome.String(); got != expected {
		return fmt.Errorf("outcome %q, expected %q", got, expected)
	}
	return nil
}

func (tc *TestContext) theLoginFailsWithMessage(expected string) error {
	if tc.LastErr == nil {
		return fmt.Errorf("login unexpectedly succeeded")
	}
	if got := dErrors.MessageOf(tc.LastErr, ""); got != expected {
		return fmt.Errorf("message %q, expected %q", got, expected)
	}
	return nil
}

func (tc *TestContext) theLoginFailsWithLockout() error {
	if !dErrors.HasCode(tc.LastErr, dErrors.CodeAccountLocked) {
		return fmt.Errorf("expected account lockout, got %v", tc.LastErr)
	}
	return nil
}

func (tc *TestContext) iMustChangeMyPassword() error {
	if tc.LastOutcome == nil || !tc.LastOutcome.MustChangePassword {
		return fmt.Errorf("mustChangePassword not set")
	}
	return nil
}

func (tc *TestContext) iSubmitAValidAuthenticatorCode() error {
	code, err := tc.CurrentCode(tc.LastEmail)
	if err != nil {
		return err
	}
	admin, err := tc.Client.MFAVerify(tc.ctx(), code)
	if err != nil {
		return err
	}
	if admin == nil {
		return fmt.Errorf("verify returned no admin")
	}
	return nil
}

func (tc *TestContext) iStartAuthenticatorEnrollment() error {
	var err error
	tc.Enrollment, err = tc.Client.MFASetup(tc.ctx())
	return err
}

func (tc *TestContext) iConfirmEnrollmentWithAValidCode() error {
	if tc.Enrollment == nil {
		return fmt.Errorf("no enrollment in progress")
	}
	code, err := totpCode(tc.Enrollment.ManualEntry)
	if err != nil {
		return err
	}
	return tc.Client.MFAConfirm(tc.ctx(), code)
}

func (tc *TestContext) iReceiveBackupCodes(n int) error {
	if tc.Enrollment == nil {
		return fmt.Errorf("no enrollment in progress")
	}
	if len(tc.Enrollment.BackupCodes) != n {
		return fmt.Errorf("got %d backup codes, expected %d", len(tc.Enrollment.BackupCodes), n)
	}
	return nil
}

func (tc *TestContext) myProfileEmailIs(email string) error {
	admin, ok := tc.Client.CheckAuth(tc.ctx())
	if !ok {
		return fmt.Errorf("not authenticated")
	}
	if admin.Email != email {
		return fmt.Errorf("profile email %q, expected %q", admin.Email, email)
	}
	return nil
}

func (tc *TestContext) iAmNotAuthenticated() error {
	if _, ok := tc.Client.CheckAuth(tc.ctx()); ok {
		return fmt.Errorf("still authenticated")
	}
	return nil
}

func (tc *TestContext) iLogOut() error {
	return tc.Client.Logout(tc.ctx())
}

func (tc *TestContext) iAmSignedInAs(email, password string) error {
	if err := tc.iHaveFetchedACSRFToken(); err != nil {
		return err
	}
	result, err := tc.Client.Login(tc.ctx(), email, password)
	if err != nil {
		return err
	}
	if result.Outcome != api.OutcomeAuthenticated {
		return fmt.Errorf("account needs %s, cannot sign in directly", result.Outcome)
	}
	return nil
}

func (tc *TestContext) iApproveTheFirstPendingListing() error {
	properties, err := tc.Client.ListProperties(tc.ctx(), nil)
	if err != nil {
		return err
	}
	for _, p := range properties {
		if p.Status == "pending" {
			return tc.Client.ApproveProperty(tc.ctx(), p.ID)
		}
	}
	return fmt.Errorf("no pending listing found")
}

func (tc *TestContext) noListingIsPending() error {
	properties, err := tc.Client.ListProperties(tc.ctx(), nil)
	if err != nil {
		return err
	}
	for _, p := range properties {
		if p.Status == "pending" {
			return fmt.Errorf("listing %q still pending", p.Title)
		}
	}
	return nil
}

func (tc *TestContext) iBlockTheUser(email string) error {
	id, err := tc.userIDByEmail(email)
	if err != nil {
		return err
	}
	return tc.Client.ToggleUserBlock(tc.ctx(), id)
}

func (tc *TestContext) theUserIsBlocked(email string) error {
	users, err := tc.Client.ListUsers(tc.ctx(), nil)
	if err != nil {
		return err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			if !u.Blocked {
				return fmt.Errorf("user %s is not blocked", email)
			}
			return nil
		}
	}
	return fmt.Errorf("user %s not found", email)
}

func (tc *TestContext) requestingDashboardWithoutSession() error {
	before := len(tc.AuthErrors)
	if _, err := tc.Client.DashboardStats(tc.ctx()); err == nil {
		return fmt.Errorf("dashboard unexpectedly allowed")
	}
	if len(tc.AuthErrors) != before+1 {
		return fmt.Errorf("expected one auth-error dispatch, got %d", len(tc.AuthErrors)-before)
	}
	if tc.AuthErrors[len(tc.AuthErrors)-1].Kind != api.AuthErrorUnauthorized {
		return fmt.Errorf("dispatched kind %s, expected unauthorized", tc.AuthErrors[len(tc.AuthErrors)-1].Kind)
	}
	return nil
}

func (tc *TestContext) userIDByEmail(email string) (string, error) {
	users, err := tc.Client.ListUsers(tc.ctx(), nil)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}
	return "", fmt.Errorf("user %s not found", email)
}

func totpCode(secret string) (string, error) {
	return totp.GenerateCode(secret, time.Now())
}

