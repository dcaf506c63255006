package e2e

import (
	"context"
	"fmt"
	"net/http/httptest"
	"time"

	"github.com/pquerna/otp/totp"

	"propadmin/internal/api"
	"propadmin/internal/session"
	"propadmin/internal/testbackend"
)

// TestContext holds state between steps. Each scenario gets a fresh backend
// and a fresh client, so nothing leaks across scenarios.
type TestContext struct {
	Backend *testbackend.Server
	TS      *httptest.Server
	Client  *api.Client
	Manager *session.Manager

	LastErr     error
	LastEmail   string
	LastOutcome *api.LoginResult
	Enrollment  *api.MFAEnrollment
	AuthErrors  []api.AuthError
	Secrets     map[string]string // email -> TOTP secret
}

func NewTestContext() *TestContext {
	return &TestContext{}
}

// Reset spins up a fresh backend and client for the next scenario.
func (tc *TestContext) Reset() {
	tc.Close()

	tc.Backend = testbackend.New()
	tc.TS = httptest.NewServer(tc.Backend.Router())

	client, err := api.New(tc.TS.URL, api.WithTimeout(10*time.Second))
	if err != nil {
		panic(fmt.Sprintf("build client: %v", err))
	}
	tc.Client = client
	tc.Manager = session.New(client)

	tc.LastErr = nil
	tc.LastEmail = ""
	tc.LastOutcome = nil
	tc.Enrollment = nil
	tc.AuthErrors = nil
	tc.Secrets = map[string]string{}

	client.SetAuthErrorHandler(func(e api.AuthError) {
		tc.AuthErrors = append(tc.AuthErrors, e)
	})
}

func (tc *TestContext) Close() {
	if tc.TS != nil {
		tc.TS.Close()
		tc.TS = nil
	}
}

func (tc *TestContext) ctx() context.Context {
	return context.Background()
}

// CurrentCode computes a live authenticator code for the given account.
func (tc *TestContext) CurrentCode(email string) (string, error) {
	secret := tc.Secrets[email]
	if secret == "" {
		secret = tc.Backend.TOTPSecret(email)
	}
	if secret == "" {
		return "", fmt.Errorf("no TOTP secret known for %s", email)
	}
	return totp.GenerateCode(secret, time.Now())
}
