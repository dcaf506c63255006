package api

import (
	"context"
	"net/http"

	dErrors "propadmin/pkg/domain-errors"
)

type mfaCodeRequest struct {
	Code string `json:"code"`
}

// MFASetup starts authenticator enrollment: the server issues a provisioning
// secret, a scannable QR payload, and one-time recovery codes.
func (c *Client) MFASetup(ctx context.Context) (*MFAEnrollment, error) {
	var resp struct {
		Success bool `json:"success"`
		MFAEnrollment
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/mfa/setup", nil, struct{}{}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, dErrors.New(dErrors.CodeInternal, "mfa setup was not accepted")
	}
	return &resp.MFAEnrollment, nil
}

// MFAConfirm submits the first code from the authenticator to finish
// enrollment. On success the caller must re-run the auth check from scratch
// rather than assuming the partial session became full.
func (c *Client) MFAConfirm(ctx context.Context, code string) error {
	var resp struct {
		Success bool `json:"success"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/mfa/confirm", nil, mfaCodeRequest{Code: code}, &resp)
	if err != nil {
		return err
	}
	if !resp.Success {
		return dErrors.New(dErrors.CodeInvalidCode, "verification failed")
	}
	return nil
}

// MFAVerify submits a code for an account with MFA already enabled. On
// success the response carries the full admin profile, which the caller
// passes to the session manager to commit authentication.
func (c *Client) MFAVerify(ctx context.Context, code string) (*Admin, error) {
	var resp struct {
		Success bool   `json:"success"`
		Admin   *Admin `json:"admin"`
	}
	err := c.do(ctx, http.MethodPost, "/api/admin/mfa/verify", nil, mfaCodeRequest{Code: code}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Admin == nil {
		return nil, dErrors.New(dErrors.CodeInvalidCode, "Invalid code. Please try again.")
	}
	return resp.Admin, nil
}

type mfaDisableRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// MFADisable turns MFA off for the current admin. Both the account password
// and a current code are required.
func (c *Client) MFADisable(ctx context.Context, password, code string) error {
	return c.do(ctx, http.MethodPost, "/api/admin/mfa/disable", nil,
		mfaDisableRequest{Password: password, Code: code}, nil)
}
