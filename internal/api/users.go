package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListUsers returns marketplace users for the management table.
func (c *Client) ListUsers(ctx context.Context, params url.Values) ([]UserSummary, error) {
	var resp struct {
		Users []UserSummary `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/list", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// ToggleUserBlock flips the blocked flag on a user account.
func (c *Client) ToggleUserBlock(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodPut, "/api/users/block/"+userID, nil, struct{}{}, nil)
}

// ExportUsersCSV downloads the user table as CSV.
func (c *Client) ExportUsersCSV(ctx context.Context) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/api/users/export-csv", nil, nil)
}

// ExportUsersPDF downloads the user table as PDF.
func (c *Client) ExportUsersPDF(ctx context.Context) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/api/users/export-pdf", nil, nil)
}
