package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListLeads returns buyer leads for monitoring.
func (c *Client) ListLeads(ctx context.Context, params url.Values) ([]Lead, error) {
	var resp struct {
		Leads []Lead `json:"leads"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/leads", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Leads, nil
}

// ExportLeads downloads the lead table in the given format (excel, csv).
func (c *Client) ExportLeads(ctx context.Context, format string) ([]byte, error) {
	params := url.Values{}
	if format != "" {
		params.Set("format", format)
	}
	return c.doRaw(ctx, http.MethodGet, "/api/admin/leads/export", params, nil)
}
