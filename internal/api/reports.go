package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListPropertyReports returns moderation reports filed against listings.
func (c *Client) ListPropertyReports(ctx context.Context, params url.Values) ([]Report, error) {
	var resp struct {
		Reports []Report `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/reports/properties", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

// ListMessageReports returns moderation reports filed against messages.
func (c *Client) ListMessageReports(ctx context.Context, params url.Values) ([]Report, error) {
	var resp struct {
		Reports []Report `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/reports/messages", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

type resolveReportRequest struct {
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`
}

// ResolveReport closes a report with the given action and optional note.
func (c *Client) ResolveReport(ctx context.Context, reportID, action, note string) error {
	return c.do(ctx, http.MethodPut, "/api/admin/reports/"+reportID+"/resolve", nil,
		resolveReportRequest{Action: action, Note: note}, nil)
}
