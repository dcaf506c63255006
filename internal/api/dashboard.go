package api

import (
	"context"
	"net/http"
)

// DashboardStats returns the headline numbers for the dashboard.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var resp struct {
		Stats *DashboardStats `json:"stats"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard/stats", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// RecentActivity returns the recent-activity feed.
func (c *Client) RecentActivity(ctx context.Context) ([]ActivityEntry, error) {
	var resp struct {
		Activity []ActivityEntry `json:"activity"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/admin/dashboard/activity", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activity, nil
}
