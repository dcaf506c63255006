package api

import (
	"context"
	"net/http"
	"net/url"
)

// ListProperties returns all listings for moderation.
func (c *Client) ListProperties(ctx context.Context, params url.Values) ([]Property, error) {
	var resp struct {
		Properties []Property `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/properties/admin/all", params, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Properties, nil
}

// ApproveProperty marks a listing as approved.
func (c *Client) ApproveProperty(ctx context.Context, propertyID string) error {
	return c.do(ctx, http.MethodPut, "/api/properties/approve/"+propertyID, nil, struct{}{}, nil)
}

type disapproveRequest struct {
	Reason string `json:"reason"`
}

// DisapproveProperty rejects a listing with a reason shown to the owner.
func (c *Client) DisapproveProperty(ctx context.Context, propertyID, reason string) error {
	return c.do(ctx, http.MethodPut, "/api/properties/disapprove/"+propertyID, nil,
		disapproveRequest{Reason: reason}, nil)
}

// DeleteProperty removes a listing outright.
func (c *Client) DeleteProperty(ctx context.Context, propertyID string) error {
	return c.do(ctx, http.MethodDelete, "/api/properties/delete/"+propertyID, nil, struct{}{}, nil)
}
