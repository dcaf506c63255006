package api

import (
	"context"
	"net/http"
)

type categoryRequest struct {
	Name     string `json:"name"`
	ParentID string `json:"parentId,omitempty"`
}

// ListCategories returns all listing categories and sub-categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var resp struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// CreateCategory adds a category; parentID non-empty makes it a sub-category.
func (c *Client) CreateCategory(ctx context.Context, name, parentID string) (*Category, error) {
	var resp struct {
		Category *Category `json:"category"`
	}
	err := c.do(ctx, http.MethodPost, "/api/categories", nil,
		categoryRequest{Name: name, ParentID: parentID}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Category, nil
}

// UpdateCategory renames a category.
func (c *Client) UpdateCategory(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPut, "/api/categories/"+id, nil, categoryRequest{Name: name}, nil)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/categories/"+id, nil, struct{}{}, nil)
}

type propertyTypeRequest struct {
	Name string `json:"name"`
}

// ListPropertyTypes returns the property type taxonomy.
func (c *Client) ListPropertyTypes(ctx context.Context) ([]PropertyType, error) {
	var resp struct {
		PropertyTypes []PropertyType `json:"propertyTypes"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/propertyTypes", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.PropertyTypes, nil
}

// CreatePropertyType adds a property type.
func (c *Client) CreatePropertyType(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/api/propertyTypes", nil, propertyTypeRequest{Name: name}, nil)
}

// UpdatePropertyType renames a property type.
func (c *Client) UpdatePropertyType(ctx context.Context, id, name string) error {
	return c.do(ctx, http.MethodPut, "/api/propertyTypes/"+id, nil, propertyTypeRequest{Name: name}, nil)
}

// DeletePropertyType removes a property type.
func (c *Client) DeletePropertyType(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/propertyTypes/"+id, nil, struct{}{}, nil)
}
