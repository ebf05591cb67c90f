package aggregator

import (
	"context"
	"net/http"
	"net/url"
)

// ListEvents returns all events visible to the operator.
func (c *Client) ListEvents(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := c.doJSON(ctx, http.MethodGet, eventServicePrefix+"/api/v1/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id string) (*Event, error) {
	var event Event
	if err := c.doJSON(ctx, http.MethodGet, eventServicePrefix+"/api/v1/events/"+url.PathEscape(id), nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) CreateEvent(ctx context.Context, input EventInput) (*Event, error) {
	var event Event
	if err := c.doJSON(ctx, http.MethodPost, eventServicePrefix+"/api/v1/events", input, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id string, input EventInput) (*Event, error) {
	var event Event
	if err := c.doJSON(ctx, http.MethodPatch, eventServicePrefix+"/api/v1/events/"+url.PathEscape(id), input, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, eventServicePrefix+"/api/v1/events/"+url.PathEscape(id), nil, nil)
}

// ListCategories returns all event categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.doJSON(ctx, http.MethodGet, eventServicePrefix+"/api/v1/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) GetCategory(ctx context.Context, id string) (*Category, error) {
	var category Category
	if err := c.doJSON(ctx, http.MethodGet, eventServicePrefix+"/api/v1/categories/"+url.PathEscape(id), nil, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) CreateCategory(ctx context.Context, input CategoryInput) (*Category, error) {
	var category Category
	if err := c.doJSON(ctx, http.MethodPost, eventServicePrefix+"/api/v1/categories", input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error) {
	var category Category
	if err := c.doJSON(ctx, http.MethodPatch, eventServicePrefix+"/api/v1/categories/"+url.PathEscape(id), input, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, eventServicePrefix+"/api/v1/categories/"+url.PathEscape(id), nil, nil)
}
