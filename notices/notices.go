// Package notices is the typed client for site notices, written and managed
// by admins and readable by everyone.
package notices

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/paging"
)

const basePath = "/api/notices"

// Notice is a site announcement.
type Notice struct {
	DisplayNo int    `json:"displayNo"`
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Views     int    `json:"views"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateRequest is the payload for posting a notice. Admin only.
type CreateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateRequest replaces a notice's title and content. Admin only.
type UpdateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PatchRequest updates only the provided fields.
type PatchRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// PagedResponse is a page of the notice list.
type PagedResponse struct {
	Data       []Notice          `json:"data"`
	Pagination paging.Pagination `json:"pagination"`
}

// Client issues notice requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates a notice client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// List returns every notice, newest first.
func (c *Client) List(ctx context.Context) ([]Notice, error) {
	var out []Notice
	if err := c.rest.GetJSON(ctx, basePath, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[notices.List]")
	}
	return out, nil
}

// Paged returns one page of the notice list.
func (c *Client) Paged(ctx context.Context, params paging.Params) (*PagedResponse, error) {
	var out PagedResponse
	if err := c.rest.GetJSON(ctx, basePath+"/paged", params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[notices.Paged]")
	}
	return &out, nil
}

// Get returns a single notice and bumps its view counter server-side.
func (c *Client) Get(ctx context.Context, id int64) (*Notice, error) {
	var out Notice
	if err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[notices.Get]")
	}
	return &out, nil
}

// Create posts a new notice.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Notice, error) {
	var out Notice
	if err := c.rest.PostJSON(ctx, basePath, req, &out); err != nil {
		return nil, errors.Wrap(err, "[notices.Create]")
	}
	return &out, nil
}

// Update replaces a notice.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Notice, error) {
	var out Notice
	if err := c.rest.PutJSON(ctx, fmt.Sprintf("%s/%d", basePath, id), req, &out); err != nil {
		return nil, errors.Wrap(err, "[notices.Update]")
	}
	return &out, nil
}

// Patch updates part of a notice.
func (c *Client) Patch(ctx context.Context, id int64, req PatchRequest) (*Notice, error) {
	var out Notice
	if err := c.rest.PatchJSON(ctx, fmt.Sprintf("%s/%d", basePath, id), req, &out); err != nil {
		return nil, errors.Wrap(err, "[notices.Patch]")
	}
	return &out, nil
}

// Delete removes a notice.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id)), "[notices.Delete]")
}
