// Package lostpets is the typed client for lost-dog reports: sightings and
// loss reports posted by users, each with an optional photo.
package lostpets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/authz"
	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/paging"
)

const basePath = "/api/lost-pet"

// Report is a lost-dog report.
type Report struct {
	ID        int64  `json:"id"`
	DogName   string `json:"dogName"`
	Content   string `json:"content"`
	Species   string `json:"species"`
	Gender    string `json:"gender"`
	DateLost  string `json:"dateLost"`
	PlaceLost string `json:"placeLost"`
	Phone     string `json:"phone"`
	ImagePath string `json:"imagePath"`
	Nickname  string `json:"nickname"`
	UserID    string `json:"userid"`
	CreatedAt string `json:"createdAt"`
}

var _ authz.Visible = Report{}

// Visibility exposes the report's metadata for authorization decisions.
// Reports are always publicly viewable; ownership still gates mutation.
func (r Report) Visibility() authz.Descriptor {
	return authz.Descriptor{
		IsPublic:       true,
		AuthorID:       r.UserID,
		AuthorNickname: r.Nickname,
	}
}

// Fields are the mutable attributes of a report, sent as multipart form
// fields alongside the optional photo.
type Fields struct {
	DogName   string
	Content   string
	Species   string
	Gender    string
	DateLost  string
	PlaceLost string
	Phone     string
}

func (f Fields) formValues() map[string]string {
	return map[string]string{
		"dogName":   f.DogName,
		"content":   f.Content,
		"species":   f.Species,
		"gender":    f.Gender,
		"dateLost":  f.DateLost,
		"placeLost": f.PlaceLost,
		"phone":     f.Phone,
	}
}

// Photo is an optional image attachment.
type Photo struct {
	Name    string
	Content io.Reader
}

// PagedResponse is a page of the report list.
type PagedResponse struct {
	Data       []Report          `json:"data"`
	Pagination paging.Pagination `json:"pagination"`
}

// Client issues lost-pet report requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates a lost-pet client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// Paged returns one page of reports.
func (c *Client) Paged(ctx context.Context, params paging.Params) (*PagedResponse, error) {
	var out PagedResponse
	if err := c.rest.GetJSON(ctx, basePath+"/paged", params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[lostpets.Paged]")
	}
	return &out, nil
}

// Get returns a single report.
func (c *Client) Get(ctx context.Context, id int64) (*Report, error) {
	var out Report
	if err := c.rest.GetJSON(ctx, basePath+"/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[lostpets.Get]")
	}
	return &out, nil
}

// Create posts a new report with an optional photo. Requires an
// authenticated session.
func (c *Client) Create(ctx context.Context, fields Fields, photo *Photo) (*Report, error) {
	var out Report
	if err := c.rest.DoMultipart(ctx, http.MethodPost, basePath, fields.formValues(), photoParts(photo), &out); err != nil {
		return nil, errors.Wrap(err, "[lostpets.Create]")
	}
	return &out, nil
}

// Update edits a report, optionally replacing the photo. Author or admin only.
func (c *Client) Update(ctx context.Context, id int64, fields Fields, photo *Photo) (*Report, error) {
	var out Report
	path := fmt.Sprintf("%s/%d", basePath, id)
	if err := c.rest.DoMultipart(ctx, http.MethodPut, path, fields.formValues(), photoParts(photo), &out); err != nil {
		return nil, errors.Wrap(err, "[lostpets.Update]")
	}
	return &out, nil
}

// Delete removes a report. Author or admin only.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id)), "[lostpets.Delete]")
}

func photoParts(photo *Photo) []rest.FormFile {
	if photo == nil {
		return nil
	}
	return []rest.FormFile{{
		Field:   "image",
		Name:    photo.Name,
		Content: photo.Content,
	}}
}
