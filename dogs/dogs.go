// Package dogs is the typed client for the adoptable-dog catalogue sourced
// from shelter data, and for the AI similarity search over it.
package dogs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/paging"
)

const (
	basePath   = "/api/dog-details"
	searchPath = "/api/search"
)

// Dog is one shelter dog available for adoption.
type Dog struct {
	ID            int64  `json:"id"`
	Number        string `json:"number"`
	Species       string `json:"species"`
	Gender        string `json:"gender"`
	Age           string `json:"age"`
	Color         string `json:"color"`
	Neutered      string `json:"neutYn"`
	Jurisdiction  string `json:"jurisd"`
	FoundDate     string `json:"foundDate"`
	FoundLocation string `json:"foundLocation"`
	State         string `json:"state"`
	ImagePath     string `json:"imagePath"`
	ShelterID     string `json:"shelterId"`
	CreatedAt     string `json:"createdAt"`
}

// Filter narrows the paged catalogue. Empty fields are not sent.
type Filter struct {
	Jurisdiction string
	Species      string
	Keyword      string
}

// PagedResponse is a page of the dog catalogue.
type PagedResponse struct {
	Data       []Dog             `json:"data"`
	Pagination paging.Pagination `json:"pagination"`
}

// SimilarResult is what the AI search returns: matching catalogue entries,
// optionally with a generated adult-dog image. The prediction itself is an
// opaque backend service; the client only carries its output.
type SimilarResult struct {
	Dogs                 []Dog  `json:"dogs"`
	GeneratedImageBase64 string `json:"generatedImageBase64"`
}

// Client issues dog catalogue and AI search requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates a dog client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// List returns the whole catalogue without paging.
func (c *Client) List(ctx context.Context) ([]Dog, error) {
	var out []Dog
	if err := c.rest.GetJSON(ctx, basePath, nil, &out); err != nil {
		return nil, errors.Wrap(err, "[dogs.List]")
	}
	return out, nil
}

// Paged returns one page of the catalogue, optionally filtered.
func (c *Client) Paged(ctx context.Context, params paging.Params, filter Filter) (*PagedResponse, error) {
	query := params.Values()
	if filter.Jurisdiction != "" {
		query.Set("jurisd", filter.Jurisdiction)
	}
	if filter.Species != "" {
		query.Set("species", filter.Species)
	}
	if filter.Keyword != "" {
		query.Set("keyword", filter.Keyword)
	}

	var out PagedResponse
	if err := c.rest.GetJSON(ctx, basePath+"/paged", query, &out); err != nil {
		return nil, errors.Wrap(err, "[dogs.Paged]")
	}
	return &out, nil
}

// Get returns a single catalogue entry.
func (c *Client) Get(ctx context.Context, id int64) (*Dog, error) {
	var out Dog
	if err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[dogs.Get]")
	}
	return &out, nil
}

// Breeds returns the distinct species present in the catalogue.
func (c *Client) Breeds(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.rest.GetJSON(ctx, basePath+"/breeds", url.Values{}, &out); err != nil {
		return nil, errors.Wrap(err, "[dogs.Breeds]")
	}
	return out, nil
}

// SearchByImage uploads a photo and returns visually similar shelter dogs.
func (c *Client) SearchByImage(ctx context.Context, name string, image io.Reader) (*SimilarResult, error) {
	return c.search(ctx, searchPath+"/image", name, image)
}

// SearchWithGeneratedImage does the similarity search and additionally asks
// the backend to generate an adult-dog prediction image.
func (c *Client) SearchWithGeneratedImage(ctx context.Context, name string, image io.Reader) (*SimilarResult, error) {
	return c.search(ctx, searchPath+"/generated", name, image)
}

func (c *Client) search(ctx context.Context, path, name string, image io.Reader) (*SimilarResult, error) {
	files := []rest.FormFile{{Field: "image", Name: name, Content: image}}

	var out SimilarResult
	if err := c.rest.DoMultipart(ctx, http.MethodPost, path, nil, files, &out); err != nil {
		return nil, errors.Wrapf(err, "[dogs.search] %s", path)
	}
	return &out, nil
}
