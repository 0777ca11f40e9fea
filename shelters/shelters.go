// Package shelters is the typed client for the shelter directory, which the
// backend proxies from the national animal-protection open API.
package shelters

import (
	"context"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/paging"
)

const basePath = "/api/shelters"

// Shelter is one care centre entry, field names as the upstream open API
// spells them.
type Shelter struct {
	DataStdDt        string `json:"dataStdDt"`
	Name             string `json:"careNm"`
	RegistrationNo   string `json:"careRegNo"`
	Organization     string `json:"orgNm"`
	Division         string `json:"divisionNm"`
	SaveTargetAnimal string `json:"saveTrgtAnimal"`
	Address          string `json:"careAddr"`
	JibunAddress     string `json:"jibunAddr"`
	Lat              string `json:"lat"`
	Lng              string `json:"lng"`
	WeekOpenTime     string `json:"weekOprStime"`
	WeekCloseTime    string `json:"weekOprEtime"`
	WeekendOpenTime  string `json:"weekendOprStime"`
	WeekendCloseTime string `json:"weekendOprEtime"`
	CloseDay         string `json:"closeDay"`
	VetCount         string `json:"vetPersonCnt"`
	Phone            string `json:"careTel"`
}

// Response is the proxied open-API envelope.
type Response struct {
	Header struct {
		ReqNo      string `json:"reqNo"`
		ResultCode string `json:"resultCode"`
		ResultMsg  string `json:"resultMsg"`
		ErrorMsg   string `json:"errorMsg"`
	} `json:"header"`
	Body struct {
		Items struct {
			Item []Shelter `json:"item"`
		} `json:"items"`
		NumOfRows  string `json:"numOfRows"`
		PageNo     string `json:"pageNo"`
		TotalCount string `json:"totalCount"`
	} `json:"body"`
}

// Filter narrows the shelter listing. Empty fields are not sent.
type Filter struct {
	Organization string
	Search       string
}

// Client issues shelter directory requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates a shelter client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// List returns one page of the shelter directory.
func (c *Client) List(ctx context.Context, params paging.Params) (*Response, error) {
	var out Response
	if err := c.rest.GetJSON(ctx, basePath, params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[shelters.List]")
	}
	return &out, nil
}

// Filtered returns one page of the directory narrowed by organization or a
// free-text search.
func (c *Client) Filtered(ctx context.Context, params paging.Params, filter Filter) (*Response, error) {
	query := params.Values()
	if filter.Organization != "" {
		query.Set("orgNm", filter.Organization)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}

	var out Response
	if err := c.rest.GetJSON(ctx, basePath+"/filtered", query, &out); err != nil {
		return nil, errors.Wrap(err, "[shelters.Filtered]")
	}
	return &out, nil
}
