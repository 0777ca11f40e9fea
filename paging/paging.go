// Package paging models the pagination envelope the registry backend wraps
// around list endpoints.
package paging

import (
	"net/url"
	"strconv"
)

// Params selects a page of results. Page is 1-based; zero values fall back to
// the backend's defaults (page 1, size 10).
type Params struct {
	Page int
	Size int
}

// Values renders the params as query parameters.
func (p Params) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		v.Set("size", strconv.Itoa(p.Size))
	}
	return v
}

// Meta describes the position of a page within the full result set.
type Meta struct {
	ItemPerPage int   `json:"itemPerPage"`
	TotalItems  int64 `json:"totalItems"`
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	StartPage   int   `json:"startPage"`
	EndPage     int   `json:"endPage"`
}

// Links are the navigation URLs the backend computes for a page.
type Links struct {
	First    string `json:"first"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
	Next     string `json:"next"`
	Last     string `json:"last"`
}

// Pagination is the meta+links block of a paged response.
type Pagination struct {
	Meta  Meta  `json:"meta"`
	Links Links `json:"links"`
}
