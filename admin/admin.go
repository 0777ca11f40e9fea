// Package admin is the typed client for user administration. Every endpoint
// here requires an admin session; non-admin calls come back as permission
// denied.
package admin

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/paging"
)

const basePath = "/api/admin/users"

// UserSummary is a row of the admin user listing.
type UserSummary struct {
	ID        int64  `json:"id"`
	UserID    string `json:"userid"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// UserDetail adds per-user activity counters to the summary.
type UserDetail struct {
	UserSummary
	InquiryCount    int64 `json:"inquiryCount"`
	LostReportCount int64 `json:"lostReportCount"`
}

// InquiryRow is one inquiry in a user's activity listing.
type InquiryRow struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	IsPublic  *bool  `json:"isPublic"`
	CreatedAt string `json:"createdAt"`
	Answered  bool   `json:"answered"`
}

// LostReportRow is one lost-dog report in a user's activity listing.
type LostReportRow struct {
	ID        int64  `json:"id"`
	Species   string `json:"species"`
	Gender    string `json:"gender"`
	CreatedAt string `json:"createdAt"`
	DateLost  string `json:"dateLost"`
}

// PagedUsers is a page of the user listing.
type PagedUsers struct {
	Data       []UserSummary     `json:"data"`
	Pagination paging.Pagination `json:"pagination"`
}

// Client issues admin requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates an admin client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// Users returns one page of registered users.
func (c *Client) Users(ctx context.Context, params paging.Params) (*PagedUsers, error) {
	var out PagedUsers
	if err := c.rest.GetJSON(ctx, basePath+"/paged", params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[admin.Users]")
	}
	return &out, nil
}

// User returns one user with activity counters.
func (c *Client) User(ctx context.Context, userID int64) (*UserDetail, error) {
	var out UserDetail
	if err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/%d", basePath, userID), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[admin.User]")
	}
	return &out, nil
}

// UserInquiries lists a user's inquiries.
func (c *Client) UserInquiries(ctx context.Context, userID int64, params paging.Params) ([]InquiryRow, error) {
	var out []InquiryRow
	path := fmt.Sprintf("%s/%d/inquiries", basePath, userID)
	if err := c.rest.GetJSON(ctx, path, params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[admin.UserInquiries]")
	}
	return out, nil
}

// UserLostReports lists a user's lost-dog reports.
func (c *Client) UserLostReports(ctx context.Context, userID int64, params paging.Params) ([]LostReportRow, error) {
	var out []LostReportRow
	path := fmt.Sprintf("%s/%d/lost-reports", basePath, userID)
	if err := c.rest.GetJSON(ctx, path, params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[admin.UserLostReports]")
	}
	return out, nil
}

// DeleteUser removes a user and their content.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/%d", basePath, userID)), "[admin.DeleteUser]")
}
