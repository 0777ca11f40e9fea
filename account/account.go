// Package account covers registration, signup availability checks, and the
// "my page" endpoints for the logged-in user's own profile and posts.
package account

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/inquiries"
	"github.com/dogseek/dogseek-go/lostpets"
	"github.com/dogseek/dogseek-go/paging"
	"github.com/dogseek/dogseek-go/session"
)

const (
	authPath   = "/auth"
	myPagePath = "/api/mypage"
)

// SignupRequest registers a new user.
type SignupRequest struct {
	Nickname string `json:"nickname"`
	UserID   string `json:"userid"`
	Password string `json:"password"`
	Email    string `json:"email"`
}

// UpdateProfileRequest edits the logged-in user's profile. An empty
// NewPassword keeps the current one.
type UpdateProfileRequest struct {
	Nickname    string `json:"nickname,omitempty"`
	Email       string `json:"email,omitempty"`
	NewPassword string `json:"newPassword,omitempty"`
}

// Page is the raw Spring page envelope the my-page listings use, unlike the
// custom data+pagination envelope of the public boards.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// Client issues account and my-page requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates an account client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// Signup registers a new user.
func (c *Client) Signup(ctx context.Context, req SignupRequest) error {
	return errors.Wrap(c.rest.PostJSON(ctx, authPath+"/signup", req, nil), "[account.Signup]")
}

// CheckUserID reports whether a login id is still available.
func (c *Client) CheckUserID(ctx context.Context, userid string) (bool, error) {
	var out struct {
		Exists bool `json:"exists"`
	}
	body := map[string]string{"userid": userid}
	if err := c.rest.PostJSON(ctx, authPath+"/check-id", body, &out); err != nil {
		return false, errors.Wrap(err, "[account.CheckUserID]")
	}
	return !out.Exists, nil
}

// CheckNickname reports whether a nickname is still available.
func (c *Client) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	return c.checkAvailable(ctx, authPath+"/check-nickname", "nickname", nickname)
}

// CheckEmail reports whether an email is still available.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	return c.checkAvailable(ctx, authPath+"/check-email", "email", email)
}

func (c *Client) checkAvailable(ctx context.Context, path, param, value string) (bool, error) {
	var available bool
	query := url.Values{param: []string{value}}
	if err := c.rest.GetJSON(ctx, path, query, &available); err != nil {
		return false, errors.Wrapf(err, "[account.checkAvailable] %s", path)
	}
	return available, nil
}

// Me returns the logged-in user's profile.
func (c *Client) Me(ctx context.Context) (*session.UserSummary, error) {
	var out session.UserSummary
	if err := c.rest.GetJSON(ctx, myPagePath+"/me", nil, &out); err != nil {
		return nil, errors.Wrap(err, "[account.Me]")
	}
	return &out, nil
}

// UpdateMe edits the logged-in user's profile.
func (c *Client) UpdateMe(ctx context.Context, req UpdateProfileRequest) error {
	return errors.Wrap(c.rest.PutJSON(ctx, myPagePath+"/me", req, nil), "[account.UpdateMe]")
}

// MyLostReports lists the logged-in user's own lost-dog reports.
func (c *Client) MyLostReports(ctx context.Context, params paging.Params) (*Page[lostpets.Report], error) {
	var out Page[lostpets.Report]
	if err := c.rest.GetJSON(ctx, myPagePath+"/lost-pets", params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[account.MyLostReports]")
	}
	return &out, nil
}

// MyInquiries lists the logged-in user's own inquiries.
func (c *Client) MyInquiries(ctx context.Context, params paging.Params) (*Page[inquiries.Inquiry], error) {
	var out Page[inquiries.Inquiry]
	if err := c.rest.GetJSON(ctx, myPagePath+"/inquiries", params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[account.MyInquiries]")
	}
	return &out, nil
}

// UpdateMyLostReport edits one of the user's own reports without touching
// its photo.
func (c *Client) UpdateMyLostReport(ctx context.Context, id int64, fields lostpets.Fields) error {
	body := map[string]string{
		"dogName":   fields.DogName,
		"content":   fields.Content,
		"species":   fields.Species,
		"gender":    fields.Gender,
		"dateLost":  fields.DateLost,
		"placeLost": fields.PlaceLost,
		"phone":     fields.Phone,
	}
	path := fmt.Sprintf("%s/lost-pets/%d", myPagePath, id)
	return errors.Wrap(c.rest.PutJSON(ctx, path, body, nil), "[account.UpdateMyLostReport]")
}

// DeleteMyLostReport removes one of the user's own reports.
func (c *Client) DeleteMyLostReport(ctx context.Context, id int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/lost-pets/%d", myPagePath, id)), "[account.DeleteMyLostReport]")
}

// UpdateMyInquiry edits one of the user's own inquiries.
func (c *Client) UpdateMyInquiry(ctx context.Context, id int64, req inquiries.UpdateRequest) error {
	path := fmt.Sprintf("%s/inquiries/%d", myPagePath, id)
	return errors.Wrap(c.rest.PutJSON(ctx, path, req, nil), "[account.UpdateMyInquiry]")
}

// DeleteMyInquiry removes one of the user's own inquiries.
func (c *Client) DeleteMyInquiry(ctx context.Context, id int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/inquiries/%d", myPagePath, id)), "[account.DeleteMyInquiry]")
}

// ReplaceLostReportImage swaps the photo of one of the user's own reports.
func (c *Client) ReplaceLostReportImage(ctx context.Context, id int64, photo lostpets.Photo) error {
	files := []rest.FormFile{{Field: "file", Name: photo.Name, Content: photo.Content}}
	path := fmt.Sprintf("%s/lost-pets/%d/image", myPagePath, id)
	return errors.Wrap(c.rest.DoMultipart(ctx, http.MethodPut, path, nil, files, nil), "[account.ReplaceLostReportImage]")
}
