// Package inquiries is the typed client for the inquiry board: user-to-admin
// questions that may be public or private, with admin replies.
package inquiries

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/dogseek/dogseek-go/authz"
	"github.com/dogseek/dogseek-go/internal/rest"
	"github.com/dogseek/dogseek-go/paging"
)

const basePath = "/api/inquiries"

// ListItem is a row of the paged inquiry list. Private titles arrive already
// masked by the backend for non-admin callers.
type ListItem struct {
	DisplayNo int    `json:"displayNo"`
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Nickname  string `json:"nickname"`
	CreatedAt string `json:"createdAt"`
	Answered  bool   `json:"answered"`
}

// Inquiry is a single inquiry with its full content.
type Inquiry struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Nickname  string `json:"nickname"`
	IsPublic  *bool  `json:"isPublic"`
	AuthorID  string `json:"authorId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// UnmarshalJSON tolerates the visibility spellings the backend has used over
// time: a boolean "isPublic" or its inverted predecessor "secret".
func (i *Inquiry) UnmarshalJSON(data []byte) error {
	type plain Inquiry
	aux := struct {
		*plain
		Secret         *bool  `json:"secret"`
		AuthorNickname string `json:"authorNickname"`
		Author         string `json:"author"`
	}{plain: (*plain)(i)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("Inquiry: %w", err)
	}
	if i.IsPublic == nil && aux.Secret != nil {
		public := !*aux.Secret
		i.IsPublic = &public
	}
	if i.Nickname == "" {
		i.Nickname = aux.AuthorNickname
	}
	if i.Nickname == "" {
		i.Nickname = aux.Author
	}
	return nil
}

var _ authz.Visible = Inquiry{}

// Visibility exposes the inquiry's metadata for authorization decisions.
// A missing isPublic field counts as public, matching the list rendering.
func (i Inquiry) Visibility() authz.Descriptor {
	public := i.IsPublic == nil || *i.IsPublic
	return authz.Descriptor{
		IsPublic:       public,
		AuthorID:       i.AuthorID,
		AuthorNickname: i.Nickname,
	}
}

// Reply is an admin answer attached to an inquiry.
type Reply struct {
	ID          int64  `json:"id"`
	InquiryID   int64  `json:"inquiryId"`
	AdminUserID int64  `json:"adminUserId"`
	AdminName   string `json:"adminNickname"`
	Content     string `json:"content"`
	IsPublic    *bool  `json:"isPublic"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

// CreateRequest is the payload for posting a new inquiry.
type CreateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}

// UpdateRequest is the payload for editing an inquiry.
type UpdateRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsPublic bool   `json:"isPublic"`
}

// ReplyRequest is the payload for posting or editing a reply.
type ReplyRequest struct {
	Content  string `json:"content"`
	IsPublic *bool  `json:"isPublic,omitempty"`
}

// PagedResponse is a page of the inquiry list.
type PagedResponse struct {
	Data       []ListItem        `json:"data"`
	Pagination paging.Pagination `json:"pagination"`
}

// Client issues inquiry requests.
type Client struct {
	rest *rest.Client
}

// NewClient creates an inquiry client on the shared rest plumbing.
func NewClient(restClient *rest.Client) *Client {
	return &Client{rest: restClient}
}

// Paged returns one page of the inquiry list.
func (c *Client) Paged(ctx context.Context, params paging.Params) (*PagedResponse, error) {
	var out PagedResponse
	if err := c.rest.GetJSON(ctx, basePath+"/paged", params.Values(), &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.Paged]")
	}
	return &out, nil
}

// Get returns a single inquiry. The backend rejects private inquiries for
// callers other than the author or an admin.
func (c *Client) Get(ctx context.Context, id int64) (*Inquiry, error) {
	var out Inquiry
	if err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/%d", basePath, id), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.Get]")
	}
	return &out, nil
}

// Create posts a new inquiry. Requires an authenticated session.
func (c *Client) Create(ctx context.Context, req CreateRequest) (*Inquiry, error) {
	var out Inquiry
	if err := c.rest.PostJSON(ctx, basePath, req, &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.Create]")
	}
	return &out, nil
}

// Update edits an inquiry. Author or admin only.
func (c *Client) Update(ctx context.Context, id int64, req UpdateRequest) (*Inquiry, error) {
	var out Inquiry
	if err := c.rest.PutJSON(ctx, fmt.Sprintf("%s/%d", basePath, id), req, &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.Update]")
	}
	return &out, nil
}

// Delete removes an inquiry. Author or admin only.
func (c *Client) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/%d", basePath, id)), "[inquiries.Delete]")
}

// Replies lists the replies of an inquiry.
func (c *Client) Replies(ctx context.Context, inquiryID int64) ([]Reply, error) {
	var out []Reply
	if err := c.rest.GetJSON(ctx, fmt.Sprintf("%s/%d/replies", basePath, inquiryID), nil, &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.Replies]")
	}
	return out, nil
}

// CreateReply posts an admin reply to an inquiry.
func (c *Client) CreateReply(ctx context.Context, inquiryID int64, req ReplyRequest) (*Reply, error) {
	var out Reply
	if err := c.rest.PostJSON(ctx, fmt.Sprintf("%s/%d/replies", basePath, inquiryID), req, &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.CreateReply]")
	}
	return &out, nil
}

// UpdateReply edits a reply.
func (c *Client) UpdateReply(ctx context.Context, inquiryID, replyID int64, req ReplyRequest) (*Reply, error) {
	var out Reply
	if err := c.rest.PatchJSON(ctx, fmt.Sprintf("%s/%d/replies/%d", basePath, inquiryID, replyID), req, &out); err != nil {
		return nil, errors.Wrap(err, "[inquiries.UpdateReply]")
	}
	return &out, nil
}

// DeleteReply removes a reply.
func (c *Client) DeleteReply(ctx context.Context, inquiryID, replyID int64) error {
	return errors.Wrap(c.rest.Delete(ctx, fmt.Sprintf("%s/%d/replies/%d", basePath, inquiryID, replyID)), "[inquiries.DeleteReply]")
}
