package session

import (
	"encoding/json"
	"fmt"
)

// Session is the in-memory representation of the current authenticated
// identity, derived from stored credentials.
//
// Invariant: Authenticated is true iff both AccessToken and User are present.
// Sessions are only built through the manager, which enforces this.
type Session struct {
	Authenticated bool
	AccessToken   string
	User          *UserSummary
}

// UserSummary is the profile slice the backend returns on login and from the
// current-user endpoint.
type UserSummary struct {
	ID       string `json:"id"`
	UserID   string `json:"userid"`
	Nickname string `json:"nickname"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
}

// Credentials are the login inputs. AutoLogin asks the manager to attempt a
// silent refresh on the next bootstrap when no stored credentials survive.
type Credentials struct {
	UserID    string `json:"userid"`
	Password  string `json:"password"`
	AutoLogin bool   `json:"-"`
}

// UnmarshalJSON tolerates the field spellings the backend actually emits:
// "id" arrives as a JSON number, the nickname as either "nickName" or
// "nickname".
func (u *UserSummary) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		UserID   string          `json:"userid"`
		NickName string          `json:"nickName"`
		Nickname string          `json:"nickname"`
		Role     string          `json:"role"`
		Email    string          `json:"email"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("UserSummary: %w", err)
	}

	u.ID = flexibleID(raw.ID)
	u.UserID = raw.UserID
	u.Nickname = raw.NickName
	if u.Nickname == "" {
		u.Nickname = raw.Nickname
	}
	u.Role = raw.Role
	u.Email = raw.Email
	return nil
}

// flexibleID renders an id that may arrive as a JSON number or a string.
func flexibleID(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// MarshalJSON writes the canonical spellings so a round trip through the
// credential store is stable.
func (u UserSummary) MarshalJSON() ([]byte, error) {
	type wire struct {
		ID       string `json:"id,omitempty"`
		UserID   string `json:"userid,omitempty"`
		Nickname string `json:"nickname,omitempty"`
		Role     string `json:"role,omitempty"`
		Email    string `json:"email,omitempty"`
	}
	return json.Marshal(wire(u))
}
