// Package authz decides, per resource, whether the current session may view
// or mutate it. The predicates are a UX convenience mirrored after the
// backend's own checks - the server remains the enforcement boundary.
package authz

import (
	"strings"

	"github.com/dogseek/dogseek-go/session"
)

// Descriptor is the visibility metadata shared by inquiry and report items.
type Descriptor struct {
	IsPublic       bool
	AuthorID       string
	AuthorNickname string
}

// Visible is implemented by resource items that expose visibility metadata.
type Visible interface {
	Visibility() Descriptor
}

// IsAdmin reports whether a role string grants admin privilege. The backend
// stores free-form role strings ("ADMIN", "ROLE_ADMIN", ...), so the test is
// a case-insensitive substring match, not an enum comparison.
func IsAdmin(role string) bool {
	return strings.Contains(strings.ToUpper(role), "ADMIN")
}

// CanView reports whether the session may view the resource.
// Admins see everything, public resources are visible to anyone, and private
// resources are visible only to their author.
func CanView(resource Descriptor, sess session.Session) bool {
	if sess.User != nil && IsAdmin(sess.User.Role) {
		return true
	}
	if resource.IsPublic {
		return true
	}
	return isOwner(resource, sess)
}

// CanMutate reports whether the session may edit or delete the resource.
// Being public never grants mutation rights; only admins and the author may
// mutate.
func CanMutate(resource Descriptor, sess session.Session) bool {
	if sess.User != nil && IsAdmin(sess.User.Role) {
		return true
	}
	return isOwner(resource, sess)
}

// isOwner prefers the stable author id and falls back to nickname equality
// for records that predate author-id tracking. Nicknames are not guaranteed
// unique, so the fallback can misattribute ownership across users with the
// same nickname; the backend behaves the same way.
func isOwner(resource Descriptor, sess session.Session) bool {
	if sess.User == nil {
		return false
	}
	if resource.AuthorID != "" && sess.User.ID != "" {
		return resource.AuthorID == sess.User.ID
	}
	if resource.AuthorNickname != "" && sess.User.Nickname != "" {
		return resource.AuthorNickname == sess.User.Nickname
	}
	return false
}
