package mailchimp

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// Member statuses known to the Mailchimp API. Other values may be returned.
const (
	StatusSubscribed    = "subscribed"
	StatusUnsubscribed  = "unsubscribed"
	StatusPending       = "pending"
	StatusCleaned       = "cleaned"
	StatusTransactional = "transactional"
)

// MemberInfo is the decoded JSON representation of a list member.
// An empty MemberInfo means the member does not exist.
type MemberInfo map[string]any

// Status returns the member's status field, or "" when absent.
func (m MemberInfo) Status() string {
	s, _ := m["status"].(string)
	return s
}

// Empty reports whether no member data is present.
func (m MemberInfo) Empty() bool {
	return len(m) == 0
}

// MemberHash returns the lowercase hex md5 of the lowercased address, which
// is how Mailchimp addresses member resources.
func MemberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// MemberPath returns the member resource path relative to the API root.
// The list id is trimmed and escaped as a single path segment.
func MemberPath(listID, email string) string {
	return "lists/" + url.PathEscape(strings.TrimSpace(listID)) + "/members/" + MemberHash(email)
}

// memberRequest is the PUT body for an upsert. Mailchimp rejects an explicit
// empty merge_fields object, so it is omitted when empty.
type memberRequest struct {
	EmailAddress string         `json:"email_address"`
	Status       string         `json:"status,omitempty"`
	StatusIfNew  string         `json:"status_if_new,omitempty"`
	MergeFields  map[string]any `json:"merge_fields,omitempty"`
}
