package publishers

import (
	"time"

	"github.com/google/uuid"
)

// Member event actions.
const (
	ActionSubscribed   = "member.subscribed"
	ActionUnsubscribed = "member.unsubscribed"
	ActionUpdated      = "member.updated"
)

// MemberEvent describes a membership change accepted by Mailchimp.
type MemberEvent struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Email      string         `json:"email"`
	ListID     string         `json:"list_id"`
	Status     string         `json:"status,omitempty"`
	Member     map[string]any `json:"member,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewMemberEvent constructs an event for the given member representation.
func NewMemberEvent(action, email, listID string, member map[string]any) MemberEvent {
	status, _ := member["status"].(string)
	return MemberEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Email:      email,
		ListID:     listID,
		Status:     status,
		Member:     member,
		OccurredAt: time.Now().UTC(),
	}
}

// attributes are the routing attributes attached to queue and topic messages.
func (e MemberEvent) attributes() map[string]string {
	return map[string]string{
		"event_id": e.ID,
		"action":   e.Action,
		"list_id":  e.ListID,
	}
}
