package mailchimp

import (
	"errors"
	"fmt"
)

// ValidationError reports input rejected before any request was sent.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s is not a valid %s: %s", e.Value, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RemoteCallError reports a transport failure or an HTTP error status from
// the Mailchimp API. Only the text of the underlying failure is kept.
type RemoteCallError struct {
	Op         string
	Email      string
	ListID     string
	StatusCode int
	Message    string
}

func (e *RemoteCallError) Error() string {
	switch e.Op {
	case opLookup:
		return fmt.Sprintf("obtaining member info for %s from list %s failed: %s", e.Email, e.ListID, e.Message)
	default:
		return fmt.Sprintf("subscribing %s to list %s failed: %s", e.Email, e.ListID, e.Message)
	}
}

// DecodeError reports a response that could not be turned into a member.
type DecodeError struct {
	StatusCode int
	Reason     string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode mailchimp response (status %d): %s", e.StatusCode, e.Reason)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

// IsRemoteCall reports whether err is a RemoteCallError.
func IsRemoteCall(err error) bool {
	var target *RemoteCallError
	return errors.As(err, &target)
}

// IsDecode reports whether err is a DecodeError.
func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}
