// Package mailchimp subscribes and unsubscribes addresses on a Mailchimp
// list through the v3 REST API and looks up member status.
package mailchimp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tweedegolf/mailchimp-v3-subscriber/pkg/httpclient"
)

// DefaultTimeout is the per-request budget.
const DefaultTimeout = 2 * time.Second

const (
	opUpsert = "upsert"
	opLookup = "lookup"
)

// Logger is the logging capability the subscriber relies on.
type Logger interface {
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) ErrorObj(string, string, interface{}) {}

// StatusMode selects how Subscribe writes the member status.
type StatusMode string

const (
	// StatusModeOverwrite sends "status", overwriting the status of existing members.
	StatusModeOverwrite StatusMode = "overwrite"
	// StatusModeIfNew sends "status_if_new", leaving existing members untouched.
	StatusModeIfNew StatusMode = "if_new"
)

// ParseStatusMode maps a config value to a StatusMode. Empty means overwrite.
func ParseStatusMode(s string) (StatusMode, error) {
	switch StatusMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusModeOverwrite:
		return StatusModeOverwrite, nil
	case StatusModeIfNew:
		return StatusModeIfNew, nil
	default:
		return "", &ValidationError{Field: "status mode", Value: s, Reason: "expected overwrite or if_new"}
	}
}

type settings struct {
	client  httpclient.Client
	timeout time.Duration
	baseURL string
	mode    StatusMode
}

// Option configures a Subscriber.
type Option func(*settings)

// WithHTTPClient replaces the default resty transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(s *settings) {
		s.client = c
	}
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

// WithBaseURL overrides the datacenter derived API root.
func WithBaseURL(url string) Option {
	return func(s *settings) {
		s.baseURL = url
	}
}

// WithStatusMode selects status or status_if_new semantics for Subscribe.
func WithStatusMode(mode StatusMode) Option {
	return func(s *settings) {
		s.mode = mode
	}
}

// Subscriber manages members of one Mailchimp list at a time.
//
// The list id is not guarded; do not call SetList concurrently with other
// methods.
type Subscriber struct {
	log     Logger
	client  httpclient.Client
	baseURL string
	headers map[string]string
	mode    StatusMode
	listID  string
}

// New builds a Subscriber for apiKey. listID may be empty and set later.
func New(log Logger, apiKey, listID string, opts ...Option) (*Subscriber, error) {
	key, err := ParseAPIKey(apiKey)
	if err != nil {
		return nil, err
	}

	cfg := settings{
		timeout: DefaultTimeout,
		baseURL: key.BaseURL(),
		mode:    StatusModeOverwrite,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.timeout <= 0 {
		cfg.timeout = DefaultTimeout
	}
	if cfg.client == nil {
		cfg.client = httpclient.NewRestyClient(cfg.timeout)
	}
	if cfg.mode != StatusModeIfNew {
		cfg.mode = StatusModeOverwrite
	}
	if log == nil {
		log = noopLogger{}
	}

	return &Subscriber{
		log:     log,
		client:  cfg.client,
		baseURL: strings.TrimRight(cfg.baseURL, "/") + "/",
		headers: map[string]string{
			"Accept":        "application/json",
			"Authorization": key.AuthorizationHeader(),
		},
		mode:   cfg.mode,
		listID: listID,
	}, nil
}

// SetList replaces the list id used by subsequent calls.
func (s *Subscriber) SetList(listID string) {
	s.listID = listID
}

// ListID returns the active list id.
func (s *Subscriber) ListID() string {
	return s.listID
}

// Subscribe marks email as subscribed. With StatusModeIfNew only members
// created by this call get the subscribed status.
func (s *Subscriber) Subscribe(ctx context.Context, email string, mergeFields map[string]any) (MemberInfo, error) {
	return s.upsert(ctx, email, mergeFields, StatusSubscribed, s.mode == StatusModeIfNew)
}

// Unsubscribe marks email as unsubscribed.
func (s *Subscriber) Unsubscribe(ctx context.Context, email string) (MemberInfo, error) {
	return s.upsert(ctx, email, nil, StatusUnsubscribed, false)
}

// Update creates or updates the member with the given status and merge
// fields. An empty status means subscribed.
func (s *Subscriber) Update(ctx context.Context, email string, mergeFields map[string]any, status string) (MemberInfo, error) {
	if strings.TrimSpace(status) == "" {
		status = StatusSubscribed
	}
	return s.upsert(ctx, email, mergeFields, status, false)
}

// GetMemberInfo fetches the member record. A member unknown to Mailchimp
// yields an empty MemberInfo and no error.
func (s *Subscriber) GetMemberInfo(ctx context.Context, email string) (MemberInfo, error) {
	email = strings.TrimSpace(email)
	listID := strings.TrimSpace(s.listID)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateListID(listID); err != nil {
		return nil, err
	}

	resp, err := s.client.Get(ctx, s.baseURL+MemberPath(listID, email), s.headers)
	if err != nil {
		return nil, s.remoteFailure(opLookup, email, listID, 0, err.Error())
	}
	if resp.StatusCode() == http.StatusNotFound {
		return MemberInfo{}, nil
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, s.remoteFailure(opLookup, email, listID, resp.StatusCode(), statusMessage(resp))
	}
	return decodeMember(resp)
}

// IsSubscribed reports whether email is a subscribed member. Any lookup
// failure counts as not subscribed.
func (s *Subscriber) IsSubscribed(ctx context.Context, email string) bool {
	info, err := s.GetMemberInfo(ctx, email)
	if err != nil {
		return false
	}
	return info.Status() == StatusSubscribed
}

func (s *Subscriber) upsert(ctx context.Context, email string, mergeFields map[string]any, status string, ifNew bool) (MemberInfo, error) {
	email = strings.TrimSpace(email)
	listID := strings.TrimSpace(s.listID)
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateListID(listID); err != nil {
		return nil, err
	}

	body := memberRequest{
		EmailAddress: email,
		MergeFields:  mergeFields,
	}
	if ifNew {
		body.StatusIfNew = status
	} else {
		body.Status = status
	}

	resp, err := s.client.Put(ctx, s.baseURL+MemberPath(listID, email), body, s.headers)
	if err != nil {
		return nil, s.remoteFailure(opUpsert, email, listID, 0, err.Error())
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, s.remoteFailure(opUpsert, email, listID, resp.StatusCode(), statusMessage(resp))
	}
	return decodeMember(resp)
}

// remoteFailure logs the failed call once and converts it to a RemoteCallError.
func (s *Subscriber) remoteFailure(op, email, listID string, status int, msg string) error {
	rerr := &RemoteCallError{
		Op:         op,
		Email:      email,
		ListID:     listID,
		StatusCode: status,
		Message:    msg,
	}
	s.log.ErrorObj("mailchimp call failed", "mailchimp_error", map[string]any{
		"op":          op,
		"email":       email,
		"list_id":     listID,
		"status_code": status,
		"error":       rerr.Error(),
	})
	return rerr
}

func statusMessage(resp httpclient.Response) string {
	snippet := readBodySnippet(resp.Body())
	if snippet == "" {
		return fmt.Sprintf("http status %d", resp.StatusCode())
	}
	return fmt.Sprintf("http status %d: %s", resp.StatusCode(), snippet)
}

func readBodySnippet(body []byte) string {
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}

// decodeMember accepts exactly a 200 with a JSON object body.
func decodeMember(resp httpclient.Response) (MemberInfo, error) {
	code := resp.StatusCode()
	if code != http.StatusOK {
		return nil, &DecodeError{StatusCode: code, Reason: "unexpected status"}
	}
	raw := bytes.TrimSpace(resp.Body())
	if len(raw) == 0 {
		return nil, &DecodeError{StatusCode: code, Reason: "empty mailchimp response"}
	}
	var info MemberInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil, &DecodeError{StatusCode: code, Reason: "could not parse mailchimp JSON response: " + err.Error()}
	}
	if info == nil {
		return nil, &DecodeError{StatusCode: code, Reason: "response is not a JSON object"}
	}
	return info, nil
}
