package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/tweedegolf/mailchimp-v3-subscriber/internal/config"
	"github.com/tweedegolf/mailchimp-v3-subscriber/internal/logger"
	"github.com/tweedegolf/mailchimp-v3-subscriber/pkg/mailchimp"
	"github.com/tweedegolf/mailchimp-v3-subscriber/pkg/publishers"
)

// MemberClient is the subset of mailchimp.Subscriber the service drives.
type MemberClient interface {
	SetList(listID string)
	ListID() string
	Subscribe(ctx context.Context, email string, mergeFields map[string]any) (mailchimp.MemberInfo, error)
	Unsubscribe(ctx context.Context, email string) (mailchimp.MemberInfo, error)
	Update(ctx context.Context, email string, mergeFields map[string]any, status string) (mailchimp.MemberInfo, error)
	GetMemberInfo(ctx context.Context, email string) (mailchimp.MemberInfo, error)
	IsSubscribed(ctx context.Context, email string) bool
}

// EventPublisher publishes member events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.MemberEvent) (int, error)
	Size() int
	Close() error
}

// Membership wires the Mailchimp client and the event publishers together.
// Every accepted membership change is announced to all publishers.
type Membership struct {
	client MemberClient
	events EventPublisher
	log    logger.Logger
}

// NewMembership builds the runtime from config.
func NewMembership(ctx context.Context, cfg *config.Config, log logger.Logger) (*Membership, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	mode, err := mailchimp.ParseStatusMode(cfg.StatusMode)
	if err != nil {
		return nil, err
	}
	opts := []mailchimp.Option{
		mailchimp.WithTimeout(cfg.RequestTimeout),
		mailchimp.WithStatusMode(mode),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, mailchimp.WithBaseURL(cfg.BaseURL))
	}
	client, err := mailchimp.New(log, cfg.APIKey, cfg.ListID, opts...)
	if err != nil {
		return nil, fmt.Errorf("init mailchimp client: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	return newMembership(client, fanout, log), nil
}

func newMembership(client MemberClient, events EventPublisher, log logger.Logger) *Membership {
	if events == nil {
		events = publishers.NewFanout(nil)
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	return &Membership{client: client, events: events, log: log}
}

// buildFanout loads the publishers file, if any, and builds enabled publishers.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// UseList switches the active list when listID is not empty.
func (m *Membership) UseList(listID string) {
	if listID = strings.TrimSpace(listID); listID != "" {
		m.client.SetList(listID)
	}
}

// Subscribe subscribes email and announces the change.
func (m *Membership) Subscribe(ctx context.Context, email string, mergeFields map[string]any) (mailchimp.MemberInfo, error) {
	info, err := m.client.Subscribe(ctx, email, mergeFields)
	if err != nil {
		return nil, err
	}
	m.announce(ctx, publishers.ActionSubscribed, email, info)
	return info, nil
}

// Unsubscribe unsubscribes email and announces the change.
func (m *Membership) Unsubscribe(ctx context.Context, email string) (mailchimp.MemberInfo, error) {
	info, err := m.client.Unsubscribe(ctx, email)
	if err != nil {
		return nil, err
	}
	m.announce(ctx, publishers.ActionUnsubscribed, email, info)
	return info, nil
}

// Update upserts email with status and merge fields and announces the change.
func (m *Membership) Update(ctx context.Context, email string, mergeFields map[string]any, status string) (mailchimp.MemberInfo, error) {
	info, err := m.client.Update(ctx, email, mergeFields, status)
	if err != nil {
		return nil, err
	}
	m.announce(ctx, publishers.ActionUpdated, email, info)
	return info, nil
}

// MemberInfo returns the member record, empty when unknown.
func (m *Membership) MemberInfo(ctx context.Context, email string) (mailchimp.MemberInfo, error) {
	return m.client.GetMemberInfo(ctx, email)
}

// IsSubscribed reports whether email is subscribed to the active list.
func (m *Membership) IsSubscribed(ctx context.Context, email string) bool {
	return m.client.IsSubscribed(ctx, email)
}

// Close releases publisher connections.
func (m *Membership) Close() error {
	if m == nil || m.events == nil {
		return nil
	}
	return m.events.Close()
}

// announce publishes the change. Failures are logged and never fail the
// membership operation, which Mailchimp has already accepted.
func (m *Membership) announce(ctx context.Context, action, email string, info mailchimp.MemberInfo) {
	if m.events.Size() == 0 {
		return
	}
	evt := publishers.NewMemberEvent(action, strings.TrimSpace(email), m.client.ListID(), info)
	delivered, err := m.events.Publish(ctx, evt)
	if err != nil {
		m.log.WarnObj("member event delivery incomplete", "event_delivery", map[string]any{
			"event_id":  evt.ID,
			"action":    action,
			"delivered": delivered,
			"error":     err.Error(),
		})
		return
	}
	m.log.DebugObj("member event delivered", "event_delivery", map[string]any{
		"event_id":  evt.ID,
		"action":    action,
		"delivered": delivered,
	})
}
