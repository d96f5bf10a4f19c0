package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tweedegolf/mailchimp-v3-subscriber/pkg/mailchimp"
)

type fakeService struct {
	listID     string
	email      string
	fields     map[string]any
	status     string
	member     mailchimp.MemberInfo
	err        error
	subscribed bool
	closed     bool
}

func (f *fakeService) UseList(listID string) { f.listID = listID }
func (f *fakeService) Subscribe(_ context.Context, email string, fields map[string]any) (mailchimp.MemberInfo, error) {
	f.email, f.fields = email, fields
	return f.member, f.err
}
func (f *fakeService) Unsubscribe(_ context.Context, email string) (mailchimp.MemberInfo, error) {
	f.email = email
	return f.member, f.err
}
func (f *fakeService) Update(_ context.Context, email string, fields map[string]any, status string) (mailchimp.MemberInfo, error) {
	f.email, f.fields, f.status = email, fields, status
	return f.member, f.err
}
func (f *fakeService) MemberInfo(_ context.Context, email string) (mailchimp.MemberInfo, error) {
	f.email = email
	return f.member, f.err
}
func (f *fakeService) IsSubscribed(_ context.Context, email string) bool {
	f.email = email
	return f.subscribed
}
func (f *fakeService) Close() error {
	f.closed = true
	return nil
}

func execute(t *testing.T, svc *fakeService, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand(func(context.Context) (service, error) { return svc, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubscribeCommand(t *testing.T) {
	svc := &fakeService{member: mailchimp.MemberInfo{"status": "subscribed"}}
	out, err := execute(t, svc, "subscribe", "a@b.com", "--list", "l9", "-m", "FNAME=Jo", "-m", "LNAME=Doe=Smith")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.listID != "l9" || svc.email != "a@b.com" {
		t.Fatalf("unexpected call %+v", svc)
	}
	if svc.fields["FNAME"] != "Jo" || svc.fields["LNAME"] != "Doe=Smith" {
		t.Fatalf("merge fields = %#v", svc.fields)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil || got["status"] != "subscribed" {
		t.Fatalf("output = %q err=%v", out, err)
	}
	if !svc.closed {
		t.Fatalf("service not closed")
	}
}

func TestUpdateCommandDefaultsStatus(t *testing.T) {
	svc := &fakeService{member: mailchimp.MemberInfo{}}
	if _, err := execute(t, svc, "update", "a@b.com"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.status != mailchimp.StatusSubscribed || svc.fields != nil {
		t.Fatalf("unexpected call %+v", svc)
	}

	if _, err := execute(t, svc, "update", "a@b.com", "--status", "pending"); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.status != "pending" {
		t.Fatalf("status = %s", svc.status)
	}
}

func TestInfoCommandPrintsEmptyObject(t *testing.T) {
	svc := &fakeService{member: mailchimp.MemberInfo{}}
	out, err := execute(t, svc, "info", "a@b.com")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "{}\n" {
		t.Fatalf("output = %q", out)
	}
}

func TestStatusCommand(t *testing.T) {
	svc := &fakeService{subscribed: true}
	out, err := execute(t, svc, "status", "a@b.com")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil || got["subscribed"] != true {
		t.Fatalf("output = %q err=%v", out, err)
	}
}

func TestCommandErrors(t *testing.T) {
	svc := &fakeService{err: &mailchimp.ValidationError{Field: "email address", Value: "nope", Reason: "syntax check failed"}}
	if _, err := execute(t, svc, "unsubscribe", "nope"); !mailchimp.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := execute(t, &fakeService{}, "subscribe", "a@b.com", "-m", "novalue"); err == nil {
		t.Fatalf("expected merge field parse error")
	}
	if _, err := execute(t, &fakeService{}, "subscribe"); err == nil {
		t.Fatalf("expected missing argument error")
	}

	cmd := newRootCommand(func(context.Context) (service, error) { return nil, errors.New("no config") })
	cmd.SetArgs([]string{"status", "a@b.com"})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected open error")
	}
}

func TestParseMergeFields(t *testing.T) {
	fields, err := parseMergeFields(nil)
	if err != nil || fields != nil {
		t.Fatalf("empty input should yield nil, got %#v %v", fields, err)
	}
	if _, err := parseMergeFields([]string{"=x"}); err == nil {
		t.Fatalf("expected error for empty key")
	}
}
