package mailchimp

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestParseAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		secret  string
		dc      string
		wantErr bool
	}{
		{name: "regular key", raw: "abc123-us6", secret: "abc123", dc: "us6"},
		{name: "dash in secret", raw: "ab-c123-us12", secret: "ab-c123", dc: "us12"},
		{name: "surrounding whitespace", raw: "  abc-us1 ", secret: "abc", dc: "us1"},
		{name: "no datacenter", raw: "abc123", wantErr: true},
		{name: "empty datacenter", raw: "abc123-", wantErr: true},
		{name: "empty secret", raw: "-us6", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseAPIKey(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAPIKey(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if tt.wantErr {
				if !IsValidation(err) {
					t.Fatalf("expected ValidationError, got %T", err)
				}
				return
			}
			if key.Secret != tt.secret || key.DataCenter != tt.dc {
				t.Fatalf("got %+v", key)
			}
		})
	}
}

func TestAPIKeyBaseURLAndAuth(t *testing.T) {
	key, err := ParseAPIKey("s3cret-us6")
	if err != nil {
		t.Fatalf("ParseAPIKey: %v", err)
	}
	if got := key.BaseURL(); got != "https://us6.api.mailchimp.com/3.0/" {
		t.Fatalf("BaseURL = %s", got)
	}

	header := key.AuthorizationHeader()
	if !strings.HasPrefix(header, "Basic ") {
		t.Fatalf("header = %s", header)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, "Basic "))
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	_, pass, ok := strings.Cut(string(raw), ":")
	if !ok || pass != "s3cret" {
		t.Fatalf("credential = %s", raw)
	}
	if strings.Contains(key.String(), "s3cret") {
		t.Fatalf("String leaks secret: %s", key.String())
	}
}
