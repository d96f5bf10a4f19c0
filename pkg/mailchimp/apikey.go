package mailchimp

import (
	"encoding/base64"
	"strings"
)

// APIRoot is the host suffix shared by every Mailchimp datacenter.
const APIRoot = "api.mailchimp.com/3.0/"

// basicAuthUser is ignored by Mailchimp; only the password is checked.
const basicAuthUser = "apikey"

// APIKey is a Mailchimp key split into its credential and datacenter parts.
type APIKey struct {
	Secret     string
	DataCenter string
}

// ParseAPIKey splits a key of the form <secret>-<datacenter>.
func ParseAPIKey(raw string) (APIKey, error) {
	raw = strings.TrimSpace(raw)
	idx := strings.LastIndex(raw, "-")
	if idx <= 0 || idx == len(raw)-1 {
		return APIKey{}, &ValidationError{
			Field:  "api key",
			Reason: "expected the form <key>-<datacenter>",
		}
	}
	return APIKey{Secret: raw[:idx], DataCenter: raw[idx+1:]}, nil
}

// BaseURL returns the datacenter specific API root, ending in a slash.
func (k APIKey) BaseURL() string {
	return "https://" + k.DataCenter + "." + APIRoot
}

// AuthorizationHeader returns the HTTP Basic credential for the key secret.
func (k APIKey) AuthorizationHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(basicAuthUser+":"+k.Secret))
}

// String redacts the secret.
func (k APIKey) String() string {
	return "***-" + k.DataCenter
}
