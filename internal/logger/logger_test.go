package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerEmitsStructuredField(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	log.ErrorObj("mailchimp call failed", "mailchimp_error", map[string]any{
		"email":   "a@b.com",
		"list_id": "l1",
	})

	entries := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 error entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	obj, ok := fields["mailchimp_error"].(map[string]any)
	if !ok {
		t.Fatalf("field missing: %#v", fields)
	}
	if obj["email"] != "a@b.com" || obj["list_id"] != "l1" {
		t.Fatalf("unexpected field value %#v", obj)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New("warn", &buf)

	log.InfoObj("dropped", "k", 1)
	log.WarnObj("kept", "k", 2)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["msg"] != "kept" || line["level"] != "warn" {
		t.Fatalf("unexpected line %#v", line)
	}
	if _, ok := line["ts"]; !ok {
		t.Fatalf("missing ts key: %#v", line)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
