package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func TestRedactEmail(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"jane.doe@example.com", "ja***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
	}
	for _, c := range cases {
		if got := RedactEmail(c.in); got != c.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLogRedactsEmailFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Info("subscriber created", "email", "jane.doe@example.com")

	var entry map[string]string
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["email"] != "ja***@example.com" {
		t.Errorf("email field not redacted: %q", entry["email"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %q, want INFO", entry["level"])
	}
}

func TestLogRedactsEmbeddedEmails(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	Error("send failed", "error", "smtp: rejected jane.doe@example.com")

	if strings.Contains(buf.String(), "jane.doe@example.com") {
		t.Errorf("embedded email leaked into log output: %s", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(WARN)
	defer func() {
		SetOutput(os.Stderr)
		SetLevel(INFO)
	}()

	Info("should be dropped")
	if buf.Len() != 0 {
		t.Errorf("INFO entry emitted below WARN level: %s", buf.String())
	}

	Warn("should be emitted")
	if buf.Len() == 0 {
		t.Error("WARN entry was not emitted")
	}
}
