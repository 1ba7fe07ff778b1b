package mailer

import (
	"bytes"
	"strings"
	"testing"
)

func TestBuildVerification(t *testing.T) {
	m, err := New("localhost", 2525, "", "", "Todo <no-reply@example.com>")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	msg, err := m.build("verify_email.tmpl", "a@x.com", verifyData{Name: "Alice", Link: "http://x/verify?token=abc"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := msg.GetHeader("To"); len(got) != 1 || got[0] != "a@x.com" {
		t.Fatalf("To = %v", got)
	}
	if got := msg.GetHeader("Subject"); len(got) != 1 || got[0] != "Confirm your email address" {
		t.Fatalf("Subject = %v", got)
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !strings.Contains(buf.String(), "Hi Alice") {
		t.Fatalf("body missing name: %s", buf.String())
	}
}

func TestBuildUnknownTemplate(t *testing.T) {
	m, err := New("localhost", 2525, "", "", "x@example.com")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := m.build("nope.tmpl", "a@x.com", nil); err == nil {
		t.Fatal("expected error for unknown template")
	}
}
