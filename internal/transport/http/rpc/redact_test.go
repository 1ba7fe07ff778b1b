package rpc

import (
	"reflect"
	"strings"
	"testing"
)

type nested struct {
	Token string `json:"token" redact:"true"`
	Note  string `json:"note"`
}

type loginInput struct {
	Email    string  `json:"email"`
	Password string  `json:"password" redact:"true"`
	Inner    *nested `json:"inner"`
}

func TestRedactTaggedFields(t *testing.T) {
	r := NewRedactor(reflect.TypeOf(loginInput{}), nil, 0)
	got := r.Redact([]byte(`{"email":"a@x.com","password":"hunter2","inner":{"token":"abc","note":"ok"}}`))
	if strings.Contains(got, "hunter2") || strings.Contains(got, "abc") {
		t.Fatalf("secret leaked: %s", got)
	}
	if !strings.Contains(got, "a@x.com") || !strings.Contains(got, `"note":"ok"`) {
		t.Fatalf("plain fields lost: %s", got)
	}
}

func TestRedactConfigKeysExactMatch(t *testing.T) {
	r := NewRedactor(nil, []string{"apiKey"}, 0)
	got := r.Redact([]byte(`{"apikey":"s1","apiKeyHint":"visible"}`))
	if strings.Contains(got, "s1") {
		t.Fatalf("configured key leaked: %s", got)
	}
	if !strings.Contains(got, "visible") {
		t.Fatalf("non-matching key was redacted: %s", got)
	}
}

func TestRedactTruncates(t *testing.T) {
	r := NewRedactor(nil, nil, 10)
	got := r.Redact([]byte(`{"name":"a very long todo name"}`))
	if !strings.HasSuffix(got, "...(truncated)") || len(got) != 10+len("...(truncated)") {
		t.Fatalf("got %q", got)
	}
}

func TestRedactInvalidJSON(t *testing.T) {
	r := NewRedactor(reflect.TypeOf(loginInput{}), nil, 0)
	if got := r.Redact([]byte(`{"password":`)); got != "[INVALID JSON]" {
		t.Fatalf("got %q", got)
	}
}
