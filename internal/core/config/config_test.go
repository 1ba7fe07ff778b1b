package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestReadAppliesDefaults(t *testing.T) {
	p := writeYAML(t, `
jwt:
  secret: 0123456789abcdef0123
db:
  driver: memory
`)
	c, err := Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.App.HTTP.Port != 8080 {
		t.Fatalf("default port = %d", c.App.HTTP.Port)
	}
	if c.JWT.Issuer != "todo-rpc" || c.JWT.AccessTokenTTLMin != 1440 {
		t.Fatalf("jwt defaults not applied: %+v", c.JWT)
	}
	if c.Log.MaxInputBytes != 1024 {
		t.Fatalf("maxInputBytes = %d", c.Log.MaxInputBytes)
	}
	if c.Limits.MaxConcurrent != 300 {
		t.Fatalf("maxConcurrent = %d", c.Limits.MaxConcurrent)
	}
}

func TestReadEnvOverride(t *testing.T) {
	p := writeYAML(t, `
jwt:
  secret: 0123456789abcdef0123
db:
  driver: memory
`)
	t.Setenv("APP_JWT_ISSUER", "from-env")
	c, err := Read(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.JWT.Issuer != "from-env" {
		t.Fatalf("issuer = %q, want from-env", c.JWT.Issuer)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"short secret", Config{JWT: JWT{Secret: "short"}, DB: DB{Driver: "memory"}}, false},
		{"bad driver", Config{JWT: JWT{Secret: "0123456789abcdef"}, DB: DB{Driver: "sqlite"}}, false},
		{"missing dsn", Config{JWT: JWT{Secret: "0123456789abcdef"}, DB: DB{Driver: "postgres"}}, false},
		{"memory ok", Config{JWT: JWT{Secret: "0123456789abcdef"}, DB: DB{Driver: "memory"}}, true},
		{"postgres ok", Config{JWT: JWT{Secret: "0123456789abcdef"}, DB: DB{Driver: "postgres", DSN: "postgres://x"}}, true},
	}
	for _, c := range cases {
		err := c.cfg.Validate()
		if (err == nil) != c.ok {
			t.Fatalf("%s: err=%v, want ok=%v", c.name, err, c.ok)
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
