package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}
func (s *syncBuffer) Sync() error { return nil }
func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestBuildJSON(t *testing.T) {
	buf := &syncBuffer{}
	l, cleanup := Build(Options{Level: "info", JSON: true, Output: buf})
	l.Info("hello", zap.String("k", "v"))
	l.Debug("dropped")
	cleanup()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("not json: %v", err)
	}
	if m["msg"] != "hello" || m["k"] != "v" {
		t.Fatalf("unexpected entry: %v", m)
	}
	if _, ok := m["ts"]; !ok {
		t.Fatal("expected ts key")
	}
}

func TestBuildBadLevelFallsBackToInfo(t *testing.T) {
	buf := &syncBuffer{}
	l, cleanup := Build(Options{Level: "loud", JSON: true, Output: buf})
	l.Debug("nope")
	l.Info("yes")
	cleanup()
	if strings.Contains(buf.String(), "nope") || !strings.Contains(buf.String(), "yes") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestBuildRotateWritesJSONFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	console := &syncBuffer{}
	l, cleanup := Build(Options{
		Level:  "info",
		JSON:   false,
		Output: console,
		Rotate: FileRotate{Enable: true, Filename: file, MaxSizeMB: 1},
	})
	l.Info("to-file")
	cleanup()
	b, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(b), &m); err != nil || m["msg"] != "to-file" {
		t.Fatalf("file entry should be json: %q (%v)", b, err)
	}
	if !strings.Contains(console.String(), "to-file") || strings.HasPrefix(console.String(), "{") {
		t.Fatalf("console entry: %q", console.String())
	}
}

func TestBuildFields(t *testing.T) {
	buf := &syncBuffer{}
	l, cleanup := Build(Options{Level: "info", JSON: true, Output: buf, Fields: []zap.Field{zap.String("app", "todo-rpc")}})
	l.Info("x")
	cleanup()
	if !strings.Contains(buf.String(), `"app":"todo-rpc"`) {
		t.Fatalf("missing static field: %q", buf.String())
	}
}

func TestToWriter(t *testing.T) {
	buf := &syncBuffer{}
	l, cleanup := Build(Options{Level: "debug", JSON: true, Output: buf})
	w := ToWriter(l, zapcore.WarnLevel)
	_, _ = w.Write([]byte("from std\n"))
	cleanup()
	if !strings.Contains(buf.String(), `"msg":"from std"`) {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
