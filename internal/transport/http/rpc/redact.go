package rpc

import (
	"encoding/json"
	"reflect"
	"strings"
)

const (
	redactedMark      = "[REDACTED]"
	defaultInputBytes = 1024
)

// Redactor 按入参结构体的 redact:"true" 标签和配置里的 key 脱敏，key 精确匹配（忽略大小写）
type Redactor struct {
	keys map[string]struct{}
	max  int
}

func NewRedactor(t reflect.Type, extra []string, maxBytes int) *Redactor {
	if maxBytes <= 0 {
		maxBytes = defaultInputBytes
	}
	r := &Redactor{keys: make(map[string]struct{}), max: maxBytes}
	for _, k := range extra {
		if k = strings.TrimSpace(k); k != "" {
			r.keys[strings.ToLower(k)] = struct{}{}
		}
	}
	if t != nil {
		collect(t, r.keys, map[reflect.Type]bool{})
	}
	return r
}

func collect(t reflect.Type, keys map[string]struct{}, seen map[reflect.Type]bool) {
	for t.Kind() == reflect.Pointer || t.Kind() == reflect.Slice || t.Kind() == reflect.Array || t.Kind() == reflect.Map {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || seen[t] {
		return
	}
	seen[t] = true
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := jsonName(f)
		if name == "" {
			continue
		}
		if f.Tag.Get("redact") == "true" {
			keys[strings.ToLower(name)] = struct{}{}
			continue
		}
		collect(f.Type, keys, seen)
	}
}

// Redact 返回可以写日志的输入
func (r *Redactor) Redact(raw []byte) string {
	if r == nil || len(raw) == 0 {
		return ""
	}
	out := raw
	if len(r.keys) > 0 {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return "[INVALID JSON]"
		}
		b, err := json.Marshal(r.walk(v))
		if err != nil {
			return "[INVALID JSON]"
		}
		out = b
	}
	if len(out) > r.max {
		return strings.ToValidUTF8(string(out[:r.max]), "") + "...(truncated)"
	}
	return string(out)
}

func (r *Redactor) walk(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, vv := range x {
			if _, ok := r.keys[strings.ToLower(k)]; ok {
				x[k] = redactedMark
				continue
			}
			x[k] = r.walk(vv)
		}
		return x
	case []any:
		for i := range x {
			x[i] = r.walk(x[i])
		}
		return x
	}
	return v
}
