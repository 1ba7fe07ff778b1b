// Package client 调用 /api/v1/rpc 的 Go 客户端，登录态保存在 TokenStore
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const rpcPath = "/api/v1/rpc/"

// Error 服务端返回的非 0 信封
type Error struct {
	Code int    `json:"code"`
	Kind string `json:"kind"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("rpc error %d: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("rpc error %d %s: %s", e.Code, e.Kind, e.Msg)
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	auth       *Auth
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// New store 为 nil 时用内存存储
func New(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		auth:       NewAuth(store),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Auth() *Auth { return c.auth }

func (c *Client) query(ctx context.Context, proc string, in, out any) error {
	return c.do(ctx, http.MethodGet, proc, in, out)
}

func (c *Client) mutate(ctx context.Context, proc string, in, out any) error {
	return c.do(ctx, http.MethodPost, proc, in, out)
}

func (c *Client) do(ctx context.Context, method, proc string, in, out any) error {
	var raw []byte
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s input: %w", proc, err)
		}
		raw = b
	}

	target := c.baseURL + rpcPath + proc
	var body io.Reader
	if method == http.MethodGet {
		if raw != nil {
			target += "?input=" + url.QueryEscape(string(raw))
		}
	} else {
		if raw == nil {
			raw = []byte("{}")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.auth.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return &Error{Code: resp.StatusCode, Msg: strings.TrimSpace(string(b))}
	}
	if env.Code != 0 || resp.StatusCode >= 400 {
		code := env.Code
		if code == 0 {
			code = resp.StatusCode
		}
		return &Error{Code: code, Kind: env.Kind, Msg: env.Msg}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s result: %w", proc, err)
	}
	return nil
}
