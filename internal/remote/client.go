package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/storefront-next/internal/logger"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	defaultTimeout    = 15 * time.Second
	maxErrorBodyBytes = 512
)

// Client 托管集合 API 的 JSON 客户端
type Client struct {
	http *http.Client
	log  *zap.SugaredLogger
}

// ClientOptions 客户端配置
type ClientOptions struct {
	Timeout   time.Duration
	Tracing   bool
	Transport http.RoundTripper
}

// NewClient 创建客户端，开启 tracing 时请求经由 otelhttp 传输层
func NewClient(options ClientOptions) *Client {
	timeout := options.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	transport := options.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if options.Tracing {
		transport = otelhttp.NewTransport(transport,
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return "remote " + r.Method + " " + r.URL.Path
			}),
		)
	}
	return &Client{
		http: &http.Client{Timeout: timeout, Transport: transport},
		log:  logger.Component("remote"),
	}
}

// do 发送 JSON 请求；out 为 nil 时丢弃响应体
func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warnw("remote_request_failed", "method", method, "url", endpoint, "error", err)
		return err
	}
	defer resp.Body.Close()

	c.log.Debugw("remote_request_done",
		"method", method,
		"url", endpoint,
		"status", resp.StatusCode,
		"latency_ms", time.Since(started).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	return nil
}

func joinURL(base string, parts ...string) string {
	out := strings.TrimRight(strings.TrimSpace(base), "/")
	for _, part := range parts {
		out += "/" + strings.Trim(part, "/")
	}
	return out
}
