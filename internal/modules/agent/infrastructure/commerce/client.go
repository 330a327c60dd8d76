package commerce

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

	"StorePilot/internal/config"
)

// Client 商城后端 Admin API 客户端
type Client struct {
	baseURL  string
	apiToken string
	httpCli  *http.Client
}

func NewClient(conf *config.Config) *Client {
	timeout := 15 * time.Second
	if conf.CommerceConfig.TimeoutSeconds > 0 {
		timeout = time.Duration(conf.CommerceConfig.TimeoutSeconds) * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(conf.CommerceConfig.BaseURL, "/"),
		apiToken: conf.CommerceConfig.APIToken,
		httpCli:  &http.Client{Timeout: timeout},
	}
}

// Get 发送 GET 请求，query 为 URL 参数
func (c *Client) Get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// Post 发送 POST 请求，body 会被 JSON 编码
func (c *Client) Post(ctx context.Context, path string, body interface{}) (json.RawMessage, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("commerce api %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, truncateBody(data))
	}
	return data, nil
}

func truncateBody(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
