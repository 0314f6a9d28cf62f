package chain

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

	"LiquiMind/internal/model"
)

// HTTPClient talks to a signing gateway in front of the Supra RPC node.
type HTTPClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewHTTPClient creates a gateway client with optional proxy support.
func NewHTTPClient(baseURL, token, proxyURL string) *HTTPClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

type callRequest struct {
	Function string `json:"function"`
	Args     []any  `json:"args"`
	Signer   string `json:"signer,omitempty"`
}

type callResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error,omitempty"`
}

// Call invokes module::function. An empty signer performs a read-only view call.
func (c *HTTPClient) Call(ctx context.Context, module, function string, args []any, signer string) (json.RawMessage, error) {
	body, err := json.Marshal(callRequest{
		Function: module + "::" + function,
		Args:     args,
		Signer:   signer,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal call: %w", err)
	}
	path := "/v1/view"
	if signer != "" {
		path = "/v1/call"
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out callResponse
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("call %s::%s: %w", module, function, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("call %s::%s: rejected: %s", module, function, out.Error)
	}
	return out.Result, nil
}

// Query returns up to limit of the most recent events of eventType.
func (c *HTTPClient) Query(ctx context.Context, eventType string, limit int) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/v1/events?type=%s&limit=%d", c.BaseURL, url.QueryEscape(eventType), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Events []json.RawMessage `json:"events"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, fmt.Errorf("query %s: %w", eventType, err)
	}
	return out.Events, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", model.ErrCollaboratorUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d, body: %s", model.ErrCollaboratorUnavailable, resp.StatusCode, string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(respBody))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
