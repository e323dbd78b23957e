package authflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Response is the minimal HTTP result the flow core consumes.
type Response struct {
	Status int
	Body   []byte
}

// Transport performs the provider round-trips (token exchange, profile
// fetch). Retry and timeout policy live here, not in the flow core.
type Transport interface {
	Do(ctx context.Context, method, rawURL string, params url.Values) (*Response, error)
}

type httpTransport struct {
	client *http.Client
}

// NewHTTPTransport wraps an *http.Client as a Transport. A nil client
// gets a 10 second timeout default.
func NewHTTPTransport(client *http.Client) Transport {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &httpTransport{client: client}
}

func (t *httpTransport) Do(ctx context.Context, method, rawURL string, params url.Values) (*Response, error) {
	var req *http.Request
	var err error

	switch method {
	case http.MethodPost:
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, appendQuery(rawURL, params), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{Status: resp.StatusCode, Body: body}, nil
}

func appendQuery(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + params.Encode()
}
