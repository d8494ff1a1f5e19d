package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"expensetrack/internal/core"
	"expensetrack/internal/identity"
	"expensetrack/internal/source"
)

const rawPath = "/analytics/raw"

// Client fetches raw analytics pages from a remote expenses API over HTTP.
// Requests carry the identity provider's bearer token so the upstream scopes
// the feed to the current user.
type Client struct {
	baseURL  string
	identity identity.Provider
	httpc    *http.Client
}

var _ source.PageFetcher = (*Client)(nil)

// New creates a client for the API rooted at baseURL.
func New(baseURL string, id identity.Provider) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("missing analytics API base URL")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse analytics API base URL: %w", err)
	}
	return &Client{
		baseURL:  baseURL,
		identity: id,
		httpc:    newPooledHTTPClient(),
	}, nil
}

// newPooledHTTPClient builds an HTTP client with connection pooling and
// per-phase timeouts suited to a chatty paginated feed.
func newPooledHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// FetchPage requests one page of the raw feed. An empty cursor asks for the
// first page; otherwise the cursor from the previous page is passed through
// opaquely.
func (c *Client) FetchPage(ctx context.Context, limit int, cursor string) (core.RawPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		q.Set("cursor", cursor)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+rawPath+"?"+q.Encode(), nil)
	if err != nil {
		return core.RawPage{}, fmt.Errorf("build raw page request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.identity.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return core.RawPage{}, fmt.Errorf("fetch raw page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return core.RawPage{}, &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var page core.RawPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return core.RawPage{}, fmt.Errorf("decode raw page: %w", err)
	}
	return page, nil
}

// StatusError reports a non-2xx response from the upstream API.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("analytics API returned status %d", e.Status)
	}
	return fmt.Sprintf("analytics API returned status %d: %s", e.Status, e.Body)
}
