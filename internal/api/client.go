// Package api is the authenticated HTTP transport for the Cloud Manager API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/waabox/cmdeck/internal/domain"
	"github.com/waabox/cmdeck/internal/hal"
	"github.com/waabox/cmdeck/internal/logging"
)

// DefaultBaseURL is the production Cloud Manager API.
const DefaultBaseURL = "https://cloudmanager.adobe.io"

const (
	headerOrgID  = "x-gw-ims-org-id"
	headerAPIKey = "x-api-key"
)

// Credentials identify the caller to the API.
type Credentials struct {
	OrgID       string
	APIKey      string
	AccessToken string
}

// Client issues JSON requests against the API. Relative hrefs found in
// documents are resolved against the base URL the client was built with.
type Client struct {
	baseURL *url.URL
	creds   Credentials
	client  *http.Client
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// NewClient creates an API client. Pass an empty baseURL to use DefaultBaseURL.
func NewClient(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL: u,
		creds:   creds,
		client:  newHTTPClient(),
		logger:  logging.New("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newHTTPClient returns a client that hands redirects back to the caller.
// Following them would replay a PUT or PATCH as a GET.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Resolve turns href into an absolute URL.
func (c *Client) Resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parsing href %q: %w", href, err)
	}
	return c.baseURL.ResolveReference(ref).String(), nil
}

// Get fetches href and parses the body as a HAL document.
func (c *Client) Get(ctx context.Context, href string) (hal.Document, error) {
	return c.GetQuery(ctx, href, nil)
}

// GetQuery fetches href with query merged into its query string.
func (c *Client) GetQuery(ctx context.Context, href string, query url.Values) (hal.Document, error) {
	abs, err := c.Resolve(href)
	if err != nil {
		return hal.Document{}, err
	}
	if len(query) > 0 {
		u, _ := url.Parse(abs)
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		abs = u.String()
	}
	return c.do(ctx, http.MethodGet, abs, nil)
}

// Send issues a mutating request with body encoded as JSON. The returned
// document is empty when the server sends no body.
func (c *Client) Send(ctx context.Context, method string, href string, body any) (hal.Document, error) {
	abs, err := c.Resolve(href)
	if err != nil {
		return hal.Document{}, err
	}
	return c.do(ctx, method, abs, body)
}

func (c *Client) do(ctx context.Context, method string, abs string, body any) (hal.Document, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return hal.Document{}, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, abs, reader)
	if err != nil {
		return hal.Document{}, fmt.Errorf("creating request: %w", err)
	}
	c.authorize(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return hal.Document{}, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()
	c.logger.Debug("api request", "method", method, "url", abs, "status", resp.StatusCode)

	if err := checkStatus(method, abs, resp); err != nil {
		return hal.Document{}, err
	}
	if resp.ContentLength == 0 || resp.StatusCode == http.StatusNoContent {
		return hal.Document{}, nil
	}
	doc, err := hal.Read(resp.Body)
	if errors.Is(err, hal.ErrEmpty) {
		return hal.Document{}, nil
	}
	return doc, err
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set(headerOrgID, c.creds.OrgID)
	req.Header.Set(headerAPIKey, c.creds.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.creds.AccessToken)
	req.Header.Set("Accept", "application/json")
}

func checkStatus(method string, abs string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	reqErr := &domain.RequestError{
		Method:     method,
		URL:        abs,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Err:        domain.ErrRequestFailed,
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		reqErr.Err = domain.ErrUnauthorized
	case http.StatusNotFound:
		reqErr.Err = domain.ErrNotFound
	}
	return reqErr
}
