package kong

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// AdminTokenHeader carries the admin token when the Admin API is protected by RBAC.
const AdminTokenHeader = "Kong-Admin-Token"

var (
	// ErrAPI is returned for any non-2xx answer of the Admin API.
	ErrAPI = errors.New("kong admin API error")
	// ErrAdminURLRequired is returned when no admin URL is configured.
	ErrAdminURLRequired = errors.New("kong admin URL is required")
)

// Client talks to one Kong Admin API.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
}

// NewClient returns a client for adminURL. A nil httpClient uses http.DefaultClient.
func NewClient(adminURL, token string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(adminURL) == "" {
		return nil, ErrAdminURLRequired
	}

	parsed, err := url.Parse(strings.TrimRight(adminURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse kong admin URL: %w", err)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: parsed, token: token, http: httpClient}, nil
}

// do sends a request and returns the body of a 2xx answer.
// A 404 is reported as found=false instead of an error.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, bool, error) {
	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, false, fmt.Errorf("encode %s %s: %w", method, path, err)
		}

		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, false, fmt.Errorf("build %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != "" {
		req.Header.Set(AdminTokenHeader, c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read %s %s: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		return nil, false, nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		message := gjson.GetBytes(payload, "message").String()
		if message == "" {
			message = strings.TrimSpace(string(payload))
		}

		return nil, false, fmt.Errorf("%w: %s %s returned %d: %s", ErrAPI, method, path, resp.StatusCode, message)
	default:
		return payload, true, nil
	}
}
