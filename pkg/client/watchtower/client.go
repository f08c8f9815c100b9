// Package watchtower triggers image updates through the Watchtower HTTP API.
package watchtower

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	updatePath     = "/v1/update"
	maxBodyExcerpt = 512
)

var (
	// ErrUpdateFailed is returned when Watchtower answers the update request with a non-2xx status.
	ErrUpdateFailed = errors.New("watchtower update failed")
	// ErrTokenRequired is returned when no API token is configured.
	ErrTokenRequired = errors.New("watchtower API token is required")
	// ErrURLRequired is returned when no Watchtower URL is configured.
	ErrURLRequired = errors.New("watchtower URL is required")
)

// Client calls one Watchtower instance.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a client for the Watchtower at baseURL.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrURLRequired
	}

	if token == "" {
		return nil, ErrTokenRequired
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), token: token, http: httpClient}, nil
}

// Update asks Watchtower to check for new images now. When images is not empty only
// containers running those images are updated.
func (c *Client) Update(ctx context.Context, images ...string) error {
	target := c.baseURL + updatePath
	if len(images) > 0 {
		target += "?" + url.Values{"image": {strings.Join(images, ",")}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	defer func() { _ = resp.Body.Close() }()

	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf(
			"%w: HTTP %d: %s",
			ErrUpdateFailed, resp.StatusCode, strings.TrimSpace(string(excerpt)),
		)
	}

	return nil
}
