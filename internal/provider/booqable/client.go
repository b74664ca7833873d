// Package booqable implements the business-operations provider against
// the Booqable rental REST API.
package booqable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/flatout-solutions/rental-assistant/internal/provider"
)

// client wraps the retrying HTTP client with Booqable request plumbing:
// base URL joining and api_key authentication on every request.
type client struct {
	baseURL string
	apiKey  string
	http    *provider.RetryingClient
}

func newClient(baseURL, apiKey string, rc *provider.RetryingClient) *client {
	return &client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    rc,
	}
}

func (c *client) endpoint(path string, params url.Values) string {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	return c.baseURL + "/" + path + "?" + params.Encode()
}

func (c *client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint := c.endpoint(path, params)
	body, err := c.http.Do(func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unexpected response from %s: %w", path, err)
	}
	return nil
}

func (c *client) post(ctx context.Context, path string, payload any, out any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request for %s: %w", path, err)
	}
	endpoint := c.endpoint(path, nil)
	body, err := c.http.Do(func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("unexpected response from %s: %w", path, err)
	}
	return nil
}
