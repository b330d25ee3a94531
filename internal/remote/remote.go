// Package remote queries the release catalog for installable versions. The
// catalog is a JSON object keyed by version strings (php.net's release
// index by default); only the keys matter here.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"phpvm/internal/phpver"
)

type Client struct {
	HTTP *http.Client
	URL  string
}

func NewClient(httpClient *http.Client, url string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{HTTP: httpClient, URL: url}
}

// Versions fetches the catalog and returns its version keys, normalized and
// sorted newest-first.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("RMT_REQUEST: %w", err)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RMT_FETCH: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("RMT_FETCH: catalog returned %s", resp.Status)
	}

	var catalog map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("RMT_PARSE: %w", err)
	}
	versions := make([]string, 0, len(catalog))
	for key := range catalog {
		if v := phpver.Normalize(key); v != "" {
			versions = append(versions, v)
		}
	}
	phpver.SortDesc(versions)
	return versions, nil
}
