package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/use-agent/harvest/models"
)

// client talks to the viewer API started by `harvest serve`.
type client struct {
	http   *http.Client
	apiURL string
	apiKey string
}

func newClient(apiURL, apiKey string) *client {
	return &client{
		http:   &http.Client{Timeout: 30 * time.Second},
		apiURL: strings.TrimRight(apiURL, "/"),
		apiKey: apiKey,
	}
}

// envelope is the subset every viewer response shares.
type envelope struct {
	Success bool                `json:"success"`
	Error   *models.ErrorDetail `json:"error"`
}

// get fetches path with query and decodes the JSON body into out. A body
// with success=false is turned into an error carrying its code.
func (c *client) get(ctx context.Context, path string, query url.Values, out any) error {
	target := c.apiURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("parse response (status %d): %w", resp.StatusCode, err)
	}
	if !env.Success {
		if env.Error != nil {
			return fmt.Errorf("[%s] %s", env.Error.Code, env.Error.Message)
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return json.Unmarshal(body, out)
}

func (c *client) files(ctx context.Context) (*models.FilesResponse, error) {
	var out models.FilesResponse
	if err := c.get(ctx, "/api/v1/files", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) preview(ctx context.Context, name string, rows int) (*models.PreviewResponse, error) {
	q := url.Values{}
	if rows > 0 {
		q.Set("rows", fmt.Sprint(rows))
	}
	var out models.PreviewResponse
	if err := c.get(ctx, "/api/v1/files/"+url.PathEscape(name)+"/preview", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) series(ctx context.Context, name, x, y string, limit int) (*models.SeriesResponse, error) {
	q := url.Values{"x": {x}, "y": {y}}
	if limit > 0 {
		q.Set("limit", fmt.Sprint(limit))
	}
	var out models.SeriesResponse
	if err := c.get(ctx, "/api/v1/files/"+url.PathEscape(name)+"/series", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
