// Package backend talks to the charging station's REST API. The estimator
// never mutates queue state; these are the read-only snapshot endpoints
// the UI polls.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/smartcharge/chargest/core/model"
)

// Client fetches snapshots from the station backend.
type Client struct {
	base   string
	client *http.Client
}

// NewClient creates a Client for the configured backend.
func NewClient(cfg Config) *Client {
	return &Client{
		base:   strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// EnhancedQueueStatus fetches the multi-level queue view with pile detail.
func (c *Client) EnhancedQueueStatus(ctx context.Context) (*model.QueueSnapshot, error) {
	var qs model.QueueSnapshot
	if err := c.get(ctx, "/charging/queue/enhanced/", &qs); err != nil {
		return nil, fmt.Errorf("enhanced queue status: %w", err)
	}
	return &qs, nil
}

// QueueStatus fetches the legacy aggregate queue view. Used as a fallback
// for backends that predate the enhanced endpoint.
func (c *Client) QueueStatus(ctx context.Context) (*model.QueueSnapshot, error) {
	var qs model.QueueSnapshot
	if err := c.get(ctx, "/charging/queue/status/", &qs); err != nil {
		return nil, fmt.Errorf("queue status: %w", err)
	}
	return &qs, nil
}

// SystemParameters fetches pricing, power ratings and tariff boundaries.
func (c *Client) SystemParameters(ctx context.Context) (*model.SystemParameters, error) {
	var p model.SystemParameters
	if err := c.get(ctx, "/charging/system_parameters/", &p); err != nil {
		return nil, fmt.Errorf("system parameters: %w", err)
	}
	return &p, nil
}

// PilesStatus is the raw per-mode pile listing.
type PilesStatus struct {
	Fast []model.Pile `json:"fast"`
	Slow []model.Pile `json:"slow"`
}

// PileStatus fetches the per-pile status listing.
func (c *Client) PileStatus(ctx context.Context) (*PilesStatus, error) {
	var p PilesStatus
	if err := c.get(ctx, "/charging/piles/status/", &p); err != nil {
		return nil, fmt.Errorf("pile status: %w", err)
	}
	return &p, nil
}
