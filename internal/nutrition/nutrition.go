// Package nutrition implements the keyed nutrition lookup against an
// Edamam-style nutrition-data HTTP API. The payload it returns is opaque
// to the rest of the system.
package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/mealmate-bot/mealmate/internal/config"
)

// ErrNotFound indicates the service had no nutrition data for the food.
var ErrNotFound = errors.New("no nutrition data found")

const maxResponseBytes = 1 << 20 // 1MiB

// Client performs nutrition lookups keyed by food name.
type Client struct {
	baseURL    string
	appID      string
	appKey     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a nutrition lookup client from configuration.
func NewClient(cfg config.NutritionConfig, log *slog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		appID:      cfg.AppID,
		appKey:     cfg.AppKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("component", "nutrition_client"),
	}
}

// Lookup queries the nutrition-data endpoint for the given food name and
// returns the raw JSON payload. ErrNotFound is returned when the service
// has no data for the food.
func (c *Client) Lookup(ctx context.Context, food string) (json.RawMessage, error) {
	if food == "" {
		return nil, fmt.Errorf("food name cannot be empty")
	}

	u := fmt.Sprintf("%s/api/nutrition-data?app_id=%s&app_key=%s&ingr=%s",
		c.baseURL, url.QueryEscape(c.appID), url.QueryEscape(c.appKey), url.QueryEscape(food))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create nutrition request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Nutrition lookup request failed", "food", food, "error", err)
		return nil, fmt.Errorf("nutrition lookup failed for %q: %w", food, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Failed to close nutrition response body", "error", closeErr)
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.log.ErrorContext(ctx, "Nutrition lookup returned unexpected status",
			"food", food, "status", resp.StatusCode, "body", string(body))
		return nil, fmt.Errorf("nutrition lookup for %q returned status %d", food, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read nutrition response: %w", err)
	}
	if len(body) == 0 || !json.Valid(body) {
		return nil, fmt.Errorf("nutrition lookup for %q returned invalid payload", food)
	}

	c.log.DebugContext(ctx, "Nutrition lookup succeeded", "food", food, "bytes", len(body))
	return json.RawMessage(body), nil
}
