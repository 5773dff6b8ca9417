// Package catalog fetches the live product list from the Sanity-compatible
// content API. Snapshots are taken per request and never cached, so chat
// answers are grounded on current inventory.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/dresscode-shop/gateway/internal/config"
)

// productQuery projects the fields the stylist prompt needs.
const productQuery = `*[_type == "product"] {
  _id,
  name,
  "slug": slug.current,
  price,
  description,
  categories,
  colors
}`

type Client struct {
	cfg config.CatalogConfig
	hc  *http.Client
}

func NewClient(cfg config.CatalogConfig) *Client {
	return &Client{
		cfg: cfg,
		hc:  &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchProducts queries the catalog and returns the current product list.
// Transient failures (network errors, 5xx) are retried with exponential
// backoff within the config timeout; anything else fails immediately.
func (c *Client) FetchProducts(ctx context.Context) ([]Product, error) {
	endpoint := fmt.Sprintf("%s/v%s/data/query/%s?query=%s",
		c.cfg.BaseURL, c.cfg.APIVersion, c.cfg.Dataset, url.QueryEscape(productQuery))

	var products []Product

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating catalog request: %w", err))
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return fmt.Errorf("catalog request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("catalog returned %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("catalog returned %d: %s", resp.StatusCode, body))
		}

		var envelope struct {
			Result []Product `json:"result"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return backoff.Permanent(fmt.Errorf("decoding catalog response: %w", err))
		}
		products = envelope.Result
		return nil
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = 200 * time.Millisecond
	expo.MaxElapsedTime = c.cfg.Timeout

	if err := backoff.Retry(operation, backoff.WithContext(expo, ctx)); err != nil {
		return nil, fmt.Errorf("fetching products: %w", err)
	}
	return products, nil
}
