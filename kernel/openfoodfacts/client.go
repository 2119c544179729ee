package openfoodfacts

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
)

const defaultUserAgent = "grocy-scanner/1.0 (home assistant add-on)"

// Product is the subset of an Open Food Facts product the scanner reports.
type Product struct {
	Code        string `json:"code"`
	ProductName string `json:"product_name"`
	Brands      string `json:"brands,omitempty"`
	Quantity    string `json:"quantity,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

type productResponse struct {
	Status        int     `json:"status"`
	StatusVerbose string  `json:"status_verbose"`
	Code          string  `json:"code"`
	Product       Product `json:"product"`
}

// Client looks products up in the public Open Food Facts database.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		trimmed = model.DefaultOpenFoodFacts
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse open food facts url %q: %w", baseURL, err)
	}
	return &Client{
		baseURL:   trimmed,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}, nil
}

// Lookup returns the product for barcode, or model.ErrProductNotFound.
func (c *Client) Lookup(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, model.ErrMissingBarcode
	}
	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, model.ErrProductNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("open food facts returned status %d", resp.StatusCode)
	}

	var payload productResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != 1 {
		return nil, model.ErrProductNotFound
	}
	if payload.Product.Code == "" {
		payload.Product.Code = barcode
	}
	return &payload.Product, nil
}
