package supervisor

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

// Registry lists and locates sibling add-ons. It is implemented by *Client.
type Registry interface {
	ListAddons(ctx context.Context) ([]Addon, error)
	AddonInfo(ctx context.Context, slug string) (*AddonInfo, error)
}

var _ Registry = (*Client)(nil)

// Addon is one entry of GET /addons.
type Addon struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	State   string `json:"state"`
	Version string `json:"version"`
}

// AddonInfo is the subset of GET /addons/{slug}/info the scanner needs.
type AddonInfo struct {
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Hostname  string `json:"hostname"`
	IPAddress string `json:"ip_address"`
}

type envelope struct {
	Result  string          `json:"result"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type addonList struct {
	Addons []Addon `json:"addons"`
}

// Client talks to the Supervisor HTTP API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	token   string
}

// NewClient builds a Client for the supervisor at rawURL, authenticating with token.
func NewClient(rawURL, token string, timeout time.Duration) (*Client, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		trimmed = model.DefaultSupervisorURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	base, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse supervisor url %q: %w", rawURL, err)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	return &Client{
		baseURL: base,
		http:    &http.Client{Timeout: timeout},
		token:   token,
	}, nil
}

// ListAddons retrieves every installed add-on.
func (c *Client) ListAddons(ctx context.Context) ([]Addon, error) {
	var payload addonList
	if err := c.get(ctx, "/addons", &payload); err != nil {
		return nil, err
	}
	return payload.Addons, nil
}

// AddonInfo retrieves details of a single add-on.
func (c *Client) AddonInfo(ctx context.Context, slug string) (*AddonInfo, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, fmt.Errorf("addon slug required")
	}
	var payload AddonInfo
	if err := c.get(ctx, "/addons/"+url.PathEscape(slug)+"/info", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) get(ctx context.Context, path string, dest any) error {
	reqURL := *c.baseURL
	reqURL.Path = c.baseURL.Path + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrRegistryUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s returned status %d", model.ErrRegistryUnavailable, path, resp.StatusCode)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode %s: %v", model.ErrRegistryUnavailable, path, err)
	}
	if env.Result != "" && env.Result != "ok" {
		return fmt.Errorf("%w: %s: %s", model.ErrRegistryUnavailable, path, env.Message)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return fmt.Errorf("%w: decode %s data: %v", model.ErrRegistryUnavailable, path, err)
	}
	return nil
}
