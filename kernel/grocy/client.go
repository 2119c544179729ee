package grocy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/michaelquigley/pfxlog"
)

// Gateway forwards inventory operations to a Grocy instance. It is implemented by *Client.
type Gateway interface {
	TestConnection(ctx context.Context, baseURL, apiKey string) (model.Result, error)
	LookupBarcode(ctx context.Context, baseURL, apiKey, barcode string) (model.Result, error)
	ApplyAction(ctx context.Context, baseURL, apiKey, barcode string, action model.StockAction, amount float64) (model.Result, error)
}

var _ Gateway = (*Client)(nil)

const (
	APIKeyHeader     = "GROCY-API-KEY"
	defaultUserAgent = "grocy-scanner/1.0"
	maxResponseBytes = 1 << 20
	systemInfoPath   = "/api/system/info"
	byBarcodePath    = "/api/stock/products/by-barcode/"
)

// Client talks to the Grocy REST API. The base url is supplied per call because it is
// discovered at runtime.
type Client struct {
	http      *http.Client
	userAgent string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
	}
}

// TestConnection checks that baseURL answers /api/system/info for apiKey.
func (c *Client) TestConnection(ctx context.Context, baseURL, apiKey string) (model.Result, error) {
	if err := checkPreconditions(baseURL, apiKey); err != nil {
		return model.Result{}, err
	}
	return c.do(ctx, http.MethodGet, baseURL, systemInfoPath, apiKey, nil), nil
}

// LookupBarcode fetches the stock details of the product carrying barcode.
func (c *Client) LookupBarcode(ctx context.Context, baseURL, apiKey, barcode string) (model.Result, error) {
	if err := checkPreconditions(baseURL, apiKey); err != nil {
		return model.Result{}, err
	}
	path, err := barcodePath(barcode, "")
	if err != nil {
		return model.Result{}, err
	}

	result := c.do(ctx, http.MethodGet, baseURL, path, apiKey, nil)
	if result.Outcome == model.Found {
		product, err := ProjectProduct(barcode, result.Payload)
		if err != nil {
			pfxlog.Logger().WithError(err).WithField("barcode", barcode).Warn("unable to project product details")
			product = DefaultProduct(barcode)
		}
		result.Product = product
	}
	return result, nil
}

// ApplyAction posts a stock mutation for barcode.
func (c *Client) ApplyAction(ctx context.Context, baseURL, apiKey, barcode string, action model.StockAction, amount float64) (model.Result, error) {
	if err := checkPreconditions(baseURL, apiKey); err != nil {
		return model.Result{}, err
	}
	if action == nil {
		return model.Result{}, model.ErrUnknownAction
	}
	if amount <= 0 {
		return model.Result{}, fmt.Errorf("%w for %s", model.ErrInvalidQuantity, action.Label())
	}
	path, err := barcodePath(barcode, action.Path())
	if err != nil {
		return model.Result{}, err
	}
	return c.do(ctx, http.MethodPost, baseURL, path, apiKey, action.Payload(amount)), nil
}

func (c *Client) do(ctx context.Context, method, baseURL, path, apiKey string, body any) model.Result {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return model.TransportFailure(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(baseURL, "/")+path, reader)
	if err != nil {
		return model.TransportFailure(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(APIKeyHeader, apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return model.TransportFailure(fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.TransportFailure(fmt.Errorf("read response: %w", err))
	}
	return model.ResultFromStatus(resp.StatusCode, payload)
}

func checkPreconditions(baseURL, apiKey string) error {
	if strings.TrimSpace(baseURL) == "" {
		return model.ErrBaseURLUnset
	}
	if strings.TrimSpace(apiKey) == "" {
		return model.ErrMissingCredential
	}
	return nil
}

func barcodePath(barcode, action string) (string, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return "", model.ErrMissingBarcode
	}
	path := byBarcodePath + url.PathEscape(barcode)
	if action != "" {
		path += "/" + action
	}
	return path, nil
}
