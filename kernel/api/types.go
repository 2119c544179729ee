package api

import (
	"encoding/json"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/grocyscan/grocy-scanner/kernel/openfoodfacts"
)

const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// Response is the body of every /api and /config answer.
type Response struct {
	Status         string          `json:"status"`
	Message        string          `json:"message,omitempty"`
	Product        *model.Product  `json:"product,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	ResolvedURL    string          `json:"resolved_url,omitempty"`
	UpstreamStatus int             `json:"upstream_status,omitempty"`
}

type BarcodeRequest struct {
	Barcode string `json:"barcode"`
}

type StockRequest struct {
	Barcode  string   `json:"barcode"`
	Quantity *float64 `json:"quantity"`
}

type ConfigRequest struct {
	GrocyAPIKey string `json:"grocy_api_key"`
}

// ConnectionRequest accepts the key under the front end's name or the options file name.
type ConnectionRequest struct {
	APIKey      string `json:"apiKey"`
	GrocyAPIKey string `json:"grocy_api_key"`
}

func (r ConnectionRequest) Key() string {
	if r.APIKey != "" {
		return r.APIKey
	}
	return r.GrocyAPIKey
}

type FallbackResponse struct {
	Barcode string                 `json:"barcode"`
	Product *openfoodfacts.Product `json:"product"`
}

type ScansResponse struct {
	Scans []model.ScanRecord `json:"scans"`
}
