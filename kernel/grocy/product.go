package grocy

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	"github.com/oliveagle/jsonpath"
)

const (
	productIdPath   = "$.product.id"
	productNamePath = "$.product.name"
	stockAmountPath = "$.stock_amount"
	unitPath        = "$.quantity_unit_stock.name"
	locationPath    = "$.location.name"
)

// DefaultProduct is the projection used when a field is missing from the lookup response.
func DefaultProduct(barcode string) *model.Product {
	return &model.Product{
		Barcode:  barcode,
		Name:     model.DefaultProductName,
		Unit:     model.DefaultProductUnit,
		Location: model.DefaultProductLocation,
	}
}

// ProjectProduct extracts the product record from a by-barcode response, keeping the
// defaults of DefaultProduct for absent or empty fields.
func ProjectProduct(barcode string, payload []byte) (*model.Product, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("decode product details: %w", err)
	}
	if _, ok := doc.(map[string]any); !ok {
		return nil, fmt.Errorf("product details is not an object")
	}

	p := DefaultProduct(barcode)
	if v, ok := lookupString(doc, productNamePath); ok {
		p.Name = v
	}
	if v, ok := lookupNumber(doc, stockAmountPath); ok {
		p.StockAmount = v
	}
	if v, ok := lookupString(doc, unitPath); ok {
		p.Unit = v
	}
	if v, ok := lookupString(doc, locationPath); ok {
		p.Location = v
	}
	if v, ok := lookupNumber(doc, productIdPath); ok {
		p.Id = int(v)
	}
	return p, nil
}

func lookup(doc any, path string) (value any, ok bool) {
	// jsonpath panics on some null intermediate objects
	defer func() {
		if r := recover(); r != nil {
			value, ok = nil, false
		}
	}()
	v, err := jsonpath.JsonPathLookup(doc, path)
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

func lookupString(doc any, path string) (string, bool) {
	v, ok := lookup(doc, path)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

// lookupNumber accepts both numbers and numeric strings; older Grocy releases send
// amounts as strings.
func lookupNumber(doc any, path string) (float64, bool) {
	v, ok := lookup(doc, path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
