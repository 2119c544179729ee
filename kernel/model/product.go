package model

import "time"

const (
	DefaultProductName     = "Unknown product"
	DefaultProductUnit     = "unit"
	DefaultProductLocation = "Unknown location"
)

// Product is the read-only projection of a Grocy by-barcode lookup.
type Product struct {
	Id          int     `json:"id,omitempty"`
	Barcode     string  `json:"barcode"`
	Name        string  `json:"name"`
	StockAmount float64 `json:"stock_amount"`
	Unit        string  `json:"unit"`
	Location    string  `json:"location"`
}

// ScanRecord is the most recent outcome observed for a barcode.
type ScanRecord struct {
	Barcode   string    `json:"barcode"`
	Operation string    `json:"operation"`
	Outcome   string    `json:"outcome"`
	Status    int       `json:"status,omitempty"`
	Product   string    `json:"product,omitempty"`
	ScannedAt time.Time `json:"scanned_at"`
}
