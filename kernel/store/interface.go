package store

import "github.com/grocyscan/grocy-scanner/kernel/model"

// OptionsStore manages the persisted add-on options.
type OptionsStore interface {
	GetOptions() (model.Options, error)
	SaveAPIKey(key string) error
	SaveResolvedURL(url string) error
}

// ScanStore tracks the most recent scan outcome per barcode.
type ScanStore interface {
	RecordScan(record model.ScanRecord)
	ListScans() []model.ScanRecord
}
