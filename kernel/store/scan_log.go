package store

import (
	"sort"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// ScanLog keeps the latest record for each scanned barcode in memory.
type ScanLog struct {
	scans cmap.ConcurrentMap[string, model.ScanRecord]
}

func NewScanLog() *ScanLog {
	return &ScanLog{scans: cmap.New[model.ScanRecord]()}
}

func (l *ScanLog) RecordScan(record model.ScanRecord) {
	l.scans.Set(record.Barcode, record)
}

// ListScans returns records newest first.
func (l *ScanLog) ListScans() []model.ScanRecord {
	items := l.scans.Items()
	records := make([]model.ScanRecord, 0, len(items))
	for _, record := range items {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].ScannedAt.Equal(records[j].ScannedAt) {
			return records[i].Barcode < records[j].Barcode
		}
		return records[i].ScannedAt.After(records[j].ScannedAt)
	})
	return records
}
