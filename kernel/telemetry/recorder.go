package telemetry

import (
	"context"
	"time"

	"github.com/grocyscan/grocy-scanner/kernel/model"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/michaelquigley/pfxlog"
)

const (
	measurement  = "scan"
	closeTimeout = 2 * time.Second
)

// Event describes one forwarded inventory operation.
type Event struct {
	Operation string
	Barcode   string
	Outcome   string
	Status    int
	Time      time.Time
}

// Recorder receives scan events. Implementations must not block the caller.
type Recorder interface {
	Record(ctx context.Context, event Event)
	Close()
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

func (NopRecorder) Close() {}

// InfluxRecorder writes scan events to InfluxDB 2 through the asynchronous write api.
type InfluxRecorder struct {
	client influxdb2.Client
	writer api.WriteAPI
	done   chan struct{}
}

// NewRecorder returns an InfluxRecorder when cfg names a server, otherwise a NopRecorder.
func NewRecorder(cfg model.InfluxConfig) Recorder {
	if cfg.URL == "" {
		return NopRecorder{}
	}
	return NewInfluxRecorder(cfg)
}

func NewInfluxRecorder(cfg model.InfluxConfig) *InfluxRecorder {
	client := influxdb2.NewClientWithOptions(cfg.URL, cfg.Token, influxdb2.DefaultOptions().SetBatchSize(50).SetFlushInterval(5000))
	r := &InfluxRecorder{
		client: client,
		writer: client.WriteAPI(cfg.Org, cfg.Bucket),
		done:   make(chan struct{}),
	}
	go r.drainErrors()
	return r
}

func (r *InfluxRecorder) Record(_ context.Context, event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	point := influxdb2.NewPoint(measurement,
		map[string]string{
			"operation": event.Operation,
			"outcome":   event.Outcome,
		},
		map[string]interface{}{
			"barcode": event.Barcode,
			"status":  event.Status,
		},
		event.Time,
	)
	r.writer.WritePoint(point)
}

// Close flushes buffered points, then waits for the write error stream to drain.
func (r *InfluxRecorder) Close() {
	r.writer.Flush()
	r.client.Close()
	select {
	case <-r.done:
	case <-time.After(closeTimeout):
	}
}

func (r *InfluxRecorder) drainErrors() {
	defer close(r.done)
	for err := range r.writer.Errors() {
		pfxlog.Logger().WithError(err).Warn("failed to write scan telemetry")
	}
}
