package prometheus

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/custodia-labs/salasync/internal/core/domain"
	"github.com/custodia-labs/salasync/internal/core/ports/driven"
)

// Ensure Recorder implements the interface.
var _ driven.SyncMetrics = (*Recorder)(nil)

const namespace = "salasync"

// Recorder implements driven.SyncMetrics.
type Recorder struct {
	registry *prometheus.Registry

	documents   *prometheus.CounterVec
	syncs       *prometheus.CounterVec
	rooms       prometheus.Gauge
	roomsNoInfo prometheus.Gauge
	roomsFailed prometheus.Gauge
	duration    prometheus.Histogram
	lastSuccess prometheus.Gauge
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		documents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents handled, labelled by outcome",
		}, []string{"outcome"}),
		syncs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Sync passes, labelled by result",
		}, []string{"result"}),
		rooms: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_seen",
			Help:      "Room folders listed in the last pass",
		}),
		roomsNoInfo: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_without_reports",
			Help:      "Rooms with no final-reports folder in the last pass",
		}),
		roomsFailed: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_failed",
			Help:      "Rooms whose branch failed in the last pass",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Wall time of a sync pass",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last pass that completed without a fatal error",
		}),
	}
}

// DocumentDone records one document with its outcome.
func (r *Recorder) DocumentDone(outcome string) {
	r.documents.WithLabelValues(outcome).Inc()
}

// SyncDone records a finished pass.
func (r *Recorder) SyncDone(report domain.SyncReport, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.syncs.WithLabelValues(result).Inc()

	r.rooms.Set(float64(report.RoomsSeen))
	r.roomsNoInfo.Set(float64(report.RoomsWithoutReports))
	r.roomsFailed.Set(float64(report.RoomsFailed))
	r.duration.Observe(report.Duration.Seconds())

	if err == nil {
		r.lastSuccess.Set(float64(report.StartedAt.Add(report.Duration).Unix()))
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
