// Package prometheus provides the Prometheus-backed implementations of the
// metrics interfaces. Constructors return nil when metrics are disabled so
// callers can pass the result straight through.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rohitbhushankumariift2022-coder/easeTransfer/pkg/metrics"
)

// hubMetrics is the Prometheus implementation of metrics.HubMetrics.
type hubMetrics struct {
	connectionsOpen   prometheus.Gauge
	connectionsTotal  prometheus.Counter
	sessionsActive    prometheus.Gauge
	sessionsCreated   prometheus.Counter
	sessionsJoined    prometheus.Counter
	sessionsDestroyed prometheus.Counter
	framesReceived    *prometheus.CounterVec
	framesDropped     *prometheus.CounterVec
	uploadBytes       prometheus.Counter
	downloadBytes     prometheus.Counter
	filesSealed       prometheus.Counter
	fileSizes         prometheus.Histogram
	filesExpired      prometheus.Counter
	broadcastFanout   prometheus.Histogram
}

// NewHubMetrics creates a new Prometheus-backed HubMetrics instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewHubMetrics() metrics.HubMetrics {
	if !metrics.IsEnabled() {
		return nil
	}

	reg := metrics.GetRegistry()

	return &hubMetrics{
		connectionsOpen: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "easetransfer_connections_open",
			Help: "Number of currently open device connections",
		}),
		connectionsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_connections_total",
			Help: "Total number of device connections accepted",
		}),
		sessionsActive: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "easetransfer_sessions_active",
			Help: "Number of live sessions in the registry",
		}),
		sessionsCreated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		sessionsJoined: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_session_joins_total",
			Help: "Total number of successful session joins",
		}),
		sessionsDestroyed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_sessions_destroyed_total",
			Help: "Total number of sessions reclaimed by the janitor",
		}),
		framesReceived: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "easetransfer_frames_received_total",
				Help: "Total inbound frames by frame type",
			},
			[]string{"type"},
		),
		framesDropped: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "easetransfer_frames_dropped_total",
				Help: "Total inbound frames dropped by reason",
			},
			[]string{"reason"},
		),
		uploadBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_upload_bytes_total",
			Help: "Total file bytes ingested from uploaders",
		}),
		downloadBytes: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_download_bytes_total",
			Help: "Total file bytes streamed to downloaders",
		}),
		filesSealed: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_files_uploaded_total",
			Help: "Total uploads sealed by file_complete",
		}),
		fileSizes: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name: "easetransfer_file_size_bytes",
			Help: "Distribution of sealed file sizes",
			Buckets: []float64{
				1024,      // 1KB - text snippets
				65536,     // 64KB
				1048576,   // 1MB - photos
				10485760,  // 10MB
				104857600, // 100MB - the per-frame cap
			},
		}),
		filesExpired: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "easetransfer_files_expired_total",
			Help: "Total files reclaimed by the janitor at TTL",
		}),
		broadcastFanout: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "easetransfer_broadcast_fanout",
			Help:    "Distribution of devices reached per broadcast",
			Buckets: []float64{1, 2, 3, 5, 10, 25},
		}),
	}
}

func (m *hubMetrics) ConnectionOpened() {
	m.connectionsOpen.Inc()
	m.connectionsTotal.Inc()
}

func (m *hubMetrics) ConnectionClosed() {
	m.connectionsOpen.Dec()
}

func (m *hubMetrics) SessionCreated() {
	m.sessionsActive.Inc()
	m.sessionsCreated.Inc()
}

func (m *hubMetrics) SessionJoined() {
	m.sessionsJoined.Inc()
}

func (m *hubMetrics) SessionDestroyed() {
	m.sessionsActive.Dec()
	m.sessionsDestroyed.Inc()
}

func (m *hubMetrics) FrameReceived(frameType string) {
	m.framesReceived.WithLabelValues(frameType).Inc()
}

func (m *hubMetrics) FrameDropped(reason string) {
	m.framesDropped.WithLabelValues(reason).Inc()
}

func (m *hubMetrics) UploadChunk(bytes int) {
	m.uploadBytes.Add(float64(bytes))
}

func (m *hubMetrics) DownloadChunk(bytes int) {
	m.downloadBytes.Add(float64(bytes))
}

func (m *hubMetrics) FileSealed(bytes int64) {
	m.filesSealed.Inc()
	m.fileSizes.Observe(float64(bytes))
}

func (m *hubMetrics) FileExpired() {
	m.filesExpired.Inc()
}

func (m *hubMetrics) Broadcast(recipients int) {
	m.broadcastFanout.Observe(float64(recipients))
}
