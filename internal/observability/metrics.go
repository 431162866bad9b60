package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rwfcodec",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"service", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rwfcodec",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)
	decodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rwfcodec",
			Subsystem: "codec",
			Name:      "decodes_total",
			Help:      "Container payloads walked, by top-level container and result code.",
		},
		[]string{"container", "result"},
	)
	decodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rwfcodec",
			Subsystem: "codec",
			Name:      "decode_payload_bytes",
			Help:      "Size of decoded payloads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"container"},
	)
	decodeNodes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rwfcodec",
			Subsystem: "codec",
			Name:      "decode_nodes",
			Help:      "Entries and values visited per decoded payload.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"container"},
	)
	encodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rwfcodec",
			Subsystem: "codec",
			Name:      "encodes_total",
			Help:      "Containers built from request values, by container and result code.",
		},
		[]string{"container", "result"},
	)
	encodeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rwfcodec",
			Subsystem: "codec",
			Name:      "encode_payload_bytes",
			Help:      "Size of encoded payloads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
		},
		[]string{"container"},
	)
	setDefUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rwfcodec",
			Subsystem: "setdefs",
			Name:      "updates_total",
			Help:      "Global set definition databases replaced, by kind.",
		},
		[]string{"kind"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, decodes, decodeBytes, decodeNodes, encodes, encodeBytes, setDefUpdates)
	})
}

func RecordHTTPRequest(service, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(service, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(service, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDecode counts one walk of a payload. result is the codec result
// code name, "SUCCESS" when the walk finished cleanly.
func RecordDecode(container, result string, size, nodes int) {
	RegisterMetrics()
	decodes.WithLabelValues(container, result).Inc()
	decodeBytes.WithLabelValues(container).Observe(float64(size))
	if nodes > 0 {
		decodeNodes.WithLabelValues(container).Observe(float64(nodes))
	}
}

func RecordEncode(container, result string, size int) {
	RegisterMetrics()
	encodes.WithLabelValues(container, result).Inc()
	if size > 0 {
		encodeBytes.WithLabelValues(container).Observe(float64(size))
	}
}

func RecordSetDefUpdate(kind string) {
	RegisterMetrics()
	setDefUpdates.WithLabelValues(kind).Inc()
}

// DecodeCounter exposes one decodes_total series, mainly for tests.
func DecodeCounter(container, result string) prometheus.Counter {
	return decodes.WithLabelValues(container, result)
}
