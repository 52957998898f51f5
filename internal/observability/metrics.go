package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	packetsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wydcodec",
			Subsystem: "codec",
			Name:      "packets_total",
			Help:      "Packets transformed by the codec.",
		},
		[]string{"direction"},
	)
	bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wydcodec",
			Subsystem: "codec",
			Name:      "bytes_total",
			Help:      "Packet bytes transformed by the codec.",
		},
		[]string{"direction"},
	)
	incompleteFrames = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wydcodec",
			Subsystem: "codec",
			Name:      "incomplete_frames_total",
			Help:      "Buffers whose trailing bytes did not form a complete packet.",
		},
		[]string{"direction", "reason"},
	)
	dispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wydcodec",
			Subsystem: "dispatch",
			Name:      "packets_total",
			Help:      "Decoded packets by code and dispatch outcome.",
		},
		[]string{"code", "outcome", "success"},
	)
	packetSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wydcodec",
			Subsystem: "codec",
			Name:      "packet_size_bytes",
			Help:      "Declared packet sizes.",
			Buckets:   prometheus.ExponentialBuckets(12, 2, 10),
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(packetsTotal, bytesTotal, incompleteFrames, dispatchTotal, packetSize)
	})
}

func RecordPacket(direction string, size int) {
	RegisterMetrics()
	packetsTotal.WithLabelValues(direction).Inc()
	bytesTotal.WithLabelValues(direction).Add(float64(size))
	packetSize.WithLabelValues(direction).Observe(float64(size))
}

func RecordIncompleteFrame(direction, reason string) {
	RegisterMetrics()
	incompleteFrames.WithLabelValues(direction, reason).Inc()
}

func RecordDispatch(code, outcome string, success bool) {
	RegisterMetrics()
	dispatchTotal.WithLabelValues(code, outcome, strconv.FormatBool(success)).Inc()
}

// WriteTextfile writes the default registry in the node-exporter textfile
// format.
func WriteTextfile(path string) error {
	RegisterMetrics()
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
