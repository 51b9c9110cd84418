// Package metrics defines the Prometheus counter, gauge, and histogram
// contracts shared by the sender and receiver, and the HTTP surface that
// exposes them.
//
// The sender and receiver take the whole *Registry and use the exported
// metric fields they need from it; the underlying prometheus.Registry is
// unexported and read only by the HTTP server. Their unit tests therefore
// construct a real Registry and depend on Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// namespace prefixes every metric name: rtp_opus_streamer_<name>.
const namespace = "rtp_opus_streamer"

// Registry bundles every metric the core needs, registered once at process
// start under a constant "process" label identifying sender or receiver.
type Registry struct {
	reg *prometheus.Registry

	PacketsSentTotal        prometheus.Counter
	PacketsReceivedTotal    prometheus.Counter
	PacketsLostTotal        prometheus.Counter
	PacketsReorderedTotal   prometheus.Counter
	PacketsLateTotal        prometheus.Counter
	BytesSentTotal          prometheus.Counter
	BytesReceivedTotal      prometheus.Counter
	JitterBufferOccupancy   prometheus.Gauge
	EncodeSeconds           prometheus.Histogram
	DecodeSeconds           prometheus.Histogram
	JitterBufferDelay       prometheus.Histogram
	NetworkTransitSeconds   prometheus.Histogram
	ReceiverPipelineSeconds prometheus.Histogram
}

// New constructs a Registry for the given process ("sender" or "receiver")
// and registers every metric it exposes.
func New(process string) *Registry {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"process": process}

	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
		mustRegister(reg, c)
		return c
	}
	histogram := func(name, help string) prometheus.Histogram {
		h := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
			Buckets:     prometheus.ExponentialBuckets(0.0001, 2, 16),
		})
		mustRegister(reg, h)
		return h
	}

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "jitter_buffer_occupancy_packets",
		Help:        "Number of packets currently buffered in the jitter buffer.",
		ConstLabels: constLabels,
	})
	mustRegister(reg, gauge)

	r := &Registry{
		reg:                     reg,
		PacketsSentTotal:        counter("packets_sent_total", "Total RTP packets transmitted."),
		PacketsReceivedTotal:    counter("packets_received_total", "Total RTP packets accepted by the jitter buffer."),
		PacketsLostTotal:        counter("packets_lost_total", "Total packets inferred lost via sequence-gap accounting."),
		PacketsReorderedTotal:   counter("packets_reordered_total", "Total packets that arrived out of sequence order."),
		PacketsLateTotal:        counter("packets_late_total", "Total packets rejected by the jitter buffer as late."),
		BytesSentTotal:          counter("bytes_sent_total", "Total bytes transmitted on the wire."),
		BytesReceivedTotal:      counter("bytes_received_total", "Total bytes received on the wire."),
		JitterBufferOccupancy:   gauge,
		EncodeSeconds:           histogram("encode_seconds", "Time spent encoding one audio frame."),
		DecodeSeconds:           histogram("decode_seconds", "Time spent decoding one packet payload."),
		JitterBufferDelay:       histogram("jitter_buffer_delay_seconds", "Time a packet spent buffered before release."),
		NetworkTransitSeconds:   histogram("network_transit_seconds", "Excess one-way transit time over the estimated baseline."),
		ReceiverPipelineSeconds: histogram("receiver_pipeline_seconds", "End-to-end time from buffer release to sink handoff."),
	}
	return r
}

// mustRegister registers c, tolerating a metric that is already registered
// (the registration helper is idempotent by design — re-registering the
// same collector must never panic).
func mustRegister(reg *prometheus.Registry, c prometheus.Collector) {
	if err := reg.Register(c); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return
		}
		panic(err)
	}
}
