// Package metrics exposes the Prometheus counters/gauges voicebotd
// publishes on its /metrics endpoint.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds every metric this core publishes, namespaced under
// "voicebot".
type Collector struct {
	ActiveCalls         prometheus.Gauge
	RTPPacketsSent      prometheus.Counter
	RTPPacketsReceived  prometheus.Counter
	DTMFDigitsDetected   prometheus.Counter
	TransactionRetransmits prometheus.Counter
	IvrTransfersStarted  prometheus.Counter
	IvrTransfersFailed   *prometheus.CounterVec
}

// NewCollector registers every metric against reg and returns the
// populated Collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		ActiveCalls: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "voicebot",
			Name:      "active_calls",
			Help:      "Number of calls currently in progress, from the accepted initial INVITE until teardown.",
		}),
		RTPPacketsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voicebot",
			Subsystem: "rtp",
			Name:      "packets_sent_total",
			Help:      "Total RTP packets sent across all calls.",
		}),
		RTPPacketsReceived: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voicebot",
			Subsystem: "rtp",
			Name:      "packets_received_total",
			Help:      "Total RTP packets received across all calls.",
		}),
		DTMFDigitsDetected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voicebot",
			Subsystem: "dtmf",
			Name:      "digits_detected_total",
			Help:      "Total DTMF digits detected across all calls.",
		}),
		TransactionRetransmits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voicebot",
			Subsystem: "sip",
			Name:      "transaction_retransmits_total",
			Help:      "Total SIP transaction retransmissions sent.",
		}),
		IvrTransfersStarted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voicebot",
			Subsystem: "ivr",
			Name:      "transfers_started_total",
			Help:      "Total blind transfers initiated from the IVR menu.",
		}),
		IvrTransfersFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voicebot",
			Subsystem: "ivr",
			Name:      "transfers_failed_total",
			Help:      "Total blind transfers that did not bridge, by reason.",
		}, []string{"reason"}),
	}
}

// Handler returns the /metrics HTTP handler for reg.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
