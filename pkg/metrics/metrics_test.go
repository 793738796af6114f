package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegistersAndExportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ActiveCalls.Set(3)
	c.RTPPacketsSent.Add(10)
	c.DTMFDigitsDetected.Inc()
	c.IvrTransfersFailed.WithLabelValues("timeout").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "voicebot_active_calls 3")
	assert.Contains(t, body, "voicebot_rtp_packets_sent_total 10")
	assert.Contains(t, body, `voicebot_ivr_transfers_failed_total{reason="timeout"} 1`)
}
