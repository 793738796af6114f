package rtpcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSenderReportBuildParseRoundTrip(t *testing.T) {
	sr := &SenderReport{
		SSRC:         0x12345678,
		NTPSeconds:   123456,
		NTPFraction:  789,
		RTPTimestamp: 160000,
		PacketCount:  100,
		OctetCount:   16000,
	}
	buf := BuildSenderReport(sr)
	assert.Len(t, buf, 28)
	assert.True(t, LooksLikeRTCP(buf))

	parsed, err := ParseRTCP(buf)
	require.NoError(t, err)
	got, ok := parsed.(*SenderReport)
	require.True(t, ok)
	assert.Equal(t, sr.SSRC, got.SSRC)
	assert.Equal(t, sr.PacketCount, got.PacketCount)
	assert.Equal(t, sr.OctetCount, got.OctetCount)
}

func TestReceiverReportWithBlock(t *testing.T) {
	rr := &ReceiverReport{
		SSRC: 42,
		Reports: []ReportBlock{{
			SSRC:           99,
			FractionLost:   1,
			CumulativeLost: 5,
			HighestSeq:     1000,
			Jitter:         12,
			LastSR:         333,
			DelaySinceLastSR: 444,
		}},
	}
	buf := BuildReceiverReport(rr)
	parsed, err := ParseRTCP(buf)
	require.NoError(t, err)
	got := parsed.(*ReceiverReport)
	require.Len(t, got.Reports, 1)
	assert.Equal(t, rr.Reports[0], got.Reports[0])
}

func TestParseRTCPUnknownType(t *testing.T) {
	buf := make([]byte, 8)
	buf[0] = 0x80
	buf[1] = 210
	_, err := ParseRTCP(buf)
	assert.ErrorIs(t, err, ErrUnknownRTCPType)
}

func TestLooksLikeRTCPRange(t *testing.T) {
	assert.True(t, LooksLikeRTCP([]byte{0x80, 200}))
	assert.True(t, LooksLikeRTCP([]byte{0x81, 223}))
	assert.False(t, LooksLikeRTCP([]byte{0x80, 0})) // RTP PT 0, not RTCP
}
