package stream

import (
	"sync"
	"testing"
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/rtpcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSend struct {
	payload []byte
	dstIP   string
	dstPort int
}

type fakeSender struct {
	mu    sync.Mutex
	sends []recordedSend
}

func (f *fakeSender) SendTo(payload []byte, dstIP string, dstPort int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(payload))
	copy(cp, payload)
	f.sends = append(f.sends, recordedSend{payload: cp, dstIP: dstIP, dstPort: dstPort})
	return nil
}

func (f *fakeSender) snapshot() []recordedSend {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]recordedSend, len(f.sends))
	copy(out, f.sends)
	return out
}

func waitForSends(f *fakeSender, n int) []recordedSend {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if s := f.snapshot(); len(s) >= n {
			return s
		}
		time.Sleep(time.Millisecond)
	}
	return f.snapshot()
}

func TestSendPayloadEncodesAndAdvancesSeqAndTimestamp(t *testing.T) {
	sender := &fakeSender{}
	m := New(sender, time.Hour)
	defer m.Close()

	m.Start("call-1", "127.0.0.1", 30000, g711.CodecPCMU.PayloadType(), 0xAAAA, 1000, 8000)
	payload := make([]byte, 160)
	for i := range payload {
		payload[i] = 0xFF
	}
	m.SendPayload("call-1", payload)
	m.SendPayload("call-1", payload)

	sends := waitForSends(sender, 2)
	require.Len(t, sends, 2)

	first, err := rtpcore.Parse(sends[0].payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), first.SequenceNumber)
	assert.Equal(t, uint32(8000), first.Timestamp)

	second, err := rtpcore.Parse(sends[1].payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(1001), second.SequenceNumber)
	assert.Equal(t, uint32(8160), second.Timestamp)

	assert.Equal(t, "127.0.0.1", sends[0].dstIP)
	assert.Equal(t, 30000, sends[0].dstPort)
}

func TestSequenceAndTimestampWrapAround(t *testing.T) {
	sender := &fakeSender{}
	m := New(sender, time.Hour)
	defer m.Close()

	m.Start("call-1", "127.0.0.1", 30000, g711.CodecPCMU.PayloadType(), 0x1, 65535, 4294967295-159)
	payload := make([]byte, 160)
	m.SendPayload("call-1", payload)
	m.SendPayload("call-1", payload)

	sends := waitForSends(sender, 2)
	require.Len(t, sends, 2)

	first, err := rtpcore.Parse(sends[0].payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(65535), first.SequenceNumber)

	second, err := rtpcore.Parse(sends[1].payload)
	require.NoError(t, err)
	assert.Equal(t, uint16(0), second.SequenceNumber)
	assert.Equal(t, uint32(0), second.Timestamp)
}

func TestSendPayloadOnUnknownKeyIsIgnored(t *testing.T) {
	sender := &fakeSender{}
	m := New(sender, time.Hour)
	defer m.Close()

	m.SendPayload("ghost", make([]byte, 160))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sender.snapshot())
}

func TestStopRemovesStream(t *testing.T) {
	sender := &fakeSender{}
	m := New(sender, time.Hour)
	defer m.Close()

	m.Start("call-1", "127.0.0.1", 30000, g711.CodecPCMU.PayloadType(), 1, 0, 0)
	m.Stop("call-1")
	m.SendPayload("call-1", make([]byte, 160))
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, sender.snapshot())
}

func TestRTCPSenderReportSentToDstPortPlusOne(t *testing.T) {
	sender := &fakeSender{}
	m := New(sender, 15*time.Millisecond)
	defer m.Close()

	m.Start("call-1", "127.0.0.1", 30000, g711.CodecPCMU.PayloadType(), 1, 0, 0)
	m.SendPayload("call-1", make([]byte, 160))

	deadline := time.Now().Add(500 * time.Millisecond)
	var found bool
	for time.Now().Before(deadline) {
		for _, s := range sender.snapshot() {
			if s.dstPort == 30001 {
				found = true
			}
		}
		if found {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.True(t, found, "expected an RTCP SR sent to dst port+1")
}

func TestAdjustTimestampShiftsNextSend(t *testing.T) {
	sender := &fakeSender{}
	m := New(sender, time.Hour)
	defer m.Close()

	m.Start("call-1", "127.0.0.1", 30000, g711.CodecPCMU.PayloadType(), 1, 0, 1000)
	m.AdjustTimestamp("call-1", 500)
	m.SendPayload("call-1", make([]byte, 160))

	sends := waitForSends(sender, 1)
	require.Len(t, sends, 1)
	pkt, err := rtpcore.Parse(sends[0].payload)
	require.NoError(t, err)
	assert.Equal(t, uint32(1500), pkt.Timestamp)
}
