// Package stream implements the per-call RTP transmit table: a single
// actor goroutine owning a Call-ID/stream-key-keyed map of live streams,
// encoding outbound mu-law payloads to each stream's negotiated payload
// type, advancing sequence/timestamp, and periodically emitting RTCP
// Sender Reports.
package stream

import (
	"time"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/rtpcore"
)

// DefaultCommandBuffer matches the teacher deployment's RTP tx channel
// capacity; a command arriving when this is full is dropped rather than
// blocking the sender.
const DefaultCommandBuffer = 256

// DefaultRTCPInterval is how often a live stream gets a Sender Report.
const DefaultRTCPInterval = 5 * time.Second

// Sender abstracts the UDP socket a Manager sends RTP/RTCP through, so
// the actor can be tested without a real network.
type Sender interface {
	SendTo(payload []byte, dstIP string, dstPort int) error
}

type streamEntry struct {
	dstIP       string
	dstPort     int
	pt          uint8
	ssrc        uint32
	seq         uint16
	ts          uint32
	packetCount uint32
	octetCount  uint32
	lastRTPTs   uint32
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdSendPayload
	cmdAdjustTimestamp
)

type command struct {
	kind    cmdKind
	key     string
	dstIP   string
	dstPort int
	pt      uint8
	ssrc    uint32
	seq     uint16
	ts      uint32
	payload []byte
	delta   uint32
}

// Manager is the actor-owned RTP stream table. Construct with New, which
// starts its owning goroutine; call Close to stop it.
type Manager struct {
	cmds chan command
	done chan struct{}
}

// New starts a Manager sending through sender, ticking RTCP SRs at
// rtcpInterval.
func New(sender Sender, rtcpInterval time.Duration) *Manager {
	m := &Manager{
		cmds: make(chan command, DefaultCommandBuffer),
		done: make(chan struct{}),
	}
	go m.run(sender, rtcpInterval)
	return m
}

// Start registers a new outbound stream under key.
func (m *Manager) Start(key, dstIP string, dstPort int, pt uint8, ssrc uint32, seq uint16, ts uint32) {
	select {
	case m.cmds <- command{kind: cmdStart, key: key, dstIP: dstIP, dstPort: dstPort, pt: pt, ssrc: ssrc, seq: seq, ts: ts}:
	default:
	}
}

// Stop removes key's stream.
func (m *Manager) Stop(key string) {
	select {
	case m.cmds <- command{kind: cmdStop, key: key}:
	default:
	}
}

// SendPayload encodes and sends one mu-law frame on key's stream,
// advancing its sequence number and timestamp.
func (m *Manager) SendPayload(key string, payload []byte) {
	select {
	case m.cmds <- command{kind: cmdSendPayload, key: key, payload: payload}:
	default:
	}
}

// AdjustTimestamp adds delta to key's next outbound timestamp, used to
// keep wall-clock continuity across a silence gap.
func (m *Manager) AdjustTimestamp(key string, delta uint32) {
	if delta == 0 {
		return
	}
	select {
	case m.cmds <- command{kind: cmdAdjustTimestamp, key: key, delta: delta}:
	default:
	}
}

// Close stops the actor goroutine.
func (m *Manager) Close() {
	close(m.cmds)
	<-m.done
}

func (m *Manager) run(sender Sender, rtcpInterval time.Duration) {
	defer close(m.done)

	streams := make(map[string]*streamEntry)
	ticker := time.NewTicker(rtcpInterval)
	defer ticker.Stop()

	for {
		select {
		case cmd, ok := <-m.cmds:
			if !ok {
				return
			}
			applyCommand(streams, sender, cmd)
		case <-ticker.C:
			sendSenderReports(streams, sender)
		}
	}
}

func applyCommand(streams map[string]*streamEntry, sender Sender, cmd command) {
	switch cmd.kind {
	case cmdStart:
		if _, ok := g711.CodecFromPayloadType(cmd.pt); !ok {
			return
		}
		streams[cmd.key] = &streamEntry{
			dstIP: cmd.dstIP, dstPort: cmd.dstPort,
			pt: cmd.pt, ssrc: cmd.ssrc, seq: cmd.seq, ts: cmd.ts,
		}
	case cmdStop:
		delete(streams, cmd.key)
	case cmdSendPayload:
		s, ok := streams[cmd.key]
		if !ok {
			return
		}
		codec, ok := g711.CodecFromPayloadType(s.pt)
		if !ok {
			return
		}
		encoded := g711.EncodeFromMulaw(codec, cmd.payload)
		pkt := rtpcore.NewPacket(s.pt, s.seq, s.ts, s.ssrc, encoded)
		bytes, err := pkt.Build()
		if err != nil {
			return
		}
		if err := sender.SendTo(bytes, s.dstIP, s.dstPort); err != nil {
			return
		}
		s.packetCount++
		s.octetCount += uint32(len(cmd.payload))
		s.lastRTPTs = s.ts
		s.seq++
		s.ts += uint32(len(cmd.payload))
	case cmdAdjustTimestamp:
		if s, ok := streams[cmd.key]; ok {
			s.ts += cmd.delta
		}
	}
}

func sendSenderReports(streams map[string]*streamEntry, sender Sender) {
	for _, s := range streams {
		report := rtpcore.SenderReport{
			SSRC:         s.ssrc,
			NTPSeconds:   ntpSeconds(time.Now()),
			NTPFraction:  0,
			RTPTimestamp: s.lastRTPTs,
			PacketCount:  s.packetCount,
			OctetCount:   s.octetCount,
		}
		payload := rtpcore.BuildSenderReport(&report)
		_ = sender.SendTo(payload, s.dstIP, s.dstPort+1)
	}
}

const ntpEpochOffset = 2208988800 // seconds between 1900-01-01 and 1970-01-01

func ntpSeconds(t time.Time) uint32 {
	return uint32(t.Unix() + ntpEpochOffset)
}
