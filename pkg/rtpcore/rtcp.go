package rtpcore

import "encoding/binary"

const (
	rtcpSR = 200
	rtcpRR = 201

	// PT range reserved for RTCP packets sharing a socket with RTP,
	// per the RFC 5761 multiplexing convention spec.md §4.B relies on.
	rtcpPTRangeLow  = 192
	rtcpPTRangeHigh = 223
)

// LooksLikeRTCP reports whether buf's first two bytes match the RTCP
// version/PT convention (V=2, PT in [192,223]).
func LooksLikeRTCP(buf []byte) bool {
	if len(buf) < 2 {
		return false
	}
	if buf[0]>>6 != version2 {
		return false
	}
	pt := buf[1]
	return pt >= rtcpPTRangeLow && pt <= rtcpPTRangeHigh
}

// ReportBlock is one RTCP reception report block (RFC 3550 §6.4.1).
type ReportBlock struct {
	SSRC             uint32
	FractionLost     uint8
	CumulativeLost   uint32 // 24-bit field
	HighestSeq       uint32
	Jitter           uint32
	LastSR           uint32
	DelaySinceLastSR uint32
}

// SenderReport is an RTCP SR packet (RFC 3550 §6.4.1).
type SenderReport struct {
	SSRC         uint32
	NTPSeconds   uint32
	NTPFraction  uint32
	RTPTimestamp uint32
	PacketCount  uint32
	OctetCount   uint32
	Reports      []ReportBlock
}

// ReceiverReport is an RTCP RR packet (RFC 3550 §6.4.2).
type ReceiverReport struct {
	SSRC    uint32
	Reports []ReportBlock
}

// BuildSenderReport serializes an SR carrying at most one report block, the
// shape spec.md §4.B names explicitly (28 bytes with RC=0 when no report
// block is supplied).
func BuildSenderReport(sr *SenderReport) []byte {
	rc := len(sr.Reports)
	if rc > 1 {
		rc = 1
	}
	buf := make([]byte, 0, 28+rc*24)

	b0 := byte(version2<<6) | byte(rc)
	buf = append(buf, b0, rtcpSR)

	lengthWords := uint16(6 + rc*6)
	var tmp [4]byte
	binary.BigEndian.PutUint16(tmp[:2], lengthWords)
	buf = append(buf, tmp[:2]...)

	binary.BigEndian.PutUint32(tmp[:], sr.SSRC)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], sr.NTPSeconds)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], sr.NTPFraction)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], sr.RTPTimestamp)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], sr.PacketCount)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], sr.OctetCount)
	buf = append(buf, tmp[:]...)

	if rc == 1 {
		buf = appendReportBlock(buf, sr.Reports[0])
	}
	return buf
}

// BuildReceiverReport serializes an RR carrying at most one report block.
func BuildReceiverReport(rr *ReceiverReport) []byte {
	rc := len(rr.Reports)
	if rc > 1 {
		rc = 1
	}
	buf := make([]byte, 0, 8+rc*24)

	b0 := byte(version2<<6) | byte(rc)
	buf = append(buf, b0, rtcpRR)

	lengthWords := uint16(1 + rc*6)
	var tmp [4]byte
	binary.BigEndian.PutUint16(tmp[:2], lengthWords)
	buf = append(buf, tmp[:2]...)

	binary.BigEndian.PutUint32(tmp[:], rr.SSRC)
	buf = append(buf, tmp[:]...)

	if rc == 1 {
		buf = appendReportBlock(buf, rr.Reports[0])
	}
	return buf
}

func appendReportBlock(buf []byte, rb ReportBlock) []byte {
	var tmp [4]byte
	lostWord := (uint32(rb.FractionLost) << 24) | (rb.CumulativeLost & 0x00FFFFFF)

	binary.BigEndian.PutUint32(tmp[:], rb.SSRC)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], lostWord)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], rb.HighestSeq)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], rb.Jitter)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], rb.LastSR)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], rb.DelaySinceLastSR)
	buf = append(buf, tmp[:]...)
	return buf
}

func parseReportBlock(buf []byte) ReportBlock {
	lostWord := binary.BigEndian.Uint32(buf[4:8])
	return ReportBlock{
		SSRC:             binary.BigEndian.Uint32(buf[0:4]),
		FractionLost:     uint8(lostWord >> 24),
		CumulativeLost:   lostWord & 0x00FFFFFF,
		HighestSeq:       binary.BigEndian.Uint32(buf[8:12]),
		Jitter:           binary.BigEndian.Uint32(buf[12:16]),
		LastSR:           binary.BigEndian.Uint32(buf[16:20]),
		DelaySinceLastSR: binary.BigEndian.Uint32(buf[20:24]),
	}
}

// ParseRTCP parses an SR (200) or RR (201) packet. Any other packet type
// returns ErrUnknownRTCPType, per spec.md §4.B ("parser recognizes SR and
// RR only").
func ParseRTCP(buf []byte) (interface{}, error) {
	if len(buf) < 8 {
		return nil, ErrTooShort
	}
	rc := int(buf[0] & 0x1F)
	pt := buf[1]

	switch pt {
	case rtcpSR:
		if len(buf) < 28 {
			return nil, ErrTooShort
		}
		sr := &SenderReport{
			SSRC:         binary.BigEndian.Uint32(buf[4:8]),
			NTPSeconds:   binary.BigEndian.Uint32(buf[8:12]),
			NTPFraction:  binary.BigEndian.Uint32(buf[12:16]),
			RTPTimestamp: binary.BigEndian.Uint32(buf[16:20]),
			PacketCount:  binary.BigEndian.Uint32(buf[20:24]),
			OctetCount:   binary.BigEndian.Uint32(buf[24:28]),
		}
		offset := 28
		for i := 0; i < rc; i++ {
			if len(buf) < offset+24 {
				break
			}
			sr.Reports = append(sr.Reports, parseReportBlock(buf[offset:offset+24]))
			offset += 24
		}
		return sr, nil
	case rtcpRR:
		rr := &ReceiverReport{SSRC: binary.BigEndian.Uint32(buf[4:8])}
		offset := 8
		for i := 0; i < rc; i++ {
			if len(buf) < offset+24 {
				break
			}
			rr.Reports = append(rr.Reports, parseReportBlock(buf[offset:offset+24]))
			offset += 24
		}
		return rr, nil
	default:
		return nil, ErrUnknownRTCPType
	}
}
