// Package rtpcore implements RTP packet and RTCP sender/receiver report
// framing for the telephony core: fixed 12-byte header, optional CSRC list
// and extension header, optional trailing padding.
package rtpcore

import "encoding/binary"

const (
	fixedHeaderLen = 12
	maxCSRC        = 15
	version2       = 2
)

// Extension is the optional RTP header extension (RFC 3550 §5.3.1).
type Extension struct {
	Profile uint16
	Data    []byte
}

// Packet is a parsed or to-be-built RTP packet.
type Packet struct {
	Version        uint8
	Padding        bool
	PadLen         uint8 // total padding octets including the count byte itself; must be >=1 when Padding is true
	Marker         bool
	PayloadType    uint8
	SequenceNumber uint16
	Timestamp      uint32
	SSRC           uint32
	CSRC           []uint32
	Extension      *Extension
	Payload        []byte
}

// NewPacket returns a Packet with sensible defaults (version 2, no
// padding/extension/CSRC) and the given fields set.
func NewPacket(pt uint8, seq uint16, ts uint32, ssrc uint32, payload []byte) *Packet {
	return &Packet{
		Version:        version2,
		PayloadType:    pt,
		SequenceNumber: seq,
		Timestamp:      ts,
		SSRC:           ssrc,
		Payload:        payload,
	}
}

// Parse decodes an RTP packet from its wire representation.
func Parse(buf []byte) (*Packet, error) {
	if len(buf) < fixedHeaderLen {
		return nil, ErrTooShort
	}

	b0, b1 := buf[0], buf[1]
	version := b0 >> 6
	if version != version2 {
		return nil, ErrUnsupportedVersion
	}
	padding := b0&0x20 != 0
	hasExtension := b0&0x10 != 0
	csrcCount := int(b0 & 0x0F)

	marker := b1&0x80 != 0
	payloadType := b1 & 0x7F

	seq := binary.BigEndian.Uint16(buf[2:4])
	ts := binary.BigEndian.Uint32(buf[4:8])
	ssrc := binary.BigEndian.Uint32(buf[8:12])

	offset := fixedHeaderLen + csrcCount*4
	if len(buf) < offset {
		return nil, ErrTooShort
	}

	csrcs := make([]uint32, csrcCount)
	for i := 0; i < csrcCount; i++ {
		start := fixedHeaderLen + i*4
		csrcs[i] = binary.BigEndian.Uint32(buf[start : start+4])
	}

	var ext *Extension
	if hasExtension {
		if len(buf) < offset+4 {
			return nil, ErrTooShort
		}
		profile := binary.BigEndian.Uint16(buf[offset : offset+2])
		lenWords := int(binary.BigEndian.Uint16(buf[offset+2 : offset+4]))
		dataStart := offset + 4
		dataEnd := dataStart + lenWords*4
		if len(buf) < dataEnd {
			return nil, ErrTooShort
		}
		ext = &Extension{
			Profile: profile,
			Data:    append([]byte(nil), buf[dataStart:dataEnd]...),
		}
		offset = dataEnd
	}

	payloadEnd := len(buf)
	var padLen uint8
	if padding {
		if payloadEnd <= offset {
			return nil, ErrTooShort
		}
		n := int(buf[payloadEnd-1])
		if n == 0 || n > payloadEnd-offset {
			return nil, ErrTooShort
		}
		padLen = uint8(n)
		payloadEnd -= n
	}

	return &Packet{
		Version:        version,
		Padding:        padding,
		PadLen:         padLen,
		Marker:         marker,
		PayloadType:    payloadType,
		SequenceNumber: seq,
		Timestamp:      ts,
		SSRC:           ssrc,
		CSRC:           csrcs,
		Extension:      ext,
		Payload:        append([]byte(nil), buf[offset:payloadEnd]...),
	}, nil
}

// Build serializes the packet to its wire representation. Extension data
// is zero-padded up to a 4-byte boundary. A CSRC list longer than 15
// entries (the CC field cannot encode more) is not truncated: Build
// returns ErrTooManyCSRC instead.
func (p *Packet) Build() ([]byte, error) {
	if len(p.CSRC) > maxCSRC {
		return nil, ErrTooManyCSRC
	}

	version := p.Version
	if version == 0 {
		version = version2
	}

	b0 := (version & 0x03) << 6
	if p.Padding {
		b0 |= 0x20
	}
	if p.Extension != nil {
		b0 |= 0x10
	}
	b0 |= uint8(len(p.CSRC)) & 0x0F

	b1 := p.PayloadType & 0x7F
	if p.Marker {
		b1 |= 0x80
	}

	buf := make([]byte, 0, fixedHeaderLen+len(p.CSRC)*4+8+len(p.Payload))
	buf = append(buf, b0, b1)

	var tmp [4]byte
	binary.BigEndian.PutUint16(tmp[:2], p.SequenceNumber)
	buf = append(buf, tmp[:2]...)
	binary.BigEndian.PutUint32(tmp[:], p.Timestamp)
	buf = append(buf, tmp[:]...)
	binary.BigEndian.PutUint32(tmp[:], p.SSRC)
	buf = append(buf, tmp[:]...)

	for _, csrc := range p.CSRC {
		binary.BigEndian.PutUint32(tmp[:], csrc)
		buf = append(buf, tmp[:]...)
	}

	if p.Extension != nil {
		lenWords := (len(p.Extension.Data) + 3) / 4
		binary.BigEndian.PutUint16(tmp[:2], p.Extension.Profile)
		buf = append(buf, tmp[:2]...)
		binary.BigEndian.PutUint16(tmp[:2], uint16(lenWords))
		buf = append(buf, tmp[:2]...)
		buf = append(buf, p.Extension.Data...)
		if pad := lenWords*4 - len(p.Extension.Data); pad > 0 {
			buf = append(buf, make([]byte, pad)...)
		}
	}

	buf = append(buf, p.Payload...)

	if p.Padding {
		if p.PadLen == 0 {
			return nil, ErrInvalidPadding
		}
		buf = append(buf, make([]byte, p.PadLen-1)...)
		buf = append(buf, p.PadLen)
	}

	return buf, nil
}
