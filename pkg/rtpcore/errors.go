package rtpcore

import "errors"

var (
	// ErrTooShort is returned when a buffer is too small to contain the
	// header fields it claims to have (fixed header, CSRC list, extension,
	// or padding length).
	ErrTooShort = errors.New("rtpcore: buffer too short")
	// ErrUnsupportedVersion is returned for any RTP version other than 2.
	ErrUnsupportedVersion = errors.New("rtpcore: unsupported RTP version")
	// ErrTooManyCSRC is returned when more than 15 CSRC identifiers are
	// supplied to Build (the 4-bit CC field cannot represent more).
	ErrTooManyCSRC = errors.New("rtpcore: too many CSRC identifiers")
	// ErrUnknownRTCPType is returned by ParseRTCP for a packet type other
	// than Sender Report (200) or Receiver Report (201).
	ErrUnknownRTCPType = errors.New("rtpcore: unsupported RTCP packet type")
	// ErrInvalidPadding is returned by Build when Padding is set but
	// PadLen is zero, since the padding count byte itself must be >=1.
	ErrInvalidPadding = errors.New("rtpcore: padding set with zero PadLen")
)
