package g711

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulawRoundTrip(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := Linear16ToMulaw(MulawToLinear16(byte(b)))
		assert.Equalf(t, byte(b), got, "round trip mismatch for input %d", b)
	}
}

func TestAlawRoundTrip(t *testing.T) {
	// Re-encoding a decoded A-law value and decoding it again must give the
	// same linear value back (decode(encode(decode(b))) == decode(b)).
	for b := 0; b < 256; b++ {
		lin := AlawToLinear16(byte(b))
		reenc := Linear16ToAlaw(lin)
		relin := AlawToLinear16(reenc)
		assert.Equal(t, lin, relin, "A-law re-decode mismatch for input %d", b)
	}
}

func TestCodecFromPayloadType(t *testing.T) {
	c, ok := CodecFromPayloadType(0)
	require.True(t, ok)
	assert.Equal(t, CodecPCMU, c)

	c, ok = CodecFromPayloadType(8)
	require.True(t, ok)
	assert.Equal(t, CodecPCMA, c)

	_, ok = CodecFromPayloadType(97)
	assert.False(t, ok)
}

func TestDecodeEncodeMulawPassthrough(t *testing.T) {
	payload := []byte{0x00, 0x7F, 0xFF, 0x80}
	assert.Equal(t, payload, DecodeToMulaw(CodecPCMU, payload))
	assert.Equal(t, payload, EncodeFromMulaw(CodecPCMU, payload))
}

func TestDecodeEncodePcma(t *testing.T) {
	payload := []byte{0x00, 0x55, 0xAA, 0xFF}
	mulaw := DecodeToMulaw(CodecPCMA, payload)
	require.Len(t, mulaw, len(payload))
	back := EncodeFromMulaw(CodecPCMA, mulaw)
	require.Len(t, back, len(payload))
}
