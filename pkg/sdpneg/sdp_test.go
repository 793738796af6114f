package sdpneg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MasanoriSuda/virtual-voicebot-sub001/pkg/g711"
)

const sampleOffer = "v=0\r\n" +
	"o=caller 1 1 IN IP4 127.0.0.2\r\n" +
	"s=-\r\n" +
	"c=IN IP4 127.0.0.2\r\n" +
	"t=0 0\r\n" +
	"m=audio 40000 RTP/AVP 0\r\n" +
	"a=rtpmap:0 PCMU/8000\r\n" +
	"a=sendrecv\r\n"

func TestParseOfferExtractsPeerMedia(t *testing.T) {
	pm, err := ParseOffer([]byte(sampleOffer))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.2", pm.Host)
	assert.Equal(t, 40000, pm.Port)
	assert.Equal(t, g711.CodecPCMU, pm.Codec)
	assert.Equal(t, "sendrecv", pm.Direction)
}

func TestParseOfferPrefersAlawWhenOnlyOffered(t *testing.T) {
	offer := "v=0\r\n" +
		"o=caller 1 1 IN IP4 127.0.0.2\r\n" +
		"s=-\r\n" +
		"c=IN IP4 127.0.0.2\r\n" +
		"t=0 0\r\n" +
		"m=audio 40002 RTP/AVP 8\r\n" +
		"a=rtpmap:8 PCMA/8000\r\n"

	pm, err := ParseOffer([]byte(offer))
	require.NoError(t, err)
	assert.Equal(t, g711.CodecPCMA, pm.Codec)
}

func TestParseOfferRejectsUnsupportedCodec(t *testing.T) {
	offer := "v=0\r\n" +
		"o=caller 1 1 IN IP4 127.0.0.2\r\n" +
		"s=-\r\n" +
		"c=IN IP4 127.0.0.2\r\n" +
		"t=0 0\r\n" +
		"m=audio 40000 RTP/AVP 96\r\n" +
		"a=rtpmap:96 opus/48000/2\r\n"

	_, err := ParseOffer([]byte(offer))
	assert.ErrorIs(t, err, ErrNoSupportedCodec)
}

func TestParseOfferIgnoresExtraMediaLines(t *testing.T) {
	offer := sampleOffer + "m=video 40010 RTP/AVP 99\r\n"
	pm, err := ParseOffer([]byte(offer))
	require.NoError(t, err)
	assert.Equal(t, 40000, pm.Port)
}

func TestParseOfferMissingAudioMedia(t *testing.T) {
	offer := "v=0\r\n" +
		"o=caller 1 1 IN IP4 127.0.0.2\r\n" +
		"s=-\r\n" +
		"c=IN IP4 127.0.0.2\r\n" +
		"t=0 0\r\n" +
		"m=video 40010 RTP/AVP 99\r\n"
	_, err := ParseOffer([]byte(offer))
	assert.ErrorIs(t, err, ErrNoAudioMedia)
}

func TestBuildAnswerMatchesFixedShape(t *testing.T) {
	raw := BuildAnswer("127.0.0.1", 10000, g711.CodecPCMU)
	body := string(raw)

	assert.True(t, strings.HasPrefix(body, "v=0\r\n"))
	assert.Contains(t, body, "o=rustbot 1 1 IN IP4 127.0.0.1\r\n")
	assert.Contains(t, body, "s=Rust PCMU Bot\r\n")
	assert.Contains(t, body, "c=IN IP4 127.0.0.1\r\n")
	assert.Contains(t, body, "m=audio 10000 RTP/AVP 0\r\n")
	assert.Contains(t, body, "a=rtpmap:0 PCMU/8000\r\n")
	assert.Contains(t, body, "a=sendrecv\r\n")

	pm, err := ParseOffer(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", pm.Host)
	assert.Equal(t, 10000, pm.Port)
	assert.Equal(t, g711.CodecPCMU, pm.Codec)
}

func TestBuildAnswerPCMA(t *testing.T) {
	raw := BuildAnswer("10.0.0.5", 20004, g711.CodecPCMA)
	body := string(raw)
	assert.Contains(t, body, "m=audio 20004 RTP/AVP 8\r\n")
	assert.Contains(t, body, "a=rtpmap:8 PCMA/8000\r\n")
}
